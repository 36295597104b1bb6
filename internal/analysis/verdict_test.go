package analysis

import (
	"testing"

	"github.com/sims-analytics/simsmonitor/models"
)

func TestNormalizeSentiment(t *testing.T) {
	cases := map[string]string{
		"positive":   "Positive",
		"POSITIVE":   "Positive",
		" Negative ": "Negative",
		"cautious":   "Cautious",
		"neutral":    "Neutral",
		"":           "Neutral",
		"optimistic": "Neutral",
	}
	for in, want := range cases {
		if got := NormalizeSentiment(in); got != want {
			t.Fatalf("NormalizeSentiment(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEvaluateNoMatchesIsUnverified(t *testing.T) {
	subject := models.Article{Title: "x", Sentiment: "Negative"}
	verdict, reason := Evaluate(subject, nil)
	if verdict != VerdictUnverified {
		t.Fatalf("expected Unverified, got %s", verdict)
	}
	if reason != "No matching articles found in Bangladeshi or International sources." {
		t.Fatalf("unexpected reason: %q", reason)
	}
}

func TestEvaluateAllAgreeIsTrue(t *testing.T) {
	subject := models.Article{Sentiment: "Negative"}
	matches := []models.Article{
		{Sentiment: "negative"},
		{Sentiment: "Negative"},
	}
	verdict, reason := Evaluate(subject, matches)
	if verdict != VerdictTrue {
		t.Fatalf("expected True, got %s", verdict)
	}
	if reason != "Matched with 2 sources, all agree." {
		t.Fatalf("unexpected reason: %q", reason)
	}
}

func TestEvaluateAllContradictIsFalse(t *testing.T) {
	subject := models.Article{Sentiment: "Positive"}
	matches := []models.Article{
		{Sentiment: "Negative"},
		{Sentiment: "Neutral"},
		{Sentiment: "Cautious"},
	}
	verdict, reason := Evaluate(subject, matches)
	if verdict != VerdictFalse {
		t.Fatalf("expected False, got %s", verdict)
	}
	if reason != "Matched with 3 sources, all contradict." {
		t.Fatalf("unexpected reason: %q", reason)
	}
}

func TestEvaluateMixedAgreement(t *testing.T) {
	subject := models.Article{Sentiment: "Positive"}
	matches := []models.Article{
		{Sentiment: "positive"},
		{Sentiment: "Negative"},
	}
	verdict, reason := Evaluate(subject, matches)
	if verdict != VerdictMixed {
		t.Fatalf("expected Mixed, got %s", verdict)
	}
	if reason != "Matched with 1 agreeing and 1 contradicting sources." {
		t.Fatalf("unexpected reason: %q", reason)
	}
}

// A match with no sentiment at all still participates, as Neutral.
func TestEvaluateAbsentMatchSentimentCountsAsNeutral(t *testing.T) {
	subject := models.Article{Sentiment: "Neutral"}
	matches := []models.Article{{Sentiment: ""}}
	verdict, _ := Evaluate(subject, matches)
	if verdict != VerdictTrue {
		t.Fatalf("expected True for neutral subject vs absent match sentiment, got %s", verdict)
	}
}
