package analysis

import (
	"testing"

	"github.com/sims-analytics/simsmonitor/models"
)

func TestRatioIdenticalStrings(t *testing.T) {
	if got := Ratio("bangladesh election results", "bangladesh election results"); got != 1 {
		t.Fatalf("expected 1.0 for identical strings, got %f", got)
	}
}

func TestRatioEmptyStrings(t *testing.T) {
	if got := Ratio("", ""); got != 1 {
		t.Fatalf("expected 1.0 for two empty strings, got %f", got)
	}
	if got := Ratio("abc", ""); got != 0 {
		t.Fatalf("expected 0 when one side is empty, got %f", got)
	}
}

func TestRatioSymmetric(t *testing.T) {
	a := "india bangladesh trade talks resume"
	b := "bangladesh india trade talks to resume"
	if Ratio(a, b) != Ratio(b, a) {
		t.Fatalf("ratio not symmetric: %f vs %f", Ratio(a, b), Ratio(b, a))
	}
}

func TestRatioNearIdenticalAboveVerifyThreshold(t *testing.T) {
	a := "bangladesh garment exports hit record high in 2024"
	b := "bangladesh garment exports hit record high in 2025"
	if got := Ratio(a, b); got < VerifyThreshold {
		t.Fatalf("expected near-identical titles above %.2f, got %f", VerifyThreshold, got)
	}
}

func TestRatioDisjointBelowVerifyThreshold(t *testing.T) {
	a := "zzzz qqqq xxxx"
	b := "mmmm nnnn pppp"
	if got := Ratio(a, b); got >= VerifyThreshold {
		t.Fatalf("expected unrelated strings below %.2f, got %f", VerifyThreshold, got)
	}
}

func TestMatchThresholdIsInclusive(t *testing.T) {
	pool := []models.Article{{Title: "Dhaka floods displace thousands", Source: "thedailystar.net", URL: "https://thedailystar.net/1"}}
	// Identical titles score exactly 1.0, which must pass threshold 1.0.
	got := Match("Dhaka floods displace thousands", pool, 1.0, 0)
	if len(got) != 1 {
		t.Fatalf("expected 1 match at an exactly-met threshold, got %d", len(got))
	}
	if got[0].URL != "https://thedailystar.net/1" {
		t.Fatalf("unexpected match: %+v", got[0])
	}
}

func TestMatchHonorsLimitAndPoolOrder(t *testing.T) {
	pool := []models.Article{
		{Title: "Cyclone hits coastal Bangladesh", URL: "u1"},
		{Title: "Cyclone hits coastal Bangladesh", URL: "u2"},
		{Title: "Cyclone hits coastal Bangladesh", URL: "u3"},
		{Title: "Cyclone hits coastal Bangladesh", URL: "u4"},
	}
	got := Match("Cyclone hits coastal Bangladesh", pool, VerifyThreshold, 3)
	if len(got) != 3 {
		t.Fatalf("expected limit of 3, got %d", len(got))
	}
	if got[0].URL != "u1" || got[2].URL != "u3" {
		t.Fatalf("expected pool order preserved, got %+v", got)
	}
}

func TestMatchNoLimitReturnsAll(t *testing.T) {
	pool := []models.Article{
		{Title: "Padma bridge opens to traffic", URL: "u1"},
		{Title: "completely different headline about zebras", URL: "u2"},
		{Title: "Padma bridge opens to traffic", URL: "u3"},
	}
	got := Match("Padma bridge opens to traffic", pool, VerifyThreshold, 0)
	if len(got) != 2 {
		t.Fatalf("expected 2 matches with no cap, got %d", len(got))
	}
}

func TestMatchIsCaseInsensitive(t *testing.T) {
	pool := []models.Article{{Title: "BANGLADESH ECONOMY GROWS", URL: "u1"}}
	if got := Match("bangladesh economy grows", pool, VerifyThreshold, 0); len(got) != 1 {
		t.Fatalf("expected case-insensitive match, got %d", len(got))
	}
}
