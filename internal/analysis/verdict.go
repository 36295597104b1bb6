package analysis

import (
	"fmt"
	"strings"

	"github.com/sims-analytics/simsmonitor/models"
)

// Verdict is the per-query fact-verification label. It is derived fresh
// from the current match set on every dashboard query and never persisted
// as ground truth.
type Verdict string

const (
	VerdictTrue       Verdict = "True"
	VerdictFalse      Verdict = "False"
	VerdictMixed      Verdict = "Mixed"
	VerdictUnverified Verdict = "Unverified"
)

// Similarity thresholds per call site.
const (
	VerifyThreshold  = 0.70
	RelatedThreshold = 0.50
)

// NormalizeSentiment folds any raw sentiment value into one of the four
// recognized labels, defaulting to Neutral. An absent value is a concrete
// Neutral, not a skip.
func NormalizeSentiment(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "positive":
		return "Positive"
	case "negative":
		return "Negative"
	case "cautious":
		return "Cautious"
	default:
		return "Neutral"
	}
}

// Evaluate reduces the matched articles into a verdict by sentiment
// agreement: a match whose normalized sentiment equals the subject's
// counts as an agreement, any other label as a contradiction. Sentiment
// alignment is a coarse proxy for factual agreement; that limitation is
// inherited deliberately.
func Evaluate(subject models.Article, matches []models.Article) (Verdict, string) {
	want := NormalizeSentiment(subject.Sentiment)
	agreements, contradictions := 0, 0
	for _, m := range matches {
		if NormalizeSentiment(m.Sentiment) == want {
			agreements++
		} else {
			contradictions++
		}
	}
	switch {
	case agreements > 0 && contradictions == 0:
		return VerdictTrue, fmt.Sprintf("Matched with %d sources, all agree.", agreements)
	case contradictions > 0 && agreements == 0:
		return VerdictFalse, fmt.Sprintf("Matched with %d sources, all contradict.", contradictions)
	case agreements > 0 && contradictions > 0:
		return VerdictMixed, fmt.Sprintf("Matched with %d agreeing and %d contradicting sources.", agreements, contradictions)
	default:
		return VerdictUnverified, "No matching articles found in Bangladeshi or International sources."
	}
}
