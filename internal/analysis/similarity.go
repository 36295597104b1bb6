package analysis

import (
	"strings"

	"github.com/sims-analytics/simsmonitor/models"
)

// Ratio computes a normalized similarity score in [0,1] between two
// strings: twice the length of their longest common subsequence divided
// by the sum of their lengths. Symmetric and deterministic.
func Ratio(a, b string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	ra := []rune(a)
	rb := []rune(b)
	// Single-row LCS table; titles are short so O(n*m) is fine.
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				cur[j] = prev[j-1] + 1
			} else if prev[j] >= cur[j-1] {
				cur[j] = prev[j]
			} else {
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	lcs := prev[len(rb)]
	return 2 * float64(lcs) / float64(len(ra)+len(rb))
}

// Match returns references to pool articles whose lower-cased title is at
// least threshold-similar to title, in pool order. limit <= 0 means no
// cap. The pool is never mutated; Match is safe to call concurrently.
func Match(title string, pool []models.Article, threshold float64, limit int) []models.MatchRef {
	needle := strings.ToLower(title)
	var out []models.MatchRef
	for _, a := range pool {
		if Ratio(strings.ToLower(a.Title), needle) < threshold {
			continue
		}
		out = append(out, models.MatchRef{Title: a.Title, Source: a.Source, URL: a.URL})
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

// MatchArticles is Match but keeps the full pool records, for callers
// that need the matched articles' sentiments.
func MatchArticles(title string, pool []models.Article, threshold float64) []models.Article {
	needle := strings.ToLower(title)
	var out []models.Article
	for _, a := range pool {
		if Ratio(strings.ToLower(a.Title), needle) >= threshold {
			out = append(out, a)
		}
	}
	return out
}
