// Package ingest turns raw discovery results into canonical article
// records. Every upstream field is treated as optional or malformed until
// proven otherwise; the only hard failure is a summary that is missing or
// undecodable, which skips that article without aborting the batch.
package ingest

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/sims-analytics/simsmonitor/internal/analysis"
	"github.com/sims-analytics/simsmonitor/internal/discovery"
	"github.com/sims-analytics/simsmonitor/internal/sources"
	"github.com/sims-analytics/simsmonitor/models"
)

// ErrNoSummary marks an article whose AI summary was absent or could not
// be decoded. Such articles are skipped, never persisted.
var ErrNoSummary = errors.New("summary missing or undecodable")

// fieldAliases formalizes the "accept any of these key spellings"
// behavior: each semantic field is resolved against its known aliases in
// order, upstream snake_case and camelCase included.
var fieldAliases = map[string][]string{
	"source":      {"source", "source_domain", "sourceDomain"},
	"category":    {"category", "news_category", "newsCategory"},
	"sentiment":   {"sentiment", "sentiment_toward_bangladesh", "sentimentTowardBangladesh"},
	"factCheck":   {"fact_check", "factCheck"},
	"comparison":  {"comparison", "media_coverage_summary", "mediaCoverageSummary"},
	"bdMedia":     {"bangladeshi_media", "bangladeshiMedia"},
	"intlMedia":   {"international_media", "internationalMedia"},
	"matches":     {"supporting_article_matches", "supportingArticleMatches"},
	"bdMatches":   {"bangladeshi_matches", "bangladeshiMatches"},
	"intlMatches": {"international_matches", "internationalMatches"},
}

var (
	authorRE = regexp.MustCompile(`By\s+([A-Za-z ]+)`)
	linkRE   = regexp.MustCompile(`https?://\S+`)
)

// Normalize reconciles one raw discovery result into a canonical record.
// The stored pool backs the secondary fuzzy match search when the summary
// supplied no supporting matches. Persistence is the caller's job.
func Normalize(item discovery.Result, stored []models.Article) (models.Article, error) {
	summary, err := decodeSummary(item.Summary)
	if err != nil {
		return models.Article{}, err
	}

	art := models.Article{
		URL:      item.URL,
		Title:    item.Title,
		Image:    item.Image,
		Favicon:  item.Favicon,
		Score:    item.Score,
		FullText: item.Text,
	}

	art.PublishedAt = parseTimestamp(item.PublishedDate)

	art.Author = item.Author
	if art.Author == "" && item.Text != "" {
		if m := authorRE.FindStringSubmatch(item.Text); m != nil {
			art.Author = strings.TrimSpace(m[1])
		}
	}

	src := stringField(summary, "source", "Unknown")
	if sources.Classify(src) == sources.TierOther {
		art.Source = "Other"
	} else {
		art.Source = src
	}

	art.Sentiment = capitalize(field(summary, "sentiment"), "Neutral")
	art.FactCheck = factCheckStatus(field(summary, "factCheck"))

	category := stringField(summary, "category", "")
	if category == "" || category == "General" {
		category = analysis.InferCategory(item.Title, item.Text)
	}

	comparison, _ := field(summary, "comparison").(map[string]any)
	art.BDSummary = stringField(comparison, "bdMedia", "Not covered")
	art.IntlSummary = stringField(comparison, "intlMedia", "Not covered")

	art.Links = resolveLinks(item.Extras, item.Text)

	bdMatches, intlMatches := resolveMatches(summary)
	if len(bdMatches) == 0 {
		bdMatches = analysis.Match(item.Title, tierPool(stored, sources.TierRegional), analysis.VerifyThreshold, 3)
	}
	if len(intlMatches) == 0 {
		intlMatches = analysis.Match(item.Title, tierPool(stored, sources.TierInternational), analysis.VerifyThreshold, 3)
	}

	art.Summary = &models.ArticleSummary{
		Source:    art.Source,
		Sentiment: art.Sentiment,
		FactCheck: art.FactCheck,
		Category:  category,
		Comparison: models.CoverageComparison{
			BangladeshiMedia:   art.BDSummary,
			InternationalMedia: art.IntlSummary,
		},
		BangladeshiMatches:   bdMatches,
		InternationalMatches: intlMatches,
	}
	return art, nil
}

// decodeSummary accepts a JSON object or a JSON-encoded string holding
// one. Anything else is ErrNoSummary.
func decodeSummary(raw json.RawMessage) (map[string]any, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, ErrNoSummary
	}
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if err := json.Unmarshal([]byte(s), &obj); err == nil {
			return obj, nil
		}
	}
	return nil, ErrNoSummary
}

// field resolves a semantic field against its alias table; nil when no
// alias is present.
func field(summary map[string]any, name string) any {
	for _, key := range fieldAliases[name] {
		if v, ok := summary[key]; ok {
			return v
		}
	}
	return nil
}

func stringField(summary map[string]any, name, def string) string {
	if s, ok := field(summary, name).(string); ok && s != "" {
		return s
	}
	return def
}

// capitalize upper-cases the first rune and lower-cases the rest, the
// way the upstream labels are expected to read. Non-string input falls
// back to the default.
func capitalize(v any, def string) string {
	s, ok := v.(string)
	if !ok || s == "" {
		return def
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

// factCheckStatus accepts either a scalar status or the structured
// factCheck object, extracting its status sub-field.
func factCheckStatus(v any) string {
	if obj, ok := v.(map[string]any); ok {
		v = obj["status"]
	}
	return capitalize(v, "Unverified")
}

func parseTimestamp(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// resolveLinks prefers the extras payload and falls back to scanning the
// full text for URL tokens, deduplicated in first-seen order.
func resolveLinks(extras map[string]any, text string) []string {
	if raw, ok := extras["links"].([]any); ok && len(raw) > 0 {
		var out []string
		seen := make(map[string]bool)
		for _, v := range raw {
			if s, ok := v.(string); ok && s != "" && !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	if text == "" {
		return nil
	}
	var out []string
	seen := make(map[string]bool)
	for _, link := range linkRE.FindAllString(text, -1) {
		if !seen[link] {
			seen[link] = true
			out = append(out, link)
		}
	}
	return out
}

// resolveMatches reads the supporting match arrays, either at the top
// level or nested under the supportingArticleMatches object. A value that
// is not an array counts as absent.
func resolveMatches(summary map[string]any) (bd, intl []models.MatchRef) {
	bdRaw := field(summary, "bdMatches")
	intlRaw := field(summary, "intlMatches")
	if nested, ok := field(summary, "matches").(map[string]any); ok {
		if bdRaw == nil {
			bdRaw = field(nested, "bdMatches")
		}
		if intlRaw == nil {
			intlRaw = field(nested, "intlMatches")
		}
	}
	return matchList(bdRaw), matchList(intlRaw)
}

func matchList(v any) []models.MatchRef {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []models.MatchRef
	for _, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			continue
		}
		ref := models.MatchRef{
			Title:  str(m["title"]),
			Source: str(m["source"]),
			URL:    str(m["url"]),
		}
		if ref.Title == "" && ref.URL == "" {
			continue
		}
		out = append(out, ref)
	}
	return out
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func tierPool(stored []models.Article, tier sources.Tier) []models.Article {
	var out []models.Article
	for _, a := range stored {
		if sources.Classify(a.Source) == tier {
			out = append(out, a)
		}
	}
	return out
}
