package analysis

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sims-analytics/simsmonitor/internal/sources"
	"github.com/sims-analytics/simsmonitor/models"
)

// EntityExtractor supplies named entities for an article's text. The
// implementation is an external collaborator; a nil extractor or a failed
// call just yields no entities.
type EntityExtractor interface {
	Extract(ctx context.Context, text string) ([]string, error)
}

// Filters are the dashboard query parameters. Start/End are ISO dates;
// an unparsable value means that bound is simply not applied.
type Filters struct {
	Category string
	Source   string
	Start    string
	End      string
}

// Options carries the per-deployment knobs for snapshot building.
type Options struct {
	// TopicKeyword must appear in a surviving article's title or text.
	// Defaults to "bangladesh".
	TopicKeyword string
	Entities     EntityExtractor
}

// NewsItem is one monitored article with its per-query derived fields.
type NewsItem struct {
	Date            string   `json:"date"`
	Headline        string   `json:"headline"`
	Source          string   `json:"source"`
	Category        string   `json:"category"`
	Sentiment       string   `json:"sentiment"`
	FactCheck       string   `json:"fact_check"`
	FactCheckReason string   `json:"fact_check_reason"`
	DetailsURL      string   `json:"detailsUrl"`
	ID              int64    `json:"id"`
	Entities        []string `json:"entities"`
}

// TimelineEvent is a (date, headline) pair for the events strip.
type TimelineEvent struct {
	Date  string `json:"date"`
	Event string `json:"event"`
}

// VerdictSample is an example article for a verdict bucket.
type VerdictSample struct {
	Headline string `json:"headline"`
	Source   string `json:"source"`
	Date     string `json:"date"`
}

// FactChecking aggregates cross-media verification results.
type FactChecking struct {
	VerdictCounts          map[string]int             `json:"verdictCounts"`
	VerdictSamples         map[string][]VerdictSample `json:"verdictSamples"`
	LastUpdated            string                     `json:"lastUpdated"`
	BangladeshiAgreement   int                        `json:"bangladeshiAgreement"`
	InternationalAgreement int                        `json:"internationalAgreement"`
	VerificationStatus     string                     `json:"verificationStatus"`
}

// Implication is a heuristic impact label derived from sentiment ratios.
type Implication struct {
	Type   string `json:"type"`
	Impact string `json:"impact"`
}

// Prediction is a fixed-category forecast with a sentiment-driven
// likelihood.
type Prediction struct {
	Category   string  `json:"category"`
	Likelihood float64 `json:"likelihood"`
	TimeFrame  string  `json:"timeFrame"`
	Details    string  `json:"details"`
}

// Snapshot is the full dashboard payload.
type Snapshot struct {
	LatestNews           []NewsItem      `json:"latestIndianNews"`
	TimelineEvents       []TimelineEvent `json:"timelineEvents"`
	LanguageDistribution map[string]int  `json:"languageDistribution"`
	FactChecking         FactChecking    `json:"factChecking"`
	KeySources           []string        `json:"keySources"`
	ToneSentiment        map[string]int  `json:"toneSentiment"`
	Implications         []Implication   `json:"implications"`
	Predictions          []Prediction    `json:"predictions"`
}

// BuildSnapshot folds the stored record set into the dashboard payload.
// It is read-only over its inputs: verdicts and matches are recomputed
// from scratch on every call so they never go stale across ingestions.
func BuildSnapshot(ctx context.Context, all []models.Article, f Filters, opts Options) Snapshot {
	keyword := strings.ToLower(strings.TrimSpace(opts.TopicKeyword))
	if keyword == "" {
		keyword = "bangladesh"
	}

	surviving := filterDomestic(all, f)

	// Partition the whole store into verification pools once, by URL
	// domain. Other-tier articles never corroborate anything.
	var bdPool, intlPool []models.Article
	for _, a := range all {
		switch sources.Classify(sources.Domain(a.URL)) {
		case sources.TierRegional:
			bdPool = append(bdPool, a)
		case sources.TierInternational:
			intlPool = append(intlPool, a)
		}
	}

	var items []NewsItem
	for _, a := range surviving {
		title := strings.ToLower(a.Title)
		text := strings.ToLower(a.FullText)
		if !strings.Contains(title, keyword) && !strings.Contains(text, keyword) {
			continue
		}

		category := a.Category()
		if category == "" || category == "General" {
			category = InferCategory(a.Title, a.FullText)
		}
		if f.Category != "" && category != f.Category {
			continue
		}

		matches := MatchArticles(a.Title, bdPool, VerifyThreshold)
		matches = append(matches, MatchArticles(a.Title, intlPool, VerifyThreshold)...)
		verdict, reason := Evaluate(a, matches)

		var entities []string
		if opts.Entities != nil {
			entities, _ = opts.Entities.Extract(ctx, a.Title+"\n"+a.FullText)
		}

		source := a.Source
		if source == "" || strings.EqualFold(source, "unknown") {
			source = "Other"
		}

		items = append(items, NewsItem{
			Date:            isoDate(a.PublishedAt),
			Headline:        a.Title,
			Source:          source,
			Category:        category,
			Sentiment:       NormalizeSentiment(a.Sentiment),
			FactCheck:       string(verdict),
			FactCheckReason: reason,
			DetailsURL:      a.URL,
			ID:              a.ID,
			Entities:        entities,
		})
	}

	return Snapshot{
		LatestNews:           items,
		TimelineEvents:       timeline(items),
		LanguageDistribution: languageDistribution(items),
		FactChecking:         factChecking(items),
		KeySources:           keySources(items),
		ToneSentiment:        sentimentHistogram(items),
		Implications:         implications(items),
		Predictions:          predictions(items),
	}
}

// filterDomestic applies the tier, source, and date-range filters and
// orders the result publish-date descending (undated records last).
func filterDomestic(all []models.Article, f Filters) []models.Article {
	start, startOK := parseDate(f.Start)
	end, endOK := parseDate(f.End)
	if endOK {
		// The end date is inclusive through end-of-day.
		end = end.Add(24 * time.Hour)
	}

	var out []models.Article
	for _, a := range all {
		if sources.Classify(a.Source) != sources.TierDomestic {
			continue
		}
		if f.Source != "" && a.Source != f.Source {
			continue
		}
		if startOK && (a.PublishedAt == nil || a.PublishedAt.Before(start)) {
			continue
		}
		if endOK && (a.PublishedAt == nil || !a.PublishedAt.Before(end)) {
			continue
		}
		out = append(out, a)
	}
	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := out[i].PublishedAt, out[j].PublishedAt
		switch {
		case pi == nil:
			return false
		case pj == nil:
			return true
		default:
			return pi.After(*pj)
		}
	})
	return out
}

// parseDate accepts an ISO date or datetime. Unparsable values are
// ignored rather than rejected.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func isoDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

func timeline(items []NewsItem) []TimelineEvent {
	out := make([]TimelineEvent, 0, 20)
	for _, it := range items {
		if len(out) >= 20 {
			break
		}
		out = append(out, TimelineEvent{Date: it.Date, Event: it.Headline})
	}
	return out
}

func languageDistribution(items []NewsItem) map[string]int {
	dist := make(map[string]int)
	for _, it := range items {
		dist[sources.LanguageOf(it.Source)]++
	}
	return dist
}

func sentimentHistogram(items []NewsItem) map[string]int {
	counts := make(map[string]int)
	for _, it := range items {
		counts[it.Sentiment]++
	}
	// Zero-count labels are omitted; counting only produces present ones.
	return counts
}

func factChecking(items []NewsItem) FactChecking {
	counts := map[string]int{"True": 0, "False": 0, "Mixed": 0, "Unverified": 0}
	samples := map[string][]VerdictSample{"True": {}, "False": {}, "Mixed": {}, "Unverified": {}}
	lastUpdated := ""
	for _, it := range items {
		counts[it.FactCheck]++
		if len(samples[it.FactCheck]) < 3 {
			samples[it.FactCheck] = append(samples[it.FactCheck], VerdictSample{
				Headline: it.Headline, Source: it.Source, Date: it.Date,
			})
		}
		if it.Date != "" && it.Date > lastUpdated {
			lastUpdated = it.Date
		}
	}
	status := "Unverified"
	if counts["True"] > 0 {
		status = "Verified"
	}
	return FactChecking{
		VerdictCounts:          counts,
		VerdictSamples:         samples,
		LastUpdated:            lastUpdated,
		BangladeshiAgreement:   counts["True"],
		InternationalAgreement: 0,
		VerificationStatus:     status,
	}
}

func keySources(items []NewsItem) []string {
	seen := make(map[string]struct{})
	for _, it := range items {
		s := it.Source
		if s == "" || s == "Other" || strings.EqualFold(s, "unknown") {
			continue
		}
		seen[s] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

type sentimentMix struct {
	neg, pos, neu int
	total         int
}

func (m sentimentMix) negRatio() float64 { return ratioOf(m.neg, m.total) }
func (m sentimentMix) posRatio() float64 { return ratioOf(m.pos, m.total) }
func (m sentimentMix) neuRatio() float64 { return ratioOf(m.neu, m.total) }

func ratioOf(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total)
}

func mixOf(items []NewsItem) sentimentMix {
	m := sentimentMix{total: len(items)}
	for _, it := range items {
		switch it.Sentiment {
		case "Negative":
			m.neg++
		case "Positive":
			m.pos++
		case "Neutral":
			m.neu++
		}
	}
	return m
}

// implications derives impact labels from the sentiment mix. The three
// impact areas are evaluated independently, so several can fire at once.
func implications(items []NewsItem) []Implication {
	m := mixOf(items)
	if m.total == 0 {
		return nil
	}
	var out []Implication
	if m.negRatio() > 0.6 {
		out = append(out, Implication{Type: "Political Stability", Impact: "Very High"})
	} else if m.neg > m.pos {
		out = append(out, Implication{Type: "Political Stability", Impact: "High"})
	}
	if m.posRatio() > 0.5 {
		out = append(out, Implication{Type: "Economic Impact", Impact: "Strong Positive"})
	} else if m.pos > 0 {
		out = append(out, Implication{Type: "Economic Impact", Impact: "Medium"})
	}
	if m.neuRatio() > 0.4 {
		out = append(out, Implication{Type: "Social Cohesion", Impact: "Balanced"})
	} else if m.neu > 0 {
		out = append(out, Implication{Type: "Social Cohesion", Impact: "Low"})
	}
	return out
}

// trendPhrase compares negative counts in the five most recent surviving
// records against the five before them. Only computed when more than five
// records survive.
func trendPhrase(items []NewsItem) string {
	if len(items) <= 5 {
		return ""
	}
	negatives := func(batch []NewsItem) int {
		n := 0
		for _, it := range batch {
			if it.Sentiment == "Negative" {
				n++
			}
		}
		return n
	}
	prior := items[5:]
	if len(prior) > 5 {
		prior = prior[:5]
	}
	recent := negatives(items[:5])
	previous := negatives(prior)
	switch {
	case recent > previous:
		return "Negative sentiment is rising."
	case recent < previous:
		return "Negative sentiment is falling."
	default:
		return "Negative sentiment is stable."
	}
}

func predictions(items []NewsItem) []Prediction {
	m := mixOf(items)
	likelihood := func(ratio float64) float64 {
		if m.total == 0 {
			return 80
		}
		v := 80 + ratio*20
		if v > 95 {
			v = 95
		}
		return v
	}
	trend := trendPhrase(items)
	if trend == "" {
		trend = "Stable"
	}
	outlook := "Cautious"
	if m.posRatio() > 0.5 {
		outlook = "Positive"
	}
	return []Prediction{
		{
			Category:   "Political Landscape",
			Likelihood: likelihood(m.negRatio()),
			TimeFrame:  "Next 3 months",
			Details:    fmt.Sprintf("Political unrest likelihood: %s Based on recent sentiment.", trend),
		},
		{
			Category:   "Economic Implications",
			Likelihood: likelihood(m.posRatio()),
			TimeFrame:  "Next 6 months",
			Details:    fmt.Sprintf("Economic outlook: %s. Based on recent sentiment.", outlook),
		},
	}
}
