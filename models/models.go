package models

import "time"

// Article is the canonical record produced by ingestion. The URL is the
// stable identity: re-ingesting the same URL updates the row in place.
type Article struct {
	ID          int64
	URL         string
	Title       string
	PublishedAt *time.Time
	Author      string
	Source      string
	Sentiment   string
	FactCheck   string
	BDSummary   string
	IntlSummary string
	Image       string
	Favicon     string
	Score       *float64
	Links       []string
	FullText    string
	Summary     *ArticleSummary
}

// ArticleSummary is the normalized snapshot of the upstream AI summary,
// persisted alongside the article so the raw payload never has to be
// re-parsed.
type ArticleSummary struct {
	Source               string             `json:"source"`
	Sentiment            string             `json:"sentiment"`
	FactCheck            string             `json:"fact_check"`
	Category             string             `json:"category"`
	Comparison           CoverageComparison `json:"comparison"`
	BangladeshiMatches   []MatchRef         `json:"bangladeshi_matches"`
	InternationalMatches []MatchRef         `json:"international_matches"`
}

// CoverageComparison summarises how each side covered the claim.
// "Not covered" is the literal default when the upstream summary found
// nothing.
type CoverageComparison struct {
	BangladeshiMedia   string `json:"bangladeshi_media"`
	InternationalMedia string `json:"international_media"`
}

// MatchRef points at a corroborating (or contradicting) article found in
// another source tier. At most three are stored per tier per article.
type MatchRef struct {
	Title  string `json:"title"`
	Source string `json:"source"`
	URL    string `json:"url"`
}

// Category returns the stored summary category, or empty when the summary
// snapshot is absent.
func (a *Article) Category() string {
	if a.Summary == nil {
		return ""
	}
	return a.Summary.Category
}

// IngestionRun is an audit row for a single ingestion pass.
type IngestionRun struct {
	ID         string
	Status     string
	Ingested   int
	Skipped    int
	Error      *string
	StartedAt  time.Time
	FinishedAt *time.Time
}
