package server

import (
	"time"

	"github.com/sims-analytics/simsmonitor/models"
)

// articleResponse mirrors the stored record for API consumers, matches
// included.
type articleResponse struct {
	ID                   int64             `json:"id"`
	Title                string            `json:"title"`
	URL                  string            `json:"url"`
	PublishedDate        *string           `json:"publishedDate"`
	Author               string            `json:"author"`
	Score                *float64          `json:"score"`
	Text                 string            `json:"text"`
	Summary              *articleSummary   `json:"summary"`
	Image                string            `json:"image"`
	Favicon              string            `json:"favicon"`
	Extras               extrasPayload     `json:"extras"`
	Source               string            `json:"source"`
	Sentiment            string            `json:"sentiment"`
	FactCheck            string            `json:"fact_check"`
	BangladeshiSummary   string            `json:"bangladeshi_summary"`
	InternationalSummary string            `json:"international_summary"`
	BangladeshiMatches   []models.MatchRef `json:"bangladeshi_matches"`
	InternationalMatches []models.MatchRef `json:"international_matches"`
}

type articleSummary struct {
	Source               string                    `json:"source"`
	Sentiment            string                    `json:"sentiment"`
	FactCheck            string                    `json:"fact_check"`
	Category             string                    `json:"category"`
	Comparison           models.CoverageComparison `json:"comparison"`
	BangladeshiMatches   []models.MatchRef         `json:"bangladeshi_matches"`
	InternationalMatches []models.MatchRef         `json:"international_matches"`
}

type extrasPayload struct {
	Links []string `json:"links"`
}

type relatedArticle struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Source    string `json:"source"`
	Category  string `json:"category"`
	Sentiment string `json:"sentiment"`
	URL       string `json:"url"`
}

type articleDetailResponse struct {
	articleResponse
	RelatedArticles []relatedArticle `json:"related_articles"`
}

type articleListResponse struct {
	Total   int               `json:"total"`
	Count   int               `json:"count"`
	Results []articleResponse `json:"results"`
}

func toArticleResponse(a models.Article, bd, intl []models.MatchRef) articleResponse {
	resp := articleResponse{
		ID:                   a.ID,
		Title:                a.Title,
		URL:                  a.URL,
		Author:               a.Author,
		Score:                a.Score,
		Text:                 a.FullText,
		Image:                a.Image,
		Favicon:              a.Favicon,
		Extras:               extrasPayload{Links: a.Links},
		Source:               a.Source,
		Sentiment:            a.Sentiment,
		FactCheck:            a.FactCheck,
		BangladeshiSummary:   a.BDSummary,
		InternationalSummary: a.IntlSummary,
		BangladeshiMatches:   orEmpty(bd),
		InternationalMatches: orEmpty(intl),
	}
	if a.PublishedAt != nil {
		s := a.PublishedAt.Format(time.RFC3339)
		resp.PublishedDate = &s
	}
	if a.Summary != nil {
		resp.Summary = &articleSummary{
			Source:               a.Summary.Source,
			Sentiment:            a.Summary.Sentiment,
			FactCheck:            a.Summary.FactCheck,
			Category:             a.Summary.Category,
			Comparison:           a.Summary.Comparison,
			BangladeshiMatches:   orEmpty(a.Summary.BangladeshiMatches),
			InternationalMatches: orEmpty(a.Summary.InternationalMatches),
		}
	}
	return resp
}

// orEmpty keeps empty match lists serializing as [] instead of null.
func orEmpty(refs []models.MatchRef) []models.MatchRef {
	if refs == nil {
		return []models.MatchRef{}
	}
	return refs
}
