// Package discovery wraps the external content-discovery API. The API
// returns raw articles plus a per-article AI summary which may be
// missing, a JSON object, or a JSON-encoded string; callers are expected
// to treat every field as fallible.
package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Result is one raw article as returned by the discovery API.
type Result struct {
	Title         string          `json:"title"`
	URL           string          `json:"url"`
	PublishedDate string          `json:"publishedDate"`
	Author        string          `json:"author"`
	Text          string          `json:"text"`
	Image         string          `json:"image"`
	Favicon       string          `json:"favicon"`
	Score         *float64        `json:"score"`
	Extras        map[string]any  `json:"extras"`
	Summary       json.RawMessage `json:"summary"`
}

// summaryQuery instructs the upstream analysis model. The response shape
// it asks for is the schema the normalizer resolves aliases against.
const summaryQuery = `For the news article at {url}, reply with a single JSON object containing: ` +
	`extractSummary (<=3 sentence neutral summary), sourceDomain (publisher domain), ` +
	`newsCategory (Politics|Economy|Crime|Environment|Health|Technology|Diplomacy|Sports|Culture|Other), ` +
	`sentimentTowardBangladesh (Positive|Negative|Neutral), ` +
	`factCheck {status, sources, similarFactChecks}, ` +
	`mediaCoverageSummary {bangladeshiMedia, internationalMedia} ("Not covered" when nothing found), ` +
	`supportingArticleMatches {bangladeshiMatches, internationalMatches} of {title, source, url}.`

// Client talks to the discovery API.
type Client struct {
	Endpoint string
	APIKey   string
	HTTP     *http.Client
}

// NewClient builds a reusable client with a sane timeout.
func NewClient(endpoint, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		Endpoint: endpoint,
		APIKey:   apiKey,
		HTTP:     &http.Client{Timeout: timeout},
	}
}

// Search runs a live discovery query restricted to the given domains and
// returns the raw results, AI summaries included.
func (c *Client) Search(ctx context.Context, query string, domains []string, numResults int) ([]Result, error) {
	if c.APIKey == "" {
		return nil, fmt.Errorf("discovery api key not configured")
	}
	if numResults <= 0 {
		numResults = 100
	}
	payload := map[string]any{
		"query":          query,
		"category":       "news",
		"numResults":     numResults,
		"livecrawl":      "always",
		"text":           true,
		"includeDomains": domains,
		"summary":        map[string]any{"query": summaryQuery},
		"extras":         map[string]any{"links": 1},
	}
	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, strings.NewReader(string(body)))
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-api-key", c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("discovery search: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("discovery search: unexpected status %d", resp.StatusCode)
	}

	var out struct {
		Results []Result `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("discovery decode: %w", err)
	}
	return out.Results, nil
}
