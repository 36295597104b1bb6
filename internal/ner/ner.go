// Package ner wraps the external named-entity extraction service. The
// service is a black box mapping text to (entity text, entity type)
// pairs; only a fixed allow-list of types survives into the dashboard.
package ner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// allowedLabels are the entity types surfaced on the dashboard.
var allowedLabels = map[string]bool{
	"PERSON": true, "ORG": true, "GPE": true, "LOC": true,
	"PRODUCT": true, "EVENT": true, "WORK_OF_ART": true,
	"LAW": true, "LANGUAGE": true,
}

// Client calls the entity extraction service. An empty endpoint disables
// extraction entirely.
type Client struct {
	Endpoint string
	HTTP     *http.Client
}

// NewClient builds a client; timeout defaults to 10s.
func NewClient(endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{Endpoint: endpoint, HTTP: &http.Client{Timeout: timeout}}
}

type entity struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}

// Extract returns allow-listed entity texts for the given text,
// deduplicated in first-seen order so dashboard output stays stable.
// A disabled client returns nothing and no error.
func (c *Client) Extract(ctx context.Context, text string) ([]string, error) {
	if c == nil || c.Endpoint == "" || text == "" {
		return nil, nil
	}
	body, _ := json.Marshal(map[string]string{"text": text})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ner extract: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ner extract: unexpected status %d", resp.StatusCode)
	}

	var out struct {
		Entities []entity `json:"entities"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("ner decode: %w", err)
	}

	seen := make(map[string]bool)
	var texts []string
	for _, e := range out.Entities {
		if !allowedLabels[e.Label] || e.Text == "" || seen[e.Text] {
			continue
		}
		seen[e.Text] = true
		texts = append(texts, e.Text)
	}
	return texts, nil
}
