package discovery

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

// maxPageBytes caps how much of a page we read for fallback extraction.
const maxPageBytes = 2 << 20

// PageMeta is what fallback extraction recovers from a fetched page when
// the discovery result came back without text or media fields.
type PageMeta struct {
	Text    string
	Image   string
	Favicon string
}

// FetchPage downloads an article page and extracts readable text plus
// image/favicon hints. Best effort: callers treat an error as "nothing
// recovered" and keep going.
func (c *Client) FetchPage(ctx context.Context, pageURL string) (PageMeta, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return PageMeta{}, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return PageMeta{}, fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return PageMeta{}, fmt.Errorf("fetch page: unexpected status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return PageMeta{}, err
	}
	html := string(raw)

	u, err := url.Parse(pageURL)
	if err != nil {
		return PageMeta{}, err
	}

	var meta PageMeta
	if article, err := readability.FromReader(strings.NewReader(html), u); err == nil {
		meta.Text = strings.TrimSpace(article.TextContent)
		meta.Image = article.Image
		meta.Favicon = article.Favicon
	}
	if meta.Image == "" || meta.Favicon == "" {
		fillFromHead(&meta, html, u)
	}
	return meta, nil
}

// fillFromHead pulls og:image and the icon link out of the document head
// for pages readability could not handle.
func fillFromHead(meta *PageMeta, html string, base *url.URL) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return
	}
	if meta.Image == "" {
		if v, ok := doc.Find(`meta[property="og:image"]`).Attr("content"); ok {
			meta.Image = absoluteURL(base, v)
		}
	}
	if meta.Favicon == "" {
		if v, ok := doc.Find(`link[rel="icon"], link[rel="shortcut icon"]`).First().Attr("href"); ok {
			meta.Favicon = absoluteURL(base, v)
		}
	}
}

func absoluteURL(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
