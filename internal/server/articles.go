package server

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sims-analytics/simsmonitor/internal/analysis"
	"github.com/sims-analytics/simsmonitor/internal/store"
	"github.com/sims-analytics/simsmonitor/models"
)

// ArticlesHandler serves the stored article listing and detail views.
type ArticlesHandler struct {
	Store *store.Store
}

func (h *ArticlesHandler) Register(g *echo.Group) {
	g.GET("", h.list)
	g.GET("/:id", h.get)
}

func (h *ArticlesHandler) list(c echo.Context) error {
	filter := store.ArticleFilter{
		Source:    c.QueryParam("source"),
		Sentiment: c.QueryParam("sentiment"),
		Search:    c.QueryParam("search"),
		Limit:     intParam(c, "limit", 20),
		Offset:    intParam(c, "offset", 0),
	}
	// Unparsable date bounds are ignored, not rejected.
	if t, _, ok := parseQueryTime(c.QueryParam("start")); ok {
		filter.Start = &t
	}
	if t, dateOnly, ok := parseQueryTime(c.QueryParam("end")); ok {
		if dateOnly {
			t = t.Add(24 * time.Hour)
		}
		filter.End = &t
	}

	arts, total, err := h.Store.ListArticles(c.Request().Context(), filter)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	results := make([]articleResponse, 0, len(arts))
	for _, a := range arts {
		bd, intl, err := h.Store.Matches(c.Request().Context(), a.ID)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		results = append(results, toArticleResponse(a, bd, intl))
	}
	return c.JSON(http.StatusOK, articleListResponse{Total: total, Count: len(results), Results: results})
}

func (h *ArticlesHandler) get(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid article id")
	}
	ctx := c.Request().Context()

	a, err := h.Store.GetArticle(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return echo.NewHTTPError(http.StatusNotFound, "article not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	bd, intl, err := h.Store.Matches(ctx, a.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	all, err := h.Store.AllArticles(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	related := relatedArticles(a, all)

	resp := articleDetailResponse{
		articleResponse: toArticleResponse(a, bd, intl),
		RelatedArticles: related,
	}
	return c.JSON(http.StatusOK, resp)
}

// relatedArticles finds up to five loosely similar articles across all
// tiers, excluding the subject itself.
func relatedArticles(subject models.Article, all []models.Article) []relatedArticle {
	out := []relatedArticle{}
	needle := strings.ToLower(subject.Title)
	for _, a := range all {
		if a.ID == subject.ID {
			continue
		}
		if analysis.Ratio(strings.ToLower(a.Title), needle) < analysis.RelatedThreshold {
			continue
		}
		category := a.Category()
		if category == "" {
			category = "General"
		}
		out = append(out, relatedArticle{
			ID:        a.ID,
			Title:     a.Title,
			Source:    a.Source,
			Category:  category,
			Sentiment: a.Sentiment,
			URL:       a.URL,
		})
		if len(out) >= 5 {
			break
		}
	}
	return out
}

func intParam(c echo.Context, name string, def int) int {
	v := c.QueryParam(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

// parseQueryTime accepts ISO dates and datetimes; the second return
// reports whether the value was date-only.
func parseQueryTime(s string) (time.Time, bool, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false, false
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true, true
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, false, true
		}
	}
	return time.Time{}, false, false
}
