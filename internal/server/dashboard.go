package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sims-analytics/simsmonitor/internal/analysis"
	"github.com/sims-analytics/simsmonitor/internal/store"
)

// DashboardHandler computes the aggregated monitoring snapshot over the
// full stored corpus on every request.
type DashboardHandler struct {
	Store        *store.Store
	Entities     analysis.EntityExtractor
	TopicKeyword string
}

func (h *DashboardHandler) dashboard(c echo.Context) error {
	ctx := c.Request().Context()

	all, err := h.Store.AllArticles(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	filters := analysis.Filters{
		Category: c.QueryParam("category"),
		Source:   c.QueryParam("source"),
		Start:    c.QueryParam("start"),
		End:      c.QueryParam("end"),
	}
	opts := analysis.Options{
		TopicKeyword: h.TopicKeyword,
		Entities:     h.Entities,
	}

	return c.JSON(http.StatusOK, analysis.BuildSnapshot(ctx, all, filters, opts))
}
