package server

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sims-analytics/simsmonitor/internal/ingest"
	"github.com/sims-analytics/simsmonitor/internal/sources"
	"github.com/sims-analytics/simsmonitor/internal/store"
)

// OpsHandler covers the operational endpoints: health, monitored
// sources, and on-demand ingestion.
type OpsHandler struct {
	Store  *store.Store
	Runner *ingest.Runner
}

func (h *OpsHandler) Register(g *echo.Group) {
	g.GET("/health", h.health)
	g.GET("/sources", h.listSources)
	g.POST("/fetch-latest", h.fetchLatest)
}

func (h *OpsHandler) health(c echo.Context) error {
	status := map[string]any{
		"status":    "healthy",
		"database":  "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if err := h.Store.Ping(c.Request().Context()); err != nil {
		status["status"] = "unhealthy"
		status["database"] = err.Error()
		return c.JSON(http.StatusInternalServerError, status)
	}
	return c.JSON(http.StatusOK, status)
}

func (h *OpsHandler) listSources(c echo.Context) error {
	type sourceEntry struct {
		Domain   string `json:"domain"`
		Name     string `json:"name"`
		Language string `json:"language"`
	}
	out := make([]sourceEntry, 0, len(sources.DomesticOutlets))
	for _, o := range sources.DomesticOutlets {
		out = append(out, sourceEntry{
			Domain:   o.Domain,
			Name:     o.Name,
			Language: sources.LanguageOf(o.Domain),
		})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"count":   len(out),
		"sources": out,
	})
}

// fetchLatest runs one ingestion cycle synchronously and reports what
// it did.
func (h *OpsHandler) fetchLatest(c echo.Context) error {
	stats, err := h.Runner.RunOnce(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]any{
		"status":   "ok",
		"total":    stats.Total,
		"ingested": stats.Ingested,
		"skipped":  stats.Skipped,
		"failed":   stats.Failed,
	})
}
