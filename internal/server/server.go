package server

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	appconfig "github.com/sims-analytics/simsmonitor/config"
	"github.com/sims-analytics/simsmonitor/internal/discovery"
	"github.com/sims-analytics/simsmonitor/internal/ingest"
	"github.com/sims-analytics/simsmonitor/internal/ner"
	"github.com/sims-analytics/simsmonitor/internal/store"
)

// Run wires the full serving stack: store, discovery and NER clients,
// ingestion scheduler, and the HTTP API.
func Run(cfg *appconfig.Config, addr string) error {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	// Unified HTTP error handler with structured JSON and logging
	baseLogger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		baseLogger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Content-Type"},
	}))

	e.GET("/healthz", func(c echo.Context) error { return c.String(200, "ok") })
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	ctx := context.Background()
	dsn, err := cfg.Databases.Postgres.DSN()
	if err != nil {
		return err
	}
	if err := store.Migrate("file://migrations", dsn, "up", 0); err != nil {
		baseLogger.Printf("migrate: %v", err)
	}
	st, err := store.NewWithDSN(ctx, dsn)
	if err != nil {
		return err
	}

	disc := discovery.NewClient(cfg.Discovery.Endpoint, cfg.Discovery.APIKey, cfg.Discovery.Timeout)
	entities := ner.NewClient(cfg.NER.Endpoint, cfg.NER.Timeout)
	runner := ingest.NewRunner(st, disc, cfg.Discovery.Query, cfg.Discovery.NumResults)

	api := e.Group("/api")

	ah := &ArticlesHandler{Store: st}
	ah.Register(api.Group("/articles"))

	dh := &DashboardHandler{Store: st, Entities: entities, TopicKeyword: cfg.General.TopicKeyword}
	api.GET("/dashboard", dh.dashboard)

	oh := &OpsHandler{Store: st, Runner: runner}
	oh.Register(api)

	// Overlapping ingestion runs race on match-reference rewrites, so the
	// scheduler takes a redis lock per run.
	var rdb *redis.Client
	if cfg.Databases.Redis.Host != "" && cfg.Databases.Redis.Port != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Databases.Redis.Addr(),
			Password: cfg.Databases.Redis.Pass,
			DB:       cfg.Databases.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis connection failed (%s): %w", cfg.Databases.Redis.Addr(), err)
		}
	} else {
		baseLogger.Printf("redis not configured; scheduled ingestion runs without a lock")
	}
	sched := NewScheduler(runner, rdb, cfg.Discovery.Interval, cfg.Discovery.Cron)
	sched.Start()

	if addr == "" {
		addr = cfg.General.Listen
		if addr != "" && addr[0] != ':' {
			addr = ":" + addr
		}
		if addr == "" {
			addr = ":10002"
		}
	}
	log.Printf("listening on %s", addr)
	return e.Start(addr)
}
