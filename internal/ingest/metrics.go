package ingest

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	articlesIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "simsmonitor_articles_ingested_total",
		Help: "Articles normalized and upserted across all ingestion runs.",
	})
	articlesSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "simsmonitor_articles_skipped_total",
		Help: "Articles dropped because their summary was missing or undecodable.",
	})
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "simsmonitor_ingestion_runs_total",
		Help: "Ingestion runs by final status.",
	}, []string{"status"})
	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "simsmonitor_ingestion_run_duration_seconds",
		Help:    "Wall-clock duration of a full ingestion run.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10),
	})
)
