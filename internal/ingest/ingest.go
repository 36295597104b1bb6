package ingest

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/sims-analytics/simsmonitor/internal/discovery"
	"github.com/sims-analytics/simsmonitor/internal/sources"
	"github.com/sims-analytics/simsmonitor/models"
)

// ArticleStore is the slice of persistence the runner needs.
type ArticleStore interface {
	AllArticles(ctx context.Context) ([]models.Article, error)
	UpsertArticle(ctx context.Context, a *models.Article) error
	CreateIngestionRun(ctx context.Context, id string) error
	FinishIngestionRun(ctx context.Context, id, status string, ingested, skipped int, errMsg *string) error
}

// Searcher is the discovery collaborator.
type Searcher interface {
	Search(ctx context.Context, query string, domains []string, numResults int) ([]discovery.Result, error)
	FetchPage(ctx context.Context, pageURL string) (discovery.PageMeta, error)
}

// Stats summarise one ingestion run.
type Stats struct {
	Total    int
	Ingested int
	Skipped  int
	Failed   int
}

// Runner executes ingestion passes: discovery query, per-article
// normalization, upsert. A failed article never fails the run.
type Runner struct {
	Store      ArticleStore
	Disc       Searcher
	Query      string
	NumResults int
	Logger     *log.Logger
}

// NewRunner wires a runner with the standard ingest log prefix.
func NewRunner(st ArticleStore, disc Searcher, query string, numResults int) *Runner {
	return &Runner{
		Store:      st,
		Disc:       disc,
		Query:      query,
		NumResults: numResults,
		Logger:     log.New(log.Writer(), "[INGEST] ", log.LstdFlags),
	}
}

// RunOnce performs a full ingestion pass and records an audit row for it.
// Idempotent: re-running over the same results updates articles in place.
func (r *Runner) RunOnce(ctx context.Context) (Stats, error) {
	started := time.Now()
	runID := uuid.NewString()
	if err := r.Store.CreateIngestionRun(ctx, runID); err != nil {
		return Stats{}, fmt.Errorf("create ingestion run: %w", err)
	}

	stats, runErr := r.ingest(ctx)

	status := "succeeded"
	var errMsg *string
	if runErr != nil {
		status = "failed"
		s := runErr.Error()
		errMsg = &s
	}
	if err := r.Store.FinishIngestionRun(ctx, runID, status, stats.Ingested, stats.Skipped, errMsg); err != nil {
		r.Logger.Printf("finish ingestion run %s: %v", runID, err)
	}
	runsTotal.WithLabelValues(status).Inc()
	runDuration.Observe(time.Since(started).Seconds())
	r.Logger.Printf("run %s %s: %d results, %d ingested, %d skipped, %d failed",
		runID, status, stats.Total, stats.Ingested, stats.Skipped, stats.Failed)
	return stats, runErr
}

func (r *Runner) ingest(ctx context.Context) (Stats, error) {
	var stats Stats

	results, err := r.Disc.Search(ctx, r.Query, sources.AllDomains(), r.NumResults)
	if err != nil {
		return stats, fmt.Errorf("discovery search: %w", err)
	}
	stats.Total = len(results)

	// One consistent snapshot of the store backs all secondary match
	// searches in this pass.
	pool, err := r.Store.AllArticles(ctx)
	if err != nil {
		return stats, fmt.Errorf("load article pool: %w", err)
	}

	for _, item := range results {
		if item.URL == "" || item.Title == "" {
			stats.Skipped++
			articlesSkipped.Inc()
			continue
		}
		if item.Text == "" {
			// Best effort: recover text and media hints from the page
			// itself when discovery sent none.
			if meta, err := r.Disc.FetchPage(ctx, item.URL); err == nil {
				item.Text = meta.Text
				if item.Image == "" {
					item.Image = meta.Image
				}
				if item.Favicon == "" {
					item.Favicon = meta.Favicon
				}
			}
		}

		art, err := Normalize(item, pool)
		if err != nil {
			stats.Skipped++
			articlesSkipped.Inc()
			r.Logger.Printf("skipping %q: %v", item.URL, err)
			continue
		}
		if err := r.Store.UpsertArticle(ctx, &art); err != nil {
			stats.Failed++
			r.Logger.Printf("upsert %q: %v", art.URL, err)
			continue
		}
		stats.Ingested++
		articlesIngested.Inc()
	}
	return stats, nil
}
