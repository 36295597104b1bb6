package server

import (
	"context"
	"log"
	"time"

	"github.com/gorhill/cronexpr"
	"github.com/redis/go-redis/v9"

	"github.com/sims-analytics/simsmonitor/internal/ingest"
)

const ingestLockKey = "simsmonitor:ingest:lock"

// Scheduler triggers periodic ingestion runs, either on a fixed
// interval or on a cron expression. A redis SetNX lock keeps multiple
// instances from ingesting concurrently.
type Scheduler struct {
	Runner   *ingest.Runner
	Rdb      *redis.Client
	Interval time.Duration
	Cron     string
	Stop     chan struct{}

	logger  *log.Logger
	lastRun time.Time
}

func NewScheduler(runner *ingest.Runner, rdb *redis.Client, interval time.Duration, cron string) *Scheduler {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &Scheduler{
		Runner:   runner,
		Rdb:      rdb,
		Interval: interval,
		Cron:     cron,
		Stop:     make(chan struct{}),
		logger:   log.New(log.Writer(), "[SCHED] ", log.LstdFlags),
	}
}

func (s *Scheduler) Start() {
	// With a cron spec the ticker only polls; isDue decides.
	tick := s.Interval
	if s.Cron != "" {
		tick = time.Minute
	}
	ticker := time.NewTicker(tick)
	go func() {
		for {
			select {
			case <-s.Stop:
				ticker.Stop()
				return
			case <-ticker.C:
				s.tick()
			}
		}
	}()
}

func (s *Scheduler) tick() {
	ctx := context.Background()
	if !s.isDue(time.Now()) {
		return
	}
	if s.Rdb != nil {
		ok, err := s.Rdb.SetNX(ctx, ingestLockKey, "1", 2*time.Minute).Result()
		if err != nil {
			s.logger.Printf("lock: %v", err)
			return
		}
		if !ok {
			return
		}
		defer s.Rdb.Del(ctx, ingestLockKey)
	}

	s.lastRun = time.Now()
	stats, err := s.Runner.RunOnce(ctx)
	if err != nil {
		s.logger.Printf("ingestion run failed: %v", err)
		return
	}
	s.logger.Printf("ingestion run: %d results, %d ingested, %d skipped, %d failed",
		stats.Total, stats.Ingested, stats.Skipped, stats.Failed)
}

// isDue reports whether a run should fire now. Without a cron spec the
// ticker itself paces the runs.
func (s *Scheduler) isDue(now time.Time) bool {
	if s.Cron == "" {
		return true
	}
	expr, err := cronexpr.Parse(s.Cron)
	if err != nil {
		// Invalid spec degrades to the plain interval.
		return s.lastRun.IsZero() || now.Sub(s.lastRun) >= s.Interval
	}
	if s.lastRun.IsZero() {
		return true
	}
	return !expr.Next(s.lastRun).After(now)
}
