package server

import (
	"testing"
	"time"
)

func TestSchedulerIsDueWithoutCron(t *testing.T) {
	s := NewScheduler(nil, nil, 10*time.Minute, "")
	if !s.isDue(time.Now()) {
		t.Fatalf("interval-paced scheduler should always be due on tick")
	}
}

func TestSchedulerIsDueWithCron(t *testing.T) {
	s := NewScheduler(nil, nil, 10*time.Minute, "0 * * * *")
	now := time.Date(2024, 3, 2, 10, 30, 0, 0, time.UTC)

	// Never ran: due immediately.
	if !s.isDue(now) {
		t.Fatalf("expected first run to be due")
	}

	// Ran at 10:05; next cron fire is 11:00, so 10:30 is not due.
	s.lastRun = time.Date(2024, 3, 2, 10, 5, 0, 0, time.UTC)
	if s.isDue(now) {
		t.Fatalf("expected not due before next cron fire")
	}

	// At 11:00 the next fire has arrived.
	if !s.isDue(time.Date(2024, 3, 2, 11, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected due at cron fire time")
	}
}

func TestSchedulerInvalidCronFallsBackToInterval(t *testing.T) {
	s := NewScheduler(nil, nil, 10*time.Minute, "not a cron spec")
	now := time.Now()
	s.lastRun = now.Add(-5 * time.Minute)
	if s.isDue(now) {
		t.Fatalf("expected not due within interval")
	}
	s.lastRun = now.Add(-15 * time.Minute)
	if !s.isDue(now) {
		t.Fatalf("expected due after interval elapsed")
	}
}

func TestSchedulerDefaultInterval(t *testing.T) {
	s := NewScheduler(nil, nil, 0, "")
	if s.Interval != 10*time.Minute {
		t.Fatalf("expected 10m default, got %v", s.Interval)
	}
}
