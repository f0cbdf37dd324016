package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/yonasKu/sproutbook-api/internal/application/batch"
	"github.com/yonasKu/sproutbook-api/internal/domain"
)

// batchRunner is the scheduler's view of the orchestrator.
type batchRunner interface {
	RunBatch(ctx context.Context, kind domain.PeriodKind, ref time.Time) (*batch.BatchSummary, error)
}

// Scheduler fires recap batches once a day at a fixed UTC hour: daily runs
// every day, weekly on Mondays, monthly on the 1st, yearly on January 1st.
// Each run covers the previous window, so a Monday run recaps the week that
// just ended.
type Scheduler struct {
	runner  batchRunner
	hourUTC int
	now     func() time.Time
}

func New(runner batchRunner, hourUTC int) *Scheduler {
	return &Scheduler{runner: runner, hourUTC: hourUTC, now: time.Now}
}

// Start blocks until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	for {
		next := s.nextFire(s.now())
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
		s.fire(ctx, next)
	}
}

// nextFire returns the next daily fire instant at the configured UTC hour.
func (s *Scheduler) nextFire(now time.Time) time.Time {
	now = now.UTC()
	fire := time.Date(now.Year(), now.Month(), now.Day(), s.hourUTC, 0, 0, 0, time.UTC)
	if !fire.After(now) {
		fire = fire.AddDate(0, 0, 1)
	}
	return fire
}

// kindsFor returns the period kinds due on a given day.
func kindsFor(day time.Time) []domain.PeriodKind {
	kinds := []domain.PeriodKind{domain.PeriodDaily}
	if day.Weekday() == time.Monday {
		kinds = append(kinds, domain.PeriodWeekly)
	}
	if day.Day() == 1 {
		kinds = append(kinds, domain.PeriodMonthly)
		if day.Month() == time.January {
			kinds = append(kinds, domain.PeriodYearly)
		}
	}
	return kinds
}

func (s *Scheduler) fire(ctx context.Context, at time.Time) {
	for _, kind := range kindsFor(at) {
		summary, err := s.runner.RunBatch(ctx, kind, at)
		if err != nil {
			slog.Error("scheduled batch failed", "period", kind, "error", err)
			continue
		}
		slog.Info("scheduled batch finished",
			"period", kind,
			"total", summary.Total,
			"succeeded", summary.Succeeded,
			"skipped", summary.Skipped,
			"failed", summary.Failed,
		)
	}
}
