package batch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/yonasKu/sproutbook-api/internal/application/recap"
	"github.com/yonasKu/sproutbook-api/internal/domain"
)

type userStore interface {
	ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.User, string, error)
}

type childStore interface {
	ListByUser(ctx context.Context, userID string) ([]domain.Child, error)
}

// PairRunner is the orchestrator's view of the per-pair pipeline.
type PairRunner interface {
	Run(ctx context.Context, userID, childID string, kind domain.PeriodKind, window domain.Window) recap.PairOutcome
	RunSnippet(ctx context.Context, userID string, window domain.Window) recap.PairOutcome
}

// BatchSummary aggregates pair outcomes for observability. No partial result
// is dropped: every launched pair lands in exactly one counter and in Details.
type BatchSummary struct {
	Period    domain.PeriodKind   `json:"period"`
	Window    domain.Window       `json:"window"`
	Total     int                 `json:"total"`
	Succeeded int                 `json:"succeeded"`
	Skipped   int                 `json:"skipped"`
	Failed    int                 `json:"failed"`
	Details   []recap.PairOutcome `json:"details"`
}

// Orchestrator fans the pipeline out across all (user, child) pairs of a
// scheduled run. Pairs run concurrently through a bounded worker pool, each
// under its own timeout, and the batch always settles every pair: one pair's
// failure never aborts its siblings.
type Orchestrator struct {
	users       userStore
	children    childStore
	pipeline    PairRunner
	pageSize    int32
	poolSize    int
	pairTimeout time.Duration
}

func NewOrchestrator(users userStore, children childStore, pipeline PairRunner, pageSize, poolSize int, pairTimeout time.Duration) *Orchestrator {
	if poolSize < 1 {
		poolSize = 1
	}
	return &Orchestrator{
		users:       users,
		children:    children,
		pipeline:    pipeline,
		pageSize:    int32(pageSize),
		poolSize:    poolSize,
		pairTimeout: pairTimeout,
	}
}

// RunBatch computes the previous window for the period kind once, then runs
// the pipeline for every child of every enabled user. For weekly runs it
// also produces each user's cross-child snippet.
func (o *Orchestrator) RunBatch(ctx context.Context, kind domain.PeriodKind, ref time.Time) (*BatchSummary, error) {
	window, err := recap.PreviousWindow(ref, kind)
	if err != nil {
		return nil, err
	}
	summary := &BatchSummary{Period: kind, Window: window}

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		slots  = make(chan struct{}, o.poolSize)
		launch = func(task func(context.Context) recap.PairOutcome) {
			wg.Add(1)
			go func() {
				defer wg.Done()
				slots <- struct{}{}
				defer func() { <-slots }()

				tctx, cancel := context.WithTimeout(ctx, o.pairTimeout)
				defer cancel()

				outcome := o.settle(tctx, task)
				mu.Lock()
				defer mu.Unlock()
				summary.Details = append(summary.Details, outcome)
				switch outcome.Status {
				case recap.PairSkipped:
					summary.Skipped++
				case recap.PairFailed:
					summary.Failed++
				default:
					summary.Succeeded++
				}
			}()
		}
	)

	cursor := ""
	for {
		users, next, err := o.users.ScanPage(ctx, o.pageSize, cursor)
		if err != nil {
			// Wait for everything already launched before reporting.
			wg.Wait()
			summary.Total = len(summary.Details)
			return summary, fmt.Errorf("scan users: %w", err)
		}
		for _, u := range users {
			userID := u.UserID
			children, cerr := o.children.ListByUser(ctx, userID)
			if cerr != nil {
				slog.Warn("child listing failed, skipping user", "user_id", userID, "error", cerr)
				continue
			}
			for _, c := range children {
				childID := c.ChildID
				launch(func(tctx context.Context) recap.PairOutcome {
					return o.pipeline.Run(tctx, userID, childID, kind, window)
				})
			}
			if kind == domain.PeriodWeekly && len(children) > 0 {
				launch(func(tctx context.Context) recap.PairOutcome {
					return o.pipeline.RunSnippet(tctx, userID, window)
				})
			}
		}
		if next == "" {
			break
		}
		cursor = next
	}

	wg.Wait()
	summary.Total = len(summary.Details)
	slog.Info("batch complete",
		"period", kind,
		"total", summary.Total,
		"succeeded", summary.Succeeded,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
	)
	return summary, nil
}

// settle runs one pair and converts a panic into a failed outcome so a
// single bad pair cannot take the batch down.
func (o *Orchestrator) settle(ctx context.Context, task func(context.Context) recap.PairOutcome) (outcome recap.PairOutcome) {
	defer func() {
		if r := recover(); r != nil {
			outcome.Status = recap.PairFailed
			outcome.Error = fmt.Sprintf("panic: %v", r)
		}
	}()
	return task(ctx)
}
