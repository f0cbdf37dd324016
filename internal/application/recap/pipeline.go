package recap

import (
	"context"
	"log/slog"
	"time"

	"github.com/yonasKu/sproutbook-api/internal/domain"
)

// RecapNotifier is the pipeline's view of the notification coordinator.
// Implementations are best-effort and never return an error.
type RecapNotifier interface {
	NotifyRecapReady(ctx context.Context, userID string, childID *string, kind domain.PeriodKind, rec *domain.Recap)
}

// PairStatus is the terminal state of one (user, child) pipeline run.
type PairStatus string

const (
	PairDone    PairStatus = "done"
	PairSkipped PairStatus = "skipped"
	PairFailed  PairStatus = "failed"
)

// PairOutcome captures one pair's result for the batch summary. Error holds
// the failure text so summaries serialize cleanly.
type PairOutcome struct {
	UserID  string                `json:"user_id"`
	ChildID string                `json:"child_id,omitempty"`
	Period  domain.PeriodKind     `json:"period"`
	Status  PairStatus            `json:"status"`
	RecapID string                `json:"recap_id,omitempty"`
	Skipped *domain.SkippedResult `json:"skipped,omitempty"`
	Error   string                `json:"error,omitempty"`
}

// Pipeline runs the full aggregate -> generate -> write -> notify sequence
// for one (user, child, window). Steps are strictly sequential within a
// pair; pairs are independent.
type Pipeline struct {
	aggregator *Aggregator
	resolver   *ContextResolver
	generator  *ContentGenerator
	writer     *Writer
	notifier   RecapNotifier
}

func NewPipeline(aggregator *Aggregator, resolver *ContextResolver, generator *ContentGenerator, writer *Writer, notifier RecapNotifier) *Pipeline {
	return &Pipeline{
		aggregator: aggregator,
		resolver:   resolver,
		generator:  generator,
		writer:     writer,
		notifier:   notifier,
	}
}

// Run executes the recurring per-child path.
func (p *Pipeline) Run(ctx context.Context, userID, childID string, kind domain.PeriodKind, window domain.Window) PairOutcome {
	return p.run(ctx, userID, &childID, kind, window)
}

// RunSnippet executes the cross-child weekly snippet path: the aggregation
// spans all the user's children and the write is idempotent per window.
func (p *Pipeline) RunSnippet(ctx context.Context, userID string, window domain.Window) PairOutcome {
	return p.run(ctx, userID, nil, domain.PeriodWeekly, window)
}

func (p *Pipeline) run(ctx context.Context, userID string, childID *string, kind domain.PeriodKind, window domain.Window) PairOutcome {
	started := time.Now()
	out := PairOutcome{UserID: userID, Period: kind}

	aggIn := AggregateInput{UserID: userID, Period: kind, Window: window}
	if childID != nil {
		out.ChildID = *childID
		aggIn.ChildID = *childID
	}

	agg, err := p.aggregator.Aggregate(ctx, aggIn)
	if err != nil {
		return out.fail(err)
	}
	if childID != nil {
		cctx := p.resolver.Resolve(ctx, userID, *childID)
		agg.ChildName = cctx.Name
		agg.ChildAge = cctx.AgeString
	}

	// Threshold check runs before any generation call so skipped pairs
	// never hit the generation service.
	if agg.TotalEntries < kind.MinEntries() {
		res, werr := p.writer.Write(ctx, WriteInput{
			UserID: userID, ChildID: childID, Period: kind,
			Window: window, Aggregation: agg,
		})
		if werr != nil {
			return out.fail(werr)
		}
		out.Status = PairSkipped
		out.Skipped = res.Skipped
		return out
	}

	body, err := p.generator.GenerateBody(ctx, agg, kind)
	if err != nil {
		return out.fail(err)
	}
	title := p.generator.GenerateTitle(ctx, agg, kind, window)

	res, err := p.writer.Write(ctx, WriteInput{
		UserID:       userID,
		ChildID:      childID,
		Period:       kind,
		Window:       window,
		Aggregation:  agg,
		Title:        title,
		Body:         body,
		ProcessingMS: time.Since(started).Milliseconds(),
	})
	if err != nil {
		return out.fail(err)
	}

	out.Status = PairDone
	out.RecapID = res.Recap.RecapID
	if res.AlreadyExists {
		// Same window already written by an earlier run. The notification
		// lock for it is keyed by the same recap id, so notifying again is
		// harmless, but there is nothing new to announce.
		slog.Info("snippet already exists, skipping notify", "user_id", userID, "recap_id", res.Recap.RecapID)
		return out
	}

	p.notifier.NotifyRecapReady(ctx, userID, childID, kind, res.Recap)
	return out
}

func (o PairOutcome) fail(err error) PairOutcome {
	o.Status = PairFailed
	o.Error = err.Error()
	return o
}
