package recap

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/yonasKu/sproutbook-api/internal/domain"
	"github.com/yonasKu/sproutbook-api/internal/pkg/id"
)

type recapStore interface {
	Put(ctx context.Context, rec *domain.Recap) error
	PutIfAbsent(ctx context.Context, rec *domain.Recap) error
}

// WriteInput carries everything the writer needs for one recap. ChildID nil
// selects the cross-child snippet path.
type WriteInput struct {
	UserID       string
	ChildID      *string
	Period       domain.PeriodKind
	Window       domain.Window
	Aggregation  *domain.AggregationResult
	Title        string
	Body         string
	ProcessingMS int64
}

// WriteResult is the tri-state outcome of a write: a new record, a skip for
// insufficient data, or an already-present idempotent snippet. Exactly one
// of Recap/Skipped is set; AlreadyExists refines a set Recap.
type WriteResult struct {
	Recap         *domain.Recap
	Skipped       *domain.SkippedResult
	AlreadyExists bool
}

// Writer gates recap generation on the period's minimum entry count and
// persists the record.
//
// The two paths are deliberately asymmetric, mirroring the existing product
// behavior: recurring per-child recaps are append-only with a fresh id per
// call, so re-running a window produces a second record and a second
// notification. Only the cross-child weekly snippet is idempotent.
type Writer struct {
	recaps recapStore
	now    func() time.Time
}

func NewWriter(recaps recapStore) *Writer {
	return &Writer{recaps: recaps, now: time.Now}
}

func (w *Writer) Write(ctx context.Context, in WriteInput) (*WriteResult, error) {
	min := in.Period.MinEntries()
	if in.Aggregation.TotalEntries < min {
		return &WriteResult{Skipped: &domain.SkippedResult{
			Reason:          domain.SkipReasonInsufficientEntries,
			TotalEntries:    in.Aggregation.TotalEntries,
			MinimumRequired: min,
		}}, nil
	}

	rec := w.buildRecord(in)
	if in.ChildID == nil {
		if err := w.recaps.PutIfAbsent(ctx, rec); err != nil {
			if errors.Is(err, domain.ErrAlreadyExists) {
				return &WriteResult{Recap: rec, AlreadyExists: true}, nil
			}
			return nil, fmt.Errorf("write snippet: %w", err)
		}
		return &WriteResult{Recap: rec}, nil
	}

	if err := w.recaps.Put(ctx, rec); err != nil {
		return nil, fmt.Errorf("write recap: %w", err)
	}
	return &WriteResult{Recap: rec}, nil
}

func (w *Writer) buildRecord(in WriteInput) *domain.Recap {
	rec := &domain.Recap{
		UserID:        in.UserID,
		ChildID:       in.ChildID,
		Period:        in.Period,
		WindowStart:   in.Window.Start,
		WindowEnd:     in.Window.End,
		Title:         in.Title,
		Body:          in.Body,
		TotalEntries:  in.Aggregation.TotalEntries,
		MilestoneCnt:  in.Aggregation.Milestones.TotalMilestones,
		ImageCount:    in.Aggregation.Media.ImageCount,
		FavoriteCnt:   in.Aggregation.FavoriteCount,
		HighlightURLs: in.Aggregation.Media.HighlightURLs,
		Status:        domain.RecapStatusCompleted,
		ProcessingMS:  in.ProcessingMS,
		CreatedAt:     w.now().UTC(),
	}
	if in.ChildID == nil {
		rec.RecapID = SnippetID(in.UserID, in.Period, in.Window)
		rec.ChildIDs = contributingChildren(in.Aggregation)
	} else {
		rec.RecapID = id.New()
	}
	return rec
}

// SnippetID derives the content-addressed id of a cross-child snippet.
// Re-running the same window for the same user resolves to the same id.
func SnippetID(userID string, kind domain.PeriodKind, window domain.Window) string {
	raw := fmt.Sprintf("%s|%s|%s|%s",
		userID, kind,
		window.Start.UTC().Format(time.RFC3339),
		window.End.UTC().Format(time.RFC3339))
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func contributingChildren(agg *domain.AggregationResult) []string {
	ids := make([]string, 0, len(agg.EntriesByChild))
	for cid := range agg.EntriesByChild {
		ids = append(ids, cid)
	}
	sort.Strings(ids)
	return ids
}
