package recap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/yonasKu/sproutbook-api/internal/domain"
	"github.com/yonasKu/sproutbook-api/internal/pkg/validate"
)

// maxImagesPerEntry caps how many images a single entry contributes to the
// highlight photo list.
const maxImagesPerEntry = 3

type entryStore interface {
	QueryWindow(ctx context.Context, userID, childID string, window domain.Window, limit int32) ([]domain.JournalEntry, error)
}

// mediaResolver turns a stored media key into a viewable URL.
type mediaResolver interface {
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// AggregateInput is the validated input of one aggregation call. ChildID
// empty means the aggregation spans all of the user's children (the
// cross-child weekly snippet path).
type AggregateInput struct {
	UserID  string            `validate:"required"`
	ChildID string            `validate:"-"`
	Period  domain.PeriodKind `validate:"required"`
	Window  domain.Window     `validate:"-"`
}

// Aggregator queries the entry store for one (user, child, window) and
// derives the summary statistics the generator and writer consume.
type Aggregator struct {
	entries      entryStore
	media        mediaResolver
	queryTimeout time.Duration
	queryMax     int32
	mediaTTL     time.Duration
}

func NewAggregator(entries entryStore, media mediaResolver, queryTimeout time.Duration, queryMax int32, mediaTTL time.Duration) *Aggregator {
	return &Aggregator{
		entries:      entries,
		media:        media,
		queryTimeout: queryTimeout,
		queryMax:     queryMax,
		mediaTTL:     mediaTTL,
	}
}

// Aggregate returns a valid (possibly empty) result for any well-formed
// input. "No data" is not an error. A store query that exceeds the bounded
// timeout is logged and degrades to the empty result; malformed rows are
// skipped with a warning.
func (a *Aggregator) Aggregate(ctx context.Context, in AggregateInput) (*domain.AggregationResult, error) {
	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrValidation)
	}
	if !in.Period.Valid() {
		return nil, fmt.Errorf("unsupported period kind %q: %w", in.Period, domain.ErrValidation)
	}
	if !in.Window.Start.Before(in.Window.End) {
		return nil, fmt.Errorf("window start must precede end: %w", domain.ErrValidation)
	}

	qctx, cancel := context.WithTimeout(ctx, a.queryTimeout)
	defer cancel()
	rows, err := a.entries.QueryWindow(qctx, in.UserID, in.ChildID, in.Window, a.queryMax)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			slog.Warn("entry query timed out, using empty aggregation",
				"user_id", in.UserID, "child_id", in.ChildID, "period", in.Period,
				"error", fmt.Errorf("%v: %w", err, domain.ErrTimeout))
			return emptyResult(in), nil
		}
		return nil, fmt.Errorf("query entries: %w", err)
	}

	res := emptyResult(in)
	highlightCap := in.Period.HighlightCap()

	for _, row := range rows {
		if !validRow(row) {
			slog.Warn("skipping malformed entry row", "entry_id", row.EntryID, "user_id", in.UserID)
			continue
		}
		res.TotalEntries++
		if row.IsFavorited {
			res.FavoriteCount++
		}
		if row.IsMilestone {
			res.Milestones.TotalMilestones++
			// Rows arrive newest first, so the first five milestones seen
			// are the most recent.
			if len(res.Milestones.Recent) < 5 {
				res.Milestones.Recent = append(res.Milestones.Recent, domain.Milestone{
					Text:      row.Text,
					CreatedAt: row.CreatedAt,
				})
			}
		}
		a.collectMedia(ctx, row, res, highlightCap)
		a.bucketText(in.Period, row, res)
		if in.ChildID == "" {
			for _, cid := range row.ChildIDs {
				res.EntriesByChild[cid]++
			}
		}
	}
	return res, nil
}

func emptyResult(in AggregateInput) *domain.AggregationResult {
	res := &domain.AggregationResult{
		Buckets: map[string]string{},
		Media:   domain.MediaSummary{HighlightURLs: []string{}},
	}
	for _, key := range BucketKeys(in.Period) {
		res.Buckets[key] = ""
	}
	if in.ChildID == "" {
		res.EntriesByChild = map[string]int{}
	}
	return res
}

// validRow checks the fields the pipeline cannot work without.
func validRow(row domain.JournalEntry) bool {
	return row.UserID != "" && len(row.ChildIDs) > 0 && !row.CreatedAt.IsZero()
}

func (a *Aggregator) collectMedia(ctx context.Context, row domain.JournalEntry, res *domain.AggregationResult, highlightCap int) {
	imagesFromEntry := 0
	for _, m := range row.Media {
		switch m.Kind {
		case domain.MediaVideo:
			res.Media.VideoCount++
			continue
		case domain.MediaImage:
			res.Media.ImageCount++
		default:
			continue
		}
		if imagesFromEntry >= maxImagesPerEntry || len(res.Media.HighlightURLs) >= highlightCap {
			continue
		}
		url := m.URL
		if url == "" && m.StorageKey != nil {
			signed, err := a.media.PresignedURL(ctx, *m.StorageKey, a.mediaTTL)
			if err != nil {
				slog.Warn("presign media key failed, skipping highlight", "entry_id", row.EntryID, "key", *m.StorageKey, "error", err)
				continue
			}
			url = signed
		}
		if url == "" {
			continue
		}
		res.Media.HighlightURLs = append(res.Media.HighlightURLs, url)
		imagesFromEntry++
	}
}

func (a *Aggregator) bucketText(kind domain.PeriodKind, row domain.JournalEntry, res *domain.AggregationResult) {
	if row.Text == "" {
		return
	}
	if res.CombinedText != "" {
		res.CombinedText += "\n"
	}
	res.CombinedText += row.Text

	// Daily windows have a single implicit bucket; CombinedText covers it.
	key := BucketKey(kind, row.CreatedAt)
	if key == "" {
		return
	}
	if res.Buckets[key] != "" {
		res.Buckets[key] += "\n"
	}
	res.Buckets[key] += row.Text
}
