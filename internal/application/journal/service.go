package journal

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/yonasKu/sproutbook-api/internal/application/recap"
	"github.com/yonasKu/sproutbook-api/internal/domain"
	"github.com/yonasKu/sproutbook-api/internal/pkg/id"
	"github.com/yonasKu/sproutbook-api/internal/pkg/validate"
)

// reactiveKinds are checked, cheapest window first, after every entry write.
var reactiveKinds = []domain.PeriodKind{
	domain.PeriodDaily,
	domain.PeriodWeekly,
	domain.PeriodMonthly,
	domain.PeriodYearly,
}

type Service interface {
	CreateEntry(ctx context.Context, req domain.CreateEntryRequest) (*domain.JournalEntry, error)
	ListEntries(ctx context.Context, userID string, limit int32) ([]domain.JournalEntry, error)
	AttachMedia(ctx context.Context, userID, entryID, contentType string, body io.Reader) (*domain.JournalEntry, error)
	RemoveMedia(ctx context.Context, userID, entryID, storageKey string) (*domain.JournalEntry, error)
	CreateChild(ctx context.Context, req domain.CreateChildRequest) (*domain.Child, error)
	ListChildren(ctx context.Context, userID string) ([]domain.Child, error)
}

type entryStore interface {
	Put(ctx context.Context, e *domain.JournalEntry) error
	Get(ctx context.Context, entryID string) (*domain.JournalEntry, error)
	ListByUser(ctx context.Context, userID string, limit int32) ([]domain.JournalEntry, error)
	CountWindow(ctx context.Context, userID, childID string, window domain.Window) (int, error)
}

// mediaStore is the object-storage surface the media endpoints use.
type mediaStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

type childStore interface {
	Put(ctx context.Context, c *domain.Child) error
	Get(ctx context.Context, childID string) (*domain.Child, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Child, error)
}

// pairRunner lets the reactive trigger reuse the batch pipeline for a single
// pair without importing the orchestrator.
type pairRunner interface {
	Run(ctx context.Context, userID, childID string, kind domain.PeriodKind, window domain.Window) recap.PairOutcome
}

type service struct {
	entries  entryStore
	children childStore
	media    mediaStore
	pipeline pairRunner
	// triggerTimeout bounds each reactive pipeline run; the entry write has
	// already succeeded by then, so the trigger is strictly best-effort.
	triggerTimeout time.Duration
	now            func() time.Time
}

func NewService(entries entryStore, children childStore, media mediaStore, pipeline pairRunner, triggerTimeout time.Duration) Service {
	return &service{
		entries:        entries,
		children:       children,
		media:          media,
		pipeline:       pipeline,
		triggerTimeout: triggerTimeout,
		now:            time.Now,
	}
}

func (s *service) CreateEntry(ctx context.Context, req domain.CreateEntryRequest) (*domain.JournalEntry, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrValidation)
	}

	now := s.now().UTC()
	entry := &domain.JournalEntry{
		EntryID:      id.New(),
		UserID:       req.UserID,
		ChildIDs:     req.ChildIDs,
		Text:         req.Text,
		Media:        req.Media,
		IsFavorited:  req.IsFavorited,
		IsMilestone:  req.IsMilestone,
		AgeSnapshots: s.ageSnapshots(ctx, req.UserID, req.ChildIDs, now),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.entries.Put(ctx, entry); err != nil {
		return nil, fmt.Errorf("put entry: %w", err)
	}

	go s.reactiveCheck(entry)
	return entry, nil
}

func (s *service) ListEntries(ctx context.Context, userID string, limit int32) ([]domain.JournalEntry, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id required: %w", domain.ErrValidation)
	}
	return s.entries.ListByUser(ctx, userID, limit)
}

// AttachMedia uploads one media object and appends it to the entry. The
// stored item carries only the S3 key; the aggregator presigns keys when it
// builds highlights.
func (s *service) AttachMedia(ctx context.Context, userID, entryID, contentType string, body io.Reader) (*domain.JournalEntry, error) {
	entry, err := s.ownedEntry(ctx, userID, entryID)
	if err != nil {
		return nil, err
	}

	kind := domain.MediaImage
	if strings.HasPrefix(contentType, "video/") {
		kind = domain.MediaVideo
	}
	key := fmt.Sprintf("media/%s/%s/%s", userID, entryID, id.New())
	if _, err := s.media.Upload(ctx, key, body, contentType); err != nil {
		return nil, fmt.Errorf("upload media: %w", err)
	}

	entry.Media = append(entry.Media, domain.MediaItem{Kind: kind, StorageKey: &key})
	entry.UpdatedAt = s.now().UTC()
	if err := s.entries.Put(ctx, entry); err != nil {
		return nil, fmt.Errorf("put entry: %w", err)
	}
	return entry, nil
}

// RemoveMedia deletes the stored object and drops the item from the entry.
func (s *service) RemoveMedia(ctx context.Context, userID, entryID, storageKey string) (*domain.JournalEntry, error) {
	if storageKey == "" {
		return nil, fmt.Errorf("storage key required: %w", domain.ErrValidation)
	}
	entry, err := s.ownedEntry(ctx, userID, entryID)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i, m := range entry.Media {
		if m.StorageKey != nil && *m.StorageKey == storageKey {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("media not found on entry: %w", domain.ErrNotFound)
	}

	if err := s.media.Delete(ctx, storageKey); err != nil {
		return nil, fmt.Errorf("delete media: %w", err)
	}
	entry.Media = append(entry.Media[:idx], entry.Media[idx+1:]...)
	entry.UpdatedAt = s.now().UTC()
	if err := s.entries.Put(ctx, entry); err != nil {
		return nil, fmt.Errorf("put entry: %w", err)
	}
	return entry, nil
}

func (s *service) ownedEntry(ctx context.Context, userID, entryID string) (*domain.JournalEntry, error) {
	entry, err := s.entries.Get(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.UserID != userID {
		return nil, fmt.Errorf("entry belongs to another user: %w", domain.ErrForbidden)
	}
	return entry, nil
}

func (s *service) CreateChild(ctx context.Context, req domain.CreateChildRequest) (*domain.Child, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrValidation)
	}
	birth, err := time.Parse("2006-01-02", req.BirthDate)
	if err != nil {
		return nil, fmt.Errorf("invalid birth_date %q: %w", req.BirthDate, domain.ErrValidation)
	}

	now := s.now().UTC()
	child := &domain.Child{
		ChildID:   id.New(),
		UserID:    req.UserID,
		Name:      req.Name,
		BirthDate: birth,
		Enable:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.children.Put(ctx, child); err != nil {
		return nil, fmt.Errorf("put child: %w", err)
	}
	return child, nil
}

func (s *service) ListChildren(ctx context.Context, userID string) ([]domain.Child, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id required: %w", domain.ErrValidation)
	}
	return s.children.ListByUser(ctx, userID)
}

// ageSnapshots captures each referenced child's age string at entry time.
// Failures leave the snapshot out; the aggregator tolerates missing ones.
func (s *service) ageSnapshots(ctx context.Context, userID string, childIDs []string, now time.Time) map[string]string {
	snaps := make(map[string]string, len(childIDs))
	for _, cid := range childIDs {
		child, err := s.children.Get(ctx, cid)
		if err != nil || child.UserID != userID {
			continue
		}
		snaps[cid] = recap.AgeString(child.BirthDate, now)
	}
	return snaps
}

// reactiveCheck runs after a successful entry write: for each referenced
// child and period kind, if this entry just brought the current window up to
// the kind's minimum entry count, the recap pipeline runs for that pair
// immediately instead of waiting for the next scheduled batch.
func (s *service) reactiveCheck(entry *domain.JournalEntry) {
	ctx, cancel := context.WithTimeout(context.Background(), s.triggerTimeout)
	defer cancel()

	for _, childID := range entry.ChildIDs {
		for _, kind := range reactiveKinds {
			window, err := recap.CurrentWindow(entry.CreatedAt, kind)
			if err != nil {
				continue
			}
			count, err := s.entries.CountWindow(ctx, entry.UserID, childID, window)
			if err != nil {
				slog.Warn("reactive count failed", "user_id", entry.UserID, "child_id", childID, "period", kind, "error", err)
				continue
			}
			// Only the exact crossing fires, so repeated writes past the
			// threshold do not generate repeated recaps.
			if count != kind.MinEntries() {
				continue
			}
			outcome := s.pipeline.Run(ctx, entry.UserID, childID, kind, window)
			slog.Info("reactive recap run",
				"user_id", entry.UserID, "child_id", childID, "period", kind,
				"status", outcome.Status, "recap_id", outcome.RecapID, "error", outcome.Error)
		}
	}
}
