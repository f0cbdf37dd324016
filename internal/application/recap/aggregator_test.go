package recap

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yonasKu/sproutbook-api/internal/domain"
)

type mockEntryStore struct{ mock.Mock }

func (m *mockEntryStore) QueryWindow(ctx context.Context, userID, childID string, window domain.Window, limit int32) ([]domain.JournalEntry, error) {
	args := m.Called(ctx, userID, childID, window, limit)
	if rows, _ := args.Get(0).([]domain.JournalEntry); rows != nil {
		return rows, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockMediaResolver struct{ mock.Mock }

func (m *mockMediaResolver) PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, key, ttl)
	return args.String(0), args.Error(1)
}

func newAggregator(es *mockEntryStore, mr *mockMediaResolver) *Aggregator {
	return NewAggregator(es, mr, time.Second, 1000, time.Hour)
}

func weeklyWindow(t *testing.T) domain.Window {
	t.Helper()
	w, err := PreviousWindow(date(2026, time.March, 11), domain.PeriodWeekly)
	require.NoError(t, err)
	return w
}

func entry(id string, created time.Time, text string) domain.JournalEntry {
	return domain.JournalEntry{
		EntryID:   id,
		UserID:    "u1",
		ChildIDs:  []string{"c1"},
		Text:      text,
		CreatedAt: created,
	}
}

func TestAggregate_ValidationErrors(t *testing.T) {
	agg := newAggregator(&mockEntryStore{}, &mockMediaResolver{})
	w := weeklyWindow(t)

	_, err := agg.Aggregate(context.Background(), AggregateInput{
		ChildID: "c1", Period: domain.PeriodWeekly, Window: w,
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = agg.Aggregate(context.Background(), AggregateInput{
		UserID: "u1", Period: domain.PeriodKind("hourly"), Window: w,
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = agg.Aggregate(context.Background(), AggregateInput{
		UserID: "u1", Period: domain.PeriodWeekly,
		Window: domain.Window{Start: w.End, End: w.Start},
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAggregate_EmptyWindow(t *testing.T) {
	es := &mockEntryStore{}
	es.On("QueryWindow", mock.Anything, "u1", "c1", mock.Anything, int32(1000)).
		Return([]domain.JournalEntry{}, nil)

	res, err := newAggregator(es, &mockMediaResolver{}).Aggregate(context.Background(), AggregateInput{
		UserID: "u1", ChildID: "c1", Period: domain.PeriodWeekly, Window: weeklyWindow(t),
	})
	require.NoError(t, err)

	assert.Zero(t, res.TotalEntries)
	assert.Empty(t, res.Media.HighlightURLs)
	// Every weekday is present as an empty bucket so prompts stay stable.
	assert.Len(t, res.Buckets, 7)
	for key, text := range res.Buckets {
		assert.Empty(t, text, "bucket %s", key)
	}
}

func TestAggregate_QueryTimeout_DegradesToEmpty(t *testing.T) {
	es := &mockEntryStore{}
	es.On("QueryWindow", mock.Anything, "u1", "c1", mock.Anything, int32(1000)).
		Return(nil, fmt.Errorf("dynamo query: %w", context.DeadlineExceeded))

	res, err := newAggregator(es, &mockMediaResolver{}).Aggregate(context.Background(), AggregateInput{
		UserID: "u1", ChildID: "c1", Period: domain.PeriodWeekly, Window: weeklyWindow(t),
	})
	require.NoError(t, err)
	assert.Zero(t, res.TotalEntries)
}

func TestAggregate_QueryError_Propagates(t *testing.T) {
	es := &mockEntryStore{}
	es.On("QueryWindow", mock.Anything, "u1", "c1", mock.Anything, int32(1000)).
		Return(nil, fmt.Errorf("throttled"))

	_, err := newAggregator(es, &mockMediaResolver{}).Aggregate(context.Background(), AggregateInput{
		UserID: "u1", ChildID: "c1", Period: domain.PeriodWeekly, Window: weeklyWindow(t),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "throttled")
}

func TestAggregate_CountsAndBuckets(t *testing.T) {
	w := weeklyWindow(t)
	mon := w.Start.Add(9 * time.Hour)
	wed := w.Start.AddDate(0, 0, 2).Add(9 * time.Hour)

	e1 := entry("e1", wed, "built a tower")
	e1.IsMilestone = true
	e2 := entry("e2", mon, "first giggle at breakfast")
	e2.IsFavorited = true
	e3 := entry("e3", mon, "long nap")
	malformed := domain.JournalEntry{EntryID: "bad", CreatedAt: mon} // no user, no children

	es := &mockEntryStore{}
	es.On("QueryWindow", mock.Anything, "u1", "c1", mock.Anything, int32(1000)).
		Return([]domain.JournalEntry{e1, e2, e3, malformed}, nil)

	res, err := newAggregator(es, &mockMediaResolver{}).Aggregate(context.Background(), AggregateInput{
		UserID: "u1", ChildID: "c1", Period: domain.PeriodWeekly, Window: w,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, res.TotalEntries)
	assert.Equal(t, 1, res.FavoriteCount)
	assert.Equal(t, 1, res.Milestones.TotalMilestones)
	require.Len(t, res.Milestones.Recent, 1)
	assert.Equal(t, "built a tower", res.Milestones.Recent[0].Text)
	assert.Equal(t, "built a tower", res.Buckets["Wednesday"])
	assert.Equal(t, "first giggle at breakfast\nlong nap", res.Buckets["Monday"])
	assert.Nil(t, res.EntriesByChild) // per-child counts only on the cross-child path
}

func TestAggregate_MilestonesKeepFiveMostRecent(t *testing.T) {
	w := weeklyWindow(t)
	var rows []domain.JournalEntry
	for i := 0; i < 7; i++ {
		// Newest first, matching the store's sort order.
		e := entry(fmt.Sprintf("e%d", i), w.End.Add(-time.Duration(i)*time.Hour), fmt.Sprintf("milestone %d", i))
		e.IsMilestone = true
		rows = append(rows, e)
	}
	es := &mockEntryStore{}
	es.On("QueryWindow", mock.Anything, "u1", "c1", mock.Anything, int32(1000)).Return(rows, nil)

	res, err := newAggregator(es, &mockMediaResolver{}).Aggregate(context.Background(), AggregateInput{
		UserID: "u1", ChildID: "c1", Period: domain.PeriodWeekly, Window: w,
	})
	require.NoError(t, err)

	assert.Equal(t, 7, res.Milestones.TotalMilestones)
	require.Len(t, res.Milestones.Recent, 5)
	assert.Equal(t, "milestone 0", res.Milestones.Recent[0].Text)
	assert.Equal(t, "milestone 4", res.Milestones.Recent[4].Text)
}

func TestAggregate_MediaCapsAndPresigning(t *testing.T) {
	w := weeklyWindow(t)
	key := "media/u1/photo.jpg"

	e1 := entry("e1", w.Start.Add(time.Hour), "beach day")
	for i := 0; i < 5; i++ {
		e1.Media = append(e1.Media, domain.MediaItem{Kind: domain.MediaImage, URL: fmt.Sprintf("https://cdn/e1-%d.jpg", i)})
	}
	e1.Media = append(e1.Media, domain.MediaItem{Kind: domain.MediaVideo, URL: "https://cdn/e1.mp4"})

	e2 := entry("e2", w.Start.Add(2*time.Hour), "park")
	e2.Media = []domain.MediaItem{{Kind: domain.MediaImage, StorageKey: &key}}

	es := &mockEntryStore{}
	es.On("QueryWindow", mock.Anything, "u1", "c1", mock.Anything, int32(1000)).
		Return([]domain.JournalEntry{e1, e2}, nil)
	mr := &mockMediaResolver{}
	mr.On("PresignedURL", mock.Anything, key, time.Hour).Return("https://signed/photo.jpg", nil)

	res, err := newAggregator(es, mr).Aggregate(context.Background(), AggregateInput{
		UserID: "u1", ChildID: "c1", Period: domain.PeriodWeekly, Window: w,
	})
	require.NoError(t, err)

	assert.Equal(t, 6, res.Media.ImageCount)
	assert.Equal(t, 1, res.Media.VideoCount)
	// Three highlights from e1 (per-entry cap) plus the presigned one from e2.
	require.Len(t, res.Media.HighlightURLs, 4)
	assert.Equal(t, "https://signed/photo.jpg", res.Media.HighlightURLs[3])
	mr.AssertExpectations(t)
}

func TestAggregate_PresignFailure_SkipsHighlight(t *testing.T) {
	w := weeklyWindow(t)
	key := "media/u1/gone.jpg"
	e := entry("e1", w.Start.Add(time.Hour), "zoo trip")
	e.Media = []domain.MediaItem{{Kind: domain.MediaImage, StorageKey: &key}}

	es := &mockEntryStore{}
	es.On("QueryWindow", mock.Anything, "u1", "c1", mock.Anything, int32(1000)).
		Return([]domain.JournalEntry{e}, nil)
	mr := &mockMediaResolver{}
	mr.On("PresignedURL", mock.Anything, key, time.Hour).Return("", fmt.Errorf("no such key"))

	res, err := newAggregator(es, mr).Aggregate(context.Background(), AggregateInput{
		UserID: "u1", ChildID: "c1", Period: domain.PeriodWeekly, Window: w,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Media.ImageCount)
	assert.Empty(t, res.Media.HighlightURLs)
}

func TestAggregate_CrossChild_CountsPerChild(t *testing.T) {
	w := weeklyWindow(t)
	e1 := entry("e1", w.Start.Add(time.Hour), "both kids at the pool")
	e1.ChildIDs = []string{"c1", "c2"}
	e2 := entry("e2", w.Start.Add(2*time.Hour), "c1 solo")

	es := &mockEntryStore{}
	es.On("QueryWindow", mock.Anything, "u1", "", mock.Anything, int32(1000)).
		Return([]domain.JournalEntry{e1, e2}, nil)

	res, err := newAggregator(es, &mockMediaResolver{}).Aggregate(context.Background(), AggregateInput{
		UserID: "u1", Period: domain.PeriodWeekly, Window: w,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, res.TotalEntries)
	assert.Equal(t, map[string]int{"c1": 2, "c2": 1}, res.EntriesByChild)
}

func TestAggregate_Daily_UsesCombinedText(t *testing.T) {
	w, err := PreviousWindow(date(2026, time.March, 11), domain.PeriodDaily)
	require.NoError(t, err)

	es := &mockEntryStore{}
	es.On("QueryWindow", mock.Anything, "u1", "c1", mock.Anything, int32(1000)).
		Return([]domain.JournalEntry{
			entry("e1", w.Start.Add(8*time.Hour), "pancakes for breakfast"),
			entry("e2", w.Start.Add(18*time.Hour), "bath time splashes"),
		}, nil)

	res, err := newAggregator(es, &mockMediaResolver{}).Aggregate(context.Background(), AggregateInput{
		UserID: "u1", ChildID: "c1", Period: domain.PeriodDaily, Window: w,
	})
	require.NoError(t, err)

	assert.Empty(t, res.Buckets)
	assert.Equal(t, "pancakes for breakfast\nbath time splashes", res.CombinedText)
}
