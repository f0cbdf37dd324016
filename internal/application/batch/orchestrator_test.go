package batch

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yonasKu/sproutbook-api/internal/application/recap"
	"github.com/yonasKu/sproutbook-api/internal/domain"
)

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.User, string, error) {
	args := m.Called(ctx, limit, cursor)
	if us, _ := args.Get(0).([]domain.User); us != nil {
		return us, args.String(1), args.Error(2)
	}
	return nil, args.String(1), args.Error(2)
}

type mockChildStore struct{ mock.Mock }

func (m *mockChildStore) ListByUser(ctx context.Context, userID string) ([]domain.Child, error) {
	args := m.Called(ctx, userID)
	if cs, _ := args.Get(0).([]domain.Child); cs != nil {
		return cs, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockPairRunner struct{ mock.Mock }

func (m *mockPairRunner) Run(ctx context.Context, userID, childID string, kind domain.PeriodKind, window domain.Window) recap.PairOutcome {
	args := m.Called(ctx, userID, childID, kind, window)
	return args.Get(0).(recap.PairOutcome)
}
func (m *mockPairRunner) RunSnippet(ctx context.Context, userID string, window domain.Window) recap.PairOutcome {
	args := m.Called(ctx, userID, window)
	return args.Get(0).(recap.PairOutcome)
}

func outcome(userID, childID string, status recap.PairStatus) recap.PairOutcome {
	return recap.PairOutcome{UserID: userID, ChildID: childID, Period: domain.PeriodMonthly, Status: status}
}

func TestRunBatch_SettlesEveryPair(t *testing.T) {
	us := &mockUserStore{}
	cs := &mockChildStore{}
	pr := &mockPairRunner{}

	us.On("ScanPage", mock.Anything, int32(100), "").
		Return([]domain.User{{UserID: "u1"}}, "", nil)
	cs.On("ListByUser", mock.Anything, "u1").
		Return([]domain.Child{{ChildID: "c1"}, {ChildID: "c2"}, {ChildID: "c3"}}, nil)

	pr.On("Run", mock.Anything, "u1", "c1", domain.PeriodMonthly, mock.Anything).
		Return(outcome("u1", "c1", recap.PairDone))
	pr.On("Run", mock.Anything, "u1", "c2", domain.PeriodMonthly, mock.Anything).
		Return(outcome("u1", "c2", recap.PairFailed))
	pr.On("Run", mock.Anything, "u1", "c3", domain.PeriodMonthly, mock.Anything).
		Return(outcome("u1", "c3", recap.PairSkipped))

	o := NewOrchestrator(us, cs, pr, 100, 2, time.Second)
	summary, err := o.RunBatch(context.Background(), domain.PeriodMonthly, time.Date(2026, time.March, 1, 6, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 1, summary.Failed)
	assert.Len(t, summary.Details, 3)
	assert.Equal(t, time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC), summary.Window.Start)
}

func TestRunBatch_WeeklyAddsSnippetPerUser(t *testing.T) {
	us := &mockUserStore{}
	cs := &mockChildStore{}
	pr := &mockPairRunner{}

	us.On("ScanPage", mock.Anything, int32(100), "").
		Return([]domain.User{{UserID: "u1"}}, "", nil)
	cs.On("ListByUser", mock.Anything, "u1").
		Return([]domain.Child{{ChildID: "c1"}}, nil)
	pr.On("Run", mock.Anything, "u1", "c1", domain.PeriodWeekly, mock.Anything).
		Return(recap.PairOutcome{UserID: "u1", ChildID: "c1", Status: recap.PairDone})
	pr.On("RunSnippet", mock.Anything, "u1", mock.Anything).
		Return(recap.PairOutcome{UserID: "u1", Status: recap.PairDone})

	o := NewOrchestrator(us, cs, pr, 100, 4, time.Second)
	summary, err := o.RunBatch(context.Background(), domain.PeriodWeekly, time.Date(2026, time.March, 9, 6, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 2, summary.Succeeded)
	pr.AssertNumberOfCalls(t, "RunSnippet", 1)
}

func TestRunBatch_NonWeekly_NoSnippet(t *testing.T) {
	us := &mockUserStore{}
	cs := &mockChildStore{}
	pr := &mockPairRunner{}

	us.On("ScanPage", mock.Anything, int32(100), "").
		Return([]domain.User{{UserID: "u1"}}, "", nil)
	cs.On("ListByUser", mock.Anything, "u1").
		Return([]domain.Child{{ChildID: "c1"}}, nil)
	pr.On("Run", mock.Anything, "u1", "c1", domain.PeriodDaily, mock.Anything).
		Return(recap.PairOutcome{UserID: "u1", ChildID: "c1", Status: recap.PairDone})

	o := NewOrchestrator(us, cs, pr, 100, 4, time.Second)
	_, err := o.RunBatch(context.Background(), domain.PeriodDaily, time.Now())
	require.NoError(t, err)

	pr.AssertNotCalled(t, "RunSnippet", mock.Anything, mock.Anything, mock.Anything)
}

func TestRunBatch_PaginatesUsers(t *testing.T) {
	us := &mockUserStore{}
	cs := &mockChildStore{}
	pr := &mockPairRunner{}

	us.On("ScanPage", mock.Anything, int32(1), "").
		Return([]domain.User{{UserID: "u1"}}, "next", nil)
	us.On("ScanPage", mock.Anything, int32(1), "next").
		Return([]domain.User{{UserID: "u2"}}, "", nil)
	cs.On("ListByUser", mock.Anything, mock.Anything).
		Return([]domain.Child{{ChildID: "c1"}}, nil)
	pr.On("Run", mock.Anything, mock.Anything, "c1", domain.PeriodDaily, mock.Anything).
		Return(recap.PairOutcome{Status: recap.PairDone})

	o := NewOrchestrator(us, cs, pr, 1, 2, time.Second)
	summary, err := o.RunBatch(context.Background(), domain.PeriodDaily, time.Now())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Total)
	us.AssertNumberOfCalls(t, "ScanPage", 2)
}

func TestRunBatch_ChildListingFailure_SkipsUserOnly(t *testing.T) {
	us := &mockUserStore{}
	cs := &mockChildStore{}
	pr := &mockPairRunner{}

	us.On("ScanPage", mock.Anything, int32(100), "").
		Return([]domain.User{{UserID: "u1"}, {UserID: "u2"}}, "", nil)
	cs.On("ListByUser", mock.Anything, "u1").Return(nil, fmt.Errorf("throttled"))
	cs.On("ListByUser", mock.Anything, "u2").Return([]domain.Child{{ChildID: "c1"}}, nil)
	pr.On("Run", mock.Anything, "u2", "c1", domain.PeriodDaily, mock.Anything).
		Return(recap.PairOutcome{UserID: "u2", ChildID: "c1", Status: recap.PairDone})

	o := NewOrchestrator(us, cs, pr, 100, 2, time.Second)
	summary, err := o.RunBatch(context.Background(), domain.PeriodDaily, time.Now())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Total)
	pr.AssertNotCalled(t, "Run", mock.Anything, "u1", mock.Anything, mock.Anything, mock.Anything)
}

func TestRunBatch_PanicBecomesFailedOutcome(t *testing.T) {
	us := &mockUserStore{}
	cs := &mockChildStore{}

	us.On("ScanPage", mock.Anything, int32(100), "").
		Return([]domain.User{{UserID: "u1"}}, "", nil)
	cs.On("ListByUser", mock.Anything, "u1").
		Return([]domain.Child{{ChildID: "c1"}}, nil)

	o := NewOrchestrator(us, cs, panickyRunner{}, 100, 2, time.Second)
	summary, err := o.RunBatch(context.Background(), domain.PeriodDaily, time.Now())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Details, 1)
	assert.Equal(t, recap.PairFailed, summary.Details[0].Status)
	assert.Contains(t, summary.Details[0].Error, "panic")
}

func TestRunBatch_ScanError_ReturnsPartialSummary(t *testing.T) {
	us := &mockUserStore{}
	us.On("ScanPage", mock.Anything, int32(100), "").
		Return(nil, "", fmt.Errorf("scan throttled"))

	o := NewOrchestrator(us, &mockChildStore{}, &mockPairRunner{}, 100, 2, time.Second)
	summary, err := o.RunBatch(context.Background(), domain.PeriodDaily, time.Now())

	require.Error(t, err)
	require.NotNil(t, summary)
	assert.Zero(t, summary.Total)
}

type panickyRunner struct{}

func (panickyRunner) Run(ctx context.Context, userID, childID string, kind domain.PeriodKind, window domain.Window) recap.PairOutcome {
	panic("bad pair")
}
func (panickyRunner) RunSnippet(ctx context.Context, userID string, window domain.Window) recap.PairOutcome {
	panic("bad snippet")
}
