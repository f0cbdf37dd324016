package notification

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/yonasKu/sproutbook-api/internal/domain"
	"github.com/yonasKu/sproutbook-api/internal/infrastructure/sns"
)

type mockLockStore struct{ mock.Mock }

func (m *mockLockStore) Create(ctx context.Context, n *domain.Notification) error {
	return m.Called(ctx, n).Error(0)
}

type mockDeviceStore struct{ mock.Mock }

func (m *mockDeviceStore) ListByUser(ctx context.Context, userID string) ([]domain.Device, error) {
	args := m.Called(ctx, userID)
	if ds, _ := args.Get(0).([]domain.Device); ds != nil {
		return ds, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockDeviceStore) Delete(ctx context.Context, deviceID string) error {
	return m.Called(ctx, deviceID).Error(0)
}

type mockPushSender struct{ mock.Mock }

func (m *mockPushSender) Push(ctx context.Context, devices []domain.Device, title, body string, data map[string]string) []sns.PushResult {
	args := m.Called(ctx, devices, title, body, data)
	if rs, _ := args.Get(0).([]sns.PushResult); rs != nil {
		return rs
	}
	return nil
}

func testRecap() *domain.Recap {
	return &domain.Recap{
		RecapID: "r1",
		UserID:  "u1",
		Period:  domain.PeriodWeekly,
		Title:   "Mia's Week",
		Body:    "What a week.",
	}
}

func TestNotifyRecapReady_SendsOnePush(t *testing.T) {
	ls := &mockLockStore{}
	ds := &mockDeviceStore{}
	ps := &mockPushSender{}

	devices := []domain.Device{{DeviceID: "d1", UserID: "u1", EndpointARN: "arn:d1"}}

	var lock *domain.Notification
	ls.On("Create", mock.Anything, mock.AnythingOfType("*domain.Notification")).
		Run(func(args mock.Arguments) { lock = args.Get(1).(*domain.Notification) }).
		Return(nil)
	ds.On("ListByUser", mock.Anything, "u1").Return(devices, nil)
	ps.On("Push", mock.Anything, devices, "Mia's Week", "What a week.", map[string]string{
		"type":     "recap_ready",
		"recap_id": "r1",
		"period":   "weekly",
	}).Return([]sns.PushResult{{DeviceID: "d1"}})

	NewCoordinator(ls, ds, ps).NotifyRecapReady(context.Background(), "u1", nil, domain.PeriodWeekly, testRecap())

	assert.Equal(t, "recap_ready_weekly_u1_r1", lock.NotificationID)
	assert.Equal(t, 0, lock.Readed)
	ps.AssertNumberOfCalls(t, "Push", 1)
}

func TestNotifyRecapReady_DuplicateLock_SuppressesPush(t *testing.T) {
	ls := &mockLockStore{}
	ds := &mockDeviceStore{}
	ps := &mockPushSender{}
	ls.On("Create", mock.Anything, mock.Anything).Return(domain.ErrAlreadyExists)

	NewCoordinator(ls, ds, ps).NotifyRecapReady(context.Background(), "u1", nil, domain.PeriodWeekly, testRecap())

	ds.AssertNotCalled(t, "ListByUser", mock.Anything, mock.Anything)
	ps.AssertNotCalled(t, "Push", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestNotifyRecapReady_LockCreateError_SkipsPush(t *testing.T) {
	// Without the lock, at-most-once cannot be proven, so no push goes out.
	ls := &mockLockStore{}
	ds := &mockDeviceStore{}
	ps := &mockPushSender{}
	ls.On("Create", mock.Anything, mock.Anything).Return(fmt.Errorf("throttled"))

	NewCoordinator(ls, ds, ps).NotifyRecapReady(context.Background(), "u1", nil, domain.PeriodWeekly, testRecap())

	ps.AssertNotCalled(t, "Push", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestNotifyRecapReady_NoDevices_NoPush(t *testing.T) {
	ls := &mockLockStore{}
	ds := &mockDeviceStore{}
	ps := &mockPushSender{}
	ls.On("Create", mock.Anything, mock.Anything).Return(nil)
	ds.On("ListByUser", mock.Anything, "u1").Return([]domain.Device{}, nil)

	NewCoordinator(ls, ds, ps).NotifyRecapReady(context.Background(), "u1", nil, domain.PeriodWeekly, testRecap())

	ps.AssertNotCalled(t, "Push", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestNotifyRecapReady_StaleDeviceIsDeleted(t *testing.T) {
	ls := &mockLockStore{}
	ds := &mockDeviceStore{}
	ps := &mockPushSender{}

	devices := []domain.Device{
		{DeviceID: "d1", UserID: "u1", EndpointARN: "arn:d1"},
		{DeviceID: "d2", UserID: "u1", EndpointARN: "arn:d2"},
	}
	ls.On("Create", mock.Anything, mock.Anything).Return(nil)
	ds.On("ListByUser", mock.Anything, "u1").Return(devices, nil)
	ps.On("Push", mock.Anything, devices, mock.Anything, mock.Anything, mock.Anything).
		Return([]sns.PushResult{
			{DeviceID: "d1"},
			{DeviceID: "d2", Err: fmt.Errorf("endpoint disabled"), Unregistered: true},
		})
	ds.On("Delete", mock.Anything, "d2").Return(nil)

	NewCoordinator(ls, ds, ps).NotifyRecapReady(context.Background(), "u1", nil, domain.PeriodWeekly, testRecap())

	ds.AssertCalled(t, "Delete", mock.Anything, "d2")
	ds.AssertNotCalled(t, "Delete", mock.Anything, "d1")
}

func TestNotifyRecapReady_LockTimestampsAreUTC(t *testing.T) {
	ls := &mockLockStore{}
	var lock *domain.Notification
	ls.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { lock = args.Get(1).(*domain.Notification) }).
		Return(domain.ErrAlreadyExists)

	c := NewCoordinator(ls, &mockDeviceStore{}, &mockPushSender{})
	c.now = func() time.Time { return time.Date(2026, time.March, 9, 6, 0, 0, 0, time.FixedZone("CET", 3600)) }
	c.NotifyRecapReady(context.Background(), "u1", nil, domain.PeriodWeekly, testRecap())

	assert.Equal(t, time.UTC, lock.CreatedAt.Location())
	assert.Equal(t, "Mia's Week", lock.Title)
}
