package notification

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/yonasKu/sproutbook-api/internal/domain"
	"github.com/yonasKu/sproutbook-api/internal/infrastructure/sns"
)

type lockStore interface {
	Create(ctx context.Context, n *domain.Notification) error
}

type deviceStore interface {
	ListByUser(ctx context.Context, userID string) ([]domain.Device, error)
	Delete(ctx context.Context, deviceID string) error
}

// Coordinator dispatches exactly one push per recap. The deterministic
// notification record doubles as a distributed lock: only the run that
// creates it may contact the push gateway. Push failures after the lock is
// acquired are logged but never retract the lock; a missed notification is
// preferred over a duplicate.
type Coordinator struct {
	notifications lockStore
	devices       deviceStore
	push          sns.PushSender
	now           func() time.Time
}

func NewCoordinator(notifications lockStore, devices deviceStore, push sns.PushSender) *Coordinator {
	return &Coordinator{
		notifications: notifications,
		devices:       devices,
		push:          push,
		now:           time.Now,
	}
}

// NotifyRecapReady is best-effort and never returns an error to the caller.
func (c *Coordinator) NotifyRecapReady(ctx context.Context, userID string, childID *string, kind domain.PeriodKind, rec *domain.Recap) {
	now := c.now().UTC()
	lock := &domain.Notification{
		NotificationID: domain.RecapReadyNotificationID(kind, userID, rec.RecapID),
		UserID:         userID,
		ChildID:        childID,
		RecapID:        rec.RecapID,
		Title:          rec.Title,
		Body:           rec.Body,
		Readed:         0,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := c.notifications.Create(ctx, lock); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			slog.Info("notification already sent, suppressing duplicate",
				"notification_id", lock.NotificationID)
			return
		}
		// Unknown create failure: without the lock we cannot prove
		// at-most-once, so skip the push entirely.
		slog.Warn("notification lock create failed, skipping push",
			"notification_id", lock.NotificationID, "error", err)
		return
	}

	if c.push == nil {
		slog.Warn("push gateway not configured, notification recorded without push",
			"notification_id", lock.NotificationID)
		return
	}

	devices, err := c.devices.ListByUser(ctx, userID)
	if err != nil {
		slog.Warn("device lookup failed, notification recorded without push",
			"user_id", userID, "error", err)
		return
	}
	if len(devices) == 0 {
		return
	}

	data := map[string]string{
		"type":     "recap_ready",
		"recap_id": rec.RecapID,
		"period":   string(kind),
	}
	for _, result := range c.push.Push(ctx, devices, rec.Title, rec.Body, data) {
		if result.Err == nil {
			continue
		}
		if result.Unregistered {
			slog.Info("removing stale push registration", "device_id", result.DeviceID)
			if derr := c.devices.Delete(ctx, result.DeviceID); derr != nil {
				slog.Warn("stale device cleanup failed", "device_id", result.DeviceID, "error", derr)
			}
			continue
		}
		slog.Warn("push send failed", "device_id", result.DeviceID, "error", result.Err)
	}
}
