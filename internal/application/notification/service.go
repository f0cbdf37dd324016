package notification

import (
	"context"
	"fmt"

	"github.com/yonasKu/sproutbook-api/internal/domain"
)

type inboxStore interface {
	Get(ctx context.Context, notificationID string) (*domain.Notification, error)
	ListUnread(ctx context.Context, userID string) ([]domain.Notification, error)
	MarkAsRead(ctx context.Context, notificationID string) error
}

// Service is the read side of the notification records the coordinator
// creates: the user-visible inbox.
type Service interface {
	ListUnread(ctx context.Context, userID string) ([]domain.Notification, error)
	Get(ctx context.Context, notificationID, userID string) (*domain.Notification, error)
	MarkAsRead(ctx context.Context, notificationID, userID string) (*domain.Notification, error)
}

type service struct {
	repo inboxStore
}

func NewService(repo inboxStore) Service {
	return &service{repo: repo}
}

func (s *service) ListUnread(ctx context.Context, userID string) ([]domain.Notification, error) {
	return s.repo.ListUnread(ctx, userID)
}

func (s *service) Get(ctx context.Context, notificationID, userID string) (*domain.Notification, error) {
	n, err := s.repo.Get(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	if n.UserID != userID {
		return nil, fmt.Errorf("forbidden: %w", domain.ErrForbidden)
	}
	return n, nil
}

func (s *service) MarkAsRead(ctx context.Context, notificationID, userID string) (*domain.Notification, error) {
	n, err := s.Get(ctx, notificationID, userID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.MarkAsRead(ctx, notificationID); err != nil {
		return nil, err
	}
	n.Readed = 1
	return n, nil
}
