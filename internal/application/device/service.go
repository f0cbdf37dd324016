package device

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yonasKu/sproutbook-api/internal/domain"
	"github.com/yonasKu/sproutbook-api/internal/pkg/id"
	"github.com/yonasKu/sproutbook-api/internal/pkg/validate"
)

type Service interface {
	// Register stores a push token, creating the gateway endpoint for it.
	// Registering an existing token refreshes its endpoint instead of
	// creating a duplicate record.
	Register(ctx context.Context, req domain.RegisterDeviceRequest) (*domain.Device, error)
	List(ctx context.Context, userID string) ([]domain.Device, error)
	Delete(ctx context.Context, deviceID, userID string) error
}

type deviceStore interface {
	Put(ctx context.Context, d *domain.Device) error
	Get(ctx context.Context, deviceID string) (*domain.Device, error)
	GetByToken(ctx context.Context, token string) (*domain.Device, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Device, error)
	Update(ctx context.Context, deviceID string, updates map[string]interface{}) error
	Delete(ctx context.Context, deviceID string) error
}

// endpointCreator registers a device token with the push gateway and returns
// the gateway's endpoint identifier.
type endpointCreator interface {
	CreateEndpoint(ctx context.Context, platform, token string) (string, error)
}

type service struct {
	repo      deviceStore
	endpoints endpointCreator
	now       func() time.Time
}

func NewService(repo deviceStore, endpoints endpointCreator) Service {
	return &service{repo: repo, endpoints: endpoints, now: time.Now}
}

func (s *service) Register(ctx context.Context, req domain.RegisterDeviceRequest) (*domain.Device, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrValidation)
	}

	if s.endpoints == nil {
		return nil, fmt.Errorf("push gateway not configured: %w", domain.ErrBadRequest)
	}
	arn, err := s.endpoints.CreateEndpoint(ctx, req.Platform, req.Token)
	if err != nil {
		return nil, fmt.Errorf("create push endpoint: %w", err)
	}

	existing, err := s.repo.GetByToken(ctx, req.Token)
	if err == nil {
		updates := map[string]interface{}{
			"endpoint_arn": arn,
			"enable":       true,
		}
		if uerr := s.repo.Update(ctx, existing.DeviceID, updates); uerr != nil {
			return nil, uerr
		}
		existing.EndpointARN = arn
		existing.Enable = true
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	now := s.now().UTC()
	d := &domain.Device{
		DeviceID:    id.New(),
		UserID:      req.UserID,
		Token:       req.Token,
		EndpointARN: arn,
		Platform:    req.Platform,
		Enable:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Put(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *service) List(ctx context.Context, userID string) ([]domain.Device, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) Delete(ctx context.Context, deviceID, userID string) error {
	d, err := s.repo.Get(ctx, deviceID)
	if err != nil {
		return err
	}
	if d.UserID != userID {
		return fmt.Errorf("forbidden: %w", domain.ErrForbidden)
	}
	return s.repo.Delete(ctx, deviceID)
}
