package device

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yonasKu/sproutbook-api/internal/domain"
)

type mockDeviceStore struct{ mock.Mock }

func (m *mockDeviceStore) Put(ctx context.Context, d *domain.Device) error {
	return m.Called(ctx, d).Error(0)
}
func (m *mockDeviceStore) Get(ctx context.Context, deviceID string) (*domain.Device, error) {
	args := m.Called(ctx, deviceID)
	if d, _ := args.Get(0).(*domain.Device); d != nil {
		return d, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockDeviceStore) GetByToken(ctx context.Context, token string) (*domain.Device, error) {
	args := m.Called(ctx, token)
	if d, _ := args.Get(0).(*domain.Device); d != nil {
		return d, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockDeviceStore) ListByUser(ctx context.Context, userID string) ([]domain.Device, error) {
	args := m.Called(ctx, userID)
	if ds, _ := args.Get(0).([]domain.Device); ds != nil {
		return ds, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockDeviceStore) Update(ctx context.Context, deviceID string, updates map[string]interface{}) error {
	return m.Called(ctx, deviceID, updates).Error(0)
}
func (m *mockDeviceStore) Delete(ctx context.Context, deviceID string) error {
	return m.Called(ctx, deviceID).Error(0)
}

type mockEndpointCreator struct{ mock.Mock }

func (m *mockEndpointCreator) CreateEndpoint(ctx context.Context, platform, token string) (string, error) {
	args := m.Called(ctx, platform, token)
	return args.String(0), args.Error(1)
}

func TestRegister_NewToken(t *testing.T) {
	repo := &mockDeviceStore{}
	ep := &mockEndpointCreator{}

	ep.On("CreateEndpoint", mock.Anything, "ios", "tok-1").Return("arn:endpoint/1", nil)
	repo.On("GetByToken", mock.Anything, "tok-1").Return(nil, domain.ErrNotFound)
	repo.On("Put", mock.Anything, mock.AnythingOfType("*domain.Device")).Return(nil)

	d, err := NewService(repo, ep).Register(context.Background(), domain.RegisterDeviceRequest{
		UserID: "u1", Token: "tok-1", Platform: "ios",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, d.DeviceID)
	assert.Equal(t, "arn:endpoint/1", d.EndpointARN)
	assert.True(t, d.Enable)
	repo.AssertExpectations(t)
}

func TestRegister_ExistingToken_RefreshesEndpoint(t *testing.T) {
	repo := &mockDeviceStore{}
	ep := &mockEndpointCreator{}

	ep.On("CreateEndpoint", mock.Anything, "android", "tok-1").Return("arn:endpoint/2", nil)
	repo.On("GetByToken", mock.Anything, "tok-1").Return(&domain.Device{
		DeviceID: "d1", UserID: "u1", Token: "tok-1", EndpointARN: "arn:endpoint/old",
	}, nil)
	repo.On("Update", mock.Anything, "d1", map[string]interface{}{
		"endpoint_arn": "arn:endpoint/2",
		"enable":       true,
	}).Return(nil)

	d, err := NewService(repo, ep).Register(context.Background(), domain.RegisterDeviceRequest{
		UserID: "u1", Token: "tok-1", Platform: "android",
	})
	require.NoError(t, err)

	assert.Equal(t, "d1", d.DeviceID)
	assert.Equal(t, "arn:endpoint/2", d.EndpointARN)
	repo.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestRegister_InvalidPlatform(t *testing.T) {
	_, err := NewService(&mockDeviceStore{}, &mockEndpointCreator{}).Register(context.Background(), domain.RegisterDeviceRequest{
		UserID: "u1", Token: "tok-1", Platform: "windows",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestDelete_OwnershipEnforced(t *testing.T) {
	repo := &mockDeviceStore{}
	repo.On("Get", mock.Anything, "d1").Return(&domain.Device{
		DeviceID: "d1", UserID: "someone-else",
	}, nil)

	err := NewService(repo, &mockEndpointCreator{}).Delete(context.Background(), "d1", "u1")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
