package service

import (
	"context"
	"testing"

	"gatehouse/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRequestRepository is a mock of the RequestRepository interface
type MockRequestRepository struct {
	mock.Mock
}

func (m *MockRequestRepository) GetByID(ctx context.Context, id uint) (*models.Request, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Request), args.Error(1)
}

func (m *MockRequestRepository) Create(ctx context.Context, request *models.Request) error {
	args := m.Called(ctx, request)
	return args.Error(0)
}

func (m *MockRequestRepository) UpdateStatus(ctx context.Context, id uint, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockRequestRepository) ListRecent(ctx context.Context, limit int) ([]models.Request, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Request), args.Error(1)
}

func (m *MockRequestRepository) CountByStatus(ctx context.Context) (*models.StatusCounts, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StatusCounts), args.Error(1)
}

func testRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestRequestApproveCompletes(t *testing.T) {
	mockRepo := new(MockRequestRepository)
	svc := NewRequestService(mockRepo, nil)

	mockRepo.On("UpdateStatus", mock.Anything, uint(3), models.RequestCompleted).Return(nil)

	assert.NoError(t, svc.Approve(context.Background(), 1, 3))
	mockRepo.AssertExpectations(t)
}

func TestRequestDeclineRejects(t *testing.T) {
	mockRepo := new(MockRequestRepository)
	svc := NewRequestService(mockRepo, nil)

	mockRepo.On("UpdateStatus", mock.Anything, uint(3), models.RequestRejected).Return(nil)

	assert.NoError(t, svc.Decline(context.Background(), 1, 3))
	mockRepo.AssertExpectations(t)
}

func TestRequestActionMissingRow(t *testing.T) {
	mockRepo := new(MockRequestRepository)
	svc := NewRequestService(mockRepo, nil)

	mockRepo.On("UpdateStatus", mock.Anything, uint(9999), models.RequestCompleted).
		Return(models.NewNotFoundError("Request", 9999))

	err := svc.Approve(context.Background(), 1, 9999)
	assert.ErrorIs(t, err, ErrRequestNotFound)
}

func TestListRecentClampsLimit(t *testing.T) {
	mockRepo := new(MockRequestRepository)
	svc := NewRequestService(mockRepo, nil)

	mockRepo.On("ListRecent", mock.Anything, DefaultRecentLimit).Return([]models.Request{}, nil).Times(3)
	mockRepo.On("ListRecent", mock.Anything, 10).Return([]models.Request{}, nil).Once()

	ctx := context.Background()
	_, err := svc.ListRecent(ctx, 0)
	assert.NoError(t, err)
	_, err = svc.ListRecent(ctx, -1)
	assert.NoError(t, err)
	_, err = svc.ListRecent(ctx, 500)
	assert.NoError(t, err)
	_, err = svc.ListRecent(ctx, 10)
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestCountsByStatusCacheAside(t *testing.T) {
	mockRepo := new(MockRequestRepository)
	svc := NewRequestService(mockRepo, testRedis(t))
	ctx := context.Background()

	mockRepo.On("CountByStatus", mock.Anything).
		Return(&models.StatusCounts{Pending: 5, InProgress: 3, Completed: 20, Rejected: 2}, nil).Once()

	first, err := svc.CountsByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), first.Pending)

	// Second read is served from the cache, not the repository.
	second, err := svc.CountsByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	mockRepo.AssertExpectations(t)
}

func TestCountsByStatusInvalidatedByTransition(t *testing.T) {
	mockRepo := new(MockRequestRepository)
	svc := NewRequestService(mockRepo, testRedis(t))
	ctx := context.Background()

	mockRepo.On("CountByStatus", mock.Anything).
		Return(&models.StatusCounts{Pending: 2}, nil).Once()
	_, err := svc.CountsByStatus(ctx)
	require.NoError(t, err)

	mockRepo.On("UpdateStatus", mock.Anything, uint(1), models.RequestCompleted).Return(nil)
	require.NoError(t, svc.Approve(ctx, 1, 1))

	// Transition dropped the cached counts; the next read hits the store.
	mockRepo.On("CountByStatus", mock.Anything).
		Return(&models.StatusCounts{Pending: 1, Completed: 1}, nil).Once()
	fresh, err := svc.CountsByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), fresh.Pending)
	assert.Equal(t, int64(1), fresh.Completed)
	mockRepo.AssertExpectations(t)
}

func TestCountsByStatusWithoutRedis(t *testing.T) {
	mockRepo := new(MockRequestRepository)
	svc := NewRequestService(mockRepo, nil)

	mockRepo.On("CountByStatus", mock.Anything).
		Return(&models.StatusCounts{Pending: 1}, nil).Times(2)

	ctx := context.Background()
	_, err := svc.CountsByStatus(ctx)
	require.NoError(t, err)
	_, err = svc.CountsByStatus(ctx)
	require.NoError(t, err)
	mockRepo.AssertExpectations(t)
}
