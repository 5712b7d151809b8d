package repository

import (
	"context"
	"errors"
	"testing"

	"gatehouse/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedRequests(t *testing.T, repo RequestRepository, status string, n int) {
	t.Helper()
	ctx := context.Background()
	reqType := "report"
	for i := 0; i < n; i++ {
		require.NoError(t, repo.Create(ctx, &models.Request{
			Status: status,
			Type:   &reqType,
		}))
	}
}

func TestRequestRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRequestRepository(db)
	ctx := context.Background()

	t.Run("Create and GetByID", func(t *testing.T) {
		req := &models.Request{Status: models.RequestPending}
		require.NoError(t, repo.Create(ctx, req))
		assert.NotZero(t, req.ID)

		got, err := repo.GetByID(ctx, req.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, models.RequestPending, got.Status)
	})

	t.Run("GetByID missing returns nil", func(t *testing.T) {
		got, err := repo.GetByID(ctx, 9999)
		assert.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("UpdateStatus last write wins", func(t *testing.T) {
		req := &models.Request{Status: models.RequestPending}
		require.NoError(t, repo.Create(ctx, req))

		require.NoError(t, repo.UpdateStatus(ctx, req.ID, models.RequestCompleted))
		// A second transition over a terminal row still applies.
		require.NoError(t, repo.UpdateStatus(ctx, req.ID, models.RequestRejected))

		got, err := repo.GetByID(ctx, req.ID)
		require.NoError(t, err)
		assert.Equal(t, models.RequestRejected, got.Status)
	})

	t.Run("UpdateStatus missing id", func(t *testing.T) {
		err := repo.UpdateStatus(ctx, 9999, models.RequestCompleted)
		require.Error(t, err)

		var appErr *models.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, "NOT_FOUND", appErr.Code)
	})

	t.Run("ListRecent respects limit", func(t *testing.T) {
		seedRequests(t, repo, models.RequestPending, 5)

		got, err := repo.ListRecent(ctx, 3)
		require.NoError(t, err)
		assert.Len(t, got, 3)
	})
}

func TestRequestRepositoryCountByStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRequestRepository(db)
	ctx := context.Background()

	seedRequests(t, repo, models.RequestPending, 5)
	seedRequests(t, repo, models.RequestInProgress, 3)
	seedRequests(t, repo, models.RequestCompleted, 20)
	seedRequests(t, repo, models.RequestRejected, 2)

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), counts.Pending)
	assert.Equal(t, int64(3), counts.InProgress)
	assert.Equal(t, int64(20), counts.Completed)
	assert.Equal(t, int64(2), counts.Rejected)
}

func TestRequestRepositoryCountByStatusEmpty(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRequestRepository(db)

	counts, err := repo.CountByStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &models.StatusCounts{}, counts)
}
