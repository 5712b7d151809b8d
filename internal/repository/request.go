package repository

import (
	"context"
	"errors"

	"gatehouse/internal/models"

	"gorm.io/gorm"
)

// RequestRepository defines the interface for work request data operations.
// Rows are inserted pending by collaborators (the seeder, bulk loaders); the
// gateway consumes and mutates them.
type RequestRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Request, error)
	Create(ctx context.Context, request *models.Request) error
	UpdateStatus(ctx context.Context, id uint, status string) error
	ListRecent(ctx context.Context, limit int) ([]models.Request, error)
	CountByStatus(ctx context.Context) (*models.StatusCounts, error)
}

type requestRepository struct {
	db *gorm.DB
}

// NewRequestRepository creates a new request repository
func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

func (r *requestRepository) GetByID(ctx context.Context, id uint) (*models.Request, error) {
	var request models.Request
	if err := r.db.WithContext(ctx).First(&request, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &request, nil
}

func (r *requestRepository) Create(ctx context.Context, request *models.Request) error {
	if err := r.db.WithContext(ctx).Create(request).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// UpdateStatus writes the new status unconditionally: last write wins, per
// the lifecycle's terminal-state policy.
func (r *requestRepository) UpdateStatus(ctx context.Context, id uint, status string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Request{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Request", id)
	}
	return nil
}

func (r *requestRepository) ListRecent(ctx context.Context, limit int) ([]models.Request, error) {
	var requests []models.Request
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&requests).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return requests, nil
}

// CountByStatus aggregates requests with a single grouped query. Every
// status key is present in the result even when its count is zero.
func (r *requestRepository) CountByStatus(ctx context.Context) (*models.StatusCounts, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Request{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	counts := &models.StatusCounts{}
	for _, row := range rows {
		switch row.Status {
		case models.RequestPending:
			counts.Pending = row.Count
		case models.RequestInProgress:
			counts.InProgress = row.Count
		case models.RequestCompleted:
			counts.Completed = row.Count
		case models.RequestRejected:
			counts.Rejected = row.Count
		}
	}
	return counts, nil
}
