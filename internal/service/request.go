package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gatehouse/internal/cache"
	"gatehouse/internal/models"
	"gatehouse/internal/observability"
	"gatehouse/internal/repository"

	"github.com/redis/go-redis/v9"
)

// ErrRequestNotFound: the admin action targeted a missing request id.
var ErrRequestNotFound = errors.New("request not found")

const (
	// DefaultRecentLimit bounds the admin request listing.
	DefaultRecentLimit = 50

	countsCacheKey = "metrics:request_counts"
	countsCacheTTL = 30 * time.Second
)

// RequestService drives the work request lifecycle. Rows are created
// pending by collaborators; admins move them pending -> completed (approve)
// or pending -> rejected (decline). No transition is defined out of
// in_progress, completed, or rejected.
type RequestService struct {
	requests repository.RequestRepository
	redis    *redis.Client
}

// NewRequestService builds a RequestService. redisClient may be nil, in
// which case counts are always read from the store.
func NewRequestService(requests repository.RequestRepository, redisClient *redis.Client) *RequestService {
	return &RequestService{requests: requests, redis: redisClient}
}

// Approve moves a request to completed. Re-approving an already terminal
// row re-applies the status: last write wins.
func (s *RequestService) Approve(ctx context.Context, adminID, id uint) error {
	return s.setStatus(ctx, adminID, id, models.RequestCompleted, "approve")
}

// Decline moves a request to rejected.
func (s *RequestService) Decline(ctx context.Context, adminID, id uint) error {
	return s.setStatus(ctx, adminID, id, models.RequestRejected, "decline")
}

func (s *RequestService) setStatus(ctx context.Context, adminID, id uint, status, action string) error {
	err := s.requests.UpdateStatus(ctx, id, status)
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == "NOT_FOUND" {
			return ErrRequestNotFound
		}
		return err
	}

	cache.Invalidate(ctx, s.redis, countsCacheKey)
	observability.AdminActions.WithLabelValues("request", action).Inc()
	observability.Logger.Info("admin action",
		slog.Uint64("admin_id", uint64(adminID)),
		slog.String("action", action),
		slog.Uint64("request_id", uint64(id)),
	)
	return nil
}

// ListRecent returns up to limit requests, newest first. A non-positive or
// oversized limit falls back to DefaultRecentLimit.
func (s *RequestService) ListRecent(ctx context.Context, limit int) ([]models.Request, error) {
	if limit <= 0 || limit > DefaultRecentLimit {
		limit = DefaultRecentLimit
	}
	return s.requests.ListRecent(ctx, limit)
}

// CountsByStatus returns the aggregated status counts, served cache-aside
// with a short TTL. The cache is invalidated on every transition, so stale
// reads are bounded to the TTL even under concurrent admin action.
func (s *RequestService) CountsByStatus(ctx context.Context) (*models.StatusCounts, error) {
	counts := &models.StatusCounts{}
	err := cache.Aside(ctx, s.redis, countsCacheKey, counts, countsCacheTTL, func() error {
		fresh, err := s.requests.CountByStatus(ctx)
		if err != nil {
			return err
		}
		*counts = *fresh
		return nil
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}
