package server

import (
	"context"
	"errors"

	"gatehouse/internal/middleware"
	"gatehouse/internal/models"
	"gatehouse/internal/service"

	"github.com/gofiber/fiber/v2"
)

// PendingUsers handles GET /api/admin/pending: the signup approval queue.
func (s *Server) PendingUsers(c *fiber.Ctx) error {
	pending, err := s.accounts.ListPending(c.Context())
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(fiber.Map{
		"ok":    true,
		"users": pending,
	})
}

// ApproveUser handles POST /api/admin/users/:id/approve.
func (s *Server) ApproveUser(c *fiber.Ctx) error {
	return s.accountAction(c, s.accounts.Approve, models.StatusApproved)
}

// DeclineUser handles POST /api/admin/users/:id/decline. A declined account
// may resubmit its signup, which returns it to pending.
func (s *Server) DeclineUser(c *fiber.Ctx) error {
	return s.accountAction(c, s.accounts.Decline, models.StatusDeclined)
}

func (s *Server) accountAction(c *fiber.Ctx, action func(ctx context.Context, adminID, id uint) error, status string) error {
	id, err := parseID(c)
	if err != nil {
		return nil
	}

	admin := middleware.PrincipalFromLocals(c)
	if actErr := action(c.Context(), admin.UserID, id); actErr != nil {
		if errors.Is(actErr, service.ErrAccountNotFound) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("User", id))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, actErr)
	}
	return c.JSON(fiber.Map{
		"ok":     true,
		"userId": id,
		"status": status,
	})
}

// ListRequests handles GET /api/admin/requests: a bounded, newest-first
// listing of work requests.
func (s *Server) ListRequests(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", service.DefaultRecentLimit)
	requests, err := s.requests.ListRecent(c.Context(), limit)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(fiber.Map{
		"ok":   true,
		"data": requests,
	})
}

// ApproveRequest handles POST /api/admin/requests/:id/approve.
func (s *Server) ApproveRequest(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return nil
	}

	admin := middleware.PrincipalFromLocals(c)
	if actErr := s.requests.Approve(c.Context(), admin.UserID, id); actErr != nil {
		if errors.Is(actErr, service.ErrRequestNotFound) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("Request", id))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, actErr)
	}
	return c.JSON(fiber.Map{"ok": true})
}

// DeclineRequest handles POST /api/admin/requests/:id/decline.
func (s *Server) DeclineRequest(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return nil
	}

	admin := middleware.PrincipalFromLocals(c)
	if actErr := s.requests.Decline(c.Context(), admin.UserID, id); actErr != nil {
		if errors.Is(actErr, service.ErrRequestNotFound) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("Request", id))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, actErr)
	}
	return c.JSON(fiber.Map{"ok": true})
}

// RequestMetrics handles GET /api/admin/metrics/requests: aggregated counts
// by lifecycle status, no raw rows.
func (s *Server) RequestMetrics(c *fiber.Ctx) error {
	counts, err := s.requests.CountsByStatus(c.Context())
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(fiber.Map{
		"ok":     true,
		"counts": counts,
	})
}
