package server

import (
	"errors"
	"log/slog"

	"gatehouse/internal/auth"
	"gatehouse/internal/models"
	"gatehouse/internal/observability"
	"gatehouse/internal/service"
	"gatehouse/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// Signup handles POST /api/auth/signup. Accounts are created pending and
// must be approved by an admin before they can log in.
func (s *Server) Signup(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		observability.SignupOutcomes.WithLabelValues(observability.OutcomeBadInput).Inc()
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if req.Username == "" || req.Email == "" || req.Password == "" {
		observability.SignupOutcomes.WithLabelValues(observability.OutcomeBadInput).Inc()
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Missing required fields"))
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		observability.SignupOutcomes.WithLabelValues(observability.OutcomeBadInput).Inc()
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}
	if err := validation.ValidateUsername(req.Username); err != nil {
		observability.SignupOutcomes.WithLabelValues(observability.OutcomeBadInput).Inc()
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}
	if err := validation.ValidateEmail(req.Email); err != nil {
		observability.SignupOutcomes.WithLabelValues(observability.OutcomeBadInput).Inc()
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	if err := s.accounts.SignUp(c.Context(), req.Username, req.Email, req.Password); err != nil {
		switch {
		case errors.Is(err, service.ErrSignupPending):
			observability.SignupOutcomes.WithLabelValues(observability.OutcomeConflict).Inc()
			return models.RespondWithError(c, fiber.StatusConflict,
				models.NewConflictError("Signup pending approval"))
		case errors.Is(err, service.ErrAccountExists):
			observability.SignupOutcomes.WithLabelValues(observability.OutcomeConflict).Inc()
			return models.RespondWithError(c, fiber.StatusConflict,
				models.NewConflictError("User already exists"))
		default:
			observability.SignupOutcomes.WithLabelValues(observability.OutcomeError).Inc()
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
	}

	observability.SignupOutcomes.WithLabelValues(observability.OutcomeSuccess).Inc()
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"ok":      true,
		"status":  models.StatusPending,
		"message": "Signup submitted and awaiting admin approval",
	})
}

// Login handles POST /api/auth/login. On success the session token travels
// only through the HTTP-only cookie, never in the response body.
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		UsernameOrEmail string `json:"usernameOrEmail"`
		Password        string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		observability.LoginOutcomes.WithLabelValues(observability.OutcomeBadInput).Inc()
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if req.UsernameOrEmail == "" || req.Password == "" {
		observability.LoginOutcomes.WithLabelValues(observability.OutcomeBadInput).Inc()
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Missing username or password"))
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		observability.LoginOutcomes.WithLabelValues(observability.OutcomeBadInput).Inc()
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	user, err := s.accounts.Authenticate(c.Context(), req.UsernameOrEmail, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			observability.LoginOutcomes.WithLabelValues(observability.OutcomeBadPassword).Inc()
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid credentials"))
		case errors.Is(err, service.ErrPendingApproval):
			observability.LoginOutcomes.WithLabelValues(observability.OutcomeNotApproved).Inc()
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Signup pending admin approval"))
		case errors.Is(err, service.ErrDeclined):
			observability.LoginOutcomes.WithLabelValues(observability.OutcomeNotApproved).Inc()
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Signup declined, contact admin"))
		case errors.Is(err, service.ErrNotPermitted):
			observability.LoginOutcomes.WithLabelValues(observability.OutcomeNotApproved).Inc()
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Access not permitted"))
		default:
			observability.LoginOutcomes.WithLabelValues(observability.OutcomeError).Inc()
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
	}

	token, err := s.codec.Sign(user)
	if err != nil {
		// Fail closed: a missing signing secret must never degrade into an
		// unauthenticated session.
		if errors.Is(err, auth.ErrMissingSecret) {
			observability.Logger.Error("session signing secret not configured",
				slog.String("endpoint", "login"))
		}
		observability.LoginOutcomes.WithLabelValues(observability.OutcomeError).Inc()
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	s.carrier.Issue(c, token)
	observability.LoginOutcomes.WithLabelValues(observability.OutcomeSuccess).Inc()
	return c.JSON(fiber.Map{
		"ok":   true,
		"role": user.Role,
	})
}

// Logout handles GET/POST /api/auth/logout. Clearing an absent session is
// fine; the endpoint never fails for lack of one.
func (s *Server) Logout(c *fiber.Ctx) error {
	s.carrier.Clear(c)
	return c.JSON(fiber.Map{
		"ok":      true,
		"message": "Logged out successfully",
	})
}
