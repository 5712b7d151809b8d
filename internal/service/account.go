// Package service implements the gateway's two state machines: the account
// approval lifecycle and the work request lifecycle.
package service

import (
	"context"
	"errors"
	"log/slog"

	"gatehouse/internal/auth"
	"gatehouse/internal/models"
	"gatehouse/internal/observability"
	"gatehouse/internal/repository"
)

// Account state machine outcomes. Handlers translate these to HTTP statuses.
var (
	// ErrSignupPending: an account with this username or email is already
	// awaiting approval.
	ErrSignupPending = errors.New("signup pending approval")
	// ErrAccountExists: an approved account already claims this username or email.
	ErrAccountExists = errors.New("account already exists")
	// ErrInvalidCredentials is the uniform authentication failure: unknown
	// account and wrong password are indistinguishable.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrPendingApproval: credentials are fine but the account has not been
	// approved yet.
	ErrPendingApproval = errors.New("signup pending admin approval")
	// ErrDeclined: the account's signup was declined by an admin.
	ErrDeclined = errors.New("signup declined")
	// ErrNotPermitted covers any other non-approved status.
	ErrNotPermitted = errors.New("access not permitted")
	// ErrAccountNotFound: the admin action targeted a missing account id.
	ErrAccountNotFound = errors.New("account not found")
)

// AccountService drives the account approval lifecycle:
// pending -> {approved, declined}, declined -> pending on resubmission.
type AccountService struct {
	users repository.UserRepository
}

// NewAccountService builds an AccountService over the given repository.
func NewAccountService(users repository.UserRepository) *AccountService {
	return &AccountService{users: users}
}

// SignUp submits a registration. A fresh username/email pair creates a
// pending account with the user role. A declined account may resubmit: its
// hash is replaced and its role forced back to user so a resubmission can
// never smuggle an elevated role. Pending and approved accounts conflict.
func (s *AccountService) SignUp(ctx context.Context, username, email, password string) error {
	existing, err := s.users.FindExisting(ctx, username, email)
	if err != nil {
		return err
	}

	if existing != nil {
		switch existing.Status {
		case models.StatusPending:
			return ErrSignupPending
		case models.StatusApproved:
			return ErrAccountExists
		}

		// Declined: allow resubmission, back to pending with a new hash.
		hash, err := auth.HashPassword(password)
		if err != nil {
			return models.NewInternalError(err)
		}
		existing.Password = hash
		existing.Status = models.StatusPending
		existing.Role = models.RoleUser
		return s.users.Update(ctx, existing)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.NewInternalError(err)
	}
	user := &models.User{
		Username: username,
		Email:    email,
		Password: hash,
		Role:     models.RoleUser,
		Status:   models.StatusPending,
	}
	return s.users.Create(ctx, user)
}

// Authenticate verifies credentials for login. Only approved accounts may
// authenticate; pending and declined accounts get distinct reasons (this is
// not a secret-guessing oracle, unlike token verification), while unknown
// accounts and wrong passwords share one uniform failure.
func (s *AccountService) Authenticate(ctx context.Context, usernameOrEmail, password string) (*models.User, error) {
	user, err := s.users.GetByUsernameOrEmail(ctx, usernameOrEmail)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if user.Status != models.StatusApproved {
		switch user.Status {
		case models.StatusPending:
			return nil, ErrPendingApproval
		case models.StatusDeclined:
			return nil, ErrDeclined
		default:
			return nil, ErrNotPermitted
		}
	}

	if !auth.CheckPassword(password, user.Password) {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// Approve transitions an account to approved. Re-approving an already
// approved account re-applies the same terminal status.
func (s *AccountService) Approve(ctx context.Context, adminID uint, id uint) error {
	return s.setStatus(ctx, adminID, id, models.StatusApproved, "approve")
}

// Decline transitions an account to declined. The account may later
// resubmit a signup, which returns it to pending.
func (s *AccountService) Decline(ctx context.Context, adminID uint, id uint) error {
	return s.setStatus(ctx, adminID, id, models.StatusDeclined, "decline")
}

func (s *AccountService) setStatus(ctx context.Context, adminID, id uint, status, action string) error {
	err := s.users.UpdateStatus(ctx, id, status)
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == "NOT_FOUND" {
			return ErrAccountNotFound
		}
		return err
	}

	observability.AdminActions.WithLabelValues("user", action).Inc()
	observability.Logger.Info("admin action",
		slog.Uint64("admin_id", uint64(adminID)),
		slog.String("action", action),
		slog.Uint64("user_id", uint64(id)),
	)
	return nil
}

// ListPending returns the signup queue as reduced projections.
func (s *AccountService) ListPending(ctx context.Context) ([]models.PendingUser, error) {
	users, err := s.users.ListByStatus(ctx, models.StatusPending)
	if err != nil {
		return nil, err
	}

	pending := make([]models.PendingUser, 0, len(users))
	for _, u := range users {
		pending = append(pending, models.PendingUser{
			ID:        u.ID,
			Username:  u.Username,
			Email:     u.Email,
			CreatedAt: u.CreatedAt,
		})
	}
	return pending, nil
}
