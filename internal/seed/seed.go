// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"errors"
	"fmt"
	"log"

	"gatehouse/internal/auth"
	"gatehouse/internal/config"
	"gatehouse/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumPendingUsers int
	ShouldClean     bool
}

// requestMix is the demo workload: a queue dominated by completed work with
// a small pending backlog, so the admin metrics view has something to show.
var requestMix = []struct {
	status string
	count  int
}{
	{models.RequestPending, 5},
	{models.RequestInProgress, 3},
	{models.RequestCompleted, 20},
	{models.RequestRejected, 2},
}

var requestTypes = []string{
	"access", "export", "report", "review", "provisioning",
}

// Seeder owns a database handle for populating demo data.
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a seeder bound to the given database.
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// ClearAll removes all seeded rows. Requests go first to satisfy the user
// foreign key.
func (s *Seeder) ClearAll() error {
	if err := s.db.Exec("DELETE FROM requests").Error; err != nil {
		return fmt.Errorf("clear requests: %w", err)
	}
	if err := s.db.Exec("DELETE FROM users").Error; err != nil {
		return fmt.Errorf("clear users: %w", err)
	}
	return nil
}

// Seed populates the database with demo accounts and a demo request queue.
// It refuses to run against a production deployment.
func (s *Seeder) Seed(cfg *config.Config, opts Options) error {
	if cfg.IsProduction() {
		return errors.New("seeding is disabled in production")
	}

	log.Printf("🌱 Seeding %d pending signups and %d demo requests...",
		opts.NumPendingUsers, totalRequests())

	if opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			log.Println("⚠️  Warning: Could not clear all existing data, but continuing anyway...")
		}
	}

	admin, err := EnsureAdmin(s.db, cfg)
	if err != nil {
		return fmt.Errorf("failed to ensure admin account: %w", err)
	}
	log.Printf("✓ Admin account %q ready", admin.Username)

	approved, err := s.createApprovedUsers(3)
	if err != nil {
		return fmt.Errorf("failed to create approved users: %w", err)
	}
	log.Printf("✓ %d approved users created", len(approved))

	if err := s.createPendingUsers(opts.NumPendingUsers); err != nil {
		return fmt.Errorf("failed to create pending signups: %w", err)
	}
	log.Printf("✓ %d pending signups created", opts.NumPendingUsers)

	owners := append([]models.User{*admin}, approved...)
	created, err := s.createRequests(owners)
	if err != nil {
		return fmt.Errorf("failed to create requests: %w", err)
	}
	log.Printf("✓ %d demo requests created", created)

	return nil
}

// EnsureAdmin creates or repairs the bootstrap admin account. The account is
// always approved with the admin role; the password comes from ADMIN_PASSWORD.
func EnsureAdmin(db *gorm.DB, cfg *config.Config) (*models.User, error) {
	password := cfg.AdminPassword
	if password == "" {
		return nil, errors.New("ADMIN_PASSWORD must be set to bootstrap the admin account")
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}

	var admin models.User
	findErr := db.Where("username = ?", "admin").First(&admin).Error
	switch {
	case errors.Is(findErr, gorm.ErrRecordNotFound):
		admin = models.User{
			Username: "admin",
			Email:    "admin@gatehouse.local",
			Password: hashed,
			Role:     models.RoleAdmin,
			Status:   models.StatusApproved,
		}
		if err := db.Create(&admin).Error; err != nil {
			return nil, err
		}
	case findErr != nil:
		return nil, findErr
	default:
		updates := map[string]any{
			"role":     models.RoleAdmin,
			"status":   models.StatusApproved,
			"password": hashed,
		}
		if err := db.Model(&models.User{}).Where("id = ?", admin.ID).Updates(updates).Error; err != nil {
			return nil, err
		}
		admin.Role = models.RoleAdmin
		admin.Status = models.StatusApproved
	}
	return &admin, nil
}

func (s *Seeder) createApprovedUsers(n int) ([]models.User, error) {
	users := make([]models.User, 0, n)
	for i := 0; i < n; i++ {
		u, err := s.createUser(models.StatusApproved)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, nil
}

func (s *Seeder) createPendingUsers(n int) error {
	for i := 0; i < n; i++ {
		if _, err := s.createUser(models.StatusPending); err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) createUser(status string) (*models.User, error) {
	hashed, err := auth.HashPassword("password123")
	if err != nil {
		return nil, err
	}
	user := models.User{
		Username: fmt.Sprintf("%s%d", gofakeit.Username(), gofakeit.Number(10, 9999)),
		Email:    gofakeit.Email(),
		Password: hashed,
		Role:     models.RoleUser,
		Status:   status,
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Seeder) createRequests(owners []models.User) (int, error) {
	if len(owners) == 0 {
		return 0, errors.New("no request owners available")
	}

	created := 0
	for _, mix := range requestMix {
		for i := 0; i < mix.count; i++ {
			owner := owners[gofakeit.Number(0, len(owners)-1)]
			reqType := requestTypes[gofakeit.Number(0, len(requestTypes)-1)]
			req := models.Request{
				UserID: &owner.ID,
				Status: mix.status,
				Type:   &reqType,
			}
			if err := s.db.Create(&req).Error; err != nil {
				return created, err
			}
			created++
		}
	}
	return created, nil
}

func totalRequests() int {
	n := 0
	for _, mix := range requestMix {
		n += mix.count
	}
	return n
}
