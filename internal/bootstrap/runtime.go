// Package bootstrap wires up runtime dependencies shared by the server and
// auxiliary commands.
package bootstrap

import (
	"fmt"
	"strings"

	"gatehouse/internal/cache"
	"gatehouse/internal/config"
	"gatehouse/internal/database"
	"gatehouse/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	EnsureAdmin bool
}

// InitRuntime connects to DB and Redis and optionally bootstraps the admin
// account. Redis may come back nil when unreachable; callers degrade to
// cache-less operation.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	r := cache.Connect(cfg.RedisURL)

	if opts.EnsureAdmin && shouldBootstrapAdmin(cfg) {
		if _, err := seed.EnsureAdmin(db, cfg); err != nil {
			return nil, nil, fmt.Errorf("failed to bootstrap admin account: %w", err)
		}
	}

	return db, r, nil
}

func shouldBootstrapAdmin(cfg *config.Config) bool {
	if cfg == nil || cfg.IsProduction() {
		return false
	}
	return strings.TrimSpace(cfg.AdminPassword) != ""
}
