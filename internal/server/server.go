// Package server contains the HTTP handlers for the approval gateway API.
package server

import (
	"context"
	"fmt"
	"log"
	"time"

	"gatehouse/internal/auth"
	"gatehouse/internal/cache"
	"gatehouse/internal/config"
	"gatehouse/internal/database"
	"gatehouse/internal/middleware"
	"gatehouse/internal/observability"
	"gatehouse/internal/ratelimit"
	"gatehouse/internal/repository"
	"gatehouse/internal/service"
	"gatehouse/internal/session"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Per-operation throttle policies: at most N attempts per fixed window per
// client identity.
const (
	loginLimitMax  = 3
	signupLimitMax = 5
	limitWindow    = 60 * time.Second
)

// Server holds all dependencies and provides handlers
type Server struct {
	config      *config.Config
	db          *gorm.DB
	redis       *redis.Client
	prom        *fiberprometheus.FiberPrometheus
	carrier     *session.Carrier
	gate        *middleware.Gate
	loginLimit  *ratelimit.Limiter
	signupLimit *ratelimit.Limiter
	codec       *auth.TokenCodec
	userRepo    repository.UserRepository
	requestRepo repository.RequestRepository
	accounts    *service.AccountService
	requests    *service.RequestService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	redisClient := cache.Connect(cfg.RedisURL)

	return NewServerWithDeps(cfg, db, redisClient), nil
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	codec := auth.NewTokenCodec(cfg.JWTSecret)
	carrier := session.NewCarrier(cfg.CookieName, cfg.IsProduction())

	userRepo := repository.NewUserRepository(db)
	requestRepo := repository.NewRequestRepository(db)

	return &Server{
		config:      cfg,
		db:          db,
		redis:       redisClient,
		prom:        observability.HTTPMetrics("gatehouse-api"),
		carrier:     carrier,
		gate:        middleware.NewGate(codec, carrier),
		loginLimit:  ratelimit.New(loginLimitMax, limitWindow),
		signupLimit: ratelimit.New(signupLimitMax, limitWindow),
		codec:       codec,
		userRepo:    userRepo,
		requestRepo: requestRepo,
		accounts:    service.NewAccountService(userRepo),
		requests:    service.NewRequestService(requestRepo, redisClient),
	}
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Prometheus HTTP metrics
	if s.prom != nil {
		s.prom.RegisterAt(app, "/metrics")
		app.Use(s.prom.Middleware)
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid)
	app.Use(middleware.StructuredLogger())

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowCredentials: true,
		MaxAge:           86400,
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	api.Get("/health", s.HealthCheck)

	// Public auth routes; signup and login sit behind their own throttles.
	authRoutes := api.Group("/auth")
	authRoutes.Post("/signup", ratelimit.Handler("signup", s.signupLimit), s.Signup)
	authRoutes.Post("/login", ratelimit.Handler("login", s.loginLimit), s.Login)
	authRoutes.Get("/logout", s.Logout)
	authRoutes.Post("/logout", s.Logout)

	// Admin routes pass the authorization gate before touching either
	// state machine.
	admin := api.Group("/admin", s.gate.RequireAdmin)
	admin.Get("/pending", s.PendingUsers)
	admin.Post("/users/:id/approve", s.ApproveUser)
	admin.Post("/users/:id/decline", s.DeclineUser)
	admin.Get("/requests", s.ListRequests)
	admin.Post("/requests/:id/approve", s.ApproveRequest)
	admin.Post("/requests/:id/decline", s.DeclineRequest)
	admin.Get("/metrics/requests", s.RequestMetrics)
}

// HealthCheck handles health check requests
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overall := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"message": "Gatehouse",
		"status":  overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Shutdown gracefully releases server resources.
func (s *Server) Shutdown(ctx context.Context) error {
	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
