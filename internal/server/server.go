// Package server contains the HTTP handlers and wiring for the API.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"projecthub/internal/auth"
	"projecthub/internal/bootstrap"
	"projecthub/internal/cache"
	"projecthub/internal/config"
	"projecthub/internal/featureflags"
	"projecthub/internal/middleware"
	"projecthub/internal/observability"
	"projecthub/internal/repository"
	"projecthub/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const serviceName = "projecthub-api"

// Server holds all dependencies and provides handlers
type Server struct {
	config           *config.Config
	db               *gorm.DB
	redis            *redis.Client
	app              *fiber.App
	promMiddleware   *fiberprometheus.FiberPrometheus
	tokens           *auth.Tokens
	featureFlags     *featureflags.Manager
	userRepo         repository.UserRepository
	projectRepo      repository.ProjectRepository
	commitRepo       repository.CommitRepository
	authService      *service.AuthService
	userService      *service.UserService
	projectService   *service.ProjectService
	dashboardService *service.DashboardService
}

// NewServer initializes the database and Redis described by cfg and builds
// a server on top of them. Redis is optional.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	db, redisClient, err := bootstrap.InitRuntime(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	tokens, err := auth.NewTokens(cfg.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("session tokens: %w", err)
	}

	store := cache.NewStore(redisClient, cfg.UserCacheTTL)
	userRepo := repository.NewUserRepository(db, store, cfg.UserCacheTTL)
	projectRepo := repository.NewProjectRepository(db)
	commitRepo := repository.NewCommitRepository(db)
	flags := featureflags.NewManager(cfg.FeatureFlags)

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: observability.HTTPMetrics(serviceName),
		tokens:         tokens,
		featureFlags:   flags,
		userRepo:       userRepo,
		projectRepo:    projectRepo,
		commitRepo:     commitRepo,
	}
	s.authService = service.NewAuthService(userRepo, auth.NewHasher(cfg.BcryptCost), tokens, flags)
	s.userService = service.NewUserService(userRepo)
	s.projectService = service.NewProjectService(projectRepo, userRepo)
	s.dashboardService = service.NewDashboardService(projectRepo, commitRepo)

	return s, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())

	// Tracing first so the trace id is available to the context middleware.
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(s.promMiddleware.Middleware)
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))
}

// SetupRoutes registers every endpoint. Guards are attached per route so
// that public routes never pass through them.
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	guard := middleware.AuthRequired(s.tokens)
	live := middleware.RequireExistingUser(s.userService.Exists)
	optional := middleware.OptionalAuth(s.tokens)

	api := app.Group("/api")

	api.Post("/userSignup", s.Signup)
	api.Get("/usernameCheck", s.UsernameCheck)
	api.Post("/usernameCheck", s.UsernameCheck)
	api.Post("/userSignin", s.Signin)
	api.Post("/userLogout", guard, s.Logout)

	api.Get("/dashboardProfile", guard, live, s.DashboardProfile)
	api.Get("/dashboardProjects", guard, live, s.DashboardProjects)
	api.Get("/dashboardCommits", guard, live, s.DashboardCommits)
	api.Put("/updateProfile", guard, live, s.UpdateProfile)
	api.Put("/updatePassword", guard, live, s.UpdatePassword)
	api.Get("/featureFlags", guard, s.GetFeatureFlags)

	api.Post("/createProject", guard, live, s.CreateProject)
	api.Get("/projectCheck", guard, live, s.ProjectCheck)
	api.Post("/projectCheck", guard, live, s.ProjectCheck)
	api.Get("/project/:owner/:name", optional, s.GetProject)
	api.Get("/project/:name", optional, s.GetProject)
	api.Delete("/project/:name", guard, live, s.DeleteProject)
}

func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck pings the database and, when configured, Redis. Redis being
// absent is not a failure because the cache falls back to process memory.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus != "healthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start builds the Fiber app and listens on the configured port.
func (s *Server) Start() error {
	app := fiber.New(fiber.Config{
		AppName:      "projecthub",
		ErrorHandler: ErrorHandler,
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	middleware.Logger.Info("Server starting", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	middleware.Logger.Info("Server shutdown complete")
	return nil
}
