// Package server contains the HTTP handlers and route wiring for the blog API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"blogcms/internal/bootstrap"
	"blogcms/internal/cache"
	"blogcms/internal/config"
	"blogcms/internal/database"
	"blogcms/internal/featureflags"
	"blogcms/internal/middleware"
	"blogcms/internal/models"
	"blogcms/internal/observability"
	"blogcms/internal/repository"
	"blogcms/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// fiberprometheus registers its collectors on the default registry, so one
// instance is shared by every Server in the process.
var (
	promOnce     sync.Once
	promInstance *fiberprometheus.FiberPrometheus
)

func prometheusMiddleware() *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		promInstance = fiberprometheus.New(observability.ServiceName)
	})
	return promInstance
}

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	cache          *cache.Cache
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	tokens         *middleware.TokenManager
	featureFlags   *featureflags.Manager
	authService    *service.AuthService
	adminService   *service.AdminService
	postService    *service.PostService
	messageService *service.MessageService
	statsService   *service.StatsService
}

// NewServer connects to the database and Redis, ensures the bootstrap admin
// and builds a Server on top of them.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	db, rdb, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{EnsureAdmin: true})
	if err != nil {
		return nil, err
	}
	return NewServerWithDeps(cfg, db, rdb)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil, which disables caching and per-route rate limits.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if db == nil {
		return nil, errors.New("database is required")
	}

	timeout := cfg.DBQueryTimeout
	adminRepo := repository.NewAdminRepository(db, timeout)
	postRepo := repository.NewPostRepository(db, timeout)
	messageRepo := repository.NewMessageRepository(db, timeout)
	statsRepo := repository.NewStatsRepository(db, timeout)

	tokens := middleware.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	flags := featureflags.NewManager(cfg.FeatureFlags)

	postCache := cache.New(redisClient, cache.DefaultTTL)

	models.HideDetails = cfg.IsProduction()

	return &Server{
		config:         cfg,
		db:             db,
		cache:          postCache,
		promMiddleware: prometheusMiddleware(),
		tokens:         tokens,
		featureFlags:   flags,
		authService:    service.NewAuthService(adminRepo, tokens, flags),
		adminService:   service.NewAdminService(adminRepo),
		postService:    service.NewPostService(postRepo, postCache),
		messageService: service.NewMessageService(messageRepo),
		statsService:   service.NewStatsService(statsRepo),
	}, nil
}

// App builds the fiber application with middleware and routes installed.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}

	app := fiber.New(fiber.Config{
		AppName:      "Blog CMS API",
		ErrorHandler: ErrorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Propagate request ID into the request context
	app.Use(middleware.ContextMiddleware())

	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	if s.promMiddleware != nil {
		app.Use(s.promMiddleware.Middleware)
	}

	// Security headers
	app.Use(helmet.New())

	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:3000,http://localhost:3001"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))

	// Global per-IP rate limiting on the API
	if s.config.RateLimitMax > 0 {
		app.Use("/api", limiter.New(limiter.Config{
			Max:        s.config.RateLimitMax,
			Expiration: s.config.RateLimitWindow,
			Next: func(c *fiber.Ctx) bool {
				return c.Method() == fiber.MethodOptions
			},
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
					"error": "Too many requests, please try again later.",
				})
			},
		}))
	}
}

// SetupRoutes configures all routes for the application. Auth and role
// middleware are attached per route so they never leak onto sibling routes.
func (s *Server) SetupRoutes(app *fiber.App) {
	auth := s.tokens.AuthRequired()
	adminOnly := middleware.RoleRequired(models.RoleAdmin)
	limits := s.rateLimitStore()

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.HealthCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")

	// Auth routes
	authRoutes := api.Group("/auth")
	authRoutes.Post("/register", middleware.RateLimit(limits, 5, 10*time.Minute, "register"), s.Register)
	authRoutes.Post("/login", middleware.RateLimitWithPolicy(limits, 10, 5*time.Minute, s.sensitivePolicy(), "login"), s.Login)

	// Posts: specific paths before /:id
	posts := api.Group("/posts")
	posts.Get("/", s.GetPosts)
	posts.Get("/trash/all", auth, s.GetTrashedPosts)
	posts.Post("/", auth, s.CreatePost)
	posts.Put("/:id/view", s.RecordPostView)
	posts.Put("/:id/delete", auth, s.SoftDeletePost)
	posts.Put("/:id/restore", auth, s.RestorePost)
	posts.Get("/:id", s.GetPost)
	posts.Put("/:id", auth, s.UpdatePost)
	posts.Delete("/:id", auth, s.DeletePost)

	// Messages
	messages := api.Group("/messages")
	messages.Post("/", middleware.RateLimit(limits, 5, time.Minute, "message"), s.SubmitMessage)
	messages.Get("/public", s.GetPublicComments)
	messages.Get("/", auth, adminOnly, s.GetMessages)
	messages.Delete("/:id", auth, adminOnly, s.DeleteMessage)

	// Admin accounts
	api.Get("/admins", auth, adminOnly, s.ListAdmins)
	admins := api.Group("/admin")
	admins.Get("/", auth, adminOnly, s.ListAdmins)
	admins.Get("/me", auth, s.GetMe)
	admins.Get("/flags", auth, s.GetFeatureFlags)
	admins.Put("/:id/role", auth, adminOnly, s.ChangeRole)
	admins.Put("/:id/profile", auth, s.UpdateProfile)
	admins.Delete("/:id", auth, adminOnly, s.DeleteAdmin)

	// Stats, optionally admin-only
	if s.featureFlags.On(featureflags.StatsAdminOnly) {
		api.Get("/stats", auth, adminOnly, s.GetStats)
	} else {
		api.Get("/stats", s.GetStats)
	}

	app.Use(func(c *fiber.Ctx) error {
		return models.RespondWithError(c, fiber.StatusNotFound,
			&models.AppError{Code: models.CodeNotFound, Message: "Route not found"})
	})
}

// rateLimitStore returns the Redis client as a redis.Cmdable, or a nil
// interface when Redis is not configured.
func (s *Server) rateLimitStore() redis.Cmdable {
	client := s.cache.Client()
	if client == nil {
		return nil
	}
	return client
}

// sensitivePolicy fails closed when Redis is configured, so a Redis outage
// cannot lift the login limit. Without Redis the global limiter still applies.
func (s *Server) sensitivePolicy() middleware.FailPolicy {
	if s.cache.Enabled() {
		return middleware.FailClosed
	}
	return middleware.FailOpen
}

// HealthCheck reports overall health. It is an alias of ReadinessCheck.
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	return s.ReadinessCheck(c)
}

func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck pings the database and, when configured, Redis.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if err := database.Ping(ctx, s.db); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "unavailable"
	if s.cache.Enabled() {
		redisStatus = "healthy"
		if err := s.cache.Ping(ctx); err != nil {
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

// ErrorHandler writes errors that escape handlers, including recovered
// panics, using the standard error envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return models.RespondWithError(c, fiberErr.Code,
			&models.AppError{Code: codeForStatus(fiberErr.Code), Message: fiberErr.Message})
	}

	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return models.RespondWithAppError(c, err)
	}

	middleware.Logger.ErrorContext(c.UserContext(), "unhandled request error",
		slog.String("method", c.Method()),
		slog.String("path", c.Path()),
		slog.String("error", err.Error()),
	)
	return models.RespondWithAppError(c, models.NewInternalError(err))
}

func codeForStatus(status int) string {
	switch status {
	case fiber.StatusUnauthorized:
		return models.CodeUnauthorized
	case fiber.StatusForbidden:
		return models.CodeForbidden
	case fiber.StatusNotFound:
		return models.CodeNotFound
	}
	if status >= 400 && status < 500 {
		return models.CodeValidation
	}
	return models.CodeInternal
}

// Start listens on the configured port until the app is shut down.
func (s *Server) Start() error {
	app := s.App()
	middleware.Logger.Info("server starting", slog.String("port", s.config.Port))
	if err := app.Listen(":" + s.config.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen on :%s: %w", s.config.Port, err)
	}
	return nil
}

// Shutdown stops accepting requests and closes the database and Redis.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []string

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			errs = append(errs, "http: "+err.Error())
		}
	}

	if err := database.Close(s.db); err != nil {
		errs = append(errs, "database: "+err.Error())
	}

	if err := s.cache.Close(); err != nil {
		errs = append(errs, "redis: "+err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown: %s", strings.Join(errs, "; "))
	}
	middleware.Logger.Info("server shutdown complete")
	return nil
}
