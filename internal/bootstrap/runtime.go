// Package bootstrap wires the runtime dependencies shared by the server and
// the operator CLI.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"blogcms/internal/cache"
	"blogcms/internal/config"
	"blogcms/internal/database"
	"blogcms/internal/middleware"
	"blogcms/internal/service"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// EnsureAdmin creates the bootstrap admin account when configured.
	EnsureAdmin bool
	// SkipRedis leaves the cache disabled.
	SkipRedis bool
}

// InitRuntime connects to the database and, when configured, Redis. Redis
// failures are logged and leave the cache disabled.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	var rdb *redis.Client
	if !opts.SkipRedis && strings.TrimSpace(cfg.RedisURL) != "" {
		rdb, err = cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			middleware.Logger.WarnContext(ctx, "Redis unavailable, continuing without cache", slog.String("error", err.Error()))
			rdb = nil
		} else {
			middleware.Logger.InfoContext(ctx, "Redis connected successfully")
		}
	}

	if opts.EnsureAdmin {
		admins := service.NewAdminService(repositoryAdmins(db, cfg))
		if err := EnsureBootstrapAdmin(ctx, cfg, admins); err != nil {
			return nil, nil, err
		}
	}

	return db, rdb, nil
}

// EnsureBootstrapAdmin creates the configured bootstrap admin if no account
// with that username exists. It does nothing without BOOTSTRAP_ADMIN_PASSWORD.
func EnsureBootstrapAdmin(ctx context.Context, cfg *config.Config, admins *service.AdminService) error {
	if cfg == nil || cfg.BootstrapAdminPassword == "" {
		return nil
	}

	username := strings.TrimSpace(cfg.BootstrapAdminUsername)
	if username == "" {
		username = "admin"
	}

	created, err := admins.EnsureAdmin(ctx, username, cfg.BootstrapAdminPassword)
	if err != nil {
		return fmt.Errorf("failed to bootstrap admin %q: %w", username, err)
	}
	if created {
		middleware.Logger.InfoContext(ctx, "bootstrap admin created", slog.String("username", username))
	}
	return nil
}
