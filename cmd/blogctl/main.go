// Command blogctl provides operator tooling for the blog CMS: schema
// migration, account management and sample content.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"blogcms/internal/cache"
	"blogcms/internal/config"
	"blogcms/internal/database"
	"blogcms/internal/middleware"
	"blogcms/internal/repository"
	"blogcms/internal/service"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// Hooks replaced by tests.
var (
	loadConfig   = config.LoadConfig
	openDB       = database.Connect
	connectRedis = cache.Connect
)

var timeout time.Duration

var rootCmd = &cobra.Command{
	Use:   "blogctl",
	Short: "Operator tooling for the blog CMS",
	Long: `blogctl manages the blog CMS database directly.

Available commands:
  migrate - Create or update the database schema
  admin   - Create, list and update admin accounts
  seed    - Load sample accounts and posts`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", time.Minute, "Operation timeout")

	adminCmd.AddCommand(adminCreateCmd)
	adminCmd.AddCommand(adminListCmd)
	adminCmd.AddCommand(adminResetPasswordCmd)
	adminCmd.AddCommand(adminSetRoleCmd)

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(adminCmd)
	rootCmd.AddCommand(seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// runtime is the database and services a command operates on.
type runtime struct {
	db     *gorm.DB
	cache  *cache.Cache
	cfg    *config.Config
	admins *service.AdminService
	posts  *service.PostService
}

func (r *runtime) Close() {
	_ = r.cache.Close()
	_ = database.Close(r.db)
}

func openRuntime() (*runtime, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	middleware.Logger = middleware.NewLogger(cfg.Env)

	db, err := openDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	// Post writes invalidate the server's post cache when Redis is configured.
	var postCache *cache.Cache
	if cfg.RedisURL != "" {
		client, err := connectRedis(context.Background(), cfg.RedisURL)
		if err != nil {
			middleware.Logger.Warn("redis unavailable, cached post listings may be stale",
				slog.String("error", err.Error()),
			)
		} else {
			postCache = cache.New(client, cache.DefaultTTL)
		}
	}

	return &runtime{
		db:     db,
		cache:  postCache,
		cfg:    cfg,
		admins: service.NewAdminService(repository.NewAdminRepository(db, cfg.DBQueryTimeout)),
		posts:  service.NewPostService(repository.NewPostRepository(db, cfg.DBQueryTimeout), postCache),
	}, nil
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, timeout)
}
