package main

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"blogcms/internal/cache"
	"blogcms/internal/config"
	"blogcms/internal/models"
	"blogcms/internal/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// useTempDB points every command at a fresh SQLite file. Each command opens
// and closes its own connection, like separate CLI invocations would.
func useTempDB(t *testing.T, mutate ...func(*config.Config)) string {
	t.Helper()
	service.BcryptCost = bcrypt.MinCost

	dbPath := filepath.Join(t.TempDir(), "blog.db")
	origLoad, origOpen := loadConfig, openDB
	t.Cleanup(func() { loadConfig, openDB = origLoad, origOpen })

	loadConfig = func() (*config.Config, error) {
		cfg := &config.Config{Env: "test", DBQueryTimeout: 5 * time.Second}
		for _, m := range mutate {
			m(cfg)
		}
		return cfg, nil
	}
	openDB = func(*config.Config) (*gorm.DB, error) {
		return gorm.Open(sqlite.Open(dbPath), &gorm.Config{
			Logger:         logger.Default.LogMode(logger.Silent),
			TranslateError: true,
		})
	}
	return dbPath
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	adminPassword, adminRole = "", string(models.RoleAdmin)
	seedFile, seedGenerate, seedAuthor, seedRandom = "", 0, "admin", 1

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestMigrate(t *testing.T) {
	useTempDB(t)

	out, err := runCLI(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "Migrated")
}

func TestAdminCommands(t *testing.T) {
	useTempDB(t)
	_, err := runCLI(t, "migrate")
	require.NoError(t, err)

	out, err := runCLI(t, "admin", "create", "root", "--password", "password123")
	require.NoError(t, err)
	assert.Contains(t, out, `Created admin "root"`)

	out, err = runCLI(t, "admin", "create", "writer", "-p", "password123", "--role", "editor")
	require.NoError(t, err)
	assert.Contains(t, out, `Created editor "writer"`)

	_, err = runCLI(t, "admin", "create", "root", "--password", "password123")
	assert.Error(t, err)

	_, err = runCLI(t, "admin", "create", "someone", "--password", "password123", "--role", "owner")
	assert.Error(t, err)

	out, err = runCLI(t, "admin", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "USERNAME")
	assert.Contains(t, out, "root")
	assert.Contains(t, out, "writer")

	out, err = runCLI(t, "admin", "set-role", "writer", "admin")
	require.NoError(t, err)
	assert.Contains(t, out, `"writer" is now admin`)

	_, err = runCLI(t, "admin", "set-role", "writer", "owner")
	assert.Error(t, err)

	_, err = runCLI(t, "admin", "set-role", "nobody", "admin")
	assert.Error(t, err)

	out, err = runCLI(t, "admin", "reset-password", "root", "--password", "another-password")
	require.NoError(t, err)
	assert.Contains(t, out, `Password reset for "root"`)

	_, err = runCLI(t, "admin", "reset-password", "root", "--password", strings.Repeat("a", 73))
	assert.Error(t, err)

	_, err = runCLI(t, "admin", "reset-password", "root", "--password", "short")
	assert.Error(t, err)
}

func TestAdminListEmpty(t *testing.T) {
	useTempDB(t)
	_, err := runCLI(t, "migrate")
	require.NoError(t, err)

	out, err := runCLI(t, "admin", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No accounts found")
}

func TestSeed(t *testing.T) {
	dbPath := useTempDB(t)
	_, err := runCLI(t, "migrate")
	require.NoError(t, err)

	out, err := runCLI(t, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "Accounts: 1 created, 0 already present")
	assert.Contains(t, out, "Posts: 3 created")

	out, err = runCLI(t, "seed", "--generate", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "Accounts: 0 created, 1 already present")
	assert.Contains(t, out, "Posts: skipped")
	assert.Contains(t, out, `Generated 4 posts by "admin"`)

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	var count int64
	require.NoError(t, db.Model(&models.Post{}).Count(&count).Error)
	assert.Equal(t, int64(7), count)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	_, err = runCLI(t, "seed", "--generate", "1", "--author", "ghost")
	assert.Error(t, err)

	_, err = runCLI(t, "seed", "--file", filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestSeedInvalidatesPostCache(t *testing.T) {
	mr := miniredis.RunT(t)
	useTempDB(t, func(c *config.Config) { c.RedisURL = mr.Addr() })
	_, err := runCLI(t, "migrate")
	require.NoError(t, err)

	require.NoError(t, mr.Set(cache.ActivePostsKey, "[]"))

	_, err = runCLI(t, "seed")
	require.NoError(t, err)
	assert.False(t, mr.Exists(cache.ActivePostsKey))

	gen, err := mr.Get(cache.PostsGenerationKey)
	require.NoError(t, err)
	assert.Equal(t, "3", gen)
}

func TestSeedWithoutRedis(t *testing.T) {
	useTempDB(t, func(c *config.Config) { c.RedisURL = "127.0.0.1:1" })
	origConnect := connectRedis
	t.Cleanup(func() { connectRedis = origConnect })
	connectRedis = func(context.Context, string) (*redis.Client, error) {
		return nil, errors.New("connection refused")
	}

	_, err := runCLI(t, "migrate")
	require.NoError(t, err)
	out, err := runCLI(t, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "Posts: 3 created")
}
