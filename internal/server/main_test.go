package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"blogcms/internal/config"
	"blogcms/internal/database"
	"blogcms/internal/models"
	"blogcms/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "server-test-secret-that-is-long-enough"

func init() {
	service.BcryptCost = bcrypt.MinCost
}

func testConfig() *config.Config {
	return &config.Config{
		Port:           "0",
		Env:            "test",
		JWTSecret:      testSecret,
		JWTTTL:         time.Hour,
		DBQueryTimeout: 5 * time.Second,
		AllowedOrigins: "http://localhost:3000",
	}
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

type testEnv struct {
	server *Server
	app    *fiber.App
	db     *gorm.DB
}

func newTestEnv(t *testing.T, mutate ...func(*config.Config)) *testEnv {
	return newTestEnvWithRedis(t, nil, mutate...)
}

func newTestEnvWithRedis(t *testing.T, rdb *redis.Client, mutate ...func(*config.Config)) *testEnv {
	t.Helper()
	cfg := testConfig()
	for _, m := range mutate {
		m(cfg)
	}
	db := newTestDB(t)
	s, err := NewServerWithDeps(cfg, db, rdb)
	require.NoError(t, err)
	return &testEnv{server: s, app: s.App(), db: db}
}

// account creates an admin account and returns it with a signed token.
func (e *testEnv) account(t *testing.T, username string, role models.Role) (*models.Admin, string) {
	t.Helper()
	admin, err := e.server.adminService.CreateAccount(context.Background(), username, "password123", role)
	require.NoError(t, err)
	token, err := e.server.tokens.IssueToken(admin)
	require.NoError(t, err)
	return admin, token
}

func newJSONRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func (e *testEnv) do(t *testing.T, method, path string, body any, token string) (*http.Response, []byte) {
	t.Helper()
	req := newJSONRequest(t, method, path, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(data, &out), string(data))
	return out
}
