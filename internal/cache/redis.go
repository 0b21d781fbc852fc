// Package cache provides Redis caching utilities for the application.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"blogcms/internal/middleware"
	"blogcms/internal/observability"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL bounds how stale a cached read can be if an invalidation is lost.
const DefaultTTL = 5 * time.Minute

type metricsHook struct{}

func (h metricsHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (h metricsHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		if err != nil && !errors.Is(err, redis.Nil) {
			observability.RedisErrors.WithLabelValues(cmd.Name()).Inc()
		}
		return err
	}
}

func (h metricsHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		if err != nil && !errors.Is(err, redis.Nil) {
			observability.RedisErrors.WithLabelValues("pipeline").Inc()
		}
		return err
	}
}

// Connect builds a Redis client from addr (a redis:// URL or host:port) and
// verifies it with a PING.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	var opts *redis.Options
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: addr}
	}

	client := redis.NewClient(opts)
	client.AddHook(metricsHook{})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// Cache is a JSON cache over Redis. A nil *Cache, or one without a client, is
// a valid disabled cache: reads always miss and writes are dropped.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New returns a Cache backed by client. A nil client disables caching.
func New(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{client: client, ttl: ttl}
}

// Enabled reports whether reads and writes reach Redis.
func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil
}

// Client returns the underlying Redis client, or nil when disabled.
func (c *Cache) Client() *redis.Client {
	if c == nil {
		return nil
	}
	return c.client
}

// Ping checks Redis connectivity. A disabled cache is always healthy.
func (c *Cache) Ping(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

// GetJSON decodes the value at key into dest and reports whether it was found.
func (c *Cache) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if !c.Enabled() {
		return false, nil
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return true, nil
}

// SetJSON stores v at key for the cache TTL.
func (c *Cache) SetJSON(ctx context.Context, key string, v any) error {
	if !c.Enabled() {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return c.client.Set(ctx, key, raw, c.ttl).Err()
}

// Invalidate advances the generation counter at genKey and removes keys in
// one transaction. Aside calls that read the old generation will not write
// their result back. An empty genKey only removes keys.
func (c *Cache) Invalidate(ctx context.Context, genKey string, keys ...string) error {
	if !c.Enabled() || (genKey == "" && len(keys) == 0) {
		return nil
	}
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if genKey != "" {
			pipe.Incr(ctx, genKey)
		}
		if len(keys) > 0 {
			pipe.Del(ctx, keys...)
		}
		return nil
	})
	return err
}

// generation returns the counter at genKey, "0" when it was never bumped.
func (c *Cache) generation(ctx context.Context, genKey string) (string, error) {
	if !c.Enabled() || genKey == "" {
		return "", nil
	}
	gen, err := c.client.Get(ctx, genKey).Result()
	if errors.Is(err, redis.Nil) {
		return "0", nil
	}
	return gen, err
}

// setIfGeneration writes ARGV[2] to KEYS[2] with a PX of ARGV[3] only while
// the counter at KEYS[1] still equals ARGV[1].
var setIfGeneration = redis.NewScript(`
if (redis.call('GET', KEYS[1]) or '0') ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
return 1
`)

// setJSONAt stores v at key unless genKey has moved on from gen. It reports
// whether the value was written.
func (c *Cache) setJSONAt(ctx context.Context, genKey, gen, key string, v any) (bool, error) {
	if !c.Enabled() {
		return false, nil
	}
	if genKey == "" {
		return true, c.SetJSON(ctx, key, v)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return false, fmt.Errorf("encode %s: %w", key, err)
	}
	stored, err := setIfGeneration.Run(ctx, c.client, []string{genKey, key}, gen, raw, c.ttl.Milliseconds()).Int()
	if err != nil {
		return false, err
	}
	return stored == 1, nil
}

// Close releases the Redis connection.
func (c *Cache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}

// Aside returns the cached value at key or loads it with fetch and caches the
// result. The generation at genKey is read before fetch; if Invalidate bumps
// it while fetch runs, the result is returned but not cached. Cache failures
// are logged and fall through to fetch; fetch errors are returned unchanged
// and never cached.
func Aside[T any](ctx context.Context, c *Cache, genKey, key string, fetch func(context.Context) (T, error)) (T, error) {
	var cached T
	writable := true
	gen, err := c.generation(ctx, genKey)
	found := false
	if err == nil {
		found, err = c.GetJSON(ctx, key, &cached)
	}
	switch {
	case err != nil:
		writable = false
		observability.CacheLookups.WithLabelValues("error").Inc()
		middleware.Logger.WarnContext(ctx, "cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	case found:
		observability.CacheLookups.WithLabelValues("hit").Inc()
		return cached, nil
	case c.Enabled():
		observability.CacheLookups.WithLabelValues("miss").Inc()
	}

	value, err := fetch(ctx)
	if err != nil || !writable {
		return value, err
	}

	stored, err := c.setJSONAt(ctx, genKey, gen, key, value)
	switch {
	case err != nil:
		middleware.Logger.WarnContext(ctx, "cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	case !stored && c.Enabled():
		observability.CacheLookups.WithLabelValues("stale").Inc()
		middleware.Logger.DebugContext(ctx, "cache write skipped after invalidation", slog.String("key", key))
	}
	return value, nil
}
