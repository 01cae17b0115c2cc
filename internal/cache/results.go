package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rupamthxt/vectraproj/internal/config"
)

// ResultCache stores serialized projection results keyed by request
// fingerprint. A nil *ResultCache is valid and caches nothing.
type ResultCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewResultCache(client *redis.Client, ttl time.Duration) *ResultCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &ResultCache{client: client, ttl: ttl}
}

// NewClient constructs a Redis client from configuration. URLs that
// redis.ParseURL rejects are treated as a bare address.
func NewClient(cfg config.RedisConfig) *redis.Client {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		opts = &redis.Options{Addr: strings.TrimPrefix(cfg.URL, "tcp://")}
	}
	if cfg.DB != 0 {
		opts.DB = cfg.DB
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	return redis.NewClient(opts)
}

// Ping verifies connectivity with a short timeout.
func Ping(ctx context.Context, client *redis.Client) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}

// Enabled reports whether c is backed by a Redis client.
func (c *ResultCache) Enabled() bool {
	return c != nil && c.client != nil
}

func (c *ResultCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c == nil || c.client == nil || key == "" {
		return nil, false
	}
	data, err := c.client.Get(ctx, c.prefixed(key)).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

func (c *ResultCache) Set(ctx context.Context, key string, value []byte) error {
	if c == nil || c.client == nil || key == "" || len(value) == 0 {
		return nil
	}
	return c.client.Set(ctx, c.prefixed(key), value, c.ttl).Err()
}

func (c *ResultCache) prefixed(key string) string {
	return "proj:" + key
}
