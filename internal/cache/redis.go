package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"fertigation.io/farmwatch/internal/config"
)

const keyPrefix = "farmwatch"

// Connect opens a Redis client and pings it.
func Connect(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// RedisCache versions each namespace with a counter key. Entries live
// under the version they were loaded at, so Invalidate is a single INCR and
// stale entries age out through their TTL.
type RedisCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisCache returns a cache whose entries expire after ttl.
func NewRedisCache(client redis.UniversalClient, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisCache{client: client, ttl: ttl}
}

func versionKey(ns string) string {
	return fmt.Sprintf("%s:view:%s:ver", keyPrefix, ns)
}

func entryKey(ns string, version Version, key string) string {
	return fmt.Sprintf("%s:view:%s:v%d:%s", keyPrefix, ns, version, key)
}

func (c *RedisCache) version(ctx context.Context, ns string) (Version, error) {
	v, err := c.client.Get(ctx, versionKey(ns)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return Version(v), err
}

func (c *RedisCache) GetJSON(ctx context.Context, ns, key string, dst any) (Version, bool, error) {
	ver, err := c.version(ctx, ns)
	if err != nil {
		return 0, false, fmt.Errorf("read %s version: %w", ns, err)
	}
	raw, err := c.client.Get(ctx, entryKey(ns, ver, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ver, false, nil
	}
	if err != nil {
		return ver, false, fmt.Errorf("get %s/%s: %w", ns, key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return ver, false, fmt.Errorf("decode %s/%s: %w", ns, key, err)
	}
	return ver, true, nil
}

// SetJSON writes under ver, not the current version. An entry written for
// an invalidated version sits under a key nothing reads again.
func (c *RedisCache) SetJSON(ctx context.Context, ns string, ver Version, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", ns, key, err)
	}
	return c.client.Set(ctx, entryKey(ns, ver, key), raw, c.ttl).Err()
}

func (c *RedisCache) Invalidate(ctx context.Context, namespaces ...string) error {
	if len(namespaces) == 0 {
		return nil
	}
	pipe := c.client.TxPipeline()
	for _, ns := range namespaces {
		pipe.Incr(ctx, versionKey(ns))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("invalidate %v: %w", namespaces, err)
	}
	return nil
}
