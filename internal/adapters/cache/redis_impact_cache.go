package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"vrp-route-env/internal/ports"

	"github.com/redis/go-redis/v9"
)

const DefaultKeyPrefix = "vrp:impact:"

// RedisImpactCache stores impact factors in Redis with a fixed TTL, so
// conditions observed by one simulator are reused by others until they
// expire.
type RedisImpactCache struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewRedisImpactCache(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisImpactCache {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisImpactCache{client: client, prefix: prefix, ttl: ttl}
}

// Get returns ports.ErrCacheMiss for absent or expired keys.
func (c *RedisImpactCache) Get(ctx context.Context, key string) (_ float64, err error) {
	defer timeGet(ctx, "impact.cache.redis.Get")(&err)

	if c.client == nil {
		return 0, errors.New("redis impact cache: client is nil")
	}
	if strings.TrimSpace(key) == "" {
		return 0, errors.New("get redis impact cache: key must not be empty")
	}

	f, err := c.client.Get(ctx, c.prefix+key).Float64()
	if errors.Is(err, redis.Nil) {
		return 0, ports.ErrCacheMiss
	}
	if err != nil {
		return 0, fmt.Errorf("get redis impact cache %q: %w", key, err)
	}
	return f, nil
}

func (c *RedisImpactCache) Put(ctx context.Context, key string, factor float64) error {
	if c.client == nil {
		return errors.New("redis impact cache: client is nil")
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("insert redis impact cache: key must not be empty")
	}

	if err := c.client.Set(ctx, c.prefix+key, factor, c.ttl).Err(); err != nil {
		return fmt.Errorf("insert redis impact cache %q: %w", key, err)
	}
	return nil
}
