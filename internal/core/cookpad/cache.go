package cookpad

import (
	"context"
	"fmt"

	"kondate-planner/internal/infrastructure/config"
	"kondate-planner/internal/pkg/common"

	"github.com/go-redis/redis/v8"
)

// Cache stores serialized search and recipe responses. Get returns
// common.ErrCacheMiss when the key is absent and common.ErrCacheDisabled when
// caching is off; both are treated as misses by the client.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte) error
	Close() error
}

// RedisCache caches responses in Redis with the configured TTL.
type RedisCache struct {
	client *redis.Client
	config *config.CacheConfig
}

// NewRedisCache connects to Redis and verifies the connection.
func NewRedisCache(cfg *config.CacheConfig) (*RedisCache, error) {
	if !cfg.Enabled {
		return &RedisCache{config: cfg}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisCache{
		client: client,
		config: cfg,
	}, nil
}

// Get fetches a cached response.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	if !c.config.Enabled || c.client == nil {
		return nil, common.ErrCacheDisabled
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, common.ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get cache: %w", err)
	}
	return data, nil
}

// Set stores a response with the configured TTL.
func (c *RedisCache) Set(ctx context.Context, key string, data []byte) error {
	if !c.config.Enabled || c.client == nil {
		return nil
	}

	if err := c.client.Set(ctx, key, data, c.config.TTL).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Close releases the Redis connection.
func (c *RedisCache) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}
