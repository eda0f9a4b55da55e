package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache stores entries in Redis. It is used by the preview server so
// that several instances share computed layouts.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects to the Redis server at addr and pings it.
// A failed ping is reported as [ErrUnavailable].
func NewRedisCache(ctx context.Context, addr string) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	err := RetryWithBackoff(ctx, 100*time.Millisecond, func() error {
		if err := client.Ping(ctx).Err(); err != nil {
			return Retryable(err)
		}
		return nil
	})
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, addr, err)
	}
	return &RedisCache{client: client}, nil
}

// Get retrieves a value. redis.Nil is reported as a miss.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set stores a value with the given TTL (zero means no expiry).
func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, data, ttl).Err()
}

// Delete removes a value.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// Close closes the underlying client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

var _ Cache = (*RedisCache)(nil)
