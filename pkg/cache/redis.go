package cache

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache implements Cache on top of a Redis server.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects to the Redis server at addr and pings it.
func NewRedisCache(ctx context.Context, addr string) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	err := RetryWithBackoff(ctx, func() error {
		if err := client.Ping(ctx).Err(); err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) {
				return Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
			}
			return err
		}
		return nil
	})
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis %s: %w", addr, err)
	}
	return &RedisCache{client: client}, nil
}

// NewRedisCacheFromClient wraps an existing client.
func NewRedisCacheFromClient(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Get retrieves a value from Redis. redis.Nil is reported as a miss.
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

// Set stores a value in Redis. A zero ttl keeps the key forever.
func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, data, ttl).Err()
}

// Delete removes a key. Missing keys are not an error.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// Close closes the underlying client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

var _ Cache = (*RedisCache)(nil)
