package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache wraps the Redis client with common operations
type RedisCache struct {
	client *redis.Client
	ctx    context.Context
}

// NewRedisCache creates a new Redis cache client
func NewRedisCache(addr, password string, db int) *RedisCache {
	return &RedisCache{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		ctx: context.Background(),
	}
}

// Get retrieves a value from Redis
func (c *RedisCache) Get(key string) ([]byte, error) {
	val, err := c.client.Get(c.ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil // Key doesn't exist
	}
	return val, err
}

// Set stores a value in Redis with TTL
func (c *RedisCache) Set(key string, value []byte, ttl time.Duration) error {
	return c.client.Set(c.ctx, key, value, ttl).Err()
}

// Delete removes a key from Redis
func (c *RedisCache) Delete(key string) error {
	return c.client.Del(c.ctx, key).Err()
}

// Incr atomically increments a counter key and returns the new value
func (c *RedisCache) Incr(key string) (int64, error) {
	return c.client.Incr(c.ctx, key).Result()
}

// GetInt64 reads a counter key; ok is false when the key does not exist
func (c *RedisCache) GetInt64(key string) (int64, bool, error) {
	val, err := c.client.Get(c.ctx, key).Int64()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return val, true, nil
}

// SetInt64 writes a counter key without expiry
func (c *RedisCache) SetInt64(key string, value int64) error {
	return c.client.Set(c.ctx, key, value, 0).Err()
}

// Publish sends a payload on a pub/sub channel
func (c *RedisCache) Publish(channel string, payload []byte) error {
	return c.client.Publish(c.ctx, channel, payload).Err()
}

// PSubscribe opens a pub/sub subscription; the caller owns the returned
// PubSub and must Close it to release the connection.
func (c *RedisCache) PSubscribe(ctx context.Context, channel string) *redis.PubSub {
	return c.client.Subscribe(ctx, channel)
}

// Exists checks if a key exists
func (c *RedisCache) Exists(key string) bool {
	count, _ := c.client.Exists(c.ctx, key).Result()
	return count > 0
}

// Ping checks if Redis is alive
func (c *RedisCache) Ping() error {
	return c.client.Ping(c.ctx).Err()
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}
