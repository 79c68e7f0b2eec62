package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// keyPrefix namespaces our entries so Clear can drop them without
// touching anything else in the database.
const keyPrefix = "larun:lookup:"

// RedisCache backs the response cache with Redis; expiry is delegated to
// the server-side TTL. Errors degrade to cache misses.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// ------------------------------------------------------------------------------------------------------
// NewRedisCache creates a Redis-backed cache and verifies the connection
func NewRedisCache(addr, password string, ttl time.Duration, logger *zap.Logger) (*RedisCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisCache{client: rdb, ttl: ttl, logger: logger}, nil
}

// ------------------------------------------------------------------------------------------------------
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.logger.Warn("Redis get failed, treating as cache miss",
			zap.String("key", key),
			zap.Error(err),
		)
		return nil, false
	}
	return val, true
}

// ------------------------------------------------------------------------------------------------------
func (c *RedisCache) Put(ctx context.Context, key string, value []byte) {
	if err := c.client.Set(ctx, keyPrefix+key, value, c.ttl).Err(); err != nil {
		c.logger.Warn("Redis set failed",
			zap.String("key", key),
			zap.Error(err),
		)
	}
}

// ------------------------------------------------------------------------------------------------------
func (c *RedisCache) Clear(ctx context.Context) {
	iter := c.client.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			c.logger.Warn("Redis delete failed",
				zap.String("key", iter.Val()),
				zap.Error(err),
			)
		}
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn("Redis scan failed during clear", zap.Error(err))
	}
}

// ------------------------------------------------------------------------------------------------------
func (c *RedisCache) Close() error {
	return c.client.Close()
}
