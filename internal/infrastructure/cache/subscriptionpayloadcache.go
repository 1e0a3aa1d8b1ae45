// Package cache provides Redis-backed caches. All caches degrade to
// pass-through when Redis is unavailable.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/guardino-io/guardino/internal/shared/logger"
)

// SubscriptionPayloadCache caches merged subscription payloads per token so
// repeated client polls do not fan out to every node.
type SubscriptionPayloadCache interface {
	Get(ctx context.Context, token string) (string, bool, error)
	Set(ctx context.Context, token, payload string) error
	Invalidate(ctx context.Context, token string) error
}

const payloadKeyPrefix = "subscription:payload:"

// RedisSubscriptionPayloadCache implements SubscriptionPayloadCache on Redis.
type RedisSubscriptionPayloadCache struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Interface
}

// NewRedisSubscriptionPayloadCache creates a payload cache. A nil client or
// non-positive TTL yields a cache that always misses.
func NewRedisSubscriptionPayloadCache(client *redis.Client, ttl time.Duration, log logger.Interface) *RedisSubscriptionPayloadCache {
	return &RedisSubscriptionPayloadCache{
		client: client,
		ttl:    ttl,
		logger: log,
	}
}

func (c *RedisSubscriptionPayloadCache) key(token string) string {
	return payloadKeyPrefix + token
}

func (c *RedisSubscriptionPayloadCache) Get(ctx context.Context, token string) (string, bool, error) {
	if c.client == nil || c.ttl <= 0 {
		return "", false, nil
	}

	payload, err := c.client.Get(ctx, c.key(token)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		c.logger.Warnw("subscription payload cache read failed", "error", err)
		return "", false, nil
	}
	return payload, true, nil
}

func (c *RedisSubscriptionPayloadCache) Set(ctx context.Context, token, payload string) error {
	if c.client == nil || c.ttl <= 0 {
		return nil
	}

	if err := c.client.Set(ctx, c.key(token), payload, c.ttl).Err(); err != nil {
		c.logger.Warnw("subscription payload cache write failed", "error", err)
		return fmt.Errorf("failed to cache subscription payload: %w", err)
	}
	return nil
}

func (c *RedisSubscriptionPayloadCache) Invalidate(ctx context.Context, token string) error {
	if c.client == nil {
		return nil
	}

	if err := c.client.Del(ctx, c.key(token)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate subscription payload: %w", err)
	}
	return nil
}
