// Package redis provides a Redis-based implementation of the cooldown cache.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"netpulse/internal/config"
)

const prefixCooldown = "cooldown:"

// CooldownCache implements store.CooldownCache using Redis.
//
// The cache is an advisory fast path: a hit means a configuration is
// definitely cooling down, a miss means the database decides. Raise
// eligibility is always enforced at insert time, so cache loss never
// produces duplicate alerts.
type CooldownCache struct {
	client *redis.Client
}

// NewCooldownCache creates a new Redis-backed cooldown cache.
func NewCooldownCache(cfg *config.RedisConfig) (*CooldownCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &CooldownCache{client: client}, nil
}

// cooldownKey generates the Redis key for a configuration's cooldown marker.
func cooldownKey(configID string) string {
	return prefixCooldown + configID
}

// IsCoolingDown reports whether a cooldown marker exists for the configuration.
func (c *CooldownCache) IsCoolingDown(ctx context.Context, configID string) (bool, error) {
	n, err := c.client.Exists(ctx, cooldownKey(configID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check cooldown: %w", err)
	}
	return n > 0, nil
}

// SetCooldown records a cooldown marker that expires after ttl.
func (c *CooldownCache) SetCooldown(ctx context.Context, configID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := c.client.SetNX(ctx, cooldownKey(configID), 1, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cooldown: %w", err)
	}
	return nil
}

// Close closes the Redis client connection.
func (c *CooldownCache) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}
