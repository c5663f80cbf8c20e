package memory

import (
	"context"
	"sync"
	"time"
)

// CooldownCache is an in-memory implementation of store.CooldownCache.
type CooldownCache struct {
	mu      sync.RWMutex
	expires map[string]time.Time
	now     func() time.Time
}

// NewCooldownCache creates a new in-memory cooldown cache.
func NewCooldownCache() *CooldownCache {
	return &CooldownCache{
		expires: map[string]time.Time{},
		now:     time.Now,
	}
}

// IsCoolingDown reports whether an unexpired marker exists.
func (c *CooldownCache) IsCoolingDown(ctx context.Context, configID string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	expiry, ok := c.expires[configID]
	if !ok {
		return false, nil
	}
	return c.now().Before(expiry), nil
}

// SetCooldown places a marker expiring after ttl.
func (c *CooldownCache) SetCooldown(ctx context.Context, configID string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.expires[configID] = c.now().Add(ttl)
	return nil
}

// Close releases resources; a no-op for the memory cache.
func (c *CooldownCache) Close() error {
	return nil
}
