// Package cache provides the read cache with invalidation-on-write.
//
// Screens used to keep optimistic local copies that drifted under concurrent
// staff edits; here every read-mostly payload (trip detail, passenger
// dashboard) is served from one shared cache and every mutation evicts the
// affected keys, so the next read observes the store.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"triex/internal/platform/metrics"
	platformredis "triex/internal/platform/redis"
)

// Cache is the read-through cache used by services. Implementations must be
// safe for concurrent use.
type Cache interface {
	// GetJSON loads key into dest, reporting whether the key was present.
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	// SetJSON stores v under key for ttl.
	SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error
	// Invalidate removes the given keys. Missing keys are not an error.
	Invalidate(ctx context.Context, keys ...string) error
}

// Key builders. Every writer that touches an entity must invalidate the same
// keys its readers populate.

func TripKey(tripID string) string           { return "trip:" + tripID }
func TripListKey() string                    { return "trips:active" }
func DashboardKey(passengerID string) string { return "dashboard:" + passengerID }
func CompletenessKey(tripID, passengerID string) string {
	return "completeness:" + tripID + ":" + passengerID
}

// Redis is the production cache.
type Redis struct {
	client  *platformredis.Client
	metrics *metrics.Metrics
	ttl     time.Duration
}

// NewRedis builds a Redis-backed cache. The metrics parameter may be nil.
func NewRedis(client *platformredis.Client, m *metrics.Metrics, ttl time.Duration) *Redis {
	return &Redis{client: client, metrics: m, ttl: ttl}
}

// TTL returns the configured default entry lifetime.
func (c *Redis) TTL() time.Duration { return c.ttl }

func (c *Redis) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		c.miss()
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		// A corrupt entry behaves like a miss; the writer will repopulate it.
		c.miss()
		return false, nil
	}
	c.hit()
	return true, nil
}

func (c *Redis) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache marshal %s: %w", key, err)
	}
	if ttl <= 0 {
		ttl = c.ttl
	}
	if err := c.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

func (c *Redis) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}

func (c *Redis) hit() {
	if c.metrics != nil {
		c.metrics.CacheHits.Inc()
	}
}

func (c *Redis) miss() {
	if c.metrics != nil {
		c.metrics.CacheMisses.Inc()
	}
}
