// Package cache keeps hackathon timelines in Redis so that status polling,
// which the UI does once per second per viewer, does not hit Postgres.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/hackx/backend/internal/lifecycle"
)

const keyPrefix = "hackx:timeline:"

// TimelineLoader loads a timeline from the source of truth on a cache miss
type TimelineLoader func(ctx context.Context, hackathonID uuid.UUID) (lifecycle.Timeline, error)

// TimelineCache is a read-through cache of hackathon timelines.
// A nil cache or a cache without a client passes every call to the loader.
type TimelineCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTimelineCache instantiates the cache helper
func NewTimelineCache(client *redis.Client, ttl time.Duration) *TimelineCache {
	return &TimelineCache{client: client, ttl: ttl}
}

// Key returns the Redis key holding a hackathon's timeline
func Key(hackathonID uuid.UUID) string {
	return keyPrefix + hackathonID.String()
}

// Fetch returns the cached timeline or populates it using the loader.
// Cache read failures fall back to the loader; loader errors are returned as is.
func (c *TimelineCache) Fetch(ctx context.Context, hackathonID uuid.UUID, loader TimelineLoader) (lifecycle.Timeline, error) {
	if loader == nil {
		return lifecycle.Timeline{}, errors.New("cache: loader required")
	}
	if c == nil || c.client == nil {
		return loader(ctx, hackathonID)
	}

	key := Key(hackathonID)
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var timeline lifecycle.Timeline
		if jsonErr := json.Unmarshal(payload, &timeline); jsonErr == nil {
			return timeline, nil
		}
	}

	timeline, err := loader(ctx, hackathonID)
	if err != nil {
		return lifecycle.Timeline{}, err
	}
	if raw, err := json.Marshal(timeline); err == nil {
		_ = c.client.Set(ctx, key, raw, c.ttl).Err()
	}
	return timeline, nil
}

// Invalidate drops a hackathon's cached timeline
func (c *TimelineCache) Invalidate(ctx context.Context, hackathonID uuid.UUID) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, Key(hackathonID)).Err()
}
