// Package cache holds the redis-backed public-profile cache. Aggregation
// queries are intentionally never cached; only the hot visitor-facing
// profile read goes through here.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/linkfolio/linkfolio-backend/models"
	"github.com/redis/go-redis/v9"
)

const profileKeyFormat = "profile:%s" // <username>

func ProfileKey(username string) string {
	return fmt.Sprintf(profileKeyFormat, username)
}

type ProfileCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// New wraps a redis client; a nil client yields a disabled cache whose
// reads always miss and whose writes are no-ops.
func New(rdb *redis.Client, ttl time.Duration) *ProfileCache {
	return &ProfileCache{rdb: rdb, ttl: ttl}
}

func (c *ProfileCache) Enabled() bool {
	return c != nil && c.rdb != nil
}

func (c *ProfileCache) Get(ctx context.Context, username string) (*models.PublicProfileResponse, error) {
	if !c.Enabled() {
		return nil, redis.Nil
	}

	value, err := c.rdb.Get(ctx, ProfileKey(username)).Result()
	if err != nil {
		return nil, err
	}

	var profile models.PublicProfileResponse
	if err := json.Unmarshal([]byte(value), &profile); err != nil {
		return nil, err
	}

	return &profile, nil
}

func (c *ProfileCache) Set(ctx context.Context, username string, profile *models.PublicProfileResponse) error {
	if !c.Enabled() {
		return nil
	}

	valueJSON, err := json.Marshal(profile)
	if err != nil {
		return err
	}

	return c.rdb.Set(ctx, ProfileKey(username), valueJSON, c.ttl).Err()
}

// Invalidate drops the cached profile after any link or profile mutation.
func (c *ProfileCache) Invalidate(ctx context.Context, username string) error {
	if !c.Enabled() {
		return nil
	}

	return c.rdb.Del(ctx, ProfileKey(username)).Err()
}
