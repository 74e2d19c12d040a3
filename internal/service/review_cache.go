package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/maestro-api/internal/dto"
)

// ReviewCache keeps review-surface badge counts in Redis with a bounded
// TTL. Every successful workflow write invalidates the affected keys, so a
// reviewer re-querying after a decision always sees their own write.
type ReviewCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewReviewCache constructs the cache. A nil client disables caching.
func NewReviewCache(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *ReviewCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &ReviewCache{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "review_cache").Logger(),
	}
}

// ClassroomCountsKey names the badge-count entry for a classroom surface.
func ClassroomCountsKey(classroomID uint) string {
	return fmt.Sprintf("review:classroom:%d:counts", classroomID)
}

// MasterRoleCountsKey names the badge-count entry for the admin surface.
func MasterRoleCountsKey() string {
	return "review:master-role:counts"
}

// GetCounts returns cached counts, if present.
func (c *ReviewCache) GetCounts(ctx context.Context, key string) (dto.ReviewCounts, bool) {
	if c == nil || c.client == nil {
		return dto.ReviewCounts{}, false
	}

	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return dto.ReviewCounts{}, false
	}

	var counts dto.ReviewCounts
	if err := json.Unmarshal(raw, &counts); err != nil {
		return dto.ReviewCounts{}, false
	}
	return counts, true
}

// SetCounts stores counts under the key with the configured TTL.
func (c *ReviewCache) SetCounts(ctx context.Context, key string, counts dto.ReviewCounts) {
	if c == nil || c.client == nil {
		return
	}

	payload, err := json.Marshal(counts)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("failed to cache review counts")
	}
}

// Invalidate removes the given keys after a successful write.
func (c *ReviewCache) Invalidate(ctx context.Context, keys ...string) {
	if c == nil || c.client == nil || len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn().Err(err).Strs("keys", keys).Msg("failed to invalidate review cache")
	}
}
