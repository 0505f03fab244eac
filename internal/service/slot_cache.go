package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/itscarlsmith/ClassCal-v2-sub001/internal/schedule"
)

// SlotCache is an optional Redis cache for bookable-slot queries. Keys embed
// a per-teacher version counter; bumping the counter on any booking or rule
// mutation orphans every cached window for that teacher at once. A nil Redis
// client disables the cache and every method degrades to a no-op.
type SlotCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewSlotCache(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *SlotCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &SlotCache{rdb: rdb, ttl: ttl, logger: logger}
}

func (c *SlotCache) enabled() bool {
	return c != nil && c.rdb != nil
}

func (c *SlotCache) key(ctx context.Context, teacherID int64, windowStart, windowEnd time.Time, durationMinutes int) string {
	version, err := c.rdb.Get(ctx, fmt.Sprintf("slotver:%d", teacherID)).Int64()
	if err != nil && err != redis.Nil {
		version = -1 // unknown version, key will simply miss
	}
	return fmt.Sprintf("slots:%d:%d:%d:%d:%d",
		teacherID, version, windowStart.Unix(), windowEnd.Unix(), durationMinutes)
}

// Get returns cached slots and whether the lookup hit.
func (c *SlotCache) Get(ctx context.Context, teacherID int64, windowStart, windowEnd time.Time, durationMinutes int) ([]schedule.Range, bool) {
	if !c.enabled() {
		return nil, false
	}

	raw, err := c.rdb.Get(ctx, c.key(ctx, teacherID, windowStart, windowEnd, durationMinutes)).Bytes()
	if err != nil {
		return nil, false
	}

	var slots []schedule.Range
	if err := json.Unmarshal(raw, &slots); err != nil {
		return nil, false
	}
	return slots, true
}

// Set stores a query result under the current version.
func (c *SlotCache) Set(ctx context.Context, teacherID int64, windowStart, windowEnd time.Time, durationMinutes int, slots []schedule.Range) {
	if !c.enabled() {
		return
	}

	raw, err := json.Marshal(slots)
	if err != nil {
		return
	}

	key := c.key(ctx, teacherID, windowStart, windowEnd, durationMinutes)
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Debug("slot cache set failed", zap.Error(err))
	}
}

// Bump invalidates all cached windows of a teacher.
func (c *SlotCache) Bump(ctx context.Context, teacherID int64) {
	if !c.enabled() {
		return
	}

	if err := c.rdb.Incr(ctx, fmt.Sprintf("slotver:%d", teacherID)).Err(); err != nil {
		c.logger.Debug("slot cache bump failed",
			zap.Int64("teacher_id", teacherID),
			zap.Error(err))
	}
}
