package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	UnreadKindNotifications = "notifications"
	UnreadKindMessages      = "messages"
)

// UnreadCache keeps per-user unread counters in Redis so the badge
// endpoints don't hit the database on every poll. A nil client degrades
// to a permanent miss.
type UnreadCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewUnreadCache(client *redis.Client, ttl time.Duration) *UnreadCache {
	return &UnreadCache{client: client, ttl: ttl}
}

func unreadKey(kind string, userID int64) string {
	return fmt.Sprintf("unread:%s:%d", kind, userID)
}

func (c *UnreadCache) Get(ctx context.Context, kind string, userID int64) (int64, bool, error) {
	if c == nil || c.client == nil {
		return 0, false, nil
	}
	val, err := c.client.Get(ctx, unreadKey(kind, userID)).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("unread cache get: %w", err)
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, nil
	}
	return n, true, nil
}

func (c *UnreadCache) Set(ctx context.Context, kind string, userID, count int64) error {
	if c == nil || c.client == nil {
		return nil
	}
	if err := c.client.Set(ctx, unreadKey(kind, userID), count, c.ttl).Err(); err != nil {
		return fmt.Errorf("unread cache set: %w", err)
	}
	return nil
}

// Invalidate drops the counter so the next read recomputes from the store.
func (c *UnreadCache) Invalidate(ctx context.Context, kind string, userID int64) error {
	if c == nil || c.client == nil {
		return nil
	}
	if err := c.client.Del(ctx, unreadKey(kind, userID)).Err(); err != nil {
		return fmt.Errorf("unread cache invalidate: %w", err)
	}
	return nil
}

// Ping verifies the Redis connection at startup.
func Ping(ctx context.Context, client *redis.Client) error {
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}
