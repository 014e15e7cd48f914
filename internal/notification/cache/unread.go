// Package cache keeps per-user unread notification counts in Redis so the
// badge poll does not hit the database on every request.
package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/bwmarrin/snowflake"
	redis "github.com/redis/go-redis/v9"
)

const (
	keyUnread = "notification:unread:%s"
	unreadTTL = 60 * time.Second
)

type UnreadCounter struct {
	client *redis.Client
}

func NewUnreadCounter(client *redis.Client) *UnreadCounter {
	return &UnreadCounter{client: client}
}

// Get returns the cached count. The second return is false on a miss or
// when Redis is unavailable; the caller falls back to the database.
func (c *UnreadCounter) Get(ctx context.Context, userID snowflake.ID) (int64, bool) {
	if c == nil || c.client == nil {
		return 0, false
	}
	raw, err := c.client.Get(ctx, fmt.Sprintf(keyUnread, userID.String())).Result()
	if err != nil {
		return 0, false
	}
	count, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return count, true
}

func (c *UnreadCounter) Set(ctx context.Context, userID snowflake.ID, count int64) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Set(ctx, fmt.Sprintf(keyUnread, userID.String()), count, unreadTTL).Err()
}

// Invalidate drops the cached count after any write that changes it.
func (c *UnreadCounter) Invalidate(ctx context.Context, userID snowflake.ID) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Del(ctx, fmt.Sprintf(keyUnread, userID.String())).Err()
}
