package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	postCountersKeyPrefix = "post:%d:counters"
	userKeyPrefix         = "user:%d"
)

const (
	// CountersTTL bounds how stale derived vote/comment counters may get
	// across concurrent requests.
	CountersTTL = 30 * time.Second
	UserTTL     = 5 * time.Minute
)

// PostCountersKey is the cache key for a post's derived counters.
func PostCountersKey(postID uint) string {
	return fmt.Sprintf(postCountersKeyPrefix, postID)
}

// UserKey is the cache key for a user record.
func UserKey(userID uint) string {
	return fmt.Sprintf(userKeyPrefix, userID)
}

// Invalidate deletes a key, best-effort.
func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

// InvalidatePostCounters drops cached counters after a vote or comment mutation.
func InvalidatePostCounters(ctx context.Context, postID uint) {
	Invalidate(ctx, PostCountersKey(postID))
}

// InvalidateUser drops a cached user record after an update or delete.
func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}
