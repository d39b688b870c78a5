package cache

import (
    "context"
    "encoding/json"
    "fmt"
    "time"

    "github.com/redis/go-redis/v9"

    "github.com/d60-Lab/ticket-queue/internal/service"
)

// StatusCache is a read-through cache for queue position lookups. Position
// reads dominate traffic during an on-sale, while writes are comparatively
// rare; a short TTL keeps displayed ranks within one refresh of the truth.
type StatusCache struct {
    rdb *redis.Client
    ttl time.Duration
}

func NewStatusCache(rdb *redis.Client, ttl time.Duration) *StatusCache {
    if ttl <= 0 {
        ttl = 2 * time.Second
    }
    return &StatusCache{rdb: rdb, ttl: ttl}
}

func statusKey(eventID, userID string) string {
    return fmt.Sprintf("queue_status:%s:%s", eventID, userID)
}

// GetStatus returns the cached status or falls back to the loader. Cache
// failures degrade to a direct read, never to an error.
func (c *StatusCache) GetStatus(ctx context.Context, eventID, userID string, load func() (*service.QueueStatus, error)) (*service.QueueStatus, error) {
    key := statusKey(eventID, userID)
    if data, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
        var st service.QueueStatus
        if uErr := json.Unmarshal(data, &st); uErr == nil {
            return &st, nil
        }
    }

    st, err := load()
    if err != nil {
        return nil, err
    }
    if payload, err := json.Marshal(st); err == nil {
        _ = c.rdb.Set(ctx, key, payload, c.ttl).Err()
    }
    return st, nil
}

// Invalidate drops the cached status after a write touching this user's entry.
func (c *StatusCache) Invalidate(ctx context.Context, eventID, userID string) {
    _ = c.rdb.Del(ctx, statusKey(eventID, userID)).Err()
}
