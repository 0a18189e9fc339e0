package cache

import (
	"context"
	"fmt"
	"time"
)

// ProbeThrottle is a fixed-window rate limiter shared by every API instance
// through Redis.
type ProbeThrottle struct {
	redis  *RedisClient
	limit  int
	window time.Duration
}

// NewProbeThrottle allows limit calls per key within window.
func NewProbeThrottle(redis *RedisClient, limit int, window time.Duration) *ProbeThrottle {
	return &ProbeThrottle{redis: redis, limit: limit, window: window}
}

func (t *ProbeThrottle) key(key string) string {
	bucket := time.Now().UnixNano() / int64(t.window)
	return fmt.Sprintf("ratelimit:probe:%s:%d", key, bucket)
}

// Allow reports whether key may make another call. When Redis is
// unreachable the call is allowed and the error returned.
func (t *ProbeThrottle) Allow(ctx context.Context, key string) (bool, error) {
	n, err := t.redis.IncrWindow(ctx, t.key(key), t.window)
	if err != nil {
		return true, err
	}
	return n <= int64(t.limit), nil
}
