package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/shopizi/internal/utils"
)

// Limiter decides whether key may make another call.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// MemoryLimiter is an in-process fixed-window limiter.
type MemoryLimiter struct {
	mu       sync.Mutex
	limit    int
	window   time.Duration
	attempts map[string]*attemptInfo
}

type attemptInfo struct {
	count   int
	firstAt time.Time
}

// NewMemoryLimiter allows limit calls per key within window. Expired entries
// are swept until ctx is done.
func NewMemoryLimiter(ctx context.Context, limit int, window time.Duration) *MemoryLimiter {
	rl := &MemoryLimiter{
		limit:    limit,
		window:   window,
		attempts: make(map[string]*attemptInfo),
	}
	go rl.cleanup(ctx)
	return rl
}

// Allow checks if key can make another attempt.
func (r *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	info, exists := r.attempts[key]
	if !exists || now.Sub(info.firstAt) > r.window {
		r.attempts[key] = &attemptInfo{count: 1, firstAt: now}
		return true, nil
	}

	if info.count >= r.limit {
		return false, nil
	}
	info.count++
	return true, nil
}

func (r *MemoryLimiter) cleanup(ctx context.Context) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.mu.Lock()
			now := time.Now()
			for key, info := range r.attempts {
				if now.Sub(info.firstAt) > r.window {
					delete(r.attempts, key)
				}
			}
			r.mu.Unlock()
		}
	}
}

// RateLimit rejects callers over the limiter's window limit with 429. Limiter
// errors let the request through.
func RateLimit(limiter Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			log.Warn().Err(err).Str("request_id", utils.RequestID(c)).Msg("rate limiter unavailable")
		}
		if !allowed {
			utils.Error(c, http.StatusTooManyRequests, "Request was throttled.")
			c.Abort()
			return
		}
		c.Next()
	}
}
