package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestProbeThrottleFailsOpen(t *testing.T) {
	r := newRedisClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer r.Close()

	throttle := NewProbeThrottle(r, 1, time.Minute)
	allowed, err := throttle.Allow(context.Background(), "10.0.0.1")
	if err == nil {
		t.Fatal("expected redis error")
	}
	if !allowed {
		t.Error("expected the call to be allowed when redis is down")
	}
}

func TestProbeThrottleKeyPerClient(t *testing.T) {
	throttle := NewProbeThrottle(nil, 1, time.Hour)
	k := throttle.key("10.0.0.1")
	if !strings.HasPrefix(k, "ratelimit:probe:10.0.0.1:") {
		t.Errorf("unexpected key %s", k)
	}
	if other := throttle.key("10.0.0.2"); other == k {
		t.Error("expected keys to differ per client")
	}
}
