package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Integration-style test: runs only if REDIS_ADDR env is set.
func TestRedisRateLimitIntegration(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set; skipping integration test")
	}
	db := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			db = n
		}
	}

	l := NewRedisLimiter(addr, os.Getenv("REDIS_PASSWORD"), db)
	if l == nil {
		t.Fatalf("redis at %s did not answer PING", addr)
	}
	defer l.Close()

	max := 2
	r := gin.New()
	// unique scope so reruns inside the window do not collide
	r.GET("/test", RateLimit(l, "test-"+uuid.NewString(), max, 2*time.Second), func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})

	srv := httptest.NewServer(r)
	defer srv.Close()

	for i := 0; i < max; i++ {
		res, err := http.Get(srv.URL + "/test")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		res.Body.Close()
		if res.StatusCode != 200 {
			t.Fatalf("expected 200 got %d", res.StatusCode)
		}
	}

	res, err := http.Get(srv.URL + "/test")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != 429 {
		t.Fatalf("expected 429 got %d", res.StatusCode)
	}
}

func TestRedisLimiterRepairsMissingTTL(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set; skipping integration test")
	}
	l := NewRedisLimiter(addr, os.Getenv("REDIS_PASSWORD"), 0)
	if l == nil {
		t.Fatalf("redis at %s did not answer PING", addr)
	}
	defer l.Close()

	ctx := context.Background()
	key := "rl:test-ttl:" + uuid.NewString()
	// a counter left behind without a TTL
	if err := l.client.Incr(ctx, key).Err(); err != nil {
		t.Fatalf("seed: %v", err)
	}
	defer l.client.Del(ctx, key)

	n, err := l.Hit(ctx, key, time.Minute)
	if err != nil || n != 2 {
		t.Fatalf("Hit = %d, %v; want 2", n, err)
	}
	ttl, err := l.TTL(ctx, key)
	if err != nil || ttl <= 0 || ttl > time.Minute {
		t.Fatalf("TTL = %v, %v; want within the window", ttl, err)
	}

	fresh := "rl:test-ttl:" + uuid.NewString()
	defer l.client.Del(ctx, fresh)
	if n, err := l.Hit(ctx, fresh, time.Minute); err != nil || n != 1 {
		t.Fatalf("first Hit = %d, %v", n, err)
	}
	if ttl, _ := l.TTL(ctx, fresh); ttl <= 0 {
		t.Fatalf("first hit left no TTL: %v", ttl)
	}
}
