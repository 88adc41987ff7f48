package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"workflow_api/internal/logger"

	"github.com/gin-gonic/gin"
)

// Limiter counts hits for key within a fixed window and returns the count
// including this hit.
type Limiter interface {
	Hit(ctx context.Context, key string, window time.Duration) (int64, error)
}

type windowInfo struct {
	start time.Time
	count int64
}

// MemoryLimiter is a process-local fixed-window limiter, used when Redis is
// not configured.
type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[string]*windowInfo
	now     func() time.Time
}

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{windows: make(map[string]*windowInfo), now: time.Now}
}

func (l *MemoryLimiter) Hit(_ context.Context, key string, window time.Duration) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) > window {
		w = &windowInfo{start: now}
		l.windows[key] = w
	}
	w.count++

	// drop stale windows once the map grows
	if len(l.windows) > 10000 {
		for k, v := range l.windows {
			if now.Sub(v.start) > window {
				delete(l.windows, k)
			}
		}
	}
	return w.count, nil
}

// RateLimit allows maxRequests per window per client IP within scope.
// Limiter errors fail open.
func RateLimit(l Limiter, scope string, maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if l == nil || maxRequests <= 0 {
			c.Next()
			return
		}

		key := "rl:" + scope + ":" + strconv.FormatInt(int64(window.Seconds()), 10) + ":" + c.ClientIP()
		val, err := l.Hit(c.Request.Context(), key, window)
		if err != nil {
			logger.FromContext(c.Request.Context()).Warn("rate limiter unavailable", "error", err)
			c.Header("X-RateLimit-Error", "limiter-error")
			c.Next()
			return
		}

		remaining := int64(maxRequests) - val
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(maxRequests))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if val > int64(maxRequests) {
			RLBlocked.WithLabelValues(scope).Inc()
			c.Header("Retry-After", strconv.Itoa(int(window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"message": "Too many requests"})
			return
		}

		RLRequests.WithLabelValues(scope).Inc()
		c.Next()
	}
}
