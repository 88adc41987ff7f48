package middleware

import (
	"context"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// RedisLimiter implements a fixed window with INCR/EXPIRE so the limit is
// shared by every API instance.
type RedisLimiter struct {
	client *redis.Client
}

// NewRedisLimiter connects to addr. It returns nil when addr is empty or the
// server does not answer PING, so callers can fall back to MemoryLimiter.
func NewRedisLimiter(addr, password string, db int) *RedisLimiter {
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil
	}
	return &RedisLimiter{client: client}
}

// Hit increments key and reads its TTL in one MULTI/EXEC. A key left
// without a TTL (first hit, or an earlier EXPIRE that failed) gets one here,
// and an EXPIRE failure is returned.
func (l *RedisLimiter) Hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	var (
		incr *redis.IntCmd
		ttl  *redis.DurationCmd
	)
	_, err := l.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, key)
		ttl = p.TTL(ctx, key)
		return nil
	})
	if err != nil {
		return 0, err
	}
	if ttl.Val() < 0 {
		if err := l.client.Expire(ctx, key, window).Err(); err != nil {
			return 0, err
		}
	}
	return incr.Val(), nil
}

// TTL reports the remaining window for key.
func (l *RedisLimiter) TTL(ctx context.Context, key string) (time.Duration, error) {
	return l.client.TTL(ctx, key).Result()
}

func (l *RedisLimiter) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}

func (l *RedisLimiter) Close() error {
	return l.client.Close()
}
