package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Decision is the outcome of one rate limit check.
type Decision struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Limiter implements a sliding window rate limiter backed by Redis sorted sets. Each
// event is a member scored by its arrival time; members older than the window are
// trimmed before counting.
type Limiter struct {
	Client *redis.Client
	Prefix string
}

// Allow records an event for key and reports whether it fits within max events per window.
// A limiter without a client, or with a non-positive max or window, allows everything.
func (l Limiter) Allow(ctx context.Context, key string, window time.Duration, max int) (Decision, error) {
	now := time.Now()
	if l.Client == nil || max <= 0 || window <= 0 {
		return Decision{Allowed: true, Remaining: max, ResetAt: now.Add(window)}, nil
	}

	redisKey := l.Prefix + key
	cutoff := strconv.FormatInt(now.Add(-window).UnixNano(), 10)

	pipe := l.Client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "-inf", "("+cutoff)
	pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(now.UnixNano()), Member: uuid.NewString()})
	count := pipe.ZCard(ctx, redisKey)
	pipe.PExpire(ctx, redisKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{ResetAt: now.Add(window)}, fmt.Errorf("ratelimit: %w", err)
	}

	current := int(count.Val())
	remaining := max - current
	if remaining < 0 {
		remaining = 0
	}
	return Decision{Allowed: current <= max, Remaining: remaining, ResetAt: now.Add(window)}, nil
}
