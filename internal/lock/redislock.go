package lock

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	// ErrNotConfigured is returned when the locker has no Redis client.
	ErrNotConfigured = errors.New("lock: redis client not configured")
	// ErrNoCallback is returned when WithLock is called without a function to run.
	ErrNoCallback = errors.New("lock: callback not provided")
)

// releaseScript deletes the key only while it still holds our token, so a lock that
// expired and was taken by another writer is left alone.
var releaseScript = redis.NewScript(`if redis.call("get", KEYS[1]) == ARGV[1] then
  return redis.call("del", KEYS[1])
else
  return 0
end`)

// Locker serializes writers across processes with a Redis SETNX lock.
type Locker struct {
	R            *redis.Client
	RetryBackoff time.Duration
}

// WithLock runs fn while holding the lock for key. The lock is released when fn returns,
// error or not. Waiting stops with ctx.Err() once ctx is done.
func (l Locker) WithLock(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) error) error {
	if l.R == nil {
		return ErrNotConfigured
	}
	if fn == nil {
		return ErrNoCallback
	}
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	retry := l.RetryBackoff
	if retry <= 0 {
		retry = 25 * time.Millisecond
	}
	token := uuid.NewString()

	for {
		ok, err := l.R.SetNX(ctx, key, token, ttl).Result()
		if err != nil {
			return err
		}
		if ok {
			defer l.release(key, token)
			return fn(ctx)
		}
		timer := time.NewTimer(retry)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (l Locker) release(key, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = releaseScript.Run(ctx, l.R, []string{key}, token).Err()
}
