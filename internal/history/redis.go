package history

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisBackend stores each key as a plain Redis string without expiry.
type RedisBackend struct {
	R      *redis.Client
	Prefix string
}

func (b RedisBackend) key(key string) string {
	return b.Prefix + key
}

// Get implements Backend.
func (b RedisBackend) Get(ctx context.Context, key string) ([]byte, error) {
	if b.R == nil {
		return nil, errors.New("history: redis client not configured")
	}
	data, err := b.R.Get(ctx, b.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

// Put implements Backend.
func (b RedisBackend) Put(ctx context.Context, key string, value []byte) error {
	if b.R == nil {
		return errors.New("history: redis client not configured")
	}
	return b.R.Set(ctx, b.key(key), value, 0).Err()
}

// Delete implements Backend.
func (b RedisBackend) Delete(ctx context.Context, key string) error {
	if b.R == nil {
		return errors.New("history: redis client not configured")
	}
	return b.R.Del(ctx, b.key(key)).Err()
}

// Ping implements Pinger.
func (b RedisBackend) Ping(ctx context.Context) error {
	if b.R == nil {
		return errors.New("history: redis client not configured")
	}
	return b.R.Ping(ctx).Err()
}
