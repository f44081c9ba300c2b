package history

import (
	"context"
	"errors"

	"github.com/noah-isme/branch-digest/internal/resilience"
)

// GuardedBackend fails fast while a remote backend is unhealthy. Reads then fall back
// to an empty history and writes are reported as unsaved without waiting on timeouts.
type GuardedBackend struct {
	Backend Backend
	Breaker *resilience.Breaker
}

// NewGuardedBackend wraps b with br. ErrNotFound never counts as a failure.
func NewGuardedBackend(b Backend, br *resilience.Breaker) *GuardedBackend {
	br.IsFailure = func(err error) bool { return !errors.Is(err, ErrNotFound) }
	return &GuardedBackend{Backend: b, Breaker: br}
}

func (g *GuardedBackend) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := g.Breaker.Do(ctx, func(ctx context.Context) error {
		var err error
		value, err = g.Backend.Get(ctx, key)
		return err
	})
	return value, err
}

func (g *GuardedBackend) Put(ctx context.Context, key string, value []byte) error {
	return g.Breaker.Do(ctx, func(ctx context.Context) error {
		return g.Backend.Put(ctx, key, value)
	})
}

func (g *GuardedBackend) Delete(ctx context.Context, key string) error {
	return g.Breaker.Do(ctx, func(ctx context.Context) error {
		return g.Backend.Delete(ctx, key)
	})
}

// Ping bypasses the breaker so readiness reports the backend's real state.
func (g *GuardedBackend) Ping(ctx context.Context) error {
	if p, ok := g.Backend.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}
