package history

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned by a Backend when nothing is stored under the requested key.
var ErrNotFound = errors.New("history: key not found")

// Backend stores opaque values under string keys. The history is persisted as a single
// value, so backends only need whole-value get, put and delete.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Pinger is implemented by backends whose availability can be probed.
type Pinger interface {
	Ping(ctx context.Context) error
}

// MemoryBackend keeps values in process memory. It is used by tests and ephemeral runs.
type MemoryBackend struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewMemoryBackend returns an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{values: map[string][]byte{}}
}

// Get implements Backend.
func (m *MemoryBackend) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

// Put implements Backend.
func (m *MemoryBackend) Put(_ context.Context, key string, value []byte) error {
	stored := make([]byte, len(value))
	copy(stored, value)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.values == nil {
		m.values = map[string][]byte{}
	}
	m.values[key] = stored
	return nil
}

// Delete implements Backend.
func (m *MemoryBackend) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}
