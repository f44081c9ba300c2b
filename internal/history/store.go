package history

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/branch-digest/internal/obs"
	"github.com/noah-isme/branch-digest/internal/report"
)

// DefaultKey is the storage slot the history is kept under when none is configured.
const DefaultKey = "reportHistory"

// ErrCorrupt indicates the stored value could not be decoded as a report list.
var ErrCorrupt = errors.New("history: stored value is not a report list")

// Locker serializes the read-modify-write of Append across writers.
type Locker interface {
	WithLock(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) error) error
}

// Store owns the persisted report list. The whole list is the unit of storage: every
// append rewrites it and every read decodes it in full.
type Store struct {
	Backend Backend
	Key     string
	// Locker is optional. Without it two racing appends may lose one update.
	Locker  Locker
	LockTTL time.Duration
	Logger  zerolog.Logger
}

func (s *Store) key() string {
	if s.Key == "" {
		return DefaultKey
	}
	return s.Key
}

// Append inserts r at the front of the stored list and writes the list back. A stored
// value that cannot be decoded is left untouched and ErrCorrupt is returned.
func (s *Store) Append(ctx context.Context, r report.Report) error {
	if s == nil || s.Backend == nil {
		return errors.New("history: store not configured")
	}
	if s.Locker == nil {
		return s.appendUnlocked(ctx, r)
	}
	ttl := s.LockTTL
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	return s.Locker.WithLock(ctx, "lock:"+s.key(), ttl, func(ctx context.Context) error {
		return s.appendUnlocked(ctx, r)
	})
}

func (s *Store) appendUnlocked(ctx context.Context, r report.Report) error {
	existing, err := s.read(ctx)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	list := make([]report.Report, 0, len(existing)+1)
	list = append(list, r)
	list = append(list, existing...)
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("history: encode: %w", err)
	}
	if err := s.Backend.Put(ctx, s.key(), data); err != nil {
		return fmt.Errorf("history: write: %w", err)
	}
	s.Logger.Debug().Str("report_id", r.ID).Str("branch", r.Branch.String()).Int("size", len(list)).Msg("history appended")
	return nil
}

// LoadAll returns the full stored list, newest insertion first. Missing, unreadable or
// undecodable history is reported as empty and only logged.
func (s *Store) LoadAll(ctx context.Context) []report.Report {
	if s == nil || s.Backend == nil {
		return []report.Report{}
	}
	list, err := s.read(ctx)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			reason := "backend"
			if errors.Is(err, ErrCorrupt) {
				reason = "decode"
			}
			obs.ObserveHistoryReadFailure(reason)
			s.Logger.Warn().Err(err).Str("key", s.key()).Str("reason", reason).Msg("history unavailable, treating as empty")
		}
		return []report.Report{}
	}
	if list == nil {
		return []report.Report{}
	}
	return list
}

// Clear removes the stored list entirely.
func (s *Store) Clear(ctx context.Context) error {
	if s == nil || s.Backend == nil {
		return errors.New("history: store not configured")
	}
	if err := s.Backend.Delete(ctx, s.key()); err != nil {
		return fmt.Errorf("history: clear: %w", err)
	}
	obs.ObserveHistoryCleared()
	s.Logger.Info().Str("key", s.key()).Msg("history cleared")
	return nil
}

// Ping probes the backend when it supports it.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.Backend == nil {
		return errors.New("history: store not configured")
	}
	if p, ok := s.Backend.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (s *Store) read(ctx context.Context) ([]report.Report, error) {
	data, err := s.Backend.Get(ctx, s.key())
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var list []report.Report
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return list, nil
}
