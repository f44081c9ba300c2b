package analytics

import (
	"context"
	"fmt"

	"github.com/noah-isme/branch-digest/internal/report"
)

// HistoryStore is the read and clear access analytics needs over the persisted history.
type HistoryStore interface {
	LoadAll(ctx context.Context) []report.Report
	Clear(ctx context.Context) error
}

// Service computes history projections. Nothing is cached: every call reads the full
// history and projects it again.
type Service struct {
	Store HistoryStore
}

// History returns the projection of the current history for the given filter and order.
func (s *Service) History(ctx context.Context, filter Filter, order SortOrder) (Projection, error) {
	if s == nil || s.Store == nil {
		return Projection{}, fmt.Errorf("analytics service not configured")
	}
	return Project(s.Store.LoadAll(ctx), filter, order), nil
}

// Clear deletes the whole history.
func (s *Service) Clear(ctx context.Context) error {
	if s == nil || s.Store == nil {
		return fmt.Errorf("analytics service not configured")
	}
	return s.Store.Clear(ctx)
}
