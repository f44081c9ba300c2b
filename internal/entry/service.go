package entry

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/branch-digest/internal/branch"
	"github.com/noah-isme/branch-digest/internal/kpi"
	"github.com/noah-isme/branch-digest/internal/obs"
	"github.com/noah-isme/branch-digest/internal/report"
)

// Appender persists a finished report.
type Appender interface {
	Append(ctx context.Context, r report.Report) error
}

// Result is the outcome of one entry: the metrics, the digest message to share and,
// for submissions, the stored report.
type Result struct {
	Branch  branch.Branch  `json:"branch"`
	Metrics kpi.Metrics    `json:"metrics"`
	Message string         `json:"message"`
	Report  *report.Report `json:"report,omitempty"`
	Saved   bool           `json:"saved"`
}

// Service turns a branch entry into metrics, a digest message and a history record.
type Service struct {
	Store    Appender
	Now      func() time.Time
	Location *time.Location
	Logger   zerolog.Logger
}

func (s *Service) now() time.Time {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	loc := s.Location
	if loc == nil {
		loc = time.UTC
	}
	return now().In(loc)
}

// Preview validates the form and renders the digest without saving anything.
func (s *Service) Preview(b branch.Branch, form report.Form) (Result, error) {
	if !b.Valid() {
		return Result{}, branch.ErrUnknownBranch
	}
	in, err := report.ParseForm(form)
	if err != nil {
		return Result{}, err
	}
	m := kpi.Compute(in.Qty, in.Amount, in.Transactions)
	return Result{
		Branch:  b,
		Metrics: m,
		Message: report.Format(b, s.now(), in, m),
	}, nil
}

// Submit renders the digest and appends the report to the history. A storage failure is
// logged and reported through Saved; the digest is still returned so it can be shared.
func (s *Service) Submit(ctx context.Context, b branch.Branch, form report.Form) (Result, error) {
	if !b.Valid() {
		return Result{}, branch.ErrUnknownBranch
	}
	in, err := report.ParseForm(form)
	if err != nil {
		obs.ObserveReportSubmitted(b.String(), "invalid")
		return Result{}, err
	}
	at := s.now()
	m := kpi.Compute(in.Qty, in.Amount, in.Transactions)
	rep := report.New(b, at, in, m)
	result := Result{
		Branch:  b,
		Metrics: m,
		Message: report.Format(b, at, in, m),
		Report:  &rep,
	}

	if s.Store == nil {
		err = errors.New("history store not configured")
	} else {
		err = s.Store.Append(ctx, rep)
	}
	if err != nil {
		obs.ObserveReportSubmitted(b.String(), "unsaved")
		s.Logger.Error().Err(err).Str("branch", b.String()).Str("report_id", rep.ID).Msg("report not saved to history")
		return result, nil
	}
	result.Saved = true
	obs.ObserveReportSubmitted(b.String(), "saved")
	s.Logger.Info().Str("branch", b.String()).Str("report_id", rep.ID).Msg("report saved")
	return result, nil
}
