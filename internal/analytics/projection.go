package analytics

import (
	"errors"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/branch-digest/internal/branch"
	"github.com/noah-isme/branch-digest/internal/report"
)

// FilterAll keeps reports of every branch.
const FilterAll Filter = "all"

var (
	// ErrInvalidFilter is returned for a branch filter that is neither "all" nor a registered branch.
	ErrInvalidFilter = errors.New("analytics: invalid branch filter")
	// ErrInvalidSort is returned for a sort order other than newest or oldest.
	ErrInvalidSort = errors.New("analytics: invalid sort order")
)

// Filter selects which branch a projection keeps: FilterAll or a branch identifier.
type Filter string

// SortOrder orders a projection by report creation time.
type SortOrder string

// Supported sort orders.
const (
	Newest SortOrder = "newest"
	Oldest SortOrder = "oldest"
)

// Summary aggregates the reports of a projection.
type Summary struct {
	TotalReports      int             `json:"total_reports"`
	TotalAmount       decimal.Decimal `json:"total_amt"`
	TotalTransactions int64           `json:"total_trans"`
}

// Projection is a transient filtered, sorted and summarized view over the history.
type Projection struct {
	Filter  Filter          `json:"branch"`
	Sort    SortOrder       `json:"sort"`
	Reports []report.Report `json:"reports"`
	Summary Summary         `json:"summary"`
}

// ParseFilter accepts "all" (or an empty value) and any form branch.Parse understands.
func ParseFilter(value string) (Filter, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" || strings.EqualFold(trimmed, string(FilterAll)) {
		return FilterAll, nil
	}
	b, err := branch.Parse(trimmed)
	if err != nil {
		return "", ErrInvalidFilter
	}
	return Filter(b), nil
}

// ParseSortOrder accepts newest (the default for an empty value) or oldest.
func ParseSortOrder(value string) (SortOrder, error) {
	switch SortOrder(strings.ToLower(strings.TrimSpace(value))) {
	case "", Newest:
		return Newest, nil
	case Oldest:
		return Oldest, nil
	default:
		return "", ErrInvalidSort
	}
}

func (f Filter) keep(r report.Report) bool {
	return f == FilterAll || f == "" || string(r.Branch) == string(f)
}

// Project filters all by branch, orders the result by creation time and summarizes
// exactly the kept reports. The input slice is never modified and ties keep their
// original relative order.
func Project(all []report.Report, filter Filter, order SortOrder) Projection {
	if filter == "" {
		filter = FilterAll
	}
	if order == "" {
		order = Newest
	}
	kept := make([]report.Report, 0, len(all))
	for _, r := range all {
		if filter.keep(r) {
			kept = append(kept, r)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		if order == Oldest {
			return kept[i].Date.Before(kept[j].Date)
		}
		return kept[i].Date.After(kept[j].Date)
	})

	summary := Summary{TotalReports: len(kept), TotalAmount: decimal.Zero}
	for _, r := range kept {
		summary.TotalAmount = summary.TotalAmount.Add(r.Amount)
		summary.TotalTransactions += r.Transactions
	}
	return Projection{Filter: filter, Sort: order, Reports: kept, Summary: summary}
}
