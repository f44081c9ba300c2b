package branch

import (
	"errors"
	"strings"
)

// Branch identifies one of the fixed retail locations a digest can be entered for.
type Branch string

// Registry members in display order.
const (
	Galleria    Branch = "Galleria Mall"
	Mecca       Branch = "Mecca Mall"
	FashionGate Branch = "Fashion Gate"
)

// ErrUnknownBranch is returned when a value does not name a registered branch.
var ErrUnknownBranch = errors.New("unknown branch")

type entry struct {
	id             Branch
	salesHeading   string
	metricsHeading string
}

var registry = []entry{
	{id: Galleria, salesHeading: "KOTON galleria mall", metricsHeading: "galleriamall"},
	{id: Mecca, salesHeading: "KOTON Mecca", metricsHeading: "Mecca mall"},
	{id: FashionGate, salesHeading: "KOTON Fashion Gate", metricsHeading: "Fashion Gate"},
}

// All returns the registered branches in their fixed display order.
func All() []Branch {
	out := make([]Branch, 0, len(registry))
	for _, e := range registry {
		out = append(out, e.id)
	}
	return out
}

// Valid reports whether b is a registry member.
func (b Branch) Valid() bool {
	_, ok := lookup(b)
	return ok
}

// String implements fmt.Stringer.
func (b Branch) String() string { return string(b) }

// Slug returns the URL-safe form of the branch, e.g. "fashion-gate".
func (b Branch) Slug() string {
	return strings.ReplaceAll(strings.ToLower(string(b)), " ", "-")
}

// SalesHeading is the heading used above the raw figures block of a digest.
func (b Branch) SalesHeading() string {
	if e, ok := lookup(b); ok {
		return e.salesHeading
	}
	return string(b)
}

// MetricsHeading is the heading used above the derived metrics block of a digest.
func (b Branch) MetricsHeading() string {
	if e, ok := lookup(b); ok {
		return e.metricsHeading
	}
	return string(b)
}

// Parse resolves an identifier or slug into a registered branch. Matching is case-insensitive
// and ignores surrounding whitespace.
func Parse(value string) (Branch, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", ErrUnknownBranch
	}
	for _, e := range registry {
		if strings.EqualFold(trimmed, string(e.id)) || strings.EqualFold(trimmed, e.id.Slug()) {
			return e.id, nil
		}
	}
	return "", ErrUnknownBranch
}

func lookup(b Branch) (entry, bool) {
	for _, e := range registry {
		if e.id == b {
			return e, true
		}
	}
	return entry{}, false
}
