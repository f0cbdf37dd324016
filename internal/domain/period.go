package domain

import (
	"fmt"
	"time"
)

// PeriodKind is the closed set of recap periods.
type PeriodKind string

const (
	PeriodDaily   PeriodKind = "daily"
	PeriodWeekly  PeriodKind = "weekly"
	PeriodMonthly PeriodKind = "monthly"
	PeriodYearly  PeriodKind = "yearly"
)

// ParsePeriodKind converts a wire string into a PeriodKind.
func ParsePeriodKind(s string) (PeriodKind, error) {
	switch PeriodKind(s) {
	case PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodYearly:
		return PeriodKind(s), nil
	}
	return "", fmt.Errorf("unsupported period kind %q: %w", s, ErrValidation)
}

// Valid reports whether k is one of the four known kinds.
func (k PeriodKind) Valid() bool {
	switch k {
	case PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodYearly:
		return true
	}
	return false
}

// MinEntries is the minimum entry count required before a recap is generated
// for this period kind.
func (k PeriodKind) MinEntries() int {
	switch k {
	case PeriodWeekly:
		return 3
	case PeriodMonthly:
		return 5
	case PeriodYearly:
		return 10
	default:
		return 1
	}
}

// HighlightCap is the maximum number of highlight image URLs kept on an
// aggregation for this period kind.
func (k PeriodKind) HighlightCap() int {
	switch k {
	case PeriodWeekly:
		return 10
	case PeriodMonthly:
		return 15
	case PeriodYearly:
		return 25
	default:
		return 3
	}
}

// Window is the time range an aggregation covers. Both ends are inclusive:
// entries created in [Start, End] belong to the window (legacy convention).
type Window struct {
	Start time.Time `json:"start" dynamodbav:"start"`
	End   time.Time `json:"end" dynamodbav:"end"`
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}
