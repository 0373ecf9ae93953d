/*
Package worklog provides the core worklog aggregation and reporting engine.

PURPOSE:
  This package contains the pure data-transformation logic that turns a
  raw collection of overtime worklog records into derived views:
  calendar-bucketed month summaries, a fixed 28-day intensity heatmap,
  qualitative comments, and a month-filtered CSV export.

KEY CONCEPTS IN THIS FILE (types.go):
  - WorklogRecord: A single overtime session as returned by a Store
  - Candidate:     The mutable fields of a record, pre-validation
  - CalendarDay:   A date value with no time-of-day component
  - MonthBucket:   Records grouped by calendar month, with total hours
  - HeatmapCell:   One day of the intensity grid

DESIGN PRINCIPLES:
  1. Statelessness: Every derived view is recomputed from the full
     record snapshot. Nothing is cached or mutated incrementally.
  2. Precision: Uses decimal.Decimal for hour arithmetic to avoid
     floating-point errors in totals.
  3. Tolerance on read: Records with unparseable dates are excluded
     from buckets but never abort an aggregation.

USAGE:
  records, _ := store.List(ctx)
  summary := worklog.Summarize(records, worklog.Today())
  grid := worklog.BuildGrid(records, worklog.Today())

SEE ALSO:
  - dates.go:     Date normalization (ISO and spreadsheet serials)
  - aggregate.go: Month bucketing
  - heatmap.go:   Intensity grid
  - export.go:    CSV serialization
  - store.go:     WorklogStore collaborator contract
*/
package worklog

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// WORKLOG RECORD - A single overtime session
// =============================================================================

// WorklogRecord is an overtime session as stored. Date carries the raw
// stored encoding (ISO day or legacy spreadsheet serial); use Day() to
// resolve it. Notes is optional and may be empty.
type WorklogRecord struct {
	ID            string
	Date          string
	DurationHours decimal.Decimal
	Reason        string
	Notes         string
}

// Day resolves the record's stored date to a CalendarDay.
func (r WorklogRecord) Day() (CalendarDay, error) {
	return ParseDay(r.Date)
}

// Candidate holds the four mutable fields of a worklog record, as
// submitted by a caller before validation. The store assigns IDs.
type Candidate struct {
	Date          string
	DurationHours decimal.Decimal
	Reason        string
	Notes         string
}

// =============================================================================
// DERIVED VIEWS
// =============================================================================

// MonthBucket groups the records of one calendar month.
// Records are ordered ascending by day; TotalHours is an exact sum.
type MonthBucket struct {
	Year       int
	Month      time.Month
	Records    []WorklogRecord
	TotalHours decimal.Decimal
}

// MonthSummary pairs the reference month with the month before it.
type MonthSummary struct {
	Current  MonthBucket
	Previous MonthBucket
}

// HeatmapCell is one day of the 28-day intensity grid.
// Level classifies the day's total hours on a 0-4 scale.
// MonthAnchor marks cells where the caller should render a month label
// instead of a bare day number.
type HeatmapCell struct {
	Day         CalendarDay
	TotalHours  decimal.Decimal
	Level       int
	MonthAnchor bool
}

// =============================================================================
// HOUR HELPERS
// =============================================================================

// ParseHours converts a stored duration to a decimal. Unparseable input
// contributes zero rather than failing; validation at write time makes
// this unreachable for records created through ValidateCandidate.
func ParseHours(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Hours builds a decimal hour value from a float. Test and CLI helper.
func Hours(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}
