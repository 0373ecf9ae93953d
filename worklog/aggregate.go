/*
aggregate.go - Calendar-month bucketing and totals

PURPOSE:
  Buckets a worklog snapshot by calendar month relative to a reference
  day and computes exact hour totals for the reference month and the
  month before it. Output is recomputed from scratch on every call;
  repeated calls over an unchanged snapshot are identical.

EDGE CASES:
  - Records whose date cannot be normalized are excluded from both
    buckets (they stay visible in raw listings).
  - January's previous month is December of the previous year.
  - Totals are exact decimal sums; display rounding is the caller's
    presentation concern.

SEE ALSO:
  - dates.go:   ParseDay, CalendarDay
  - heatmap.go: Per-day bucketing for the intensity grid
*/
package worklog

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Summarize buckets records into the calendar month containing ref and
// the month immediately before it, rolling over the year boundary.
func Summarize(records []WorklogRecord, ref CalendarDay) MonthSummary {
	prev := NewCalendarDay(ref.Year, ref.Month-1, 1)
	return MonthSummary{
		Current:  MonthOf(records, ref.Year, ref.Month),
		Previous: MonthOf(records, prev.Year, prev.Month),
	}
}

// MonthOf collects the records of one calendar month, ordered ascending
// by day, with their exact hour total.
func MonthOf(records []WorklogRecord, year int, month time.Month) MonthBucket {
	bucket := MonthBucket{Year: year, Month: month, TotalHours: decimal.Zero}

	type dated struct {
		day CalendarDay
		rec WorklogRecord
	}
	var matches []dated
	for _, r := range records {
		day, err := r.Day()
		if err != nil || day.IsZero() {
			continue // unbucketable, kept only in raw listings
		}
		if !day.InMonth(year, month) {
			continue
		}
		matches = append(matches, dated{day: day, rec: r})
		bucket.TotalHours = bucket.TotalHours.Add(r.DurationHours)
	}

	// Stable: same-day records keep their input order.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].day.Before(matches[j].day)
	})
	for _, m := range matches {
		bucket.Records = append(bucket.Records, m.rec)
	}
	return bucket
}

// SortNewestFirst returns a copy of records ordered by normalized day,
// newest first. Records sharing a day keep their relative input order;
// records whose day cannot be resolved sort last, also in input order.
// Raw listings use this so a backfilled entry lands under its own day,
// not under its entry time.
func SortNewestFirst(records []WorklogRecord) []WorklogRecord {
	sorted := make([]WorklogRecord, len(records))
	copy(sorted, records)

	sort.SliceStable(sorted, func(i, j int) bool {
		di, erri := sorted[i].Day()
		dj, errj := sorted[j].Day()
		iKnown := erri == nil && !di.IsZero()
		jKnown := errj == nil && !dj.IsZero()
		if iKnown != jKnown {
			return iKnown
		}
		return iKnown && di.After(dj)
	})
	return sorted
}

// totalsByDay sums hours per normalized calendar day. Shared by the
// heatmap builder; unparseable and unknown days are skipped.
func totalsByDay(records []WorklogRecord) map[CalendarDay]decimal.Decimal {
	totals := make(map[CalendarDay]decimal.Decimal)
	for _, r := range records {
		day, err := r.Day()
		if err != nil || day.IsZero() {
			continue
		}
		totals[day] = totals[day].Add(r.DurationHours)
	}
	return totals
}

// FindByDate returns the first record whose normalized day equals day,
// or nil. Callers use this to implement upsert-by-date: the engine
// provides the lookup but does not enforce day uniqueness itself.
func FindByDate(records []WorklogRecord, day CalendarDay) *WorklogRecord {
	if day.IsZero() {
		return nil
	}
	for i := range records {
		d, err := records[i].Day()
		if err != nil {
			continue
		}
		if d == day {
			return &records[i]
		}
	}
	return nil
}
