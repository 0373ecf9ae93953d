/*
dates.go - Calendar day value type and date normalization

PURPOSE:
  Resolves a worklog's stored date into a canonical calendar day.
  Two encodings are accepted:
    - ISO calendar day strings ("2024-03-15")
    - legacy spreadsheet day-count serials ("45366"), left over from
      worklogs imported out of a spreadsheet

SERIAL CONVERSION:
  Spreadsheet serials count days from 1899-12-30. Serial 25569 is
  1970-01-01, so serial v resolves to the Unix epoch day plus
  round(v - 25569) days.

UNKNOWN DAYS:
  Empty input yields the zero CalendarDay instead of an error so that
  downstream grouping can skip the record while raw listings keep it.

SEE ALSO:
  - aggregate.go: Excludes unknown days from buckets
  - errors.go:    ErrInvalidDateFormat
*/
package worklog

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// serialEpochOffset is the spreadsheet serial of 1970-01-01.
const serialEpochOffset = 25569

// =============================================================================
// CALENDAR DAY - Date with no time-of-day or timezone component
// =============================================================================

// CalendarDay is a pure date value. The zero value is the "unknown day"
// sentinel. Equality is by the (year, month, day) triple regardless of
// the encoding a record arrived in; values are comparable and usable as
// map keys.
type CalendarDay struct {
	Year  int
	Month time.Month
	Day   int
}

// NewCalendarDay builds a normalized day. Out-of-range components roll
// over per the calendar (time.Date semantics); use ParseDay to reject
// them instead.
func NewCalendarDay(year int, month time.Month, day int) CalendarDay {
	return DayOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DayOf extracts the calendar day of a time.Time in its own location.
func DayOf(t time.Time) CalendarDay {
	return CalendarDay{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// Today returns the current local calendar day.
func Today() CalendarDay {
	return DayOf(time.Now())
}

// IsZero reports whether this is the unknown-day sentinel.
func (d CalendarDay) IsZero() bool {
	return d == CalendarDay{}
}

// Time returns midnight UTC of the day, for arithmetic.
func (d CalendarDay) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// ISO renders the day as YYYY-MM-DD. The zero value renders empty.
func (d CalendarDay) ISO() string {
	if d.IsZero() {
		return ""
	}
	return d.Time().Format("2006-01-02")
}

func (d CalendarDay) String() string { return d.ISO() }

// Comparison
func (d CalendarDay) Before(other CalendarDay) bool { return d.Time().Before(other.Time()) }
func (d CalendarDay) After(other CalendarDay) bool  { return d.Time().After(other.Time()) }
func (d CalendarDay) Equal(other CalendarDay) bool  { return d == other }

// Arithmetic
func (d CalendarDay) AddDays(n int) CalendarDay   { return DayOf(d.Time().AddDate(0, 0, n)) }
func (d CalendarDay) AddMonths(n int) CalendarDay { return DayOf(d.Time().AddDate(0, n, 0)) }

// Properties
func (d CalendarDay) Weekday() time.Weekday { return d.Time().Weekday() }

// InMonth reports whether the day falls in the given calendar month.
// Always false for the unknown-day sentinel.
func (d CalendarDay) InMonth(year int, month time.Month) bool {
	return !d.IsZero() && d.Year == year && d.Month == month
}

// =============================================================================
// DATE NORMALIZER
// =============================================================================

// ParseDay resolves a stored date value to a CalendarDay.
//
//   - "" yields the unknown-day sentinel and no error
//   - strings containing "-" parse strictly as ISO YYYY-MM-DD
//   - numeric input is a spreadsheet day-count serial
//
// Anything else fails with ErrInvalidDateFormat. Pure and
// deterministic; safe to call repeatedly on the same snapshot.
func ParseDay(raw string) (CalendarDay, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return CalendarDay{}, nil
	}

	if strings.Contains(raw, "-") {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return CalendarDay{}, &DateFormatError{Raw: raw}
		}
		return DayOf(t), nil
	}

	serial, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return CalendarDay{}, &DateFormatError{Raw: raw}
	}
	return dayFromSerial(serial), nil
}

// dayFromSerial maps a spreadsheet serial to the Unix epoch day plus
// round(serial - 25569) days.
func dayFromSerial(serial float64) CalendarDay {
	offset := int(math.Round(serial - serialEpochOffset))
	epoch := time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)
	return DayOf(epoch.AddDate(0, 0, offset))
}
