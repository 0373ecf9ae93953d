/*
heatmap.go - Rolling 28-day intensity grid

PURPOSE:
  Produces the four-week overtime heatmap: 28 consecutive calendar days
  ending on the Sunday that closes the reference day's week, so the
  grid is always four complete Monday-Sunday rows.

LEVELS:
  0  no overtime
  1  under an hour
  2  one to under two hours
  3  two to under four hours
  4  four hours or more

SEE ALSO:
  - aggregate.go: totalsByDay
*/
package worklog

import (
	"github.com/shopspring/decimal"
)

// GridDays is the fixed size of the heatmap window: four full weeks.
const GridDays = 28

var (
	levelOne  = decimal.NewFromInt(1)
	levelTwo  = decimal.NewFromInt(2)
	levelFour = decimal.NewFromInt(4)
)

// BuildGrid returns exactly GridDays cells, chronologically consecutive,
// the last of which is the Sunday closing ref's week (ref itself when
// ref is a Sunday). Days without records get zero hours and level 0.
func BuildGrid(records []WorklogRecord, ref CalendarDay) []HeatmapCell {
	end := weekClosingSunday(ref)
	start := end.AddDays(-(GridDays - 1))
	totals := totalsByDay(records)

	cells := make([]HeatmapCell, 0, GridDays)
	for day := start; !day.After(end); day = day.AddDays(1) {
		hours, ok := totals[day]
		if !ok {
			hours = decimal.Zero
		}
		cells = append(cells, HeatmapCell{
			Day:         day,
			TotalHours:  hours,
			Level:       IntensityLevel(hours),
			MonthAnchor: day == start || day.Day == 1,
		})
	}
	return cells
}

// IntensityLevel classifies a day's total hours on the 0-4 scale.
// Thresholds are evaluated ascending so higher bands win.
func IntensityLevel(hours decimal.Decimal) int {
	level := 0
	if hours.IsPositive() {
		level = 1
	}
	if hours.GreaterThanOrEqual(levelOne) {
		level = 2
	}
	if hours.GreaterThanOrEqual(levelTwo) {
		level = 3
	}
	if hours.GreaterThanOrEqual(levelFour) {
		level = 4
	}
	return level
}

// weekClosingSunday returns the Sunday ending the week containing day:
// day itself for Sundays, otherwise the upcoming Sunday.
func weekClosingSunday(day CalendarDay) CalendarDay {
	// time.Sunday is 0, so the offset is already 0 on Sundays.
	offset := (7 - int(day.Weekday())) % 7
	return day.AddDays(offset)
}
