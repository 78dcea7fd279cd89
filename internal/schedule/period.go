package schedule

import (
	"time"

	"github.com/vitalcare/rxgrid/internal/domain/prescription"
)

// PrintColumn is one calendar date within a printable range.
type PrintColumn struct {
	Date  time.Time `json:"date"`
	Index int       `json:"index"`
}

// dateOnly strips the time-of-day component, keeping the calendar day.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// InclusiveDays counts the days between two dates, both ends included.
// A range whose end precedes its start counts zero days, never negative.
func InclusiveDays(start, end time.Time) int {
	s, e := dateOnly(start), dateOnly(end)
	if e.Before(s) {
		return 0
	}
	return int(e.Sub(s).Hours()/24) + 1
}

// WeekPeriod returns the 7-day inclusive window that begins on the most
// recent occurrence of weekStart on or before the anchor date.
func WeekPeriod(anchor time.Time, weekStart time.Weekday) (periodStart, periodEnd time.Time) {
	day := dateOnly(anchor)
	back := (int(day.Weekday()) - int(weekStart) + 7) % 7
	periodStart = day.AddDate(0, 0, -back)
	periodEnd = periodStart.AddDate(0, 0, 6)
	return periodStart, periodEnd
}

// ActiveOn reports whether the item is in force on the given date: the item
// must be active and the date must fall inside its inclusive activation
// window. Absent bounds are open-ended.
func ActiveOn(it *prescription.Item, date time.Time) bool {
	if !it.Active {
		return false
	}
	day := dateOnly(date)
	if it.StartDate != nil && day.Before(dateOnly(*it.StartDate)) {
		return false
	}
	if it.EndDate != nil && day.After(dateOnly(*it.EndDate)) {
		return false
	}
	return true
}

// FilterForRange retains the active items whose activation window overlaps
// [rangeStart, rangeEnd]. An item whose end date falls entirely before the
// range is excluded even when still flagged active: expired-but-not-
// deactivated items must not appear on the grid.
func FilterForRange(items []prescription.Item, rangeStart, rangeEnd time.Time) []prescription.Item {
	start, end := dateOnly(rangeStart), dateOnly(rangeEnd)
	out := make([]prescription.Item, 0, len(items))
	for _, it := range items {
		if !it.Active {
			continue
		}
		if it.EndDate != nil && dateOnly(*it.EndDate).Before(start) {
			continue
		}
		if it.StartDate != nil && dateOnly(*it.StartDate).After(end) {
			continue
		}
		out = append(out, it)
	}
	return out
}

// ColumnsBetween builds one print column per day of the inclusive range,
// in ascending date order.
func ColumnsBetween(start, end time.Time) []PrintColumn {
	n := InclusiveDays(start, end)
	cols := make([]PrintColumn, 0, n)
	day := dateOnly(start)
	for i := 0; i < n; i++ {
		cols = append(cols, PrintColumn{Date: day, Index: i})
		day = day.AddDate(0, 0, 1)
	}
	return cols
}

// WeekColumns builds the seven columns of the week containing the anchor,
// for the configured week-start day.
func WeekColumns(anchor time.Time, weekStart time.Weekday) []PrintColumn {
	start, end := WeekPeriod(anchor, weekStart)
	return ColumnsBetween(start, end)
}
