package schedule

import (
	"sort"
	"strings"
	"time"

	"github.com/vitalcare/rxgrid/internal/domain/prescription"
)

// Marker strings emitted into grid cells. These exact tokens are a
// micro-format that downstream print layouts pattern-match on, so they must
// be reproduced byte-for-byte.
const (
	// MarkHatched fills cells where the item is not administered: inactive
	// items, dates outside the activation window, or no schedule data.
	MarkHatched = "###HATCHED###"
	// MarkAsNeeded fills cells of "as needed" (PRN) items.
	MarkAsNeeded = "SN"
)

const minutesPerDay = 24 * 60

// SnapshotEntry is one rendered grid cell: a date and its mark.
type SnapshotEntry struct {
	Date time.Time `json:"date"`
	Mark string    `json:"mark"`
}

// ResolveMark computes the printable mark for one item on one date. The
// decision order is fixed: activation window first (bounds take precedence
// over any frequency computation), then the PRN override, then the weekday
// restriction, then the frequency mode switch. Both window bounds are
// inclusive, so an item ending on D still marks D itself and hatches
// from D+1 on.
func ResolveMark(it *prescription.Item, date time.Time) string {
	if !ActiveOn(it, date) {
		return MarkHatched
	}
	if it.AsNeeded {
		return MarkAsNeeded
	}
	if len(it.WeekDays) > 0 && !weekDayIncluded(it.WeekDays, date) {
		return MarkHatched
	}

	switch it.Frequency.Mode {
	case prescription.ModeEvery:
		return intervalMark(it.Frequency.TimeStart, it.Frequency.IntervalMinutes)
	case prescription.ModeShift:
		return shiftMark(it.Frequency.TimeChecks)
	case prescription.ModeTimesPer:
		return timesMark(it.Frequency.TimeChecks)
	default:
		// Unrecognized modes still mark when they carry explicit times.
		if len(it.Frequency.TimeChecks) > 0 {
			return timesMark(it.Frequency.TimeChecks)
		}
		return MarkHatched
	}
}

// BuildRow maps ResolveMark over every column, preserving column order.
// The result always has exactly one entry per column.
func BuildRow(it *prescription.Item, columns []PrintColumn) []SnapshotEntry {
	row := make([]SnapshotEntry, len(columns))
	for i, col := range columns {
		row[i] = SnapshotEntry{Date: col.Date, Mark: ResolveMark(it, col.Date)}
	}
	return row
}

// intervalMark generates tick marks every interval minutes across the 24h
// day, starting from the anchor time (midnight when absent), and joins the
// hour tokens in ascending order.
func intervalMark(timeStart string, intervalMinutes int) string {
	if intervalMinutes <= 0 {
		return MarkHatched
	}
	start, ok := clockToMinutes(timeStart)
	if !ok {
		start = 0
	}
	ticks := []int{}
	for m := start; m < start+minutesPerDay; m += intervalMinutes {
		ticks = append(ticks, m%minutesPerDay)
	}
	sort.Ints(ticks)
	tokens := make([]string, len(ticks))
	for i, m := range ticks {
		tokens[i] = hourToken(m)
	}
	return strings.Join(tokens, " ")
}

// shiftMark renders shift-letter checks in the fixed M T N order.
func shiftMark(checks []string) string {
	codes := SortShifts(ParseShiftCodes(checks))
	if len(codes) == 0 {
		return MarkHatched
	}
	return strings.Join(codes, " ")
}

// timesMark renders explicit clock-time checks as hour tokens in
// chronological order; minutes are preserved only when non-zero.
func timesMark(checks []string) string {
	minutes := []int{}
	for _, t := range ParseTimeChecks(checks) {
		if m, ok := clockToMinutes(t); ok {
			minutes = append(minutes, m)
		}
	}
	if len(minutes) == 0 {
		return MarkHatched
	}
	sort.Ints(minutes)
	tokens := make([]string, len(minutes))
	for i, m := range minutes {
		tokens[i] = hourToken(m)
	}
	return strings.Join(tokens, " ")
}

func weekDayIncluded(days []int, date time.Time) bool {
	wd := int(dateOnly(date).Weekday())
	for _, d := range days {
		if d == wd {
			return true
		}
	}
	return false
}
