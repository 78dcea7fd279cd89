// Package schedule implements the prescription administration scheduling
// engine: shift codes, frequency normalization, period arithmetic and the
// printable grid generator. Every function is a pure mapping from immutable
// inputs to an output value; the package performs no I/O and reads no
// ambient clock, so concurrent use is safe by construction.
package schedule

import (
	"fmt"
	"sort"
	"strings"
)

// Shift codes for the three fixed day segments.
const (
	ShiftMorning   = "M"
	ShiftAfternoon = "T"
	ShiftNight     = "N"
)

// Administration times are conventionally snapped to three shifts. The table
// is the single source of truth for the convention; nothing else in the
// engine hardcodes it.
var shiftByTime = map[string]string{
	"07:00": ShiftMorning,
	"13:00": ShiftAfternoon,
	"19:00": ShiftNight,
}

var timeByShift = map[string]string{
	ShiftMorning:   "07:00",
	ShiftAfternoon: "13:00",
	ShiftNight:     "19:00",
}

var shiftRank = map[string]int{
	ShiftMorning:   0,
	ShiftAfternoon: 1,
	ShiftNight:     2,
}

// ShiftFromTime maps a clock time onto its shift code. The time is
// normalized to HH:MM first; a time outside the fixed table yields ok=false,
// which is not an error (the caller decides the fallback).
func ShiftFromTime(t string) (string, bool) {
	code, ok := shiftByTime[NormalizeClock(t)]
	return code, ok
}

// TimeFromShift is the inverse lookup over the same fixed table.
func TimeFromShift(code string) (string, bool) {
	t, ok := timeByShift[strings.ToUpper(strings.TrimSpace(code))]
	return t, ok
}

// SortShifts returns the recognized codes in the fixed M, T, N order,
// dropping anything outside the table.
func SortShifts(codes []string) []string {
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		c = strings.ToUpper(strings.TrimSpace(c))
		if _, ok := shiftRank[c]; ok {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return shiftRank[out[i]] < shiftRank[out[j]]
	})
	return out
}

// NormalizeClock trims a time string to canonical HH:MM: seconds are
// dropped and a single-digit hour is zero-padded. Input it cannot make
// sense of is returned trimmed, not rejected.
func NormalizeClock(t string) string {
	t = strings.TrimSpace(t)
	if t == "" {
		return ""
	}
	parts := strings.Split(t, ":")
	if len(parts) < 2 {
		return t
	}
	h, m := parts[0], parts[1]
	if len(h) == 1 {
		h = "0" + h
	}
	if len(m) == 1 {
		m = "0" + m
	}
	return h + ":" + m
}

// FormatCompactTimes renders a time list for dense print layouts: seconds
// stripped, a single leading zero dropped from the hour ("08:30" prints as
// "8:30"), values joined with ", ". It accepts a slice or a comma-separated
// string. Nil input renders as "-"; an empty slice renders as the empty
// string. The nil/empty asymmetry is a long-standing quirk that downstream
// print layouts depend on, so it is preserved rather than unified.
func FormatCompactTimes(v any) string {
	if v == nil {
		return "-"
	}
	times := tokenize(v)
	compact := make([]string, 0, len(times))
	for _, t := range times {
		t = NormalizeClock(t)
		if t == "" {
			continue
		}
		if len(t) > 1 && t[0] == '0' {
			t = t[1:]
		}
		compact = append(compact, t)
	}
	return strings.Join(compact, ", ")
}

// hourToken formats minutes-of-day as a grid mark token: a zero-padded
// 24h hour, with minutes appended only when non-zero.
func hourToken(minuteOfDay int) string {
	h, m := minuteOfDay/60, minuteOfDay%60
	if m == 0 {
		return fmt.Sprintf("%02d", h)
	}
	return fmt.Sprintf("%02d:%02d", h, m)
}

// clockToMinutes converts HH:MM to minutes-of-day. ok=false for anything
// that is not a valid 24h clock time.
func clockToMinutes(t string) (int, bool) {
	t = NormalizeClock(t)
	if len(t) != 5 || t[2] != ':' {
		return 0, false
	}
	var h, m int
	if _, err := fmt.Sscanf(t, "%02d:%02d", &h, &m); err != nil {
		return 0, false
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}
