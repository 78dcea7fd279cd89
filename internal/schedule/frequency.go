package schedule

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// The frequency normalizer turns the loose encodings found at the system
// boundary (comma-separated strings, JSON arrays, Postgres brace lists)
// into canonical typed values. Normalization never fails: unparseable
// tokens are dropped and an empty result signals absence.

// ParseTimeChecks normalizes a set of clock times. It accepts a slice or a
// comma-separated string, trims each token, strips seconds and drops
// empties. The result is never nil.
func ParseTimeChecks(v any) []string {
	out := []string{}
	for _, tok := range tokenize(v) {
		t := NormalizeClock(tok)
		if t == "" {
			continue
		}
		out = append(out, t)
	}
	return out
}

// ParseShiftCodes normalizes a set of shift letters. Tokens may be the
// letters themselves or clock times that snap onto the shift table; anything
// else is filtered out silently.
func ParseShiftCodes(v any) []string {
	out := []string{}
	for _, tok := range tokenize(v) {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		upper := strings.ToUpper(tok)
		if _, ok := shiftRank[upper]; ok {
			out = append(out, upper)
			continue
		}
		if code, ok := ShiftFromTime(tok); ok {
			out = append(out, code)
		}
	}
	return out
}

// ParseWeekDays extracts weekday numbers (0=Sunday .. 6=Saturday) from a
// native slice, a JSON array string or a Postgres brace list ("{1,2,3}").
// Malformed JSON falls back to brace/CSV stripping; only finite numeric
// values survive.
func ParseWeekDays(v any) []int {
	switch days := v.(type) {
	case nil:
		return []int{}
	case []int:
		out := make([]int, 0, len(days))
		out = append(out, days...)
		return out
	case []float64:
		return finiteInts(days)
	case []any:
		nums := make([]float64, 0, len(days))
		for _, d := range days {
			switch n := d.(type) {
			case float64:
				nums = append(nums, n)
			case int:
				nums = append(nums, float64(n))
			case string:
				if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
					nums = append(nums, f)
				}
			}
		}
		return finiteInts(nums)
	case string:
		s := strings.TrimSpace(days)
		if s == "" {
			return []int{}
		}
		if strings.HasPrefix(s, "[") {
			var nums []float64
			if err := json.Unmarshal([]byte(s), &nums); err == nil {
				return finiteInts(nums)
			}
		}
		s = strings.Trim(s, "{}[]")
		out := []int{}
		for _, tok := range strings.Split(s, ",") {
			f, err := strconv.ParseFloat(strings.TrimSpace(tok), 64)
			if err != nil {
				continue
			}
			if n, ok := finiteInt(f); ok {
				out = append(out, n)
			}
		}
		return out
	default:
		return []int{}
	}
}

// FormatShiftChecks maps shift letters back to their canonical clock times.
// It returns nil when nothing maps, so downstream formatting can show
// "no data" instead of an empty list.
func FormatShiftChecks(codes []string) []string {
	var out []string
	for _, c := range codes {
		if t, ok := TimeFromShift(c); ok {
			out = append(out, t)
		}
	}
	return out
}

// tokenize flattens the accepted loose encodings into raw string tokens.
func tokenize(v any) []string {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		if strings.TrimSpace(val) == "" {
			return nil
		}
		return strings.Split(val, ",")
	case []string:
		return val
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			switch s := item.(type) {
			case string:
				out = append(out, s)
			case fmt.Stringer:
				out = append(out, s.String())
			}
		}
		return out
	default:
		return nil
	}
}

func finiteInts(nums []float64) []int {
	out := []int{}
	for _, f := range nums {
		if n, ok := finiteInt(f); ok {
			out = append(out, n)
		}
	}
	return out
}

func finiteInt(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(f), true
}
