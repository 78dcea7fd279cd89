package schedule

import (
	"reflect"
	"testing"
)

func TestShiftFromTime(t *testing.T) {
	tests := []struct {
		in   string
		code string
		ok   bool
	}{
		{"07:00", "M", true},
		{"13:00", "T", true},
		{"19:00", "N", true},
		{"07:00:00", "M", true},
		{"7:00", "M", true},
		{" 13:00 ", "T", true},
		{"08:00", "", false},
		{"19:01", "", false},
		{"", "", false},
		{"garbage", "", false},
	}

	for _, tt := range tests {
		code, ok := ShiftFromTime(tt.in)
		if ok != tt.ok {
			t.Errorf("ShiftFromTime(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			continue
		}
		if ok && code != tt.code {
			t.Errorf("ShiftFromTime(%q) = %q, want %q", tt.in, code, tt.code)
		}
	}
}

func TestTimeFromShift(t *testing.T) {
	tests := []struct {
		in   string
		time string
		ok   bool
	}{
		{"M", "07:00", true},
		{"T", "13:00", true},
		{"N", "19:00", true},
		{"m", "07:00", true},
		{" n ", "19:00", true},
		{"X", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		clock, ok := TimeFromShift(tt.in)
		if ok != tt.ok {
			t.Errorf("TimeFromShift(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			continue
		}
		if ok && clock != tt.time {
			t.Errorf("TimeFromShift(%q) = %q, want %q", tt.in, clock, tt.time)
		}
	}
}

func TestShiftRoundTrip(t *testing.T) {
	for _, clock := range []string{"07:00", "13:00", "19:00"} {
		code, ok := ShiftFromTime(clock)
		if !ok {
			t.Fatalf("ShiftFromTime(%q) not ok", clock)
		}
		back, ok := TimeFromShift(code)
		if !ok || back != clock {
			t.Errorf("round trip %q -> %q -> %q", clock, code, back)
		}
	}
}

func TestSortShifts(t *testing.T) {
	tests := []struct {
		in   []string
		want []string
	}{
		{[]string{"N", "M", "T"}, []string{"M", "T", "N"}},
		{[]string{"T", "M"}, []string{"M", "T"}},
		{[]string{"N"}, []string{"N"}},
		{[]string{"n", " m "}, []string{"M", "N"}},
		{[]string{"X", "M", "?"}, []string{"M"}},
		{[]string{}, []string{}},
	}

	for _, tt := range tests {
		got := SortShifts(tt.in)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SortShifts(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeClock(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"08:00:00", "08:00"},
		{"8:30", "08:30"},
		{" 19:00 ", "19:00"},
		{"7:5", "07:05"},
		{"", ""},
		{"noon", "noon"},
	}

	for _, tt := range tests {
		if got := NormalizeClock(tt.in); got != tt.want {
			t.Errorf("NormalizeClock(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatCompactTimes(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil means no data", nil, "-"},
		{"empty slice renders empty", []string{}, ""},
		{"leading zero dropped", []string{"08:30"}, "8:30"},
		{"seconds stripped", []string{"08:00:00", "14:30:00"}, "8:00, 14:30"},
		{"csv input", "08:00,20:00", "8:00, 20:00"},
		{"already compact", []string{"14:00"}, "14:00"},
	}

	for _, tt := range tests {
		if got := FormatCompactTimes(tt.in); got != tt.want {
			t.Errorf("%s: FormatCompactTimes(%v) = %q, want %q", tt.name, tt.in, got, tt.want)
		}
	}

	// Formatting an already formatted list must not change it.
	once := FormatCompactTimes([]string{"08:30", "20:00"})
	twice := FormatCompactTimes(once)
	if once != twice {
		t.Errorf("not idempotent: %q vs %q", once, twice)
	}
}

func TestHourToken(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{0, "00"},
		{8 * 60, "08"},
		{20 * 60, "20"},
		{8*60 + 30, "08:30"},
		{23*60 + 59, "23:59"},
	}

	for _, tt := range tests {
		if got := hourToken(tt.minutes); got != tt.want {
			t.Errorf("hourToken(%d) = %q, want %q", tt.minutes, got, tt.want)
		}
	}
}

func TestClockToMinutes(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"00:00", 0, true},
		{"08:30", 510, true},
		{"23:59", 1439, true},
		{"8:30", 510, true},
		{"24:00", 0, false},
		{"12:60", 0, false},
		{"abc", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, ok := clockToMinutes(tt.in)
		if ok != tt.ok {
			t.Errorf("clockToMinutes(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			continue
		}
		if ok && got != tt.want {
			t.Errorf("clockToMinutes(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
