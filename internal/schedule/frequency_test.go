package schedule

import (
	"reflect"
	"testing"
)

func TestParseTimeChecks(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want []string
	}{
		{"nil is empty not nil", nil, []string{}},
		{"slice", []string{"08:00", "20:00"}, []string{"08:00", "20:00"}},
		{"csv string", "08:00,20:00", []string{"08:00", "20:00"}},
		{"seconds stripped", []string{"08:00:00"}, []string{"08:00"}},
		{"whitespace and empties dropped", " 08:00 , , 20:00 ", []string{"08:00", "20:00"}},
		{"single digit hour padded", []string{"8:30"}, []string{"08:30"}},
		{"empty string", "   ", []string{}},
	}

	for _, tt := range tests {
		got := ParseTimeChecks(tt.in)
		if got == nil {
			t.Errorf("%s: got nil, result must never be nil", tt.name)
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("%s: ParseTimeChecks(%v) = %v, want %v", tt.name, tt.in, got, tt.want)
		}
	}
}

func TestParseShiftCodes(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want []string
	}{
		{"letters pass through", []string{"M", "N"}, []string{"M", "N"}},
		{"lowercase accepted", []string{"m", "t"}, []string{"M", "T"}},
		{"times snap to shifts", []string{"07:00", "19:00"}, []string{"M", "N"}},
		{"mixed letters and times", []string{"T", "07:00"}, []string{"T", "M"}},
		{"unknown tokens dropped", []string{"X", "08:00", "M"}, []string{"M"}},
		{"csv string", "M,T,N", []string{"M", "T", "N"}},
		{"nil", nil, []string{}},
	}

	for _, tt := range tests {
		got := ParseShiftCodes(tt.in)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("%s: ParseShiftCodes(%v) = %v, want %v", tt.name, tt.in, got, tt.want)
		}
	}
}

func TestParseWeekDays(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want []int
	}{
		{"int slice", []int{1, 3, 5}, []int{1, 3, 5}},
		{"float slice", []float64{0, 2, 6}, []int{0, 2, 6}},
		{"json array string", "[1,2,3]", []int{1, 2, 3}},
		{"postgres brace list", "{1,2,3}", []int{1, 2, 3}},
		{"csv string", "0, 6", []int{0, 6}},
		{"any slice with strings", []any{float64(1), "4"}, []int{1, 4}},
		{"malformed json falls back", "[1,2", []int{1, 2}},
		{"garbage tokens dropped", "{a,1,b}", []int{1}},
		{"empty string", "", []int{}},
		{"nil", nil, []int{}},
		{"unsupported type", 42, []int{}},
	}

	for _, tt := range tests {
		got := ParseWeekDays(tt.in)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("%s: ParseWeekDays(%v) = %v, want %v", tt.name, tt.in, got, tt.want)
		}
	}
}

func TestFormatShiftChecks(t *testing.T) {
	got := FormatShiftChecks([]string{"M", "N"})
	want := []string{"07:00", "19:00"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FormatShiftChecks = %v, want %v", got, want)
	}

	// Nothing mapping must yield nil so callers can print "no data".
	if got := FormatShiftChecks([]string{"X"}); got != nil {
		t.Errorf("FormatShiftChecks with no valid codes = %v, want nil", got)
	}
	if got := FormatShiftChecks(nil); got != nil {
		t.Errorf("FormatShiftChecks(nil) = %v, want nil", got)
	}
}
