package prescription

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		nil_ bool
	}{
		{"plain date", "2026-02-10", "2026-02-10", false},
		{"timestamp truncated", "2026-02-10T15:04:05Z", "2026-02-10", false},
		{"whitespace trimmed", "  2026-02-10  ", "2026-02-10", false},
		{"empty", "", "", true},
		{"garbage", "not-a-date", "", true},
		{"partial", "2026-02", "", true},
	}

	for _, tt := range tests {
		got := ParseDate(tt.in)
		if tt.nil_ {
			if got != nil {
				t.Errorf("%s: ParseDate(%q) = %v, want nil", tt.name, tt.in, got)
			}
			continue
		}
		if got == nil {
			t.Errorf("%s: ParseDate(%q) = nil", tt.name, tt.in)
			continue
		}
		if got.Format("2006-01-02") != tt.want {
			t.Errorf("%s: ParseDate(%q) = %s, want %s", tt.name, tt.in, got.Format("2006-01-02"), tt.want)
		}
	}
}

func TestParseDateIsDateOnly(t *testing.T) {
	got := ParseDate("2026-02-10T15:04:05Z")
	want := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("ParseDate kept time of day: %v", got)
	}
}

func TestFormatQuantity(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{40, "40"},
		{2.5, "2.5"},
		{0.25, "0.25"},
		{1000, "1000"},
	}

	for _, tt := range tests {
		if got := FormatQuantity(tt.in); got != tt.want {
			t.Errorf("FormatQuantity(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
