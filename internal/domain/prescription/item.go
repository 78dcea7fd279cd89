// Package prescription holds the prescription domain model consumed by the
// scheduling engine. Values here are read-only snapshots loaded from the
// persistence layer; the engine never mutates them.
package prescription

import (
	"strconv"
	"strings"
	"time"
)

// Mode discriminates how an item's administration schedule is derived.
type Mode string

const (
	// ModeEvery marks interval dosing anchored at a start time.
	ModeEvery Mode = "every"
	// ModeShift marks dosing at fixed day shifts (morning/afternoon/night).
	ModeShift Mode = "shift"
	// ModeTimesPer marks dosing N times per unit at explicit clock times.
	ModeTimesPer Mode = "times_per"
	// ModeUndefined is the zero value for items with no schedule data.
	ModeUndefined Mode = ""
)

// Frequency is the tagged representation of an item's dosing schedule.
// Mode selects which of the remaining fields are meaningful: IntervalMinutes
// and TimeStart for ModeEvery, TimeChecks for ModeShift and ModeTimesPer,
// TimesValue/TimesUnit only for the human-readable label.
type Frequency struct {
	Mode            Mode     `json:"mode"`
	IntervalMinutes int      `json:"interval_minutes,omitempty"`
	TimeStart       string   `json:"time_start,omitempty"`
	TimeChecks      []string `json:"time_checks,omitempty"`
	TimesValue      int      `json:"times_value,omitempty"`
	TimesUnit       string   `json:"times_unit,omitempty"`
}

// Unit is a dispensing unit of measure.
type Unit struct {
	Symbol string `json:"symbol"`
}

// Product describes the prescribed product for display purposes.
type Product struct {
	Name          string  `json:"name"`
	Concentration string  `json:"concentration,omitempty"`
	Quantity      float64 `json:"quantity,omitempty"`
	Unit          Unit    `json:"unit"`
}

// Component is a sub-component of a compounded item.
type Component struct {
	Name          string  `json:"name"`
	Concentration string  `json:"concentration,omitempty"`
	Quantity      float64 `json:"quantity,omitempty"`
	Unit          Unit    `json:"unit"`
}

// Item is one line of a prescription.
//
// StartDate and EndDate bound the activation window inclusively; a nil bound
// is open-ended. Items with Active=false never produce a printable mark.
// AsNeeded overrides all frequency data with the PRN sentinel.
type Item struct {
	ID           string      `json:"id"`
	ItemType     string      `json:"item_type,omitempty"`
	Active       bool        `json:"is_active"`
	AsNeeded     bool        `json:"is_prn"`
	Frequency    Frequency   `json:"frequency"`
	WeekDays     []int       `json:"week_days,omitempty"`
	StartDate    *time.Time  `json:"start_date,omitempty"`
	EndDate      *time.Time  `json:"end_date,omitempty"`
	DisplayName  string      `json:"display_name,omitempty"`
	Product      *Product    `json:"product,omitempty"`
	Components   []Component `json:"components,omitempty"`
	Route        string      `json:"route,omitempty"`
	Instructions string      `json:"instructions,omitempty"`
}

// Payer is a billing payer associated with a patient.
type Payer struct {
	Name    string `json:"name"`
	Primary bool   `json:"is_primary"`
}

// Patient is the minimal patient data needed for print snapshots.
type Patient struct {
	Name      string     `json:"name"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
}

// Prescription groups a patient's items together with billing context.
type Prescription struct {
	ID            string  `json:"id"`
	Patient       Patient `json:"patient"`
	Payers        []Payer `json:"payers,omitempty"`
	BillingClient string  `json:"billing_client,omitempty"`
	Items         []Item  `json:"items"`
}

// ParseDate parses an ISO date (optionally carrying a time suffix) into a
// date-only value. Unparseable input yields nil: an invalid bound is treated
// as absent, never as today.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if len(s) > 10 {
		s = s[:10]
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &t
}

// FormatQuantity renders a quantity without trailing zeros ("40", "0.5").
func FormatQuantity(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}
