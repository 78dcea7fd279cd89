package printout

import (
	"time"

	"github.com/vitalcare/rxgrid/internal/domain/prescription"
	"github.com/vitalcare/rxgrid/internal/schedule"
)

// GridRow is one item's rendered line on the grid: its description block,
// labels and one mark per column.
type GridRow struct {
	ItemID          string   `json:"item_id"`
	ItemType        string   `json:"item_type,omitempty"`
	Description     string   `json:"description"`
	FrequencyLabel  string   `json:"frequency_label"`
	TimeAndGuidance string   `json:"time_and_guidance"`
	Marks           []string `json:"marks"`
}

// GridDocument is a fully rendered printable grid for one prescription and
// one date range. It is the unit stored as a snapshot and published to
// print/export consumers.
type GridDocument struct {
	PrescriptionID string          `json:"prescription_id"`
	Patient        PatientSnapshot `json:"patient"`
	PeriodStart    string          `json:"period_start"`
	PeriodEnd      string          `json:"period_end"`
	Columns        []string        `json:"columns"`
	Rows           []GridRow       `json:"rows"`
}

// RenderRange renders the grid for an arbitrary inclusive date range.
// Items outside the range (or inactive) are filtered out entirely rather
// than printed as all-hatched rows.
func RenderRange(p *prescription.Prescription, rangeStart, rangeEnd, referenceDate time.Time) *GridDocument {
	columns := schedule.ColumnsBetween(rangeStart, rangeEnd)

	doc := &GridDocument{
		PrescriptionID: p.ID,
		Patient:        BuildPatientSnapshot(p, referenceDate),
		Columns:        make([]string, len(columns)),
	}
	if len(columns) > 0 {
		doc.PeriodStart = columns[0].Date.Format("2006-01-02")
		doc.PeriodEnd = columns[len(columns)-1].Date.Format("2006-01-02")
	}
	for i, col := range columns {
		doc.Columns[i] = col.Date.Format("2006-01-02")
	}

	items := schedule.FilterForRange(p.Items, rangeStart, rangeEnd)
	doc.Rows = make([]GridRow, 0, len(items))
	for i := range items {
		it := &items[i]
		row := GridRow{
			ItemID:          it.ID,
			ItemType:        it.ItemType,
			Description:     ItemDescription(it),
			FrequencyLabel:  FrequencyLabel(it),
			TimeAndGuidance: timesLabel(it),
			Marks:           make([]string, len(columns)),
		}
		for j, entry := range schedule.BuildRow(it, columns) {
			row.Marks[j] = entry.Mark
		}
		doc.Rows = append(doc.Rows, row)
	}
	return doc
}

// RenderWeek renders the week-aligned grid containing the anchor date.
func RenderWeek(p *prescription.Prescription, anchor time.Time, weekStart time.Weekday, referenceDate time.Time) *GridDocument {
	start, end := schedule.WeekPeriod(anchor, weekStart)
	return RenderRange(p, start, end, referenceDate)
}

// timesLabel chooses the time list shown next to the guidance: shift items
// print their canonical shift times, everything else its explicit checks.
func timesLabel(it *prescription.Item) string {
	checks := it.Frequency.TimeChecks
	if it.Frequency.Mode == prescription.ModeShift {
		codes := schedule.SortShifts(schedule.ParseShiftCodes(checks))
		if times := schedule.FormatShiftChecks(codes); times != nil {
			return TimeAndGuidance(times, it.Route, it.Instructions)
		}
		return TimeAndGuidance(nil, it.Route, it.Instructions)
	}
	if len(checks) == 0 {
		return TimeAndGuidance(nil, it.Route, it.Instructions)
	}
	return TimeAndGuidance(checks, it.Route, it.Instructions)
}
