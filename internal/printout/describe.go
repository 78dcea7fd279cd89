// Package printout assembles the human-readable strings and snapshots that
// accompany the administration grid on printed documents: item description
// lines, frequency labels, administration guidance and patient/payer
// headers.
package printout

import (
	"fmt"
	"strings"

	"github.com/vitalcare/rxgrid/internal/domain/prescription"
	"github.com/vitalcare/rxgrid/internal/schedule"
)

// GuidanceSeparator joins the pieces of a guidance line.
const GuidanceSeparator = " • "

// instructions longer than this cap are truncated with an ellipsis so rows
// keep a predictable height on the printed grid.
const instructionsCap = 50

// unitAbbrev maps times-per units onto their printed abbreviations.
var unitAbbrev = map[string]string{
	"day":   "DIA",
	"week":  "SEM",
	"month": "MES",
	"hour":  "HORA",
}

// GuidanceLine joins the administration route and a length-capped
// instructions string. Both sides absent renders as "-".
func GuidanceLine(route, instructions string) string {
	route = strings.TrimSpace(route)
	instructions = capInstructions(instructions)

	switch {
	case route == "" && instructions == "":
		return "-"
	case route == "":
		return instructions
	case instructions == "":
		return route
	default:
		return route + GuidanceSeparator + instructions
	}
}

// TimeAndGuidance combines the compact time list with the guidance line,
// omitting whichever side carries no data.
func TimeAndGuidance(timeChecks any, route, instructions string) string {
	times := schedule.FormatCompactTimes(timeChecks)
	guidance := GuidanceLine(route, instructions)

	switch {
	case times == "-" || times == "":
		return guidance
	case guidance == "-":
		return times
	default:
		return times + GuidanceSeparator + guidance
	}
}

// ItemDescription builds the printed description for one item. A display
// name set on the item wins verbatim: it already carries the concentration
// text, and re-deriving the line from product fields would duplicate it.
// Otherwise the line is assembled from the product, followed by an
// instructions line and one line per sub-component.
func ItemDescription(it *prescription.Item) string {
	var lines []string

	if it.DisplayName != "" {
		lines = append(lines, it.DisplayName)
	} else if it.Product != nil {
		lines = append(lines, productLine(it.Product))
	}

	if it.DisplayName == "" && strings.TrimSpace(it.Instructions) != "" {
		lines = append(lines, "- "+strings.TrimSpace(it.Instructions))
	}

	for _, c := range it.Components {
		lines = append(lines, componentLine(&c))
	}

	return strings.Join(lines, "\n")
}

// productLine renders "<name> <concentration> <quantity> <unit>". Name and
// concentration are joined with a plain space, never a hyphen.
func productLine(p *prescription.Product) string {
	parts := []string{}
	if p.Name != "" {
		parts = append(parts, p.Name)
	}
	if p.Concentration != "" {
		parts = append(parts, p.Concentration)
	}
	if p.Quantity > 0 {
		parts = append(parts, prescription.FormatQuantity(p.Quantity))
	}
	if p.Unit.Symbol != "" {
		parts = append(parts, p.Unit.Symbol)
	}
	return strings.Join(parts, " ")
}

// componentLine renders "* <name> <concentration> - <quantity> <unit>".
func componentLine(c *prescription.Component) string {
	line := "* " + c.Name
	if c.Concentration != "" {
		line += " " + c.Concentration
	}
	if c.Quantity > 0 {
		line += " - " + prescription.FormatQuantity(c.Quantity)
		if c.Unit.Symbol != "" {
			line += " " + c.Unit.Symbol
		}
	}
	return line
}

// FrequencyLabel renders the human-readable frequency for one item:
// "12/12h" for interval items whose interval divides into whole hours,
// "3xDIA" for times-per items, the PRN sentinel for as-needed items.
// Items without usable frequency data render as "-".
func FrequencyLabel(it *prescription.Item) string {
	if it.AsNeeded {
		return schedule.MarkAsNeeded
	}

	f := it.Frequency
	switch f.Mode {
	case prescription.ModeEvery:
		if f.IntervalMinutes > 0 && f.IntervalMinutes%60 == 0 {
			h := f.IntervalMinutes / 60
			return fmt.Sprintf("%d/%dh", h, h)
		}
		if f.IntervalMinutes > 0 {
			return fmt.Sprintf("%dmin", f.IntervalMinutes)
		}
	case prescription.ModeTimesPer:
		if f.TimesValue > 0 && f.TimesUnit != "" {
			return fmt.Sprintf("%dx%s", f.TimesValue, unitLabel(f.TimesUnit))
		}
	case prescription.ModeShift:
		if codes := schedule.SortShifts(schedule.ParseShiftCodes(f.TimeChecks)); len(codes) > 0 {
			return strings.Join(codes, " ")
		}
	}
	return "-"
}

func unitLabel(unit string) string {
	if abbrev, ok := unitAbbrev[strings.ToLower(strings.TrimSpace(unit))]; ok {
		return abbrev
	}
	return strings.ToUpper(strings.TrimSpace(unit))
}

func capInstructions(s string) string {
	s = strings.TrimSpace(s)
	// Cap by runes, not bytes: instructions are Portuguese text and a byte
	// slice can split an accented character.
	r := []rune(s)
	if len(r) <= instructionsCap {
		return s
	}
	return strings.TrimSpace(string(r[:instructionsCap])) + "..."
}
