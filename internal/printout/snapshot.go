package printout

import (
	"fmt"
	"time"

	"github.com/vitalcare/rxgrid/internal/domain/prescription"
)

// PatientSnapshot is the header block printed above the grid.
type PatientSnapshot struct {
	Name      string `json:"name"`
	Operadora string `json:"operadora"`
	AgeLabel  string `json:"age_label"`
	BirthDate string `json:"birth_date,omitempty"`
}

// BuildPatientSnapshot resolves the printable patient header for a
// prescription. The billing payer prefers the patient's primary payer entry
// and falls back to the billing client. The age label is computed against
// the explicit reference date so the result is deterministic.
func BuildPatientSnapshot(p *prescription.Prescription, referenceDate time.Time) PatientSnapshot {
	snap := PatientSnapshot{
		Name:      p.Patient.Name,
		Operadora: resolvePayer(p),
	}
	if p.Patient.BirthDate != nil {
		snap.BirthDate = p.Patient.BirthDate.Format("2006-01-02")
		snap.AgeLabel = ageLabel(*p.Patient.BirthDate, referenceDate)
	}
	return snap
}

func resolvePayer(p *prescription.Prescription) string {
	for _, payer := range p.Payers {
		if payer.Primary {
			return payer.Name
		}
	}
	return p.BillingClient
}

// ageLabel renders whole years, or months under one year.
func ageLabel(birth, ref time.Time) string {
	if ref.Before(birth) {
		return ""
	}
	years := ref.Year() - birth.Year()
	anniversary := birth.AddDate(years, 0, 0)
	if anniversary.After(ref) {
		years--
	}
	if years >= 1 {
		return fmt.Sprintf("%d anos", years)
	}
	months := int(ref.Month()) - int(birth.Month()) + 12*(ref.Year()-birth.Year())
	if birth.AddDate(0, months, 0).After(ref) {
		months--
	}
	if months < 0 {
		months = 0
	}
	return fmt.Sprintf("%d meses", months)
}
