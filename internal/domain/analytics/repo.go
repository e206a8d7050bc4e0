package analytics

import (
	"context"
)

// PatientVisitCount is one row of the visits-per-patient report.
type PatientVisitCount struct {
	Patient    string `json:"patient"`
	VisitCount int    `json:"visit_count"`
}

type Repository interface {
	// VisitsPerPatient counts visits per patient. Patients with no visits
	// are excluded.
	VisitsPerPatient(ctx context.Context) ([]PatientVisitCount, error)
	// AverageLabResult returns the mean result value for an exact test
	// type match, or nil when no results exist for that type.
	AverageLabResult(ctx context.Context, testType string) (*float64, error)
}
