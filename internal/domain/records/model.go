package records

import (
	"time"

	"github.com/google/uuid"
)

// Patient maps to the patients table.
type Patient struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	FirstName   string     `db:"first_name" json:"first_name"`
	LastName    string     `db:"last_name" json:"last_name"`
	DateOfBirth *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Gender      *string    `db:"gender" json:"gender,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// Doctor maps to the doctors table.
type Doctor struct {
	ID             uuid.UUID `db:"id" json:"id"`
	FirstName      string    `db:"first_name" json:"first_name"`
	LastName       string    `db:"last_name" json:"last_name"`
	Specialization *string   `db:"specialization" json:"specialization,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// Visit maps to the visits table. DoctorID is optional; a visit without an
// attending doctor is valid.
type Visit struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	PatientID uuid.UUID  `db:"patient_id" json:"patient_id"`
	DoctorID  *uuid.UUID `db:"doctor_id" json:"doctor_id,omitempty"`
	VisitDate time.Time  `db:"visit_date" json:"visit_date"`
	Diagnosis *string    `db:"diagnosis" json:"diagnosis,omitempty"`
	Treatment *string    `db:"treatment" json:"treatment,omitempty"`
}

// LabResult maps to the lab_results table. ResultValue is stored with two
// decimal places of precision.
type LabResult struct {
	ID             uuid.UUID `db:"id" json:"id"`
	PatientID      uuid.UUID `db:"patient_id" json:"patient_id"`
	TestType       string    `db:"test_type" json:"test_type"`
	TestDate       time.Time `db:"test_date" json:"test_date"`
	ResultValue    float64   `db:"result_value" json:"result_value"`
	Units          *string   `db:"units" json:"units,omitempty"`
	ReferenceRange *string   `db:"reference_range" json:"reference_range,omitempty"`
}
