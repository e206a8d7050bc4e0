package records

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// ErrInvalid marks input the caller can correct. Handlers map it to a 400;
// anything else out of the service is an internal failure.
var ErrInvalid = errors.New("invalid input")

type Service struct {
	patients   PatientRepository
	doctors    DoctorRepository
	visits     VisitRepository
	labResults LabResultRepository
}

func NewService(patients PatientRepository, doctors DoctorRepository, visits VisitRepository, labResults LabResultRepository) *Service {
	return &Service{
		patients:   patients,
		doctors:    doctors,
		visits:     visits,
		labResults: labResults,
	}
}

// -- Patient --

func (s *Service) CreatePatient(ctx context.Context, p *Patient) error {
	if p.FirstName == "" || p.LastName == "" {
		return fmt.Errorf("%w: first_name and last_name are required", ErrInvalid)
	}
	return s.patients.Create(ctx, p)
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

// -- Doctor --

func (s *Service) CreateDoctor(ctx context.Context, d *Doctor) error {
	if d.FirstName == "" || d.LastName == "" {
		return fmt.Errorf("%w: first_name and last_name are required", ErrInvalid)
	}
	return s.doctors.Create(ctx, d)
}

func (s *Service) GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return s.doctors.GetByID(ctx, id)
}

// -- Visit --

// CreateVisit records a visit. The patient must exist; the doctor, when
// referenced, must exist too. A zero VisitDate defaults to the current UTC
// time.
func (s *Service) CreateVisit(ctx context.Context, v *Visit) error {
	if v.PatientID == uuid.Nil {
		return fmt.Errorf("%w: patient_id is required", ErrInvalid)
	}

	ok, err := s.patients.Exists(ctx, v.PatientID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("patient %s: %w", v.PatientID, ErrNotFound)
	}

	if v.DoctorID != nil {
		ok, err := s.doctors.Exists(ctx, *v.DoctorID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("doctor %s: %w", *v.DoctorID, ErrNotFound)
		}
	}

	if v.VisitDate.IsZero() {
		v.VisitDate = time.Now().UTC()
	} else {
		v.VisitDate = v.VisitDate.UTC()
	}

	return s.visits.Create(ctx, v)
}

func (s *Service) GetVisit(ctx context.Context, id uuid.UUID) (*Visit, error) {
	return s.visits.GetByID(ctx, id)
}

// -- Lab Result --

// CreateLabResult records a lab result for an existing patient. The value is
// rounded to two decimal places to match the storage precision.
func (s *Service) CreateLabResult(ctx context.Context, lr *LabResult) error {
	if lr.PatientID == uuid.Nil {
		return fmt.Errorf("%w: patient_id is required", ErrInvalid)
	}
	if lr.TestType == "" {
		return fmt.Errorf("%w: test_type is required", ErrInvalid)
	}
	if lr.TestDate.IsZero() {
		return fmt.Errorf("%w: test_date is required", ErrInvalid)
	}

	ok, err := s.patients.Exists(ctx, lr.PatientID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("patient %s: %w", lr.PatientID, ErrNotFound)
	}

	lr.TestDate = lr.TestDate.UTC()
	lr.ResultValue = math.Round(lr.ResultValue*100) / 100

	return s.labResults.Create(ctx, lr)
}

func (s *Service) GetLabResult(ctx context.Context, id uuid.UUID) (*LabResult, error) {
	return s.labResults.GetByID(ctx, id)
}
