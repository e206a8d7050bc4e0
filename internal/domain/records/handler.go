package records

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the record ingestion endpoints on an authenticated
// group.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/patients", h.CreatePatient)
	api.GET("/patients/:id", h.GetPatient)
	api.POST("/doctors", h.CreateDoctor)
	api.POST("/visits", h.CreateVisit)
	api.GET("/visits/:id", h.GetVisit)
	api.POST("/lab-results", h.CreateLabResult)
}

// writeError maps service errors for create endpoints. Bad references and
// invalid input are the client's fault; everything else is an internal
// failure and must not leak its cause.
func writeError(err error) *echo.HTTPError {
	if errors.Is(err, ErrInvalid) || errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
}

const dateLayout = "2006-01-02"

// parseDate accepts a calendar date in YYYY-MM-DD form.
func parseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
	}
	t = t.UTC()
	return &t, nil
}

// parseTimestamp accepts RFC 3339 timestamps and falls back to a bare
// calendar date.
func parseTimestamp(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		t = t.UTC()
		return &t, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, fmt.Errorf("invalid timestamp %q, expected RFC 3339 or YYYY-MM-DD", value)
	}
	t = t.UTC()
	return &t, nil
}

type createPatientRequest struct {
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	DateOfBirth string  `json:"date_of_birth"`
	Gender      *string `json:"gender"`
}

func (h *Handler) CreatePatient(c echo.Context) error {
	var req createPatientRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	dob, err := parseDate(req.DateOfBirth)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	p := Patient{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		DateOfBirth: dob,
		Gender:      req.Gender,
	}
	if err := h.svc.CreatePatient(c.Request().Context(), &p); err != nil {
		return writeError(err)
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message":    "Patient added",
		"patient_id": p.ID,
	})
}

func (h *Handler) GetPatient(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	p, err := h.svc.GetPatient(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "patient not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
	return c.JSON(http.StatusOK, p)
}

type createDoctorRequest struct {
	FirstName      string  `json:"first_name"`
	LastName       string  `json:"last_name"`
	Specialization *string `json:"specialization"`
}

func (h *Handler) CreateDoctor(c echo.Context) error {
	var req createDoctorRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	d := Doctor{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Specialization: req.Specialization,
	}
	if err := h.svc.CreateDoctor(c.Request().Context(), &d); err != nil {
		return writeError(err)
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message":   "Doctor added",
		"doctor_id": d.ID,
	})
}

type createVisitRequest struct {
	PatientID string  `json:"patient_id"`
	DoctorID  string  `json:"doctor_id"`
	VisitDate string  `json:"visit_date"`
	Diagnosis *string `json:"diagnosis"`
	Treatment *string `json:"treatment"`
}

func (h *Handler) CreateVisit(c echo.Context) error {
	var req createVisitRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
	}

	var doctorID *uuid.UUID
	if req.DoctorID != "" {
		id, err := uuid.Parse(req.DoctorID)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor_id")
		}
		doctorID = &id
	}

	visitDate, err := parseTimestamp(req.VisitDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	v := Visit{
		PatientID: patientID,
		DoctorID:  doctorID,
		Diagnosis: req.Diagnosis,
		Treatment: req.Treatment,
	}
	if visitDate != nil {
		v.VisitDate = *visitDate
	}

	if err := h.svc.CreateVisit(c.Request().Context(), &v); err != nil {
		return writeError(err)
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message":  "Visit recorded",
		"visit_id": v.ID,
	})
}

func (h *Handler) GetVisit(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	v, err := h.svc.GetVisit(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "visit not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
	return c.JSON(http.StatusOK, v)
}

type createLabResultRequest struct {
	PatientID string `json:"patient_id"`
	TestType  string `json:"test_type"`
	TestDate  string `json:"test_date"`
	// Pointer so an absent value is distinguishable from a literal 0.
	ResultValue    *float64 `json:"result_value"`
	Units          *string  `json:"units"`
	ReferenceRange *string  `json:"reference_range"`
}

func (h *Handler) CreateLabResult(c echo.Context) error {
	var req createLabResultRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
	}

	testDate, err := parseDate(req.TestDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if req.ResultValue == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "result_value is required")
	}

	lr := LabResult{
		PatientID:      patientID,
		TestType:       req.TestType,
		ResultValue:    *req.ResultValue,
		Units:          req.Units,
		ReferenceRange: req.ReferenceRange,
	}
	if testDate != nil {
		lr.TestDate = *testDate
	}

	if err := h.svc.CreateLabResult(c.Request().Context(), &lr); err != nil {
		return writeError(err)
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message":       "Lab result added",
		"lab_result_id": lr.ID,
	})
}
