package records

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func postJSON(e *echo.Echo, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}

func createTestPatient(t *testing.T, h *Handler, e *echo.Echo) uuid.UUID {
	t.Helper()
	c, rec := postJSON(e, "/api/patients", `{"first_name":"Jane","last_name":"Doe"}`)
	if err := h.CreatePatient(c); err != nil {
		t.Fatalf("CreatePatient handler error: %v", err)
	}
	var resp map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	id, err := uuid.Parse(resp["patient_id"].(string))
	if err != nil {
		t.Fatalf("invalid patient_id in response: %v", err)
	}
	return id
}

func TestHandlerCreatePatient(t *testing.T) {
	f := newTestFixture()
	h := NewHandler(f.svc)
	e := echo.New()

	c, rec := postJSON(e, "/api/patients", `{"first_name":"Jane","last_name":"Doe","date_of_birth":"1990-05-20","gender":"female"}`)
	if err := h.CreatePatient(c); err != nil {
		t.Fatalf("CreatePatient handler error: %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if resp["message"] != "Patient added" {
		t.Errorf("unexpected message: %v", resp["message"])
	}
	if _, err := uuid.Parse(resp["patient_id"].(string)); err != nil {
		t.Errorf("expected UUID patient_id, got %v", resp["patient_id"])
	}
}

func TestHandlerCreatePatient_BadDate(t *testing.T) {
	f := newTestFixture()
	h := NewHandler(f.svc)
	e := echo.New()

	c, _ := postJSON(e, "/api/patients", `{"first_name":"Jane","last_name":"Doe","date_of_birth":"20/05/1990"}`)
	err := h.CreatePatient(c)
	if err == nil {
		t.Fatal("expected error for malformed date")
	}
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", httpErr.Code)
	}
}

func TestHandlerGetPatient(t *testing.T) {
	f := newTestFixture()
	h := NewHandler(f.svc)
	e := echo.New()

	id := createTestPatient(t, h, e)

	req := httptest.NewRequest(http.MethodGet, "/api/patients/"+id.String(), nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(id.String())

	if err := h.GetPatient(c); err != nil {
		t.Fatalf("GetPatient handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var p Patient
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if p.FirstName != "Jane" || p.LastName != "Doe" {
		t.Errorf("unexpected patient: %+v", p)
	}
}

func TestHandlerGetPatient_NotFound(t *testing.T) {
	f := newTestFixture()
	h := NewHandler(f.svc)
	e := echo.New()

	id := uuid.New().String()
	req := httptest.NewRequest(http.MethodGet, "/api/patients/"+id, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(id)

	err := h.GetPatient(c)
	if err == nil {
		t.Fatal("expected not found error")
	}
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", httpErr.Code)
	}
}

func TestHandlerGetPatient_StoreFailure(t *testing.T) {
	f := newTestFixture()
	h := NewHandler(f.svc)
	e := echo.New()

	f.patients.getErr = errors.New("connection refused: db down")

	id := uuid.New().String()
	req := httptest.NewRequest(http.MethodGet, "/api/patients/"+id, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(id)

	err := h.GetPatient(c)
	if err == nil {
		t.Fatal("expected error when the store is unreachable")
	}
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", httpErr.Code)
	}
	if msg, _ := httpErr.Message.(string); strings.Contains(msg, "connection refused") {
		t.Errorf("store failure leaked to the client: %v", httpErr.Message)
	}
}

func TestHandlerCreateDoctor(t *testing.T) {
	f := newTestFixture()
	h := NewHandler(f.svc)
	e := echo.New()

	c, rec := postJSON(e, "/api/doctors", `{"first_name":"Gregory","last_name":"House","specialization":"diagnostics"}`)
	if err := h.CreateDoctor(c); err != nil {
		t.Fatalf("CreateDoctor handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if resp["message"] != "Doctor added" {
		t.Errorf("unexpected message: %v", resp["message"])
	}
}

func TestHandlerCreateVisit(t *testing.T) {
	f := newTestFixture()
	h := NewHandler(f.svc)
	e := echo.New()

	patientID := createTestPatient(t, h, e)

	body := fmt.Sprintf(`{"patient_id":%q,"visit_date":"2025-03-15T10:30:00Z","diagnosis":"flu","treatment":"rest"}`, patientID)
	c, rec := postJSON(e, "/api/visits", body)
	if err := h.CreateVisit(c); err != nil {
		t.Fatalf("CreateVisit handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if resp["message"] != "Visit recorded" {
		t.Errorf("unexpected message: %v", resp["message"])
	}
	if _, err := uuid.Parse(resp["visit_id"].(string)); err != nil {
		t.Errorf("expected UUID visit_id, got %v", resp["visit_id"])
	}
}

func TestHandlerCreateVisit_DefaultsVisitDate(t *testing.T) {
	f := newTestFixture()
	h := NewHandler(f.svc)
	e := echo.New()

	patientID := createTestPatient(t, h, e)

	body := fmt.Sprintf(`{"patient_id":%q}`, patientID)
	c, rec := postJSON(e, "/api/visits", body)
	if err := h.CreateVisit(c); err != nil {
		t.Fatalf("CreateVisit handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}

func TestHandlerCreateVisit_UnknownPatient(t *testing.T) {
	f := newTestFixture()
	h := NewHandler(f.svc)
	e := echo.New()

	body := fmt.Sprintf(`{"patient_id":%q}`, uuid.New())
	c, _ := postJSON(e, "/api/visits", body)
	err := h.CreateVisit(c)
	if err == nil {
		t.Fatal("expected error for unknown patient")
	}
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", httpErr.Code)
	}
}

func TestHandlerCreateVisit_StoreFailure(t *testing.T) {
	f := newTestFixture()
	h := NewHandler(f.svc)
	e := echo.New()

	f.patients.existsErr = errors.New("connection refused: db down")

	body := fmt.Sprintf(`{"patient_id":%q}`, uuid.New())
	c, _ := postJSON(e, "/api/visits", body)
	err := h.CreateVisit(c)
	if err == nil {
		t.Fatal("expected error when the store is unreachable")
	}
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", httpErr.Code)
	}
	if msg, _ := httpErr.Message.(string); strings.Contains(msg, "connection refused") {
		t.Errorf("store failure leaked to the client: %v", httpErr.Message)
	}
}

func TestHandlerCreateVisit_InvalidPatientID(t *testing.T) {
	f := newTestFixture()
	h := NewHandler(f.svc)
	e := echo.New()

	c, _ := postJSON(e, "/api/visits", `{"patient_id":"42"}`)
	err := h.CreateVisit(c)
	if err == nil {
		t.Fatal("expected error for non-UUID patient_id")
	}
}

func TestHandlerCreateLabResult(t *testing.T) {
	f := newTestFixture()
	h := NewHandler(f.svc)
	e := echo.New()

	patientID := createTestPatient(t, h, e)

	body := fmt.Sprintf(`{"patient_id":%q,"test_type":"glucose","test_date":"2025-04-01","result_value":98.657,"units":"mg/dL","reference_range":"70-100"}`, patientID)
	c, rec := postJSON(e, "/api/lab-results", body)
	if err := h.CreateLabResult(c); err != nil {
		t.Fatalf("CreateLabResult handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if resp["message"] != "Lab result added" {
		t.Errorf("unexpected message: %v", resp["message"])
	}

	id, err := uuid.Parse(resp["lab_result_id"].(string))
	if err != nil {
		t.Fatalf("expected UUID lab_result_id, got %v", resp["lab_result_id"])
	}

	stored := f.labResults.results[id]
	if stored == nil {
		t.Fatal("expected lab result to be stored")
	}
	if stored.ResultValue != 98.66 {
		t.Errorf("expected rounded value 98.66, got %v", stored.ResultValue)
	}
}

func TestHandlerCreateLabResult_MissingResultValue(t *testing.T) {
	f := newTestFixture()
	h := NewHandler(f.svc)
	e := echo.New()

	patientID := createTestPatient(t, h, e)

	body := fmt.Sprintf(`{"patient_id":%q,"test_type":"glucose","test_date":"2025-04-01"}`, patientID)
	c, _ := postJSON(e, "/api/lab-results", body)
	err := h.CreateLabResult(c)
	if err == nil {
		t.Fatal("expected error for missing result_value")
	}
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", httpErr.Code)
	}
	if httpErr.Message != "result_value is required" {
		t.Errorf("unexpected message: %v", httpErr.Message)
	}
	if len(f.labResults.results) != 0 {
		t.Error("no lab result should be stored when result_value is absent")
	}
}

func TestHandlerCreateLabResult_MissingTestDate(t *testing.T) {
	f := newTestFixture()
	h := NewHandler(f.svc)
	e := echo.New()

	patientID := createTestPatient(t, h, e)

	body := fmt.Sprintf(`{"patient_id":%q,"test_type":"glucose","result_value":98.6}`, patientID)
	c, _ := postJSON(e, "/api/lab-results", body)
	err := h.CreateLabResult(c)
	if err == nil {
		t.Fatal("expected error for missing test_date")
	}
}
