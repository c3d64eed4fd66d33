package medicalrecord

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/clinic/clinic/internal/platform/records"
)

func TestHandler_ListCommonMedications(t *testing.T) {
	svc, _ := newTestService()
	h := NewHandler(svc)
	e := echo.New()

	rec := httptest.NewRecorder()
	if err := h.ListCommonMedications(e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var meds []string
	json.Unmarshal(rec.Body.Bytes(), &meds)
	if len(meds) == 0 || meds[0] != "Acetaminophen" {
		t.Errorf("unexpected catalogue %v", meds)
	}
}

func TestHandler_CreateAndGetMedicalRecord(t *testing.T) {
	svc, _ := newTestService()
	h := NewHandler(svc)
	e := echo.New()

	body := `{"patientId":{"Id":2},"visitDate":"2026-01-02","prescriptions":[{"medication":"X","dosage":"5mg","duration":"7d"}]}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if err := h.CreateMedicalRecord(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var created MedicalRecord
	json.Unmarshal(rec.Body.Bytes(), &created)
	if created.PatientID != 2 || len(created.Prescriptions) != 1 {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues(strconv.Itoa(created.ID))
	if err := h.GetMedicalRecord(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"dosage":"5mg"`) {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}

func TestHandler_ListMedicalRecords_ByPatient(t *testing.T) {
	svc, fake := newTestService()
	fake.Seed(Table, records.Record{"patient_id_c": 1})
	fake.Seed(Table, records.Record{"patient_id_c": 2})
	h := NewHandler(svc)
	e := echo.New()

	rec := httptest.NewRecorder()
	if err := h.ListMedicalRecords(e.NewContext(httptest.NewRequest(http.MethodGet, "/?patient_id=1", nil), rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"total":1`) {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}
