package patient

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/clinic/clinic/internal/platform/records"
	"github.com/clinic/clinic/internal/platform/records/recordstest"
)

func newTestHandler() (*Handler, *recordstest.Fake, *echo.Echo) {
	svc, fake := newTestService()
	return NewHandler(svc), fake, echo.New()
}

func assertStatus(t *testing.T, err error, want int) {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected HTTP error %d, got %v", want, err)
	}
	if he.Code != want {
		t.Errorf("expected %d, got %d", want, he.Code)
	}
}

func TestHandler_CreatePatient(t *testing.T) {
	h, _, e := newTestHandler()
	body := `{"name_c":"ignored","Name":"Ada","gender":"female","allergies":["dust"]}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.CreatePatient(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	var got Patient
	json.Unmarshal(rec.Body.Bytes(), &got)
	if got.Name != "Ada" || got.ID == 0 {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}

func TestHandler_CreatePatient_Invalid(t *testing.T) {
	h, _, e := newTestHandler()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"gender":"x"}`))
	c := e.NewContext(req, httptest.NewRecorder())
	assertStatus(t, h.CreatePatient(c), http.StatusBadRequest)
}

func TestHandler_GetPatient_NotFound(t *testing.T) {
	h, _, e := newTestHandler()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("99")
	assertStatus(t, h.GetPatient(c), http.StatusNotFound)
}

func TestHandler_GetPatient_InvalidID(t *testing.T) {
	h, _, e := newTestHandler()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("abc")
	assertStatus(t, h.GetPatient(c), http.StatusBadRequest)
}

func TestHandler_ListPatients(t *testing.T) {
	h, fake, e := newTestHandler()
	for i := 0; i < 3; i++ {
		fake.Seed(Table, records.Record{"Name": "P" + strconv.Itoa(i)})
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/?limit=2", nil), rec)

	if err := h.ListPatients(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var body struct {
		Data    []Patient `json:"data"`
		Total   int       `json:"total"`
		HasMore bool      `json:"has_more"`
	}
	json.Unmarshal(rec.Body.Bytes(), &body)
	if len(body.Data) != 2 || body.Total != 3 || !body.HasMore {
		t.Errorf("unexpected page %s", rec.Body.String())
	}
}

func TestHandler_ListPatients_BackendDown(t *testing.T) {
	h, fake, e := newTestHandler()
	fake.Err = errors.New("dial tcp: refused")
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	assertStatus(t, h.ListPatients(c), http.StatusServiceUnavailable)
}

func TestHandler_UpdateAndDeletePatient(t *testing.T) {
	h, fake, e := newTestHandler()
	id := strconv.Itoa(fake.Seed(Table, records.Record{"Name": "Ada"}))

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"phone_c":"555"}`)), rec)
	c.SetParamNames("id")
	c.SetParamValues(id)
	if err := h.UpdatePatient(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodDelete, "/", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues(id)
	if err := h.DeletePatient(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
}
