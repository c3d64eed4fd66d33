package rest

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/clinic/clinic/internal/platform/records"
)

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *echo.HTTPError, got %T", err)
	}
	return he.Code
}

func TestError_Mapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &records.ValidationError{Field: "patientId", Reason: "is required"}, http.StatusBadRequest},
		{"storage", &records.StorageError{Message: "Invalid field"}, http.StatusBadGateway},
		{"transport", &records.TransportError{Op: "fetch", Err: errors.New("refused")}, http.StatusServiceUnavailable},
		{"http", echo.NewHTTPError(http.StatusNotFound, "gone"), http.StatusNotFound},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusOf(t, Error(tt.err)); got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestError_StorageMessageIsVerbatim(t *testing.T) {
	err := Error(&records.StorageError{Message: "Name is too long"})
	if he := err.(*echo.HTTPError); he.Message != "Name is too long" {
		t.Errorf("unexpected message %v", he.Message)
	}
}

func TestParseID(t *testing.T) {
	e := echo.New()
	for _, raw := range []string{"abc", "0", "-3", ""} {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		c.SetParamNames("id")
		c.SetParamValues(raw)
		if _, err := ParseID(c, "id"); err == nil {
			t.Errorf("expected error for %q", raw)
		}
	}

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("12")
	id, err := ParseID(c, "id")
	if err != nil || id != 12 {
		t.Errorf("expected 12, got %d, %v", id, err)
	}
}

func TestBindInput(t *testing.T) {
	e := echo.New()
	for _, body := range []string{"", "not json", "[1,2]", "null"} {
		c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)), httptest.NewRecorder())
		if _, err := BindInput(c); err == nil {
			t.Errorf("expected error for body %q", body)
		}
	}

	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"patient_id_c":{"Id":7}}`)), httptest.NewRecorder())
	input, err := BindInput(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := input["patient_id_c"].(map[string]any); !ok {
		t.Errorf("nested reference lost: %v", input)
	}
}
