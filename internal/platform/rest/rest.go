// Package rest holds the request parsing and error translation shared by the
// record handlers.
package rest

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/clinic/clinic/internal/platform/records"
)

// ParseID reads a positive integer path parameter.
func ParseID(c echo.Context, name string) (int, error) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

// BindInput decodes the request body as a JSON object. Keys are kept as sent
// so either naming convention reaches the field mapping.
func BindInput(c echo.Context) (map[string]any, error) {
	var input map[string]any
	if err := json.NewDecoder(c.Request().Body).Decode(&input); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "request body is required")
		}
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid JSON body")
	}
	if input == nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "request body must be an object")
	}
	return input, nil
}

// Error maps a service error onto an HTTP status.
func Error(err error) error {
	var (
		httpErr      *echo.HTTPError
		validation   *records.ValidationError
		storage      *records.StorageError
		transportErr *records.TransportError
	)
	switch {
	case errors.As(err, &httpErr):
		return httpErr
	case errors.As(err, &validation):
		return echo.NewHTTPError(http.StatusBadRequest, validation.Error())
	case errors.As(err, &storage):
		return echo.NewHTTPError(http.StatusBadGateway, storage.Message)
	case errors.As(err, &transportErr):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "backend unavailable")
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
}

// NotFound is the 404 returned when a record id does not resolve.
func NotFound(entity string) error {
	return echo.NewHTTPError(http.StatusNotFound, entity+" not found")
}
