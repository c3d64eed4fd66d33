package chart

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clinic/clinic/internal/domain/medicalrecord"
	"github.com/clinic/clinic/internal/platform/rest"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/patients/:id/chart", h.GetChart)
	api.POST("/patients/:id/prescriptions", h.AddPrescription)
}

func (h *Handler) GetChart(c echo.Context) error {
	id, err := rest.ParseID(c, "id")
	if err != nil {
		return err
	}
	chart, err := h.svc.Load(c.Request().Context(), id)
	if err != nil {
		return chartError(err)
	}
	return c.JSON(http.StatusOK, chart)
}

func (h *Handler) AddPrescription(c echo.Context) error {
	id, err := rest.ParseID(c, "id")
	if err != nil {
		return err
	}
	var req medicalrecord.PrescriptionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid prescription payload")
	}
	chart, err := h.svc.AddPrescription(c.Request().Context(), id, req)
	if err != nil {
		return chartError(err)
	}
	return c.JSON(http.StatusCreated, chart)
}

func chartError(err error) error {
	if errors.Is(err, ErrPatientNotFound) {
		return rest.NotFound("patient")
	}
	return rest.Error(err)
}
