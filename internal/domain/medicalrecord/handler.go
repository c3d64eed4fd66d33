package medicalrecord

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/clinic/clinic/internal/platform/rest"
	"github.com/clinic/clinic/pkg/pagination"
)

// Handler provides HTTP handlers for medical records and the medication
// catalogue.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/medical-records", h.ListMedicalRecords)
	api.POST("/medical-records", h.CreateMedicalRecord)
	api.GET("/medical-records/:id", h.GetMedicalRecord)
	api.PUT("/medical-records/:id", h.UpdateMedicalRecord)
	api.DELETE("/medical-records/:id", h.DeleteMedicalRecord)

	api.GET("/medications/common", h.ListCommonMedications)
}

func (h *Handler) ListMedicalRecords(c echo.Context) error {
	ctx := c.Request().Context()
	var (
		items []*MedicalRecord
		err   error
	)
	if raw := c.QueryParam("patient_id"); raw != "" {
		pid, convErr := strconv.Atoi(raw)
		if convErr != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
		}
		items, err = h.svc.ListByPatient(ctx, pid)
	} else {
		items, err = h.svc.List(ctx)
	}
	if err != nil {
		return rest.Error(err)
	}
	return c.JSON(http.StatusOK, pagination.Page(items, pagination.FromContext(c)))
}

func (h *Handler) GetMedicalRecord(c echo.Context) error {
	id, err := rest.ParseID(c, "id")
	if err != nil {
		return err
	}
	m, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return rest.Error(err)
	}
	if m == nil {
		return rest.NotFound("medical record")
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) CreateMedicalRecord(c echo.Context) error {
	input, err := rest.BindInput(c)
	if err != nil {
		return err
	}
	m, err := h.svc.Create(c.Request().Context(), input)
	if err != nil {
		return rest.Error(err)
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *Handler) UpdateMedicalRecord(c echo.Context) error {
	id, err := rest.ParseID(c, "id")
	if err != nil {
		return err
	}
	input, err := rest.BindInput(c)
	if err != nil {
		return err
	}
	m, err := h.svc.Update(c.Request().Context(), id, input)
	if err != nil {
		return rest.Error(err)
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) DeleteMedicalRecord(c echo.Context) error {
	id, err := rest.ParseID(c, "id")
	if err != nil {
		return err
	}
	ok, err := h.svc.Delete(c.Request().Context(), id)
	if err != nil {
		return rest.Error(err)
	}
	if !ok {
		return rest.NotFound("medical record")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListCommonMedications(c echo.Context) error {
	return c.JSON(http.StatusOK, CommonMedications())
}
