package patient

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clinic/clinic/internal/platform/rest"
	"github.com/clinic/clinic/pkg/pagination"
)

// Handler provides HTTP handlers for patients.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers the patient routes on the API group.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/patients", h.ListPatients)
	api.POST("/patients", h.CreatePatient)
	api.GET("/patients/:id", h.GetPatient)
	api.PUT("/patients/:id", h.UpdatePatient)
	api.DELETE("/patients/:id", h.DeletePatient)
}

func (h *Handler) ListPatients(c echo.Context) error {
	items, err := h.svc.List(c.Request().Context())
	if err != nil {
		return rest.Error(err)
	}
	return c.JSON(http.StatusOK, pagination.Page(items, pagination.FromContext(c)))
}

func (h *Handler) GetPatient(c echo.Context) error {
	id, err := rest.ParseID(c, "id")
	if err != nil {
		return err
	}
	p, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return rest.Error(err)
	}
	if p == nil {
		return rest.NotFound("patient")
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) CreatePatient(c echo.Context) error {
	input, err := rest.BindInput(c)
	if err != nil {
		return err
	}
	p, err := h.svc.Create(c.Request().Context(), input)
	if err != nil {
		return rest.Error(err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) UpdatePatient(c echo.Context) error {
	id, err := rest.ParseID(c, "id")
	if err != nil {
		return err
	}
	input, err := rest.BindInput(c)
	if err != nil {
		return err
	}
	p, err := h.svc.Update(c.Request().Context(), id, input)
	if err != nil {
		return rest.Error(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) DeletePatient(c echo.Context) error {
	id, err := rest.ParseID(c, "id")
	if err != nil {
		return err
	}
	ok, err := h.svc.Delete(c.Request().Context(), id)
	if err != nil {
		return rest.Error(err)
	}
	if !ok {
		return rest.NotFound("patient")
	}
	return c.NoContent(http.StatusNoContent)
}
