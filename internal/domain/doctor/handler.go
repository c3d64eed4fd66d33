package doctor

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clinic/clinic/internal/platform/rest"
	"github.com/clinic/clinic/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/doctors", h.ListDoctors)
	api.POST("/doctors", h.CreateDoctor)
	api.GET("/doctors/:id", h.GetDoctor)
	api.PUT("/doctors/:id", h.UpdateDoctor)
	api.DELETE("/doctors/:id", h.DeleteDoctor)
}

func (h *Handler) ListDoctors(c echo.Context) error {
	items, err := h.svc.List(c.Request().Context())
	if err != nil {
		return rest.Error(err)
	}
	return c.JSON(http.StatusOK, pagination.Page(items, pagination.FromContext(c)))
}

func (h *Handler) GetDoctor(c echo.Context) error {
	id, err := rest.ParseID(c, "id")
	if err != nil {
		return err
	}
	d, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return rest.Error(err)
	}
	if d == nil {
		return rest.NotFound("doctor")
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) CreateDoctor(c echo.Context) error {
	input, err := rest.BindInput(c)
	if err != nil {
		return err
	}
	d, err := h.svc.Create(c.Request().Context(), input)
	if err != nil {
		return rest.Error(err)
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *Handler) UpdateDoctor(c echo.Context) error {
	id, err := rest.ParseID(c, "id")
	if err != nil {
		return err
	}
	input, err := rest.BindInput(c)
	if err != nil {
		return err
	}
	d, err := h.svc.Update(c.Request().Context(), id, input)
	if err != nil {
		return rest.Error(err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) DeleteDoctor(c echo.Context) error {
	id, err := rest.ParseID(c, "id")
	if err != nil {
		return err
	}
	ok, err := h.svc.Delete(c.Request().Context(), id)
	if err != nil {
		return rest.Error(err)
	}
	if !ok {
		return rest.NotFound("doctor")
	}
	return c.NoContent(http.StatusNoContent)
}
