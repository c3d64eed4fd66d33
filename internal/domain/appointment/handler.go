package appointment

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/clinic/clinic/internal/platform/rest"
	"github.com/clinic/clinic/pkg/pagination"
)

// Handler provides HTTP handlers for appointments.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/appointments", h.ListAppointments)
	api.POST("/appointments", h.CreateAppointment)
	api.GET("/appointments/:id", h.GetAppointment)
	api.PUT("/appointments/:id", h.UpdateAppointment)
	api.DELETE("/appointments/:id", h.DeleteAppointment)
}

func (h *Handler) ListAppointments(c echo.Context) error {
	ctx := c.Request().Context()
	var (
		items []*Appointment
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

func (h *Handler) GetAppointment(c echo.Context) error {
	id, err := rest.ParseID(c, "id")
	if err != nil {
		return err
	}
	a, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return rest.Error(err)
	}
	if a == nil {
		return rest.NotFound("appointment")
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) CreateAppointment(c echo.Context) error {
	input, err := rest.BindInput(c)
	if err != nil {
		return err
	}
	a, err := h.svc.Create(c.Request().Context(), input)
	if err != nil {
		return rest.Error(err)
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) UpdateAppointment(c echo.Context) error {
	id, err := rest.ParseID(c, "id")
	if err != nil {
		return err
	}
	input, err := rest.BindInput(c)
	if err != nil {
		return err
	}
	a, err := h.svc.Update(c.Request().Context(), id, input)
	if err != nil {
		return rest.Error(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) DeleteAppointment(c echo.Context) error {
	id, err := rest.ParseID(c, "id")
	if err != nil {
		return err
	}
	ok, err := h.svc.Delete(c.Request().Context(), id)
	if err != nil {
		return rest.Error(err)
	}
	if !ok {
		return rest.NotFound("appointment")
	}
	return c.NoContent(http.StatusNoContent)
}
