package treatment

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinic/clinic/internal/platform/apierr"
	"github.com/clinic/clinic/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	write := auth.RequireRole(auth.RoleDoctor)

	api.GET("/treatments", h.ListTreatments)
	api.GET("/treatments/:id", h.GetTreatment)
	api.POST("/treatments", h.AddTreatment, write)
	api.PUT("/treatments/:id", h.UpdateTreatment, write)
	api.DELETE("/treatments/:id", h.DeleteTreatment, write)
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apierr.Validation("Invalid treatment id")
	}
	return id, nil
}

func (h *Handler) AddTreatment(c echo.Context) error {
	p, err := auth.CurrentPrincipal(c)
	if err != nil {
		return err
	}
	var req CreateRequest
	if err := apierr.Bind(c, &req); err != nil {
		return err
	}
	t, total, err := h.svc.Add(c.Request().Context(), p, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message":     "Treatment added successfully",
		"treatment":   t,
		"totalAmount": total,
	})
}

func (h *Handler) ListTreatments(c echo.Context) error {
	p, err := auth.CurrentPrincipal(c)
	if err != nil {
		return err
	}
	items, err := h.svc.ListByVisit(c.Request().Context(), p, c.QueryParam("visitId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"treatments": items})
}

func (h *Handler) GetTreatment(c echo.Context) error {
	p, err := auth.CurrentPrincipal(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	t, err := h.svc.Get(c.Request().Context(), p, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"treatment": t})
}

func (h *Handler) UpdateTreatment(c echo.Context) error {
	p, err := auth.CurrentPrincipal(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req UpdateRequest
	if err := apierr.Bind(c, &req); err != nil {
		return err
	}
	t, total, err := h.svc.Update(c.Request().Context(), p, id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":     "Treatment updated successfully",
		"treatment":   t,
		"totalAmount": total,
	})
}

func (h *Handler) DeleteTreatment(c echo.Context) error {
	p, err := auth.CurrentPrincipal(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	total, err := h.svc.Delete(c.Request().Context(), p, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":     "Treatment deleted successfully",
		"totalAmount": total,
	})
}
