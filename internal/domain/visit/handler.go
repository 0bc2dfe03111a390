package visit

import (
	"encoding/json"
	"errors"
	"io"
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
	api.POST("/visits", h.CreateVisit, auth.RequireRole(auth.RolePatient))
	api.GET("/visits", h.ListVisits)
	api.GET("/visits/summary", h.Summary, auth.RequireRole(auth.RoleFinance))
	api.GET("/visits/:id", h.GetVisit)

	write := auth.RequireRole(auth.RoleDoctor)
	api.PUT("/visits/:id", h.UpdateVisit, write)
	api.PATCH("/visits/:id", h.PatchVisit, write)
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apierr.Validation("Invalid visit id")
	}
	return id, nil
}

func (h *Handler) CreateVisit(c echo.Context) error {
	p, err := auth.CurrentPrincipal(c)
	if err != nil {
		return err
	}
	var req CreateRequest
	if err := apierr.Bind(c, &req); err != nil {
		return err
	}
	v, err := h.svc.Book(c.Request().Context(), p, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Appointment booked successfully",
		"visit":   v,
	})
}

func (h *Handler) ListVisits(c echo.Context) error {
	p, err := auth.CurrentPrincipal(c)
	if err != nil {
		return err
	}
	f, err := ParseFilter(c.QueryParams())
	if err != nil {
		return err
	}
	visits, err := h.svc.List(c.Request().Context(), p, f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"visits": visits})
}

func (h *Handler) GetVisit(c echo.Context) error {
	p, err := auth.CurrentPrincipal(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	v, err := h.svc.Get(c.Request().Context(), p, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"visit": v})
}

func (h *Handler) UpdateVisit(c echo.Context) error {
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
	v, err := h.svc.Update(c.Request().Context(), p, id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Visit updated successfully",
		"visit":   v,
	})
}

func (h *Handler) PatchVisit(c echo.Context) error {
	p, err := auth.CurrentPrincipal(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}

	body := map[string]json.RawMessage{}
	if err := json.NewDecoder(c.Request().Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return he
		}
		return apierr.Validation("Invalid request body")
	}
	patch, err := ParsePatch(body)
	if err != nil {
		return err
	}

	v, err := h.svc.Patch(c.Request().Context(), p, id, patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Visit updated successfully",
		"visit":   v,
	})
}

func (h *Handler) Summary(c echo.Context) error {
	p, err := auth.CurrentPrincipal(c)
	if err != nil {
		return err
	}
	f, err := ParseFilter(c.QueryParams())
	if err != nil {
		return err
	}
	sum, err := h.svc.Summary(c.Request().Context(), p, f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sum)
}
