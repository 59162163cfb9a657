package dashboard

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/medflow/medflow/internal/platform/auth"
	"github.com/medflow/medflow/internal/platform/gateway"
)

type Handler struct {
	source Source
	now    func() time.Time
}

func NewHandler(source Source, now func() time.Time) *Handler {
	if now == nil {
		now = time.Now
	}
	return &Handler{source: source, now: now}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireRole(auth.ReadRoles...))
	read.GET("/dashboard", h.GetSummary)
	read.GET("/reports", h.GetReports)
	read.GET("/departments/overview", h.GetOverview)
}

func (h *Handler) load(c echo.Context) (Collections, error) {
	col, err := h.source.Load(c.Request().Context())
	if err != nil {
		return Collections{}, gateway.HTTPError(err)
	}
	return col, nil
}

func (h *Handler) GetSummary(c echo.Context) error {
	col, err := h.load(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, NewSummary(col, h.now()))
}

func (h *Handler) GetReports(c echo.Context) error {
	col, err := h.load(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, NewReports(col, h.now()))
}

func (h *Handler) GetOverview(c echo.Context) error {
	col, err := h.load(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, NewOverview(col))
}
