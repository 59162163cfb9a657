package patient

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/medflow/medflow/internal/census"
	"github.com/medflow/medflow/internal/listview"
	"github.com/medflow/medflow/internal/platform/auth"
	"github.com/medflow/medflow/internal/platform/gateway"
	"github.com/medflow/medflow/pkg/pagination"
)

// Row is a patient enriched for the patient list.
type Row struct {
	Patient
	Age           string `json:"age"`
	StatusLabel   string `json:"statusLabel"`
	StatusVariant string `json:"statusVariant"`
}

// NewRow enriches p with its age as of now.
func NewRow(p Patient, now time.Time) Row {
	return Row{
		Patient:       p,
		Age:           census.AgeLabel(p.DateOfBirth, now),
		StatusLabel:   p.Status.Label(),
		StatusVariant: p.Status.Variant(),
	}
}

type Handler struct {
	gw       *Gateway
	announce gateway.Announcer
	now      func() time.Time
}

func NewHandler(gw *Gateway, announce gateway.Announcer, now func() time.Time) *Handler {
	if now == nil {
		now = time.Now
	}
	return &Handler{gw: gw, announce: announce, now: now}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireRole(auth.ReadRoles...))
	read.GET("/patients", h.ListPatients)
	read.GET("/patients/:id", h.GetPatient)

	write := api.Group("", auth.RequireRole(auth.WriteRoles...))
	write.POST("/patients", h.CreatePatient)
	write.PUT("/patients/:id", h.UpdatePatient)
	write.PATCH("/patients/:id", h.UpdatePatient)
	write.DELETE("/patients/:id", h.DeletePatient)
}

func (h *Handler) ListPatients(c echo.Context) error {
	res := h.gw.GetAll(c.Request().Context())
	if !res.OK() {
		return gateway.LoadError(res)
	}

	pg := pagination.FromContext(c)
	page := listview.FromParams(Spec, res.Records(), pg).Result()

	now := h.now()
	rows := make([]Row, len(page.Items))
	for i, p := range page.Items {
		rows[i] = NewRow(p, now)
	}
	resp := pagination.NewResponse(rows, page.Page, page.PageSize, page.TotalPages, page.TotalCount)
	return c.JSON(http.StatusOK, resp.WithLinks(c.Request().URL.Path, pg))
}

func (h *Handler) GetPatient(c echo.Context) error {
	id, err := gateway.ParseID(c)
	if err != nil {
		return err
	}
	p, err := h.gw.GetByID(c.Request().Context(), id)
	if err != nil {
		return gateway.HTTPError(err)
	}
	return c.JSON(http.StatusOK, NewRow(p, h.now()))
}

func (h *Handler) CreatePatient(c echo.Context) error {
	fields, err := gateway.BindFields(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	p, err := h.gw.Create(ctx, fields)
	h.announce.Mutation(ctx, Kind, gateway.NoticeCreated, p.ID, err)
	if err != nil {
		return gateway.HTTPError(err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) UpdatePatient(c echo.Context) error {
	id, err := gateway.ParseID(c)
	if err != nil {
		return err
	}
	fields, err := gateway.BindFields(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	p, err := h.gw.Update(ctx, id, fields)
	h.announce.Mutation(ctx, Kind, gateway.NoticeUpdated, id, err)
	if err != nil {
		return gateway.HTTPError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) DeletePatient(c echo.Context) error {
	id, err := gateway.ParseID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	_, err = h.gw.Delete(ctx, id)
	h.announce.Mutation(ctx, Kind, gateway.NoticeDeleted, id, err)
	if err != nil {
		return gateway.HTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
