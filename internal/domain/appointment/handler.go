package appointment

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/medflow/medflow/internal/domain/patient"
	"github.com/medflow/medflow/internal/domain/staff"
	"github.com/medflow/medflow/internal/listview"
	"github.com/medflow/medflow/internal/platform/auth"
	"github.com/medflow/medflow/internal/platform/gateway"
	"github.com/medflow/medflow/pkg/pagination"
)

// Calendar is one day's appointments in time order with status tallies.
type Calendar struct {
	Date  string `json:"date"`
	Items []Row  `json:"items"`
	Tally Tally  `json:"tally"`
	Total int    `json:"total"`
}

type Handler struct {
	gw       *Gateway
	patients *patient.Gateway
	staff    *staff.Gateway
	announce gateway.Announcer
	now      func() time.Time
}

func NewHandler(gw *Gateway, patients *patient.Gateway, staffGW *staff.Gateway, announce gateway.Announcer, now func() time.Time) *Handler {
	if now == nil {
		now = time.Now
	}
	return &Handler{gw: gw, patients: patients, staff: staffGW, announce: announce, now: now}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireRole(auth.ReadRoles...))
	read.GET("/appointments", h.ListAppointments)
	read.GET("/appointments/today", h.Today)
	read.GET("/appointments/:id", h.GetAppointment)

	write := api.Group("", auth.RequireRole(auth.WriteRoles...))
	write.POST("/appointments", h.CreateAppointment)
	write.PUT("/appointments/:id", h.UpdateAppointment)
	write.PATCH("/appointments/:id", h.UpdateAppointment)
	write.DELETE("/appointments/:id", h.DeleteAppointment)
}

// load fetches appointments together with the collections their references
// resolve against. Any failure fails the whole load.
func (h *Handler) load(ctx context.Context) ([]Appointment, *Resolver, error) {
	var (
		appts    []Appointment
		patients []patient.Patient
		members  []staff.Staff
	)
	err := gateway.LoadAll(ctx,
		gateway.Into(h.gw, &appts),
		gateway.Into(h.patients, &patients),
		gateway.Into(h.staff, &members),
	)
	if err != nil {
		return nil, nil, err
	}
	return appts, NewResolver(patients, members), nil
}

func (h *Handler) ListAppointments(c echo.Context) error {
	appts, res, err := h.load(c.Request().Context())
	if err != nil {
		return gateway.HTTPError(err)
	}

	pg := pagination.FromContext(c)
	page := listview.FromParams(Spec, appts, pg).Result()

	resp := pagination.NewResponse(res.Rows(page.Items), page.Page, page.PageSize, page.TotalPages, page.TotalCount)
	return c.JSON(http.StatusOK, resp.WithLinks(c.Request().URL.Path, pg))
}

func (h *Handler) Today(c echo.Context) error {
	appts, res, err := h.load(c.Request().Context())
	if err != nil {
		return gateway.HTTPError(err)
	}
	date := h.now().Format(dateLayout)
	today := OnDate(appts, date)
	return c.JSON(http.StatusOK, Calendar{
		Date:  date,
		Items: res.Rows(today),
		Tally: TallyOf(today),
		Total: len(today),
	})
}

func (h *Handler) GetAppointment(c echo.Context) error {
	id, err := gateway.ParseID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	a, err := h.gw.GetByID(ctx, id)
	if err != nil {
		return gateway.HTTPError(err)
	}
	var (
		patients []patient.Patient
		members  []staff.Staff
	)
	if err := gateway.LoadAll(ctx, gateway.Into(h.patients, &patients), gateway.Into(h.staff, &members)); err != nil {
		return gateway.HTTPError(err)
	}
	return c.JSON(http.StatusOK, NewResolver(patients, members).Row(a))
}

func (h *Handler) CreateAppointment(c echo.Context) error {
	fields, err := gateway.BindFields(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	a, err := h.gw.Create(ctx, fields)
	h.announce.Mutation(ctx, Kind, gateway.NoticeCreated, a.ID, err)
	if err != nil {
		return gateway.HTTPError(err)
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) UpdateAppointment(c echo.Context) error {
	id, err := gateway.ParseID(c)
	if err != nil {
		return err
	}
	fields, err := gateway.BindFields(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	a, err := h.gw.Update(ctx, id, fields)
	h.announce.Mutation(ctx, Kind, gateway.NoticeUpdated, id, err)
	if err != nil {
		return gateway.HTTPError(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) DeleteAppointment(c echo.Context) error {
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
