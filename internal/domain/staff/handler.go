package staff

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

// Row is a staff record enriched for the directory.
type Row struct {
	Staff
	RoleVariant string     `json:"roleVariant"`
	OnDuty      bool       `json:"onDuty"`
	DutyVariant string     `json:"dutyVariant"`
	WeekGrid    [7]bool    `json:"weekGrid"`
	NextShift   *time.Time `json:"nextShift,omitempty"`
}

// NewRow enriches s as of now.
func NewRow(s Staff, now time.Time) Row {
	r := Row{
		Staff:       s,
		RoleVariant: s.Role.Variant(),
		OnDuty:      census.IsOnDuty(s.Schedule, now),
		DutyVariant: census.DutyVariant(s.Schedule, now),
		WeekGrid:    census.WeekGrid(s.Schedule),
	}
	if next, ok := census.NextShift(s.Schedule, now); ok {
		r.NextShift = &next
	}
	return r
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
	read.GET("/staff", h.ListStaff)
	read.GET("/staff/departments", h.ListDepartments)
	read.GET("/staff/:id", h.GetStaff)

	write := api.Group("", auth.RequireRole(auth.WriteRoles...))
	write.POST("/staff", h.CreateStaff)
	write.PUT("/staff/:id", h.UpdateStaff)
	write.PATCH("/staff/:id", h.UpdateStaff)
	write.DELETE("/staff/:id", h.DeleteStaff)
}

func (h *Handler) ListStaff(c echo.Context) error {
	res := h.gw.GetAll(c.Request().Context())
	if !res.OK() {
		return gateway.LoadError(res)
	}

	pg := pagination.FromContext(c)
	page := listview.FromParams(Spec, res.Records(), pg).Result()

	now := h.now()
	rows := make([]Row, len(page.Items))
	for i, s := range page.Items {
		rows[i] = NewRow(s, now)
	}
	resp := pagination.NewResponse(rows, page.Page, page.PageSize, page.TotalPages, page.TotalCount)
	return c.JSON(http.StatusOK, resp.WithLinks(c.Request().URL.Path, pg))
}

func (h *Handler) ListDepartments(c echo.Context) error {
	res := h.gw.GetAll(c.Request().Context())
	if !res.OK() {
		return gateway.LoadError(res)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"departments": append([]string{listview.AllCategories}, Departments(res.Records())...),
	})
}

func (h *Handler) GetStaff(c echo.Context) error {
	id, err := gateway.ParseID(c)
	if err != nil {
		return err
	}
	s, err := h.gw.GetByID(c.Request().Context(), id)
	if err != nil {
		return gateway.HTTPError(err)
	}
	return c.JSON(http.StatusOK, NewRow(s, h.now()))
}

func (h *Handler) CreateStaff(c echo.Context) error {
	fields, err := gateway.BindFields(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	s, err := h.gw.Create(ctx, fields)
	h.announce.Mutation(ctx, Kind, gateway.NoticeCreated, s.ID, err)
	if err != nil {
		return gateway.HTTPError(err)
	}
	return c.JSON(http.StatusCreated, s)
}

func (h *Handler) UpdateStaff(c echo.Context) error {
	id, err := gateway.ParseID(c)
	if err != nil {
		return err
	}
	fields, err := gateway.BindFields(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	s, err := h.gw.Update(ctx, id, fields)
	h.announce.Mutation(ctx, Kind, gateway.NoticeUpdated, id, err)
	if err != nil {
		return gateway.HTTPError(err)
	}
	return c.JSON(http.StatusOK, s)
}

func (h *Handler) DeleteStaff(c echo.Context) error {
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
