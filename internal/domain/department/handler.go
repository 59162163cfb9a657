package department

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medflow/medflow/internal/census"
	"github.com/medflow/medflow/internal/domain/staff"
	"github.com/medflow/medflow/internal/listview"
	"github.com/medflow/medflow/internal/platform/auth"
	"github.com/medflow/medflow/internal/platform/gateway"
	"github.com/medflow/medflow/pkg/pagination"
)

// Row is a department enriched with its derived occupancy figures.
type Row struct {
	Department
	OccupancyRate int             `json:"occupancyRate"`
	Band          census.Band     `json:"band"`
	BandVariant   string          `json:"bandVariant"`
	BedStatus     census.BedState `json:"bedStatus"`
	AvailableBeds int             `json:"availableBeds"`
	Head          string          `json:"head"`
	StaffCount    int             `json:"staffCount"`
}

// NewRow enriches d; staffCount is the number of staff whose department
// names d exactly.
func NewRow(d Department, staffCount int) Row {
	rate := d.OccupancyRate()
	band := census.BandOccupancy(rate)
	return Row{
		Department:    d,
		OccupancyRate: rate,
		Band:          band,
		BandVariant:   band.Variant(),
		BedStatus:     census.BedStatus(rate),
		AvailableBeds: d.AvailableBeds(),
		Head:          d.Head(),
		StaffCount:    staffCount,
	}
}

type Handler struct {
	gw       *Gateway
	staff    *staff.Gateway
	announce gateway.Announcer
}

func NewHandler(gw *Gateway, staffGW *staff.Gateway, announce gateway.Announcer) *Handler {
	return &Handler{gw: gw, staff: staffGW, announce: announce}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireRole(auth.ReadRoles...))
	read.GET("/departments", h.ListDepartments)
	read.GET("/departments/:id", h.GetDepartment)

	write := api.Group("", auth.RequireRole(auth.RoleAdmin))
	write.POST("/departments", h.CreateDepartment)
	write.PUT("/departments/:id", h.UpdateDepartment)
	write.PATCH("/departments/:id", h.UpdateDepartment)
	write.DELETE("/departments/:id", h.DeleteDepartment)
}

func (h *Handler) ListDepartments(c echo.Context) error {
	var (
		depts   []Department
		members []staff.Staff
	)
	if err := gateway.LoadAll(c.Request().Context(),
		gateway.Into(h.gw, &depts),
		gateway.Into(h.staff, &members),
	); err != nil {
		return gateway.HTTPError(err)
	}

	pg := pagination.FromContext(c)
	page := listview.FromParams(Spec, depts, pg).Result()

	counts := staff.CountByDepartment(members)
	rows := make([]Row, len(page.Items))
	for i, d := range page.Items {
		rows[i] = NewRow(d, counts[d.Name])
	}
	resp := pagination.NewResponse(rows, page.Page, page.PageSize, page.TotalPages, page.TotalCount)
	return c.JSON(http.StatusOK, resp.WithLinks(c.Request().URL.Path, pg))
}

func (h *Handler) GetDepartment(c echo.Context) error {
	id, err := gateway.ParseID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	d, err := h.gw.GetByID(ctx, id)
	if err != nil {
		return gateway.HTTPError(err)
	}
	members := h.staff.GetAll(ctx)
	if !members.OK() {
		return gateway.LoadError(members)
	}
	return c.JSON(http.StatusOK, NewRow(d, staff.CountByDepartment(members.Records())[d.Name]))
}

func (h *Handler) CreateDepartment(c echo.Context) error {
	fields, err := gateway.BindFields(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	d, err := h.gw.Create(ctx, fields)
	h.announce.Mutation(ctx, Kind, gateway.NoticeCreated, d.ID, err)
	if err != nil {
		return gateway.HTTPError(err)
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *Handler) UpdateDepartment(c echo.Context) error {
	id, err := gateway.ParseID(c)
	if err != nil {
		return err
	}
	fields, err := gateway.BindFields(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	d, err := h.gw.Update(ctx, id, fields)
	h.announce.Mutation(ctx, Kind, gateway.NoticeUpdated, id, err)
	if err != nil {
		return gateway.HTTPError(err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) DeleteDepartment(c echo.Context) error {
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
