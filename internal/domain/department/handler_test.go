package department

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/medflow/medflow/internal/domain/staff"
	"github.com/medflow/medflow/internal/platform/gateway"
)

type unavailableStaffStore struct {
	*gateway.MemoryStore[staff.Staff]
}

func (unavailableStaffStore) List(context.Context) ([]staff.Staff, error) {
	return nil, errors.New("connection refused")
}

func seedStaffStore() gateway.Store[staff.Staff] {
	return gateway.NewMemoryStore(staff.Kind,
		staff.Staff{Name: "Mark Rivera", Role: staff.RoleNurse, Department: "ICU"},
		staff.Staff{Name: "Dr. Amir Patel", Role: staff.RoleSurgeon, Department: "ICU"},
		staff.Staff{Name: "Dr. Sarah Chen", Role: staff.RoleDoctor, Department: "Cardiology"},
	)
}

func newTestHandler(staffStore gateway.Store[staff.Staff]) (*Handler, *echo.Echo) {
	depts := newTestGateway(
		Department{ID: 1, Name: "ICU", TotalBeds: 10, OccupiedBeds: 9, HeadOfDepartment: "Dr. Ray"},
		Department{ID: 2, Name: "Cardiology", TotalBeds: 30, OccupiedBeds: 12},
	)
	sgw := staff.NewGateway(staffStore, zerolog.Nop(), nil)
	return NewHandler(depts, sgw, gateway.Announcer{}), echo.New()
}

func TestHandler_ListDepartments(t *testing.T) {
	h, e := newTestHandler(seedStaffStore())
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/v1/departments", nil), rec)

	if err := h.ListDepartments(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var body struct {
		Data       []Row `json:"data"`
		TotalCount int   `json:"totalCount"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.TotalCount != 2 {
		t.Fatalf("expected 2 departments, got %d", body.TotalCount)
	}
	icu := body.Data[0]
	if icu.Name != "ICU" || icu.OccupancyRate != 90 || icu.BandVariant != "danger" || icu.BedStatus != "Full" {
		t.Errorf("unexpected ICU row %+v", icu)
	}
	if icu.StaffCount != 2 {
		t.Errorf("expected 2 ICU staff, got %d", icu.StaffCount)
	}
	cardio := body.Data[1]
	if cardio.OccupancyRate != 40 || cardio.Head != "Not Assigned" || cardio.StaffCount != 1 {
		t.Errorf("unexpected Cardiology row %+v", cardio)
	}
}

func TestHandler_ListDepartments_StaffLoadFailure(t *testing.T) {
	h, e := newTestHandler(unavailableStaffStore{gateway.NewMemoryStore[staff.Staff](staff.Kind)})
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/v1/departments", nil), httptest.NewRecorder())

	err := h.ListDepartments(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %v", err)
	}
}

func TestHandler_GetDepartment(t *testing.T) {
	h, e := newTestHandler(seedStaffStore())
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues("1")

	if err := h.GetDepartment(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var row Row
	if err := json.Unmarshal(rec.Body.Bytes(), &row); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if row.StaffCount != 2 || row.AvailableBeds != 1 {
		t.Errorf("unexpected row %+v", row)
	}
}

func TestHandler_GetDepartment_NotFound(t *testing.T) {
	h, e := newTestHandler(seedStaffStore())
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("42")

	err := h.GetDepartment(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
}

func TestHandler_CreateDepartment_InvalidBeds(t *testing.T) {
	h, e := newTestHandler(seedStaffStore())
	body := `{"name":"Oncology","totalBeds":5,"occupiedBeds":8}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())

	err := h.CreateDepartment(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %v", err)
	}
}

func TestHandler_CreateAndDeleteDepartment(t *testing.T) {
	h, e := newTestHandler(seedStaffStore())
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Oncology","total_beds_c":20}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.CreateDepartment(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var created Department
	json.Unmarshal(rec.Body.Bytes(), &created)
	if created.ID != 3 || created.TotalBeds != 20 {
		t.Fatalf("unexpected department %+v", created)
	}

	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodDelete, "/", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues("3")
	if err := h.DeleteDepartment(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
}
