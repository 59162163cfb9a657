package staff

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/medflow/medflow/internal/census"
	"github.com/medflow/medflow/internal/platform/gateway"
)

var fixedNow = time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)

func newTestHandler(seed ...Staff) (*Handler, *echo.Echo) {
	h := NewHandler(newTestGateway(seed...), gateway.Announcer{}, func() time.Time { return fixedNow })
	return h, echo.New()
}

func seedStaff() []Staff {
	return []Staff{
		{ID: 1, Name: "Dr. Sarah Chen", Role: RoleDoctor, Department: "Cardiology", Schedule: census.Schedule{{Day: 1}}},
		{ID: 2, Name: "Mark Rivera", Role: RoleNurse, Department: "ICU", Schedule: census.Schedule{{Day: 2}}},
		{ID: 3, Name: "Dr. Amir Patel", Role: RoleSurgeon, Department: "ICU"},
	}
}

func TestHandler_ListStaff(t *testing.T) {
	h, e := newTestHandler(seedStaff()...)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/staff?department=ICU", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.ListStaff(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body struct {
		Data       []Row `json:"data"`
		TotalCount int   `json:"totalCount"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.TotalCount != 2 || len(body.Data) != 2 {
		t.Fatalf("expected 2 ICU staff, got %d", body.TotalCount)
	}
	if body.Data[0].Name != "Mark Rivera" || body.Data[0].OnDuty {
		t.Errorf("unexpected first row %+v", body.Data[0])
	}
}

func TestHandler_ListStaff_Search(t *testing.T) {
	h, e := newTestHandler(seedStaff()...)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/staff?q=surgeon", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.ListStaff(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), "Dr. Amir Patel") {
		t.Errorf("expected search by role to match, got %s", rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "Mark Rivera") {
		t.Error("did not expect nurse in surgeon search")
	}
}

func TestHandler_ListDepartments(t *testing.T) {
	h, e := newTestHandler(seedStaff()...)
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	if err := h.ListDepartments(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var body struct {
		Departments []string `json:"departments"`
	}
	json.Unmarshal(rec.Body.Bytes(), &body)
	want := []string{"all", "Cardiology", "ICU"}
	if strings.Join(body.Departments, ",") != strings.Join(want, ",") {
		t.Errorf("expected %v, got %v", want, body.Departments)
	}
}

func TestHandler_GetStaff(t *testing.T) {
	h, e := newTestHandler(seedStaff()...)
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues("1")

	if err := h.GetStaff(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var row Row
	json.Unmarshal(rec.Body.Bytes(), &row)
	if !row.OnDuty || row.RoleVariant != "info" {
		t.Errorf("unexpected row %+v", row)
	}
}

func TestHandler_GetStaff_NotFound(t *testing.T) {
	h, e := newTestHandler()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("99")

	err := h.GetStaff(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %v", err)
	}
}

func TestHandler_CreateStaff(t *testing.T) {
	h, e := newTestHandler(seedStaff()...)
	body := `{"name":"Jo Park","role":"Technician","department":"Radiology","schedule":"[{\"day\":4}]"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.CreateStaff(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	var s Staff
	json.Unmarshal(rec.Body.Bytes(), &s)
	if s.ID != 4 || len(s.Schedule) != 1 {
		t.Errorf("unexpected created staff %+v", s)
	}
}

func TestHandler_CreateStaff_Invalid(t *testing.T) {
	h, e := newTestHandler()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"role":"Nurse"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())

	err := h.CreateStaff(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %v", err)
	}
}

func TestHandler_DeleteStaff(t *testing.T) {
	h, e := newTestHandler(seedStaff()...)
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodDelete, "/", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues("2")

	if err := h.DeleteStaff(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
}
