package patient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/medflow/medflow/internal/platform/gateway"
)

func newTestHandler(seed ...Patient) (*Handler, *echo.Echo) {
	h := NewHandler(newTestGateway(seed...), gateway.Announcer{}, func() time.Time { return fixedNow })
	return h, echo.New()
}

type listBody struct {
	Data       []Row `json:"data"`
	Page       int   `json:"page"`
	TotalPages int   `json:"totalPages"`
	TotalCount int   `json:"totalCount"`
	HasMore    bool  `json:"hasMore"`
}

func list(t *testing.T, h *Handler, e *echo.Echo, target string) listBody {
	t.Helper()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), rec)
	if err := h.ListPatients(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var body listBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return body
}

func TestHandler_ListPatients_Pages(t *testing.T) {
	var seed []Patient
	for i := 1; i <= 25; i++ {
		seed = append(seed, Patient{Name: fmt.Sprintf("Patient %02d", i), Status: StatusAdmitted})
	}
	h, e := newTestHandler(seed...)

	first := list(t, h, e, "/api/v1/patients")
	if first.TotalPages != 3 || len(first.Data) != 10 || !first.HasMore {
		t.Fatalf("unexpected first page: pages=%d len=%d", first.TotalPages, len(first.Data))
	}
	last := list(t, h, e, "/api/v1/patients?page=3")
	if len(last.Data) != 5 || last.HasMore {
		t.Errorf("expected 5 items on the last page, got %d", len(last.Data))
	}
	if last.Data[4].Name != "Patient 25" {
		t.Errorf("unexpected last item %q", last.Data[4].Name)
	}
	clamped := list(t, h, e, "/api/v1/patients?page=9")
	if clamped.Page != 3 {
		t.Errorf("expected page clamped to 3, got %d", clamped.Page)
	}
}

func TestHandler_ListPatients_SearchAndAge(t *testing.T) {
	h, e := newTestHandler(
		Patient{Name: "Jane Doe", MedicalID: "MRN-ABC", DateOfBirth: "2000-06-15", Department: "ICU", Status: StatusAdmitted},
		Patient{Name: "John Roe", MedicalID: "MRN-XYZ", Department: "Cardiology", Status: StatusEmergency},
	)

	body := list(t, h, e, "/api/v1/patients?q=mrn-abc")
	if body.TotalCount != 1 {
		t.Fatalf("expected 1 match, got %d", body.TotalCount)
	}
	row := body.Data[0]
	if row.Age != "23" || row.StatusVariant != "admitted" || row.StatusLabel != "Admitted" {
		t.Errorf("unexpected row %+v", row)
	}

	body = list(t, h, e, "/api/v1/patients?department=Cardiology")
	if body.TotalCount != 1 || body.Data[0].Age != "N/A" {
		t.Errorf("unexpected department filter result %+v", body.Data)
	}
}

func TestHandler_CreatePatient_Validation(t *testing.T) {
	h, e := newTestHandler()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"nope"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())

	err := h.CreatePatient(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %v", err)
	}
	body := he.Message.(map[string]interface{})
	fields := body["fields"].(map[string]string)
	if fields["name"] != "Name is required" || fields["email"] != "Email format is invalid" {
		t.Errorf("unexpected field errors %v", fields)
	}
}

func TestHandler_UpdatePatient_Merge(t *testing.T) {
	h, e := newTestHandler(Patient{Name: "Jane Doe", Status: StatusAdmitted, Department: "ICU"})
	req := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"status":"discharged"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")

	if err := h.UpdatePatient(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var p Patient
	json.Unmarshal(rec.Body.Bytes(), &p)
	if p.Status != StatusDischarged || p.Department != "ICU" || p.Name != "Jane Doe" {
		t.Errorf("unexpected merged patient %+v", p)
	}
}

func TestHandler_DeletePatient_NotFound(t *testing.T) {
	h, e := newTestHandler()
	c := e.NewContext(httptest.NewRequest(http.MethodDelete, "/", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("7")

	err := h.DeletePatient(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
}
