package patient

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/medflow/medflow/internal/platform/gateway"
	"github.com/medflow/medflow/pkg/apperror"
)

var fixedNow = time.Date(2024, 6, 14, 15, 4, 0, 0, time.UTC)

func newTestGateway(seed ...Patient) *Gateway {
	return NewGateway(gateway.NewMemoryStore(Kind, seed...), zerolog.Nop(), nil, func() time.Time { return fixedNow })
}

func TestCreate_Defaults(t *testing.T) {
	g := newTestGateway()
	p, err := g.Create(context.Background(), gateway.Fields{"name": "Jane Doe", "department": "ICU"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Status != StatusAdmitted {
		t.Errorf("expected status admitted, got %q", p.Status)
	}
	if !strings.HasPrefix(p.MedicalID, "MRN-") {
		t.Errorf("expected generated medical id, got %q", p.MedicalID)
	}
	if p.AdmissionDate != "2024-06-14" {
		t.Errorf("expected admission date today, got %q", p.AdmissionDate)
	}
}

func TestCreate_KeepsSuppliedValues(t *testing.T) {
	g := newTestGateway()
	p, err := g.Create(context.Background(), gateway.Fields{
		"name_c":           "John Roe",
		"medical_id_c":     "MRN-001",
		"status":           "emergency",
		"admission_date_c": "2024-06-01",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.MedicalID != "MRN-001" || p.Status != StatusEmergency || p.AdmissionDate != "2024-06-01" {
		t.Errorf("unexpected patient %+v", p)
	}
}

func TestCreate_MedicalIDsAreUnique(t *testing.T) {
	g := newTestGateway()
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		p, err := g.Create(context.Background(), gateway.Fields{"name": "Patient"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.MedicalID == "" || seen[p.MedicalID] {
			t.Fatalf("medical id %q empty or reused", p.MedicalID)
		}
		seen[p.MedicalID] = true
	}
}

func TestCreate_EmergencyContact(t *testing.T) {
	g := newTestGateway()
	ctx := context.Background()

	p, err := g.Create(ctx, gateway.Fields{
		"name":             "A",
		"emergencyContact": map[string]any{"name": "Bob", "phone": "555-0100", "relationship": "Brother"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.EmergencyContact.Name != "Bob" || p.EmergencyContact.Relationship != "Brother" {
		t.Errorf("unexpected contact %+v", p.EmergencyContact)
	}

	p, err = g.Create(ctx, gateway.Fields{"name": "B", "emergency_contact_c": `{"name":"Ann","phone":"555-0199"}`})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.EmergencyContact.Name != "Ann" {
		t.Errorf("expected contact parsed from text, got %+v", p.EmergencyContact)
	}

	p, err = g.Create(ctx, gateway.Fields{"name": "C", "emergencyContact": "{broken"})
	if err != nil {
		t.Fatalf("unparseable contact must not fail: %v", err)
	}
	if p.EmergencyContact != (EmergencyContact{}) {
		t.Errorf("expected empty contact, got %+v", p.EmergencyContact)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		p     Patient
		field string
	}{
		{"valid", Patient{Name: "A", Status: StatusAdmitted, Email: "a@b.co", Phone: "+1 (555) 010-0000"}, ""},
		{"missing name", Patient{Status: StatusAdmitted}, "name"},
		{"bad email", Patient{Name: "A", Status: StatusAdmitted, Email: "a@b"}, "email"},
		{"bad phone", Patient{Name: "A", Status: StatusAdmitted, Phone: "call me"}, "phone"},
		{"bad dob", Patient{Name: "A", Status: StatusAdmitted, DateOfBirth: "15/06/2000"}, "dateOfBirth"},
		{"unknown status", Patient{Name: "A", Status: "deceased"}, "status"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.p)
			if tt.field == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var ae *apperror.Error
			if !errors.As(err, &ae) || ae.Fields[tt.field] == "" {
				t.Errorf("expected message for %s, got %v", tt.field, err)
			}
		})
	}
}

func TestUpdate_InvalidStatusKeepsRecord(t *testing.T) {
	ctx := context.Background()
	g := newTestGateway(Patient{ID: 1, Name: "A", Status: StatusAdmitted})
	if _, err := g.Update(ctx, 1, gateway.Fields{"status": "unknown"}); !apperror.Is(err, apperror.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	p, _ := g.GetByID(ctx, 1)
	if p.Status != StatusAdmitted {
		t.Errorf("expected status unchanged, got %q", p.Status)
	}
}

func TestStatus(t *testing.T) {
	for _, s := range Statuses {
		if !s.Valid() || s.Variant() == "default" {
			t.Errorf("status %q lacks a mapping", s)
		}
	}
	if StatusEmergency.Label() != "Emergency" {
		t.Errorf("unexpected label %q", StatusEmergency.Label())
	}
	if Status("x").Variant() != "default" || Status("").Label() != "Unknown" {
		t.Error("expected fallbacks for unknown status")
	}
}

func TestEmergencyContact_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"emergencyContact":{"name":"Bob"}}`, "Bob"},
		{`{"emergencyContact":"{\"name\":\"Ann\"}"}`, "Ann"},
		{`{"emergencyContact":"nope"}`, ""},
		{`{"emergencyContact":[1,2]}`, ""},
		{`{"emergencyContact":null}`, ""},
	}
	for _, tt := range tests {
		var p Patient
		if err := json.Unmarshal([]byte(tt.in), &p); err != nil {
			t.Fatalf("Unmarshal(%s): %v", tt.in, err)
		}
		if p.EmergencyContact.Name != tt.want {
			t.Errorf("Unmarshal(%s) name = %q, want %q", tt.in, p.EmergencyContact.Name, tt.want)
		}
	}
}

func TestCountByStatus(t *testing.T) {
	counts := CountByStatus([]Patient{{Status: StatusAdmitted}, {Status: StatusAdmitted}, {Status: StatusEmergency}})
	if counts[StatusAdmitted] != 2 || counts[StatusEmergency] != 1 {
		t.Errorf("unexpected counts %v", counts)
	}
	if _, ok := counts[StatusOutpatient]; !ok {
		t.Error("expected every status present")
	}
}
