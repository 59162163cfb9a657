package patient

import (
	"encoding/json"
	"strings"

	"github.com/medflow/medflow/internal/platform/xref"
)

// Status is a patient's admission status.
type Status string

const (
	StatusAdmitted   Status = "admitted"
	StatusDischarged Status = "discharged"
	StatusEmergency  Status = "emergency"
	StatusOutpatient Status = "outpatient"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusAdmitted, StatusDischarged, StatusEmergency, StatusOutpatient}

func (s Status) Valid() bool {
	switch s {
	case StatusAdmitted, StatusDischarged, StatusEmergency, StatusOutpatient:
		return true
	}
	return false
}

// Variant returns the badge variant for the status.
func (s Status) Variant() string {
	switch s {
	case StatusAdmitted:
		return "admitted"
	case StatusDischarged:
		return "discharged"
	case StatusEmergency:
		return "emergency"
	case StatusOutpatient:
		return "outpatient"
	}
	return "default"
}

// Label is the capitalized status text shown on badges.
func (s Status) Label() string {
	if !s.Valid() {
		return "Unknown"
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

// EmergencyContact is the person to call for a patient.
type EmergencyContact struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Relationship string `json:"relationship"`
}

// UnmarshalJSON accepts an object or a JSON string holding one. Anything
// else decodes to an empty contact.
func (ec *EmergencyContact) UnmarshalJSON(data []byte) error {
	type plain EmergencyContact
	var p plain
	if err := json.Unmarshal(data, &p); err == nil {
		*ec = EmergencyContact(p)
		return nil
	}
	var text string
	if err := json.Unmarshal(data, &text); err == nil && json.Unmarshal([]byte(text), &p) == nil {
		*ec = EmergencyContact(p)
		return nil
	}
	*ec = EmergencyContact{}
	return nil
}

// Patient is a registered patient.
type Patient struct {
	ID                int64              `json:"id"`
	Name              string             `json:"name"`
	DateOfBirth       string             `json:"dateOfBirth"`
	Gender            string             `json:"gender"`
	Phone             string             `json:"phone"`
	Email             string             `json:"email"`
	Address           string             `json:"address"`
	EmergencyContact  EmergencyContact   `json:"emergencyContact"`
	MedicalID         string             `json:"medicalId"`
	Department        xref.DepartmentRef `json:"department"`
	Status            Status             `json:"status"`
	AdmissionDate     string             `json:"admissionDate"`
	InsuranceProvider string             `json:"insuranceProvider"`
	InsuranceNumber   string             `json:"insuranceNumber"`
}

func (p Patient) GetID() int64            { return p.ID }
func (p Patient) WithID(id int64) Patient { p.ID = id; return p }
func (p Patient) DisplayName() string     { return p.Name }
