package appointment

import (
	"strings"

	"github.com/medflow/medflow/internal/platform/xref"
)

// Status is the state of an appointment.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Variant returns the badge variant for the status.
func (s Status) Variant() string {
	switch s {
	case StatusScheduled:
		return "scheduled"
	case StatusCompleted:
		return "completed"
	case StatusCancelled:
		return "cancelled"
	}
	return "default"
}

func (s Status) Label() string {
	if !s.Valid() {
		return "Unknown"
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

// Appointment is a visit booked between a patient and a doctor. PatientID and
// DoctorID are weak references: they may point at records that no longer
// exist.
type Appointment struct {
	ID         int64              `json:"id"`
	PatientID  int64              `json:"patientId"`
	DoctorID   int64              `json:"doctorId"`
	Date       string             `json:"date"`
	Time       string             `json:"time"`
	Department xref.DepartmentRef `json:"department"`
	Status     Status             `json:"status"`
	Notes      string             `json:"notes"`
	Type       string             `json:"type"`
}

func (a Appointment) GetID() int64                { return a.ID }
func (a Appointment) WithID(id int64) Appointment { a.ID = id; return a }
