package dashboard

import (
	"context"
	"time"

	"github.com/medflow/medflow/internal/domain/appointment"
	"github.com/medflow/medflow/internal/domain/department"
	"github.com/medflow/medflow/internal/domain/patient"
	"github.com/medflow/medflow/internal/domain/staff"
)

// Friday.
var fixedNow = time.Date(2024, 6, 14, 8, 0, 0, 0, time.UTC)

func fixture() Collections {
	return Collections{
		Departments: []department.Department{
			{ID: 1, Name: "ICU", TotalBeds: 10, OccupiedBeds: 9},
			{ID: 2, Name: "Cardiology", TotalBeds: 30, OccupiedBeds: 12},
			{ID: 3, Name: "Emergency", TotalBeds: 20, OccupiedBeds: 18},
		},
		Patients: []patient.Patient{
			{ID: 1, Name: "Jane Doe", Department: "ICU", Status: patient.StatusAdmitted, AdmissionDate: "2024-06-12"},
			{ID: 2, Name: "Bob Stone", Department: "Emergency", Status: patient.StatusEmergency},
			{ID: 3, Name: "Carl Ruiz", Department: "Cardiology", Status: patient.StatusAdmitted, AdmissionDate: "2024-06-14"},
			{ID: 4, Name: "Dana Park", Department: "ICU", Status: patient.StatusDischarged},
			{ID: 5, Name: "Eve Moss", Department: "Oncology", Status: patient.StatusAdmitted},
			{ID: 6, Name: "Finn Hale", Department: "ICU", Status: patient.StatusAdmitted, AdmissionDate: "2024-06-01"},
		},
		Staff: []staff.Staff{
			{ID: 10, Name: "Dr. Sarah Chen", Department: "ICU"},
			{ID: 11, Name: "Tom Reyes", Department: "ICU"},
			{ID: 12, Name: "Dr. Ali Khan", Department: "Cardiology"},
			{ID: 13, Name: "Mia Lord", Department: "Radiology"},
		},
		Appointments: []appointment.Appointment{
			{ID: 1, PatientID: 1, DoctorID: 10, Date: "2024-06-14", Time: "09:00", Status: appointment.StatusCompleted},
			{ID: 2, PatientID: 999, DoctorID: 10, Date: "2024-06-14", Time: "10:30", Status: appointment.StatusScheduled},
			{ID: 3, PatientID: 3, DoctorID: 12, Date: "2024-06-14", Time: "08:15", Status: appointment.StatusCompleted},
			{ID: 4, PatientID: 2, DoctorID: 12, Date: "2024-06-14", Time: "11:00", Status: appointment.StatusScheduled},
			{ID: 5, PatientID: 4, DoctorID: 10, Date: "2024-06-14", Time: "13:00", Status: appointment.StatusCancelled},
			{ID: 6, PatientID: 5, DoctorID: 11, Date: "2024-06-14", Time: "14:00", Status: appointment.StatusScheduled},
			{ID: 7, PatientID: 6, DoctorID: 11, Date: "2024-06-14", Time: "16:00", Status: appointment.StatusScheduled},
			{ID: 8, PatientID: 1, DoctorID: 10, Date: "2024-06-10", Time: "09:00", Status: appointment.StatusCompleted},
			{ID: 9, PatientID: 1, DoctorID: 10, Date: "soon", Time: "09:00", Status: appointment.StatusScheduled},
		},
	}
}

type sourceFunc func(ctx context.Context) (Collections, error)

func (f sourceFunc) Load(ctx context.Context) (Collections, error) { return f(ctx) }

func staticSource(c Collections) Source {
	return sourceFunc(func(context.Context) (Collections, error) { return c, nil })
}
