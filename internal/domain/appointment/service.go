package appointment

import (
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/medflow/medflow/internal/domain/patient"
	"github.com/medflow/medflow/internal/domain/staff"
	"github.com/medflow/medflow/internal/listview"
	"github.com/medflow/medflow/internal/platform/gateway"
	"github.com/medflow/medflow/internal/platform/xref"
	"github.com/medflow/medflow/pkg/apperror"
)

const (
	Kind       = "appointment"
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// Gateway is the record gateway for appointments.
type Gateway = gateway.Gateway[Appointment]

// NewGateway returns the appointment gateway over store.
func NewGateway(store gateway.Store[Appointment], logger zerolog.Logger, n gateway.Notifier) *Gateway {
	return gateway.New[Appointment](store, gateway.Options[Appointment]{
		Kind:     Kind,
		Prepare:  Prepare,
		Validate: Validate,
		Notifier: n,
		Logger:   logger,
	})
}

func Prepare(a *Appointment, _ time.Time) {
	if a.Status == "" {
		a.Status = StatusScheduled
	}
}

// Validate checks an appointment before it is stored. The referenced patient
// and doctor are not required to exist.
func Validate(a Appointment) error {
	var fe apperror.FieldErrors
	if a.PatientID <= 0 {
		fe.Add("patientId", "Patient is required")
	}
	if a.DoctorID <= 0 {
		fe.Add("doctorId", "Doctor is required")
	}
	if _, err := time.Parse(dateLayout, a.Date); err != nil {
		fe.Add("date", "Date must be YYYY-MM-DD")
	}
	if _, err := time.Parse(timeLayout, a.Time); err != nil {
		fe.Add("time", "Time must be HH:MM")
	}
	if !a.Status.Valid() {
		fe.Add("status", "Status must be scheduled, completed or cancelled")
	}
	return fe.Err(Kind)
}

// Spec searches appointments by department, type and notes and categorizes
// them by department.
var Spec = listview.Spec[Appointment]{
	SearchFields: func(a Appointment) []string { return []string{string(a.Department), a.Type, a.Notes} },
	Category:     func(a Appointment) string { return string(a.Department) },
}

// OnDate returns the appointments on date (YYYY-MM-DD) ordered by time.
func OnDate(all []Appointment, date string) []Appointment {
	out := make([]Appointment, 0)
	for _, a := range all {
		if a.Date == date {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return out
}

// Tally counts appointments per status.
type Tally struct {
	Scheduled int `json:"scheduled"`
	Completed int `json:"completed"`
	Cancelled int `json:"cancelled"`
}

func TallyOf(all []Appointment) Tally {
	var t Tally
	for _, a := range all {
		switch a.Status {
		case StatusScheduled:
			t.Scheduled++
		case StatusCompleted:
			t.Completed++
		case StatusCancelled:
			t.Cancelled++
		}
	}
	return t
}

// TimeLabel renders an HH:MM time as "3:04 PM"; unparseable input is
// returned unchanged.
func TimeLabel(hhmm string) string {
	t, err := time.Parse(timeLayout, strings.TrimSpace(hhmm))
	if err != nil {
		return hhmm
	}
	return t.Format("3:04 PM")
}

// Row is an appointment with its references resolved for display.
type Row struct {
	Appointment
	PatientName   string `json:"patientName"`
	DoctorName    string `json:"doctorName"`
	StatusLabel   string `json:"statusLabel"`
	StatusVariant string `json:"statusVariant"`
	TimeLabel     string `json:"timeLabel"`
}

// Resolver turns appointments into rows against one snapshot of patients and
// staff.
type Resolver struct {
	patients xref.Index[patient.Patient]
	staff    xref.Index[staff.Staff]
}

func NewResolver(patients []patient.Patient, members []staff.Staff) *Resolver {
	return &Resolver{patients: xref.NewIndex(patients), staff: xref.NewIndex(members)}
}

func (r *Resolver) Row(a Appointment) Row {
	return Row{
		Appointment:   a,
		PatientName:   r.patients.Name(a.PatientID, xref.UnknownPatient),
		DoctorName:    r.staff.Name(a.DoctorID, xref.UnknownDoctor),
		StatusLabel:   a.Status.Label(),
		StatusVariant: a.Status.Variant(),
		TimeLabel:     TimeLabel(a.Time),
	}
}

func (r *Resolver) Rows(all []Appointment) []Row {
	rows := make([]Row, len(all))
	for i, a := range all {
		rows[i] = r.Row(a)
	}
	return rows
}
