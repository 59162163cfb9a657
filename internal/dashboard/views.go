package dashboard

import (
	"strconv"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/medflow/medflow/internal/census"
	"github.com/medflow/medflow/internal/domain/appointment"
	"github.com/medflow/medflow/internal/domain/department"
	"github.com/medflow/medflow/internal/domain/patient"
	"github.com/medflow/medflow/internal/domain/staff"
	"github.com/medflow/medflow/internal/platform/xref"
)

const (
	scheduleLimit  = 5
	admissionLimit = 3
	upcomingLimit  = 2
	activityLimit  = 5
	dateLayout     = "2006-01-02"
)

// DepartmentCard is a department's occupancy status on the dashboard.
type DepartmentCard struct {
	ID               int64           `json:"id"`
	Name             string          `json:"name"`
	OccupiedBeds     int             `json:"occupiedBeds"`
	TotalBeds        int             `json:"totalBeds"`
	OccupancyRate    int             `json:"occupancyRate"`
	Band             census.Band     `json:"band"`
	BandVariant      string          `json:"bandVariant"`
	BedStatus        census.BedState `json:"bedStatus"`
	BedStatusVariant string          `json:"bedStatusVariant"`
}

// Schedule is the head of today's appointment list.
type Schedule struct {
	Items     []appointment.Row `json:"items"`
	Total     int               `json:"total"`
	Remaining int               `json:"remaining"`
}

// Activity is one line of the recent activity feed.
type Activity struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Time    string `json:"time"`
}

// Summary is the main dashboard.
type Summary struct {
	Date              string           `json:"date"`
	TotalPatients     int              `json:"totalPatients"`
	TodayAppointments int              `json:"todayAppointments"`
	TotalBeds         int              `json:"totalBeds"`
	OccupiedBeds      int              `json:"occupiedBeds"`
	AvailableBeds     int              `json:"availableBeds"`
	AvailableBedsBand census.Band      `json:"availableBedsBand"`
	OccupancyRate     int              `json:"occupancyRate"`
	OccupancyTrend    string           `json:"occupancyTrend"`
	EmergencyCases    int              `json:"emergencyCases"`
	Departments       []DepartmentCard `json:"departments"`
	TodaySchedule     Schedule         `json:"todaySchedule"`
	RecentActivity    []Activity       `json:"recentActivity"`
	GeneratedAt       time.Time        `json:"generatedAt"`
}

func isEmergency(p patient.Patient) bool { return p.Status == patient.StatusEmergency }

func bedTotals(depts []department.Department) (total, occupied int) {
	total = census.Sum(depts, func(d department.Department) int { return d.TotalBeds })
	occupied = census.Sum(depts, func(d department.Department) int { return d.OccupiedBeds })
	return total, occupied
}

// NewSummary derives the dashboard from c as of now. "Today" is now's
// calendar date in now's location.
func NewSummary(c Collections, now time.Time) Summary {
	today := now.Format(dateLayout)
	todays := appointment.OnDate(c.Appointments, today)
	total, occupied := bedTotals(c.Departments)
	available := total - occupied
	if available < 0 {
		available = 0
	}
	res := appointment.NewResolver(c.Patients, c.Staff)

	s := Summary{
		Date:              today,
		TotalPatients:     len(c.Patients),
		TodayAppointments: len(todays),
		TotalBeds:         total,
		OccupiedBeds:      occupied,
		AvailableBeds:     available,
		AvailableBedsBand: census.AvailableBedsBand(available),
		OccupancyRate:     census.OccupancyRate(occupied, total),
		EmergencyCases:    census.Count(c.Patients, isEmergency),
		Departments:       make([]DepartmentCard, 0, len(c.Departments)),
		RecentActivity:    RecentActivity(c.Patients, todays, now),
		GeneratedAt:       now,
	}
	s.OccupancyTrend = strconv.Itoa(s.OccupancyRate) + "% occupied"
	for _, d := range c.Departments {
		s.Departments = append(s.Departments, NewDepartmentCard(d))
	}

	head := todays
	if len(head) > scheduleLimit {
		head = head[:scheduleLimit]
	}
	s.TodaySchedule = Schedule{Items: res.Rows(head), Total: len(todays), Remaining: len(todays) - len(head)}
	return s
}

func NewDepartmentCard(d department.Department) DepartmentCard {
	rate := d.OccupancyRate()
	band := census.BandOccupancy(rate)
	bed := census.BedStatus(rate)
	return DepartmentCard{
		ID:               d.ID,
		Name:             d.Name,
		OccupiedBeds:     d.OccupiedBeds,
		TotalBeds:        d.TotalBeds,
		OccupancyRate:    rate,
		Band:             band,
		BandVariant:      band.Variant(),
		BedStatus:        bed,
		BedStatusVariant: bed.Variant(),
	}
}

// RecentActivity lists the first admitted patients followed by the first of
// today's appointments, capped at five entries.
func RecentActivity(patients []patient.Patient, todays []appointment.Appointment, now time.Time) []Activity {
	out := make([]Activity, 0, activityLimit)
	for _, p := range patients {
		if len(out) == admissionLimit {
			break
		}
		if p.Status != patient.StatusAdmitted {
			continue
		}
		out = append(out, Activity{
			Type:    "admission",
			Message: p.Name + " admitted to " + string(p.Department),
			Time:    admittedAgo(p.AdmissionDate, now),
		})
	}

	idx := xref.NewIndex(patients)
	for i, a := range todays {
		if i == upcomingLimit {
			break
		}
		out = append(out, Activity{
			Type:    "appointment",
			Message: "Appointment scheduled for " + idx.Name(a.PatientID, "Patient"),
			Time:    "Today at " + appointment.TimeLabel(a.Time),
		})
	}
	if len(out) > activityLimit {
		out = out[:activityLimit]
	}
	return out
}

func admittedAgo(date string, now time.Time) string {
	t, ok := census.ParseDate(date)
	if !ok {
		return "recently"
	}
	t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, now.Location())
	if t.Format(dateLayout) == now.Format(dateLayout) {
		return "today"
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

// DepartmentCount is the number of patients assigned to one department.
type DepartmentCount struct {
	Department string `json:"department"`
	Patients   int    `json:"patients"`
}

// StatusCount is the number of patients with one status.
type StatusCount struct {
	Status patient.Status `json:"status"`
	Label  string         `json:"label"`
	Count  int            `json:"count"`
}

// BedUsage is a department's occupied and free beds.
type BedUsage struct {
	Department string `json:"department"`
	Occupied   int    `json:"occupied"`
	Available  int    `json:"available"`
}

// Reports is the analytics page.
type Reports struct {
	PatientsByDepartment  []DepartmentCount `json:"patientsByDepartment"`
	StatusDistribution    []StatusCount     `json:"statusDistribution"`
	BedOccupancy          []BedUsage        `json:"bedOccupancy"`
	AppointmentsByWeekday [7]int            `json:"appointmentsByWeekday"`
	TotalPatients         int               `json:"totalPatients"`
	TotalAppointments     int               `json:"totalAppointments"`
	TotalBeds             int               `json:"totalBeds"`
	OccupiedBeds          int               `json:"occupiedBeds"`
	OccupancyRate         float64           `json:"occupancyRate"`
	TodayAppointments     int               `json:"todayAppointments"`
	CompletedToday        int               `json:"completedToday"`
	CompletionRate        float64           `json:"completionRate"`
	EmergencyCases        int               `json:"emergencyCases"`
}

// NewReports derives the reports from c as of now. Patients are counted per
// department record by exact name; patients naming no known department are
// not counted anywhere.
func NewReports(c Collections, now time.Time) Reports {
	total, occupied := bedTotals(c.Departments)
	todays := appointment.OnDate(c.Appointments, now.Format(dateLayout))
	completed := appointment.TallyOf(todays).Completed

	byDept := xref.ByDepartment(c.Patients, func(p patient.Patient) string { return string(p.Department) })
	r := Reports{
		PatientsByDepartment: make([]DepartmentCount, 0, len(c.Departments)),
		StatusDistribution:   make([]StatusCount, 0, len(patient.Statuses)),
		BedOccupancy:         make([]BedUsage, 0, len(c.Departments)),
		TotalPatients:        len(c.Patients),
		TotalAppointments:    len(c.Appointments),
		TotalBeds:            total,
		OccupiedBeds:         occupied,
		OccupancyRate:        census.Percent1(occupied, total),
		TodayAppointments:    len(todays),
		CompletedToday:       completed,
		CompletionRate:       census.Percent1(completed, len(todays)),
		EmergencyCases:       census.Count(c.Patients, isEmergency),
	}
	for _, d := range c.Departments {
		r.PatientsByDepartment = append(r.PatientsByDepartment, DepartmentCount{Department: d.Name, Patients: len(byDept[d.Name])})
		r.BedOccupancy = append(r.BedOccupancy, BedUsage{Department: d.Name, Occupied: d.OccupiedBeds, Available: d.AvailableBeds()})
	}
	counts := patient.CountByStatus(c.Patients)
	for _, s := range patient.Statuses {
		r.StatusDistribution = append(r.StatusDistribution, StatusCount{Status: s, Label: s.Label(), Count: counts[s]})
	}
	for _, a := range c.Appointments {
		if t, ok := census.ParseDate(a.Date); ok {
			r.AppointmentsByWeekday[census.ISOWeekday(t)-1]++
		}
	}
	return r
}

// OverviewTotals sums the department overview.
type OverviewTotals struct {
	Departments  int `json:"departments"`
	TotalBeds    int `json:"totalBeds"`
	OccupiedBeds int `json:"occupiedBeds"`
	Staff        int `json:"staff"`
}

// Overview is every department with its staff count and occupancy.
type Overview struct {
	Departments []department.Row `json:"departments"`
	Totals      OverviewTotals   `json:"totals"`
}

func NewOverview(c Collections) Overview {
	counts := staff.CountByDepartment(c.Staff)
	total, occupied := bedTotals(c.Departments)
	o := Overview{
		Departments: make([]department.Row, 0, len(c.Departments)),
		Totals: OverviewTotals{
			Departments:  len(c.Departments),
			TotalBeds:    total,
			OccupiedBeds: occupied,
			Staff:        len(c.Staff),
		},
	}
	for _, d := range c.Departments {
		o.Departments = append(o.Departments, department.NewRow(d, counts[d.Name]))
	}
	return o
}
