package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/medflow/medflow/internal/dashboard"
	"github.com/medflow/medflow/internal/platform/db"
)

var weekdays = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

func printReports(w io.Writer, r dashboard.Reports) {
	fmt.Fprintf(w, "Patients:      %s (%s emergency)\n", humanize.Comma(int64(r.TotalPatients)), humanize.Comma(int64(r.EmergencyCases)))
	fmt.Fprintf(w, "Beds:          %s of %s occupied (%.1f%%)\n", humanize.Comma(int64(r.OccupiedBeds)), humanize.Comma(int64(r.TotalBeds)), r.OccupancyRate)
	fmt.Fprintf(w, "Appointments:  %s total, %d today, %d completed (%.1f%%)\n",
		humanize.Comma(int64(r.TotalAppointments)), r.TodayAppointments, r.CompletedToday, r.CompletionRate)

	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DEPARTMENT\tPATIENTS\tOCCUPIED\tAVAILABLE")
	for i, d := range r.PatientsByDepartment {
		beds := r.BedOccupancy[i]
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\n", d.Department, d.Patients, beds.Occupied, beds.Available)
	}
	tw.Flush()

	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STATUS\tPATIENTS")
	for _, s := range r.StatusDistribution {
		fmt.Fprintf(tw, "%s\t%d\n", s.Label, s.Count)
	}
	tw.Flush()

	fmt.Fprintln(w)
	for i, n := range r.AppointmentsByWeekday {
		fmt.Fprintf(w, "%s %d  ", weekdays[i], n)
	}
	fmt.Fprintln(w)
}

func printMigrationStatus(w io.Writer, statuses []db.MigrationStatus) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "VERSION\tNAME\tSTATUS\tAPPLIED AT")
	for _, s := range statuses {
		status, appliedAt := "pending", ""
		if s.Applied {
			status = "applied"
			if s.AppliedAt != nil {
				appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
			}
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", s.Version, s.Name, status, appliedAt)
	}
	tw.Flush()
}
