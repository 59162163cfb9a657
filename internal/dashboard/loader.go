// Package dashboard composes the hospital-wide views (summary, reports,
// department overview) from one consistent load of every collection.
package dashboard

import (
	"context"

	"github.com/medflow/medflow/internal/domain/appointment"
	"github.com/medflow/medflow/internal/domain/department"
	"github.com/medflow/medflow/internal/domain/patient"
	"github.com/medflow/medflow/internal/domain/staff"
	"github.com/medflow/medflow/internal/platform/gateway"
)

// Collections is every record the dashboard views are derived from.
type Collections struct {
	Patients     []patient.Patient
	Staff        []staff.Staff
	Appointments []appointment.Appointment
	Departments  []department.Department
}

// Source produces Collections.
type Source interface {
	Load(ctx context.Context) (Collections, error)
}

// Loader fetches all four collections in parallel.
type Loader struct {
	Patients     *patient.Gateway
	Staff        *staff.Gateway
	Appointments *appointment.Gateway
	Departments  *department.Gateway
}

// Load returns all collections, or the first failure. Partial results are
// never returned.
func (l *Loader) Load(ctx context.Context) (Collections, error) {
	var c Collections
	err := gateway.LoadAll(ctx,
		gateway.Into(l.Patients, &c.Patients),
		gateway.Into(l.Staff, &c.Staff),
		gateway.Into(l.Appointments, &c.Appointments),
		gateway.Into(l.Departments, &c.Departments),
	)
	if err != nil {
		return Collections{}, err
	}
	return c, nil
}
