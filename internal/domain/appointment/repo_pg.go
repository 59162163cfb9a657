package appointment

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medflow/medflow/internal/platform/db"
	"github.com/medflow/medflow/internal/platform/gateway"
	"github.com/medflow/medflow/pkg/apperror"
)

type repoPG struct{ pool *pgxpool.Pool }

// NewRepoPG returns a postgres-backed appointment store. patient_id and
// doctor_id carry no foreign keys.
func NewRepoPG(pool *pgxpool.Pool) gateway.Store[Appointment] { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) db.Querier {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const appointmentCols = `id, patient_id, doctor_id, date, time, department, status, notes, type`

func (r *repoPG) scan(row pgx.Row) (Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.Date, &a.Time, &a.Department, &a.Status, &a.Notes, &a.Type)
	return a, err
}

func (r *repoPG) List(ctx context.Context) ([]Appointment, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+appointmentCols+` FROM appointments ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query appointments: %w", err)
	}
	defer rows.Close()

	var items []Appointment
	for rows.Next() {
		a, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

func (r *repoPG) Get(ctx context.Context, id int64) (Appointment, error) {
	a, err := r.scan(r.conn(ctx).QueryRow(ctx, `SELECT `+appointmentCols+` FROM appointments WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Appointment{}, apperror.NotFound(Kind, id)
	}
	return a, err
}

func (r *repoPG) Insert(ctx context.Context, a Appointment) (Appointment, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx, `
		INSERT INTO appointments (patient_id, doctor_id, date, time, department, status, notes, type)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING `+appointmentCols,
		a.PatientID, a.DoctorID, a.Date, a.Time, a.Department, a.Status, a.Notes, a.Type))
}

func (r *repoPG) Replace(ctx context.Context, a Appointment) (Appointment, error) {
	out, err := r.scan(r.conn(ctx).QueryRow(ctx, `
		UPDATE appointments SET patient_id=$2, doctor_id=$3, date=$4, time=$5,
			department=$6, status=$7, notes=$8, type=$9
		WHERE id = $1
		RETURNING `+appointmentCols,
		a.ID, a.PatientID, a.DoctorID, a.Date, a.Time, a.Department, a.Status, a.Notes, a.Type))
	if errors.Is(err, pgx.ErrNoRows) {
		return Appointment{}, apperror.NotFound(Kind, a.ID)
	}
	return out, err
}

func (r *repoPG) Delete(ctx context.Context, id int64) (Appointment, error) {
	a, err := r.scan(r.conn(ctx).QueryRow(ctx, `DELETE FROM appointments WHERE id = $1 RETURNING `+appointmentCols, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Appointment{}, apperror.NotFound(Kind, id)
	}
	return a, err
}
