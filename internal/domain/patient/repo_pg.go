package patient

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

// NewRepoPG returns a postgres-backed patient store.
func NewRepoPG(pool *pgxpool.Pool) gateway.Store[Patient] { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) db.Querier {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const patientCols = `id, name, date_of_birth, gender, phone, email, address,
	emergency_contact, medical_id, department, status, admission_date,
	insurance_provider, insurance_number`

func (r *repoPG) scan(row pgx.Row) (Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.Name, &p.DateOfBirth, &p.Gender, &p.Phone, &p.Email, &p.Address,
		&p.EmergencyContact, &p.MedicalID, &p.Department, &p.Status, &p.AdmissionDate,
		&p.InsuranceProvider, &p.InsuranceNumber)
	return p, err
}

func (r *repoPG) List(ctx context.Context) ([]Patient, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+patientCols+` FROM patients ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query patients: %w", err)
	}
	defer rows.Close()

	var items []Patient
	for rows.Next() {
		p, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan patient: %w", err)
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func (r *repoPG) Get(ctx context.Context, id int64) (Patient, error) {
	p, err := r.scan(r.conn(ctx).QueryRow(ctx, `SELECT `+patientCols+` FROM patients WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Patient{}, apperror.NotFound(Kind, id)
	}
	return p, err
}

func (r *repoPG) Insert(ctx context.Context, p Patient) (Patient, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx, `
		INSERT INTO patients (name, date_of_birth, gender, phone, email, address,
			emergency_contact, medical_id, department, status, admission_date,
			insurance_provider, insurance_number)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		RETURNING `+patientCols,
		p.Name, p.DateOfBirth, p.Gender, p.Phone, p.Email, p.Address,
		p.EmergencyContact, p.MedicalID, p.Department, p.Status, p.AdmissionDate,
		p.InsuranceProvider, p.InsuranceNumber))
}

func (r *repoPG) Replace(ctx context.Context, p Patient) (Patient, error) {
	out, err := r.scan(r.conn(ctx).QueryRow(ctx, `
		UPDATE patients SET name=$2, date_of_birth=$3, gender=$4, phone=$5, email=$6,
			address=$7, emergency_contact=$8, medical_id=$9, department=$10, status=$11,
			admission_date=$12, insurance_provider=$13, insurance_number=$14
		WHERE id = $1
		RETURNING `+patientCols,
		p.ID, p.Name, p.DateOfBirth, p.Gender, p.Phone, p.Email, p.Address,
		p.EmergencyContact, p.MedicalID, p.Department, p.Status, p.AdmissionDate,
		p.InsuranceProvider, p.InsuranceNumber))
	if errors.Is(err, pgx.ErrNoRows) {
		return Patient{}, apperror.NotFound(Kind, p.ID)
	}
	return out, err
}

func (r *repoPG) Delete(ctx context.Context, id int64) (Patient, error) {
	p, err := r.scan(r.conn(ctx).QueryRow(ctx, `DELETE FROM patients WHERE id = $1 RETURNING `+patientCols, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Patient{}, apperror.NotFound(Kind, id)
	}
	return p, err
}
