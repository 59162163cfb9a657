package department

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

// NewRepoPG returns a postgres-backed department store.
func NewRepoPG(pool *pgxpool.Pool) gateway.Store[Department] { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) db.Querier {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const deptCols = `id, name, total_beds, occupied_beds, head_of_department`

func (r *repoPG) scan(row pgx.Row) (Department, error) {
	var d Department
	err := row.Scan(&d.ID, &d.Name, &d.TotalBeds, &d.OccupiedBeds, &d.HeadOfDepartment)
	return d, err
}

func (r *repoPG) List(ctx context.Context) ([]Department, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+deptCols+` FROM departments ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query departments: %w", err)
	}
	defer rows.Close()

	var items []Department
	for rows.Next() {
		d, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan department: %w", err)
		}
		items = append(items, d)
	}
	return items, rows.Err()
}

func (r *repoPG) Get(ctx context.Context, id int64) (Department, error) {
	d, err := r.scan(r.conn(ctx).QueryRow(ctx, `SELECT `+deptCols+` FROM departments WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Department{}, apperror.NotFound(Kind, id)
	}
	return d, err
}

func (r *repoPG) Insert(ctx context.Context, d Department) (Department, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx, `
		INSERT INTO departments (name, total_beds, occupied_beds, head_of_department)
		VALUES ($1,$2,$3,$4)
		RETURNING `+deptCols,
		d.Name, d.TotalBeds, d.OccupiedBeds, d.HeadOfDepartment))
}

func (r *repoPG) Replace(ctx context.Context, d Department) (Department, error) {
	out, err := r.scan(r.conn(ctx).QueryRow(ctx, `
		UPDATE departments SET name=$2, total_beds=$3, occupied_beds=$4, head_of_department=$5
		WHERE id = $1
		RETURNING `+deptCols,
		d.ID, d.Name, d.TotalBeds, d.OccupiedBeds, d.HeadOfDepartment))
	if errors.Is(err, pgx.ErrNoRows) {
		return Department{}, apperror.NotFound(Kind, d.ID)
	}
	return out, err
}

func (r *repoPG) Delete(ctx context.Context, id int64) (Department, error) {
	d, err := r.scan(r.conn(ctx).QueryRow(ctx, `DELETE FROM departments WHERE id = $1 RETURNING `+deptCols, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Department{}, apperror.NotFound(Kind, id)
	}
	return d, err
}
