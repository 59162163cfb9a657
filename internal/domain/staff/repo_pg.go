package staff

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

// NewRepoPG returns a postgres-backed staff store.
func NewRepoPG(pool *pgxpool.Pool) gateway.Store[Staff] { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) db.Querier {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const staffCols = `id, name, role, department, phone, email, schedule`

func (r *repoPG) scan(row pgx.Row) (Staff, error) {
	var s Staff
	err := row.Scan(&s.ID, &s.Name, &s.Role, &s.Department, &s.Phone, &s.Email, &s.Schedule)
	return s, err
}

func (r *repoPG) List(ctx context.Context) ([]Staff, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+staffCols+` FROM staff ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query staff: %w", err)
	}
	defer rows.Close()

	var items []Staff
	for rows.Next() {
		s, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan staff: %w", err)
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

func (r *repoPG) Get(ctx context.Context, id int64) (Staff, error) {
	s, err := r.scan(r.conn(ctx).QueryRow(ctx, `SELECT `+staffCols+` FROM staff WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Staff{}, apperror.NotFound(Kind, id)
	}
	return s, err
}

func (r *repoPG) Insert(ctx context.Context, s Staff) (Staff, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx, `
		INSERT INTO staff (name, role, department, phone, email, schedule)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING `+staffCols,
		s.Name, s.Role, s.Department, s.Phone, s.Email, s.Schedule))
}

func (r *repoPG) Replace(ctx context.Context, s Staff) (Staff, error) {
	out, err := r.scan(r.conn(ctx).QueryRow(ctx, `
		UPDATE staff SET name=$2, role=$3, department=$4, phone=$5, email=$6, schedule=$7
		WHERE id = $1
		RETURNING `+staffCols,
		s.ID, s.Name, s.Role, s.Department, s.Phone, s.Email, s.Schedule))
	if errors.Is(err, pgx.ErrNoRows) {
		return Staff{}, apperror.NotFound(Kind, s.ID)
	}
	return out, err
}

func (r *repoPG) Delete(ctx context.Context, id int64) (Staff, error) {
	s, err := r.scan(r.conn(ctx).QueryRow(ctx, `DELETE FROM staff WHERE id = $1 RETURNING `+staffCols, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Staff{}, apperror.NotFound(Kind, id)
	}
	return s, err
}
