package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type contextKey string

const DBConnKey contextKey = "db_conn"

// Querier is the subset of pgx shared by pools, connections and transactions.
type Querier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// ContextWithConn returns a context carrying q. Repositories prefer it over
// their pool.
func ContextWithConn(ctx context.Context, q Querier) context.Context {
	return context.WithValue(ctx, DBConnKey, q)
}

// ConnFromContext retrieves the connection or transaction stored in ctx.
func ConnFromContext(ctx context.Context) Querier {
	q, _ := ctx.Value(DBConnKey).(Querier)
	return q
}

// WithTx runs fn inside a transaction. Repositories called with the context
// passed to fn use the transaction; it commits when fn returns nil and rolls
// back otherwise.
func WithTx(ctx context.Context, pool *pgxpool.Pool, fn func(ctx context.Context) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(ContextWithConn(ctx, tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
