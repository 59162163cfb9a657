// Package gateway implements the uniform record contract (get-all, get-by-id,
// create, update, delete) shared by every entity kind. Storage is delegated to
// a Store; the Gateway adds input adaptation, field merging, defaults,
// validation and load-failure signalling on top of it.
package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog"

	"github.com/medflow/medflow/pkg/apperror"
)

// Entity is a record with an integer identifier assigned by its store.
type Entity[T any] interface {
	GetID() int64
	WithID(id int64) T
}

// Store is the storage backend behind a Gateway. Get, Replace and Delete
// return an apperror NotFound when the id is absent.
type Store[T Entity[T]] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id int64) (T, error)
	Insert(ctx context.Context, rec T) (T, error)
	Replace(ctx context.Context, rec T) (T, error)
	Delete(ctx context.Context, id int64) (T, error)
}

// Options configures the per-kind behaviour of a Gateway.
type Options[T any] struct {
	// Kind names the entity in errors, logs and notices ("patient").
	Kind string
	// Prepare fills defaults for fields left empty on create.
	Prepare func(rec *T, now time.Time)
	// Validate checks a fully merged record before it is stored.
	Validate func(rec T) error
	// Hooks run before the built-in decode hooks when fields are merged.
	Hooks    []mapstructure.DecodeHookFunc
	Notifier Notifier
	Logger   zerolog.Logger
	Clock    func() time.Time
}

// Gateway exposes the record contract for one entity kind.
type Gateway[T Entity[T]] struct {
	store Store[T]
	opts  Options[T]
}

// New returns a Gateway over store.
func New[T Entity[T]](store Store[T], opts Options[T]) *Gateway[T] {
	if opts.Notifier == nil {
		opts.Notifier = NopNotifier{}
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Kind == "" {
		opts.Kind = "record"
	}
	return &Gateway[T]{store: store, opts: opts}
}

// Kind returns the entity kind this gateway serves.
func (g *Gateway[T]) Kind() string { return g.opts.Kind }

// GetAll returns every stored record. A backend failure never escapes as an
// error: it is logged, announced through the Notifier and returned as a
// failed LoadResult. A load abandoned because ctx ended is failed too but not
// announced; the caller that cancelled already knows.
func (g *Gateway[T]) GetAll(ctx context.Context) LoadResult[T] {
	records, err := g.store.List(ctx)
	if err != nil {
		lf := apperror.LoadFailure(g.opts.Kind, err)
		if ctx.Err() != nil {
			g.opts.Logger.Debug().Err(err).Str("entity", g.opts.Kind).Msg("bulk load abandoned")
			return Failed[T](lf)
		}
		g.opts.Logger.Error().Err(err).Str("entity", g.opts.Kind).Msg("bulk load failed")
		g.opts.Notifier.Notify(ctx, Notice{
			Type:    NoticeLoadFailed,
			Entity:  g.opts.Kind,
			Message: lf.Message,
			At:      g.opts.Clock(),
		})
		return Failed[T](lf)
	}
	if records == nil {
		records = []T{}
	}
	return Loaded(records)
}

// GetByID returns the record with id or an apperror NotFound.
func (g *Gateway[T]) GetByID(ctx context.Context, id int64) (T, error) {
	rec, err := g.store.Get(ctx, id)
	if err != nil {
		var zero T
		return zero, g.wrap("get", err)
	}
	return rec, nil
}

// Create decodes fields into a new record, fills defaults, validates it and
// stores it. The store assigns the identifier; any supplied id is ignored.
func (g *Gateway[T]) Create(ctx context.Context, fields Fields) (T, error) {
	var zero T
	rec, err := decode(zero, fields, g.opts.Hooks)
	if err != nil {
		return zero, apperror.Validation(g.opts.Kind, map[string]string{"_": err.Error()})
	}
	rec = rec.WithID(0)
	if g.opts.Prepare != nil {
		g.opts.Prepare(&rec, g.opts.Clock())
	}
	if err := g.validate(rec); err != nil {
		return zero, err
	}

	created, err := g.store.Insert(ctx, rec)
	if err != nil {
		return zero, g.wrap("create", err)
	}
	g.opts.Logger.Info().Str("entity", g.opts.Kind).Int64("id", created.GetID()).Msg("record created")
	return created, nil
}

// Update merges fields onto the stored record with id: supplied fields
// replace prior values, everything else is kept. The merged record is
// validated before it replaces the stored one, so a failed update leaves the
// store unchanged.
func (g *Gateway[T]) Update(ctx context.Context, id int64, fields Fields) (T, error) {
	var zero T
	current, err := g.store.Get(ctx, id)
	if err != nil {
		return zero, g.wrap("update", err)
	}

	merged, err := decode(current, fields, g.opts.Hooks)
	if err != nil {
		return zero, apperror.Validation(g.opts.Kind, map[string]string{"_": err.Error()})
	}
	merged = merged.WithID(id)
	if err := g.validate(merged); err != nil {
		return zero, err
	}

	updated, err := g.store.Replace(ctx, merged)
	if err != nil {
		return zero, g.wrap("update", err)
	}
	g.opts.Logger.Info().Str("entity", g.opts.Kind).Int64("id", id).Msg("record updated")
	return updated, nil
}

// Delete removes and returns the record with id. Nothing that references the
// record is touched.
func (g *Gateway[T]) Delete(ctx context.Context, id int64) (T, error) {
	removed, err := g.store.Delete(ctx, id)
	if err != nil {
		var zero T
		return zero, g.wrap("delete", err)
	}
	g.opts.Logger.Info().Str("entity", g.opts.Kind).Int64("id", id).Msg("record deleted")
	return removed, nil
}

func (g *Gateway[T]) validate(rec T) error {
	if g.opts.Validate == nil {
		return nil
	}
	return g.opts.Validate(rec)
}

// wrap keeps typed errors intact and classifies everything else as an
// internal failure of the named operation.
func (g *Gateway[T]) wrap(op string, err error) error {
	switch apperror.KindOf(err) {
	case apperror.KindNotFound, apperror.KindValidation:
		return err
	}
	g.opts.Logger.Error().Err(err).Str("entity", g.opts.Kind).Str("op", op).Msg("gateway operation failed")
	return apperror.Internal(g.opts.Kind, fmt.Sprintf("%s %s failed", op, g.opts.Kind), err)
}
