package gateway

import (
	"context"
	"sync"

	"github.com/medflow/medflow/pkg/apperror"
)

// MemoryStore is an in-process Store that keeps records in insertion order.
// Identifiers come from a monotonic counter, so an id is never handed out
// twice even after the record holding it is deleted. Records that implement
// Cloner are cloned on the way in and out, so callers never share slices with
// the store.
type MemoryStore[T Entity[T]] struct {
	mu      sync.RWMutex
	kind    string
	records []T
	lastID  int64
}

// Cloner is implemented by records holding reference-typed fields.
type Cloner[T any] interface {
	Clone() T
}

func clone[T any](rec T) T {
	if c, ok := any(rec).(Cloner[T]); ok {
		return c.Clone()
	}
	return rec
}

// NewMemoryStore returns a store holding seed. Seed records keep their ids;
// seed records without one are assigned the next free id.
func NewMemoryStore[T Entity[T]](kind string, seed ...T) *MemoryStore[T] {
	s := &MemoryStore[T]{kind: kind}
	for _, rec := range seed {
		if rec.GetID() > s.lastID {
			s.lastID = rec.GetID()
		}
	}
	for _, rec := range seed {
		if rec.GetID() <= 0 {
			s.lastID++
			rec = rec.WithID(s.lastID)
		}
		s.records = append(s.records, clone(rec))
	}
	return s
}

func (s *MemoryStore[T]) List(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]T, len(s.records))
	for i, rec := range s.records {
		out[i] = clone(rec)
	}
	return out, nil
}

func (s *MemoryStore[T]) Get(ctx context.Context, id int64) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return zero, apperror.NotFound(s.kind, id)
	}
	return clone(s.records[i]), nil
}

func (s *MemoryStore[T]) Insert(ctx context.Context, rec T) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastID++
	rec = rec.WithID(s.lastID)
	s.records = append(s.records, clone(rec))
	return rec, nil
}

func (s *MemoryStore[T]) Replace(ctx context.Context, rec T) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(rec.GetID())
	if i < 0 {
		return zero, apperror.NotFound(s.kind, rec.GetID())
	}
	s.records[i] = clone(rec)
	return rec, nil
}

func (s *MemoryStore[T]) Delete(ctx context.Context, id int64) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return zero, apperror.NotFound(s.kind, id)
	}
	removed := s.records[i]
	s.records = append(s.records[:i], s.records[i+1:]...)
	return removed, nil
}

// Len returns the number of stored records.
func (s *MemoryStore[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func (s *MemoryStore[T]) indexOf(id int64) int {
	for i, rec := range s.records {
		if rec.GetID() == id {
			return i
		}
	}
	return -1
}
