// Package xref resolves identifier references between record collections.
// References are weak: a dangling id resolves to a placeholder instead of an
// error.
package xref

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Placeholders for references that do not resolve.
const (
	UnknownPatient = "Unknown Patient"
	UnknownDoctor  = "Unknown Doctor"
)

// Named is a record that can be referenced by id and displayed by name.
type Named interface {
	GetID() int64
	DisplayName() string
}

// Index maps ids to records for repeated lookups.
type Index[T Named] map[int64]T

// NewIndex builds an Index over targets. With duplicate ids the first record
// wins.
func NewIndex[T Named](targets []T) Index[T] {
	idx := make(Index[T], len(targets))
	for _, t := range targets {
		if _, ok := idx[t.GetID()]; !ok {
			idx[t.GetID()] = t
		}
	}
	return idx
}

// Name returns the display name for ref, or placeholder.
func (idx Index[T]) Name(ref any, placeholder string) string {
	id, ok := ToID(ref)
	if !ok {
		return placeholder
	}
	t, ok := idx[id]
	if !ok {
		return placeholder
	}
	return t.DisplayName()
}

// Lookup returns the record referenced by ref.
func (idx Index[T]) Lookup(ref any) (T, bool) {
	id, ok := ToID(ref)
	if !ok {
		var zero T
		return zero, false
	}
	t, ok := idx[id]
	return t, ok
}

// Resolve returns the display name of the target whose id equals ref, or
// placeholder when ref is not an id or nothing matches. It never fails.
func Resolve[T Named](ref any, targets []T, placeholder string) string {
	id, ok := ToID(ref)
	if !ok {
		return placeholder
	}
	for _, t := range targets {
		if t.GetID() == id {
			return t.DisplayName()
		}
	}
	return placeholder
}

// ToID coerces a reference to an integer id. Integer kinds, integral floats
// and numeric strings are accepted.
func ToID(ref any) (int64, bool) {
	switch v := ref.(type) {
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		if v > math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	case float32:
		return floatID(float64(v))
	case float64:
		return floatID(v)
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i, true
		}
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return floatID(f)
	case string:
		s := strings.TrimSpace(v)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, true
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return floatID(f)
	}
	return 0, false
}

func floatID(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	// float64(math.MaxInt64) rounds up to 2^63, which is out of range.
	if f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}

// DepartmentRef is a weak reference to a department by name. It resolves
// against Department.Name by exact string equality at read time; nothing
// enforces that the department exists.
type DepartmentRef string

func (r DepartmentRef) String() string { return string(r) }

// Matches reports whether r names the department called name.
func (r DepartmentRef) Matches(name string) bool { return string(r) == name }

// ByDepartment groups items by the exact department name dept returns.
// Names are not normalized: "ICU" and "icu " are different departments.
func ByDepartment[T any](items []T, dept func(T) string) map[string][]T {
	out := make(map[string][]T)
	for _, it := range items {
		d := dept(it)
		out[d] = append(out[d], it)
	}
	return out
}
