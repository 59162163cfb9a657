// Package apperror defines the error taxonomy shared by the record gateways
// and the HTTP layer.
package apperror

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Kind classifies an application error.
type Kind string

const (
	KindNotFound    Kind = "NOT_FOUND"
	KindLoadFailure Kind = "LOAD_FAILURE"
	KindValidation  Kind = "VALIDATION"
	KindInternal    Kind = "INTERNAL"
)

// Error is the error type returned across the gateway boundary.
type Error struct {
	Kind    Kind
	Entity  string
	Message string
	// Fields holds per-field messages for validation failures.
	Fields map[string]string
	Err    error
}

func (e *Error) Error() string {
	msg := e.Message
	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+": "+e.Fields[k])
		}
		msg = fmt.Sprintf("%s (%s)", msg, strings.Join(parts, "; "))
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NotFound reports that no record of entity has the given id.
func NotFound(entity string, id int64) *Error {
	return &Error{
		Kind:    KindNotFound,
		Entity:  entity,
		Message: fmt.Sprintf("%s %d not found", entity, id),
	}
}

// LoadFailure wraps a bulk read failure.
func LoadFailure(entity string, err error) *Error {
	return &Error{
		Kind:    KindLoadFailure,
		Entity:  entity,
		Message: fmt.Sprintf("failed to load %s records", entity),
		Err:     err,
	}
}

// Validation reports field-level input problems.
func Validation(entity string, fields map[string]string) *Error {
	return &Error{
		Kind:    KindValidation,
		Entity:  entity,
		Message: fmt.Sprintf("invalid %s", entity),
		Fields:  fields,
	}
}

// Internal wraps an unexpected backend error on a mutating operation.
func Internal(entity, message string, err error) *Error {
	return &Error{
		Kind:    KindInternal,
		Entity:  entity,
		Message: message,
		Err:     err,
	}
}

// KindOf returns the Kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	if err == nil {
		return false
	}
	return KindOf(err) == kind
}

// FieldErrors collects per-field validation messages. The zero value is ready
// to use.
type FieldErrors map[string]string

// Add records msg for field unless the field already has a message.
func (f *FieldErrors) Add(field, msg string) {
	if *f == nil {
		*f = make(FieldErrors)
	}
	if _, ok := (*f)[field]; !ok {
		(*f)[field] = msg
	}
}

// Err returns a validation error for entity, or nil when nothing was added.
func (f FieldErrors) Err(entity string) error {
	if len(f) == 0 {
		return nil
	}
	return Validation(entity, map[string]string(f))
}
