package department

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/medflow/medflow/internal/listview"
	"github.com/medflow/medflow/internal/platform/gateway"
	"github.com/medflow/medflow/pkg/apperror"
)

const Kind = "department"

// Gateway is the record gateway for departments.
type Gateway = gateway.Gateway[Department]

// NewGateway returns the department gateway over store.
func NewGateway(store gateway.Store[Department], logger zerolog.Logger, n gateway.Notifier) *Gateway {
	return gateway.New[Department](store, gateway.Options[Department]{
		Kind:     Kind,
		Validate: Validate,
		Notifier: n,
		Logger:   logger,
	})
}

// Validate enforces 0 <= occupiedBeds <= totalBeds on writes. Reads never
// reject a record that violates it.
func Validate(d Department) error {
	var fe apperror.FieldErrors
	if strings.TrimSpace(d.Name) == "" {
		fe.Add("name", "Name is required")
	}
	if d.TotalBeds < 0 {
		fe.Add("totalBeds", "Total beds must not be negative")
	}
	if d.OccupiedBeds < 0 {
		fe.Add("occupiedBeds", "Occupied beds must not be negative")
	} else if d.OccupiedBeds > d.TotalBeds {
		fe.Add("occupiedBeds", "Occupied beds must not exceed total beds")
	}
	return fe.Err(Kind)
}

// Spec searches departments by name and head; the category is the
// department's own name.
var Spec = listview.Spec[Department]{
	SearchFields: func(d Department) []string { return []string{d.Name, d.HeadOfDepartment} },
	Category:     func(d Department) string { return d.Name },
}
