package staff

import (
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog"

	"github.com/medflow/medflow/internal/census"
	"github.com/medflow/medflow/internal/listview"
	"github.com/medflow/medflow/internal/platform/gateway"
	"github.com/medflow/medflow/pkg/apperror"
)

const Kind = "staff"

// Gateway is the record gateway for staff.
type Gateway = gateway.Gateway[Staff]

// NewGateway returns the staff gateway over store.
func NewGateway(store gateway.Store[Staff], logger zerolog.Logger, n gateway.Notifier) *Gateway {
	return gateway.New[Staff](store, gateway.Options[Staff]{
		Kind:     Kind,
		Prepare:  Prepare,
		Validate: Validate,
		Hooks:    []mapstructure.DecodeHookFunc{scheduleHook},
		Notifier: n,
		Logger:   logger,
	})
}

// Prepare gives a new staff member an empty schedule when none was supplied.
func Prepare(s *Staff, _ time.Time) {
	if s.Schedule == nil {
		s.Schedule = census.Schedule{}
	}
}

// Validate checks a staff record before it is stored.
func Validate(s Staff) error {
	var fe apperror.FieldErrors
	if strings.TrimSpace(s.Name) == "" {
		fe.Add("name", "Name is required")
	}
	if strings.TrimSpace(string(s.Role)) == "" {
		fe.Add("role", "Role is required")
	}
	if s.Email != "" && !gateway.ValidEmail(s.Email) {
		fe.Add("email", "Email format is invalid")
	}
	if s.Phone != "" && !gateway.ValidPhone(s.Phone) {
		fe.Add("phone", "Phone format is invalid")
	}
	return fe.Err(Kind)
}

var scheduleType = reflect.TypeOf(census.Schedule{})

// scheduleHook normalizes any schedule encoding; malformed input becomes an
// empty schedule instead of a decode error.
func scheduleHook(_ reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if to != scheduleType {
		return data, nil
	}
	return census.ParseSchedule(data), nil
}

// Spec searches staff by name, role and department and categorizes them by
// department.
var Spec = listview.Spec[Staff]{
	SearchFields: func(s Staff) []string { return []string{s.Name, string(s.Role), string(s.Department)} },
	Category:     func(s Staff) string { return string(s.Department) },
}

// Departments returns the distinct departments staff are assigned to.
func Departments(all []Staff) []string {
	return listview.Categories(all, Spec.Category)
}

// CountByDepartment counts staff per exact department name.
func CountByDepartment(all []Staff) map[string]int {
	out := make(map[string]int)
	for _, s := range all {
		out[string(s.Department)]++
	}
	return out
}
