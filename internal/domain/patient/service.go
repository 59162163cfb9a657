package patient

import (
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/medflow/medflow/internal/census"
	"github.com/medflow/medflow/internal/listview"
	"github.com/medflow/medflow/internal/platform/gateway"
	"github.com/medflow/medflow/pkg/apperror"
)

const Kind = "patient"

// Gateway is the record gateway for patients.
type Gateway = gateway.Gateway[Patient]

// NewGateway returns the patient gateway over store. clock may be nil.
func NewGateway(store gateway.Store[Patient], logger zerolog.Logger, n gateway.Notifier, clock func() time.Time) *Gateway {
	return gateway.New[Patient](store, gateway.Options[Patient]{
		Kind:     Kind,
		Prepare:  Prepare,
		Validate: Validate,
		Notifier: n,
		Logger:   logger,
		Clock:    clock,
	})
}

var mrnSeq atomic.Uint64

// NewMedicalID returns a medical record number unique within the process.
func NewMedicalID(now time.Time) string {
	return fmt.Sprintf("MRN-%s-%d",
		strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36)), mrnSeq.Add(1))
}

// Prepare fills the defaults of a new patient: status admitted, a generated
// medical id and today's admission date.
func Prepare(p *Patient, now time.Time) {
	if p.Status == "" {
		p.Status = StatusAdmitted
	}
	if strings.TrimSpace(p.MedicalID) == "" {
		p.MedicalID = NewMedicalID(now)
	}
	if p.AdmissionDate == "" {
		p.AdmissionDate = now.Format("2006-01-02")
	}
}

// Validate checks a patient record before it is stored.
func Validate(p Patient) error {
	var fe apperror.FieldErrors
	if strings.TrimSpace(p.Name) == "" {
		fe.Add("name", "Name is required")
	}
	if p.Email != "" && !gateway.ValidEmail(p.Email) {
		fe.Add("email", "Email format is invalid")
	}
	if p.Phone != "" && !gateway.ValidPhone(p.Phone) {
		fe.Add("phone", "Phone format is invalid")
	}
	if p.DateOfBirth != "" {
		if _, ok := census.ParseDate(p.DateOfBirth); !ok {
			fe.Add("dateOfBirth", "Date of birth must be YYYY-MM-DD")
		}
	}
	if !p.Status.Valid() {
		fe.Add("status", fmt.Sprintf("Status %q is not recognized", p.Status))
	}
	return fe.Err(Kind)
}

// Spec searches patients by name, medical id and department and categorizes
// them by department.
var Spec = listview.Spec[Patient]{
	SearchFields: func(p Patient) []string { return []string{p.Name, p.MedicalID, string(p.Department)} },
	Category:     func(p Patient) string { return string(p.Department) },
}

// CountByStatus tallies patients per status; every known status is present.
func CountByStatus(all []Patient) map[Status]int {
	out := make(map[Status]int, len(Statuses))
	for _, s := range Statuses {
		out[s] = 0
	}
	for _, p := range all {
		out[p.Status]++
	}
	return out
}
