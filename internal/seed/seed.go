// Package seed loads fixture datasets (JSON or TOML) and creates their
// records through the gateways, so fixtures get the same defaults, aliases
// and validation as API input.
package seed

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/medflow/medflow/internal/domain/appointment"
	"github.com/medflow/medflow/internal/domain/department"
	"github.com/medflow/medflow/internal/domain/patient"
	"github.com/medflow/medflow/internal/domain/staff"
	"github.com/medflow/medflow/internal/platform/gateway"
	"github.com/medflow/medflow/internal/platform/xref"
)

//go:embed demo.json
var demoJSON []byte

// Dataset is one fixture file. Records are partial field maps; an "id" on a
// staff or patient record is only used to remap appointment references.
type Dataset struct {
	Departments  []gateway.Fields `json:"departments" toml:"departments"`
	Staff        []gateway.Fields `json:"staff" toml:"staff"`
	Patients     []gateway.Fields `json:"patients" toml:"patients"`
	Appointments []gateway.Fields `json:"appointments" toml:"appointments"`
}

// Size is the total number of records in d.
func (d Dataset) Size() int {
	return len(d.Departments) + len(d.Staff) + len(d.Patients) + len(d.Appointments)
}

// Format of a fixture file.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", fmt.Errorf("unsupported fixture extension %q (want .json or .toml)", filepath.Ext(path))
}

// Parse decodes a dataset.
func Parse(data []byte, f Format) (Dataset, error) {
	var d Dataset
	switch f {
	case FormatJSON:
		if err := json.Unmarshal(data, &d); err != nil {
			return Dataset{}, fmt.Errorf("decode json fixture: %w", err)
		}
	case FormatTOML:
		if err := toml.Unmarshal(data, &d); err != nil {
			return Dataset{}, fmt.Errorf("decode toml fixture: %w", err)
		}
	default:
		return Dataset{}, fmt.Errorf("unknown fixture format %q", f)
	}
	return d, nil
}

// LoadFile reads and parses the fixture at path.
func LoadFile(path string) (Dataset, error) {
	f, err := FormatOf(path)
	if err != nil {
		return Dataset{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Dataset{}, fmt.Errorf("read fixture: %w", err)
	}
	return Parse(data, f)
}

// Demo returns the built-in demonstration dataset.
func Demo() Dataset {
	d, err := Parse(demoJSON, FormatJSON)
	if err != nil {
		panic(fmt.Sprintf("embedded demo dataset: %v", err))
	}
	return d
}

// Target is the set of gateways a dataset is written through.
type Target struct {
	Departments  *department.Gateway
	Staff        *staff.Gateway
	Patients     *patient.Gateway
	Appointments *appointment.Gateway
}

// Counts reports how many records Apply created per kind.
type Counts struct {
	Departments  int `json:"departments"`
	Staff        int `json:"staff"`
	Patients     int `json:"patients"`
	Appointments int `json:"appointments"`
}

func (c Counts) Total() int { return c.Departments + c.Staff + c.Patients + c.Appointments }

// Apply creates every record of d: departments, then staff, then patients,
// then appointments. Appointment patient and doctor references that name a
// fixture id are rewritten to the id the store assigned. Appointment dates
// and admission dates may be given relative to now as "today", "today+N" or
// "today-N".
//
// Apply stops at the first rejected record; records created before it are
// kept.
func Apply(ctx context.Context, t Target, d Dataset, now time.Time) (Counts, error) {
	var n Counts

	for i, f := range d.Departments {
		if _, err := t.Departments.Create(ctx, f); err != nil {
			return n, fmt.Errorf("department #%d: %w", i+1, err)
		}
		n.Departments++
	}

	staffIDs := make(map[int64]int64, len(d.Staff))
	for i, f := range d.Staff {
		f = f.Canonical()
		rec, err := t.Staff.Create(ctx, f)
		if err != nil {
			return n, fmt.Errorf("staff #%d: %w", i+1, err)
		}
		remember(staffIDs, f, rec.ID)
		n.Staff++
	}

	patientIDs := make(map[int64]int64, len(d.Patients))
	for i, f := range d.Patients {
		f = f.Canonical()
		if v, ok := f["admissionDate"].(string); ok {
			f["admissionDate"] = RelativeDate(v, now)
		}
		rec, err := t.Patients.Create(ctx, f)
		if err != nil {
			return n, fmt.Errorf("patient #%d: %w", i+1, err)
		}
		remember(patientIDs, f, rec.ID)
		n.Patients++
	}

	for i, f := range d.Appointments {
		f = f.Canonical()
		remap(f, "patientId", patientIDs)
		remap(f, "doctorId", staffIDs)
		if v, ok := f["date"].(string); ok {
			f["date"] = RelativeDate(v, now)
		}
		if _, err := t.Appointments.Create(ctx, f); err != nil {
			return n, fmt.Errorf("appointment #%d: %w", i+1, err)
		}
		n.Appointments++
	}
	return n, nil
}

func remember(ids map[int64]int64, f gateway.Fields, assigned int64) {
	if old, ok := xref.ToID(f["id"]); ok {
		ids[old] = assigned
	}
}

func remap(f gateway.Fields, key string, ids map[int64]int64) {
	old, ok := xref.ToID(f[key])
	if !ok {
		return
	}
	if id, ok := ids[old]; ok {
		f[key] = id
	}
}

// RelativeDate resolves "today", "today+N" and "today-N" against now.
// Anything else is returned unchanged.
func RelativeDate(v string, now time.Time) string {
	s := strings.TrimSpace(strings.ToLower(v))
	if !strings.HasPrefix(s, "today") {
		return v
	}
	rest := strings.TrimPrefix(s, "today")
	days := 0
	if rest != "" {
		n, err := strconv.Atoi(rest)
		if err != nil {
			return v
		}
		days = n
	}
	return now.AddDate(0, 0, days).Format("2006-01-02")
}
