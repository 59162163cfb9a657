package staff

import (
	"github.com/medflow/medflow/internal/census"
	"github.com/medflow/medflow/internal/platform/xref"
)

// Role is a staff member's job title. The known roles are listed below; any
// other value is accepted and rendered with the default variant.
type Role string

const (
	RoleDoctor        Role = "Doctor"
	RoleNurse         Role = "Nurse"
	RoleSurgeon       Role = "Surgeon"
	RoleTechnician    Role = "Technician"
	RoleAdministrator Role = "Administrator"
)

// Variant returns the badge variant for the role.
func (r Role) Variant() string {
	switch r {
	case RoleDoctor:
		return "info"
	case RoleNurse:
		return "success"
	case RoleSurgeon:
		return "danger"
	case RoleTechnician:
		return "warning"
	}
	return "default"
}

// Staff is a member of the hospital staff directory.
type Staff struct {
	ID         int64              `json:"id"`
	Name       string             `json:"name"`
	Role       Role               `json:"role"`
	Department xref.DepartmentRef `json:"department"`
	Phone      string             `json:"phone"`
	Email      string             `json:"email"`
	Schedule   census.Schedule    `json:"schedule"`
}

func (s Staff) GetID() int64          { return s.ID }
func (s Staff) WithID(id int64) Staff { s.ID = id; return s }
func (s Staff) DisplayName() string   { return s.Name }

// Clone returns a copy whose schedule is not shared with s.
func (s Staff) Clone() Staff {
	s.Schedule = s.Schedule.Clone()
	return s
}
