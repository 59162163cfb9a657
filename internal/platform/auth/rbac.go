package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	RoleAdmin        = "admin"
	RoleDoctor       = "doctor"
	RoleNurse        = "nurse"
	RoleReceptionist = "receptionist"
)

var (
	// ReadRoles may view every collection and the dashboard.
	ReadRoles = []string{RoleAdmin, RoleDoctor, RoleNurse, RoleReceptionist}
	// WriteRoles may create, edit and delete patients, staff and appointments.
	WriteRoles = []string{RoleAdmin, RoleReceptionist}
)

// RequireRole returns middleware that checks if the user has at least one of
// the specified roles. admin passes every check.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if HasRole(RolesFromContext(c.Request().Context()), roles...) {
				return next(c)
			}
			return echo.NewHTTPError(http.StatusForbidden,
				fmt.Sprintf("required role: %s", strings.Join(roles, " or ")))
		}
	}
}

// HasRole reports whether granted includes admin or any of required.
func HasRole(granted []string, required ...string) bool {
	for _, has := range granted {
		if has == RoleAdmin {
			return true
		}
		for _, r := range required {
			if has == r {
				return true
			}
		}
	}
	return false
}
