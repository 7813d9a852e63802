package rbac

import "strings"

// Role identifies a console user's authority level. A user holds
// exactly one role at a time.
type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleManager    Role = "MANAGER"
	RoleDispatcher Role = "DISPATCHER"
	RoleDriver     Role = "DRIVER"
	RoleAnalyst    Role = "ANALYST"
)

// Roles lists every canonical role.
func Roles() []Role {
	return []Role{RoleAdmin, RoleManager, RoleDispatcher, RoleDriver, RoleAnalyst}
}

// IsValid reports whether r is one of the canonical roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleDispatcher, RoleDriver, RoleAnalyst:
		return true
	}
	return false
}

// ParseRole normalizes raw into a Role. Unknown values (including the
// legacy SAFETY_OFFICER label) return false and must be treated as
// having no permissions.
func ParseRole(raw string) (Role, bool) {
	role := Role(strings.ToUpper(strings.TrimSpace(raw)))
	if !role.IsValid() {
		return "", false
	}
	return role, true
}
