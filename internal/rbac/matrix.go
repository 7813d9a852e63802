package rbac

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

var (
	// ErrEmptyRole is returned when a role would be granted nothing.
	ErrEmptyRole = errors.New("rbac: role has no permissions")
	// ErrMissingRole is returned when a canonical role has no matrix entry.
	ErrMissingRole = errors.New("rbac: role missing from matrix")
	// ErrUnknownRole is returned when a matrix names a non-canonical role.
	ErrUnknownRole = errors.New("rbac: unknown role")
	// ErrInvalidPermission is returned for tags outside the verb/resource vocabulary.
	ErrInvalidPermission = errors.New("rbac: invalid permission")
)

var (
	knownVerbs = map[string]struct{}{
		VerbView: {}, VerbManage: {}, VerbDispatch: {}, VerbExport: {},
	}
	knownResources = map[string]struct{}{
		ResourceDashboard: {}, ResourceVehicles: {}, ResourceDrivers: {}, ResourceTrips: {},
		ResourceMaintenance: {}, ResourceExpenses: {}, ResourceAnalytics: {}, ResourceReports: {},
		ResourceUsers: {}, ResourceSettings: {},
	}
)

// Matrix is the immutable role to permission mapping. It is built once
// at startup and shared by reference; nothing mutates it afterwards.
type Matrix struct {
	grants map[Role]map[Permission]struct{}
}

// NewMatrix validates and freezes grants. Every canonical role must be
// present with at least one permission; duplicates are collapsed.
// manage_X never implies view_X, both must be listed.
func NewMatrix(grants map[Role][]Permission) (*Matrix, error) {
	frozen := make(map[Role]map[Permission]struct{}, len(grants))
	for role, perms := range grants {
		if !role.IsValid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownRole, role)
		}
		set := make(map[Permission]struct{}, len(perms))
		for _, p := range perms {
			p = normalizePermission(p)
			if err := validatePermission(p); err != nil {
				return nil, fmt.Errorf("role %s: %w", role, err)
			}
			set[p] = struct{}{}
		}
		if len(set) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrEmptyRole, role)
		}
		frozen[role] = set
	}
	for _, role := range Roles() {
		if _, ok := frozen[role]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingRole, role)
		}
	}
	return &Matrix{grants: frozen}, nil
}

func validatePermission(p Permission) error {
	verb, resource, ok := p.Split()
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidPermission, p)
	}
	if _, ok := knownVerbs[verb]; !ok {
		return fmt.Errorf("%w: unknown verb in %q", ErrInvalidPermission, p)
	}
	if _, ok := knownResources[resource]; !ok {
		return fmt.Errorf("%w: unknown resource in %q", ErrInvalidPermission, p)
	}
	return nil
}

// DefaultMatrix returns the fleet console's built-in grants.
func DefaultMatrix() *Matrix {
	m, err := NewMatrix(defaultGrants())
	if err != nil {
		panic(err)
	}
	return m
}

func defaultGrants() map[Role][]Permission {
	return map[Role][]Permission{
		RoleAdmin: AllPermissions(),
		RoleManager: {
			PermViewDashboard,
			PermViewVehicles,
			PermManageVehicles,
			PermViewDrivers,
			PermManageDrivers,
			PermViewTrips,
			PermManageTrips,
			PermDispatchTrips,
			PermViewMaintenance,
			PermManageMaintenance,
			PermViewExpenses,
			PermManageExpenses,
			PermViewAnalytics,
			PermExportReports,
			PermViewSettings,
		},
		RoleDispatcher: {
			PermViewDashboard,
			PermViewVehicles,
			PermViewDrivers,
			PermViewTrips,
			PermManageTrips,
			PermDispatchTrips,
			PermViewMaintenance,
			PermViewExpenses,
		},
		RoleDriver: {
			PermViewDashboard,
			PermViewTrips,
			PermViewExpenses,
		},
		RoleAnalyst: {
			PermViewDashboard,
			PermViewVehicles,
			PermViewDrivers,
			PermViewTrips,
			PermViewMaintenance,
			PermViewExpenses,
			PermViewAnalytics,
			PermExportReports,
		},
	}
}

type matrixFile struct {
	Roles map[string][]string `yaml:"roles"`
}

// LoadMatrix reads a YAML matrix of the form
//
//	roles:
//	  ADMIN: [view_dashboard, manage_users]
//	  ...
//
// An empty path returns DefaultMatrix.
func LoadMatrix(path string) (*Matrix, error) {
	if path == "" {
		return DefaultMatrix(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rbac matrix: %w", err)
	}
	return ParseMatrix(raw)
}

// ParseMatrix decodes a YAML matrix document.
func ParseMatrix(raw []byte) (*Matrix, error) {
	var doc matrixFile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode rbac matrix: %w", err)
	}
	grants := make(map[Role][]Permission, len(doc.Roles))
	for name, perms := range doc.Roles {
		role, ok := ParseRole(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownRole, name)
		}
		list := make([]Permission, 0, len(perms))
		for _, p := range perms {
			list = append(list, Permission(p))
		}
		grants[role] = list
	}
	return NewMatrix(grants)
}

// Grants returns a sorted copy of the permissions held by role. Unknown
// roles get nil.
func (m *Matrix) Grants(role Role) []Permission {
	if m == nil {
		return nil
	}
	set, ok := m.grants[role]
	if !ok {
		return nil
	}
	out := make([]Permission, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (m *Matrix) granted(role Role, p Permission) bool {
	if m == nil {
		return false
	}
	set, ok := m.grants[role]
	if !ok {
		return false
	}
	_, ok = set[p]
	return ok
}
