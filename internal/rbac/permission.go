package rbac

import "strings"

// Permission is an atomic capability tag of the form <verb>_<resource>.
type Permission string

// Verbs.
const (
	VerbView     = "view"
	VerbManage   = "manage"
	VerbDispatch = "dispatch"
	VerbExport   = "export"
)

// Resources.
const (
	ResourceDashboard   = "dashboard"
	ResourceVehicles    = "vehicles"
	ResourceDrivers     = "drivers"
	ResourceTrips       = "trips"
	ResourceMaintenance = "maintenance"
	ResourceExpenses    = "expenses"
	ResourceAnalytics   = "analytics"
	ResourceReports     = "reports"
	ResourceUsers       = "users"
	ResourceSettings    = "settings"
)

// Permissions granted by the fleet console matrix.
const (
	PermViewDashboard     Permission = "view_dashboard"
	PermViewVehicles      Permission = "view_vehicles"
	PermManageVehicles    Permission = "manage_vehicles"
	PermViewDrivers       Permission = "view_drivers"
	PermManageDrivers     Permission = "manage_drivers"
	PermViewTrips         Permission = "view_trips"
	PermManageTrips       Permission = "manage_trips"
	PermDispatchTrips     Permission = "dispatch_trips"
	PermViewMaintenance   Permission = "view_maintenance"
	PermManageMaintenance Permission = "manage_maintenance"
	PermViewExpenses      Permission = "view_expenses"
	PermManageExpenses    Permission = "manage_expenses"
	PermViewAnalytics     Permission = "view_analytics"
	PermExportReports     Permission = "export_reports"
	PermManageUsers       Permission = "manage_users"
	PermViewSettings      Permission = "view_settings"
)

// AllPermissions lists every permission the matrix knows about.
func AllPermissions() []Permission {
	return []Permission{
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
		PermManageUsers,
		PermViewSettings,
	}
}

// PermissionFor builds the tag for verb on resource. The result is not
// checked against the matrix and is not case folded; an unknown or
// mis-cased tag is simply never granted.
func PermissionFor(verb, resource string) Permission {
	return Permission(verb + "_" + resource)
}

// Split returns the verb and resource halves of p.
func (p Permission) Split() (verb, resource string, ok bool) {
	verb, resource, ok = strings.Cut(string(p), "_")
	if !ok || verb == "" || resource == "" {
		return "", "", false
	}
	return verb, resource, true
}

func normalizePermission(p Permission) Permission {
	return Permission(strings.ToLower(strings.TrimSpace(string(p))))
}
