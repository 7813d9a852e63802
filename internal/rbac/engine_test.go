package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasPermissionMatrix(t *testing.T) {
	engine := NewEngine(DefaultMatrix())

	cases := []struct {
		role Role
		perm Permission
		want bool
	}{
		{RoleAdmin, PermManageUsers, true},
		{RoleManager, PermManageUsers, false},
		{RoleManager, PermManageVehicles, true},
		{RoleDispatcher, PermViewVehicles, true},
		{RoleDispatcher, PermManageVehicles, false},
		{RoleDispatcher, PermDispatchTrips, true},
		{RoleDriver, PermViewTrips, true},
		{RoleDriver, PermViewVehicles, false},
		{RoleAnalyst, PermExportReports, true},
		{RoleAnalyst, PermManageTrips, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, engine.HasPermission(tc.role, tc.perm), "%s/%s", tc.role, tc.perm)
		// Deterministic and side-effect free.
		assert.Equal(t, tc.want, engine.HasPermission(tc.role, tc.perm), "%s/%s repeat", tc.role, tc.perm)
	}
}

func TestUnknownRoleIsDenied(t *testing.T) {
	engine := NewEngine(DefaultMatrix())
	for _, role := range []Role{"", "SAFETY_OFFICER", "admin", "ROOT"} {
		for _, p := range AllPermissions() {
			assert.False(t, engine.HasPermission(role, p), "%q/%s", role, p)
		}
	}
}

func TestUnknownPermissionIsDenied(t *testing.T) {
	engine := NewEngine(DefaultMatrix())
	assert.False(t, engine.HasPermission(RoleAdmin, "fly_rockets"))
	assert.False(t, engine.HasPermission(RoleAdmin, ""))
}

func TestPermissionLookupIsExact(t *testing.T) {
	engine := NewEngine(DefaultMatrix())
	assert.True(t, engine.HasPermission(RoleAdmin, PermViewDashboard))
	for _, p := range []Permission{"VIEW_DASHBOARD", "View_Dashboard", " view_dashboard", "view_dashboard "} {
		assert.False(t, engine.HasPermission(RoleAdmin, p), "HasPermission(%q)", p)
	}
	assert.False(t, engine.HasAny(RoleAdmin, "VIEW_DASHBOARD", "Manage_Users"))
	assert.False(t, engine.CanView(RoleDispatcher, " vehicles "))
	assert.False(t, engine.CanManage(RoleDispatcher, "TRIPS"))
	assert.True(t, engine.CanManage(RoleDispatcher, ResourceTrips))
}

func TestEmptyListEdgeCases(t *testing.T) {
	engine := NewEngine(DefaultMatrix())
	roles := append(Roles(), "", "UNKNOWN")
	for _, role := range roles {
		assert.True(t, engine.HasAll(role), "HasAll(%q) with no permissions", role)
		assert.False(t, engine.HasAny(role), "HasAny(%q) with no permissions", role)
	}
}

func TestHasAnyAndHasAll(t *testing.T) {
	engine := NewEngine(DefaultMatrix())

	assert.True(t, engine.HasAny(RoleDriver, PermManageUsers, PermViewTrips))
	assert.False(t, engine.HasAny(RoleDriver, PermManageUsers, PermViewVehicles))

	assert.True(t, engine.HasAll(RoleDispatcher, PermViewTrips, PermManageTrips, PermDispatchTrips))
	assert.False(t, engine.HasAll(RoleDispatcher, PermViewTrips, PermManageVehicles))
}

func TestCanViewCanManage(t *testing.T) {
	engine := NewEngine(DefaultMatrix())

	assert.False(t, engine.CanManage(RoleDispatcher, ResourceVehicles))
	assert.True(t, engine.CanManage(RoleDispatcher, ResourceTrips))
	assert.True(t, engine.CanView(RoleAnalyst, ResourceAnalytics))
	assert.False(t, engine.CanView(RoleAdmin, "spaceships"))
	// view_users is not part of the matrix; only manage_users is.
	assert.False(t, engine.CanView(RoleAdmin, ResourceUsers))
	assert.True(t, engine.CanManage(RoleAdmin, ResourceUsers))
}

func TestAdminIsSuperset(t *testing.T) {
	matrix := DefaultMatrix()
	admin := map[Permission]struct{}{}
	for _, p := range matrix.Grants(RoleAdmin) {
		admin[p] = struct{}{}
	}
	for _, role := range Roles() {
		for _, p := range matrix.Grants(role) {
			_, ok := admin[p]
			assert.True(t, ok, "admin lacks %s granted to %s", p, role)
		}
	}
	// manage_users is held by admin alone.
	for _, role := range Roles() {
		if role == RoleAdmin {
			continue
		}
		assert.False(t, NewEngine(matrix).HasPermission(role, PermManageUsers), "%s", role)
	}
}

func TestManageNeverImpliesView(t *testing.T) {
	matrix, err := NewMatrix(map[Role][]Permission{
		RoleAdmin:      {PermManageVehicles},
		RoleManager:    {PermViewDashboard},
		RoleDispatcher: {PermViewDashboard},
		RoleDriver:     {PermViewDashboard},
		RoleAnalyst:    {PermViewDashboard},
	})
	assert.NoError(t, err)
	engine := NewEngine(matrix)
	assert.True(t, engine.CanManage(RoleAdmin, ResourceVehicles))
	assert.False(t, engine.CanView(RoleAdmin, ResourceVehicles))
}

func TestNilEngineDenies(t *testing.T) {
	var engine *Engine
	assert.False(t, engine.HasPermission(RoleAdmin, PermViewDashboard))
	assert.False(t, engine.HasAny(RoleAdmin, PermViewDashboard))
	assert.True(t, engine.HasAll(RoleAdmin))
	assert.Nil(t, engine.Permissions(RoleAdmin))

	assert.False(t, NewEngine(nil).HasPermission(RoleAdmin, PermViewDashboard))
}

func TestPermissionsSorted(t *testing.T) {
	engine := NewEngine(DefaultMatrix())
	got := engine.Permissions(RoleDriver)
	assert.Equal(t, []Permission{PermViewDashboard, PermViewExpenses, PermViewTrips}, got)
	assert.Nil(t, engine.Permissions("UNKNOWN"))
}
