package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScopeDelegatesToEngine(t *testing.T) {
	scope := NewEngine(DefaultMatrix()).For(RoleDispatcher)

	assert.Equal(t, RoleDispatcher, scope.Role())
	assert.True(t, scope.HasPermission(PermViewTrips))
	assert.True(t, scope.HasAnyPermission(PermManageUsers, PermDispatchTrips))
	assert.False(t, scope.HasAllPermissions(PermManageUsers, PermDispatchTrips))
	assert.True(t, scope.CanManage(ResourceTrips))
	assert.False(t, scope.CanManage(ResourceVehicles))
	assert.True(t, scope.CanView(ResourceVehicles))
	assert.Contains(t, scope.Permissions(), PermDispatchTrips)
}

func TestZeroScopeDenies(t *testing.T) {
	var scope Scope
	assert.Equal(t, Role(""), scope.Role())
	assert.False(t, scope.HasPermission(PermViewDashboard))
	assert.False(t, scope.CanView(ResourceDashboard))
	assert.Empty(t, scope.Permissions())
}

func TestRequirementAllows(t *testing.T) {
	driver := NewEngine(DefaultMatrix()).For(RoleDriver)

	assert.True(t, Require(PermViewTrips).Allows(driver))
	assert.False(t, Require(PermManageTrips).Allows(driver))
	assert.True(t, Require(PermManageTrips, PermViewTrips).Allows(driver))
	assert.False(t, RequireAll(PermManageTrips, PermViewTrips).Allows(driver))
	assert.True(t, RequireAll(PermViewTrips, PermViewExpenses).Allows(driver))

	assert.False(t, Require().Allows(driver))
	assert.True(t, RequireAll().Allows(driver))
}

func TestSelectPicksExactlyOne(t *testing.T) {
	engine := NewEngine(DefaultMatrix())

	got := Select(engine.For(RoleAdmin), Require(PermManageUsers), "users-table", "hidden")
	assert.Equal(t, "users-table", got)

	got = Select(engine.For(RoleAnalyst), Require(PermManageUsers), "users-table", "hidden")
	assert.Equal(t, "hidden", got)

	got = Select(engine.For("UNKNOWN"), RequireAll(), "shown", "hidden")
	assert.Equal(t, "shown", got)
}
