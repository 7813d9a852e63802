package rbac

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullGrants() map[Role][]Permission {
	return map[Role][]Permission{
		RoleAdmin:      {PermViewDashboard},
		RoleManager:    {PermViewDashboard},
		RoleDispatcher: {PermViewDashboard},
		RoleDriver:     {PermViewDashboard},
		RoleAnalyst:    {PermViewDashboard},
	}
}

func TestNewMatrixDeduplicates(t *testing.T) {
	grants := fullGrants()
	grants[RoleDriver] = []Permission{PermViewTrips, PermViewTrips, "VIEW_TRIPS"}

	m, err := NewMatrix(grants)
	require.NoError(t, err)
	assert.Equal(t, []Permission{PermViewTrips}, m.Grants(RoleDriver))
}

func TestNewMatrixRejectsEmptyRole(t *testing.T) {
	grants := fullGrants()
	grants[RoleAnalyst] = nil

	_, err := NewMatrix(grants)
	assert.ErrorIs(t, err, ErrEmptyRole)
}

func TestNewMatrixRequiresEveryRole(t *testing.T) {
	grants := fullGrants()
	delete(grants, RoleDispatcher)

	_, err := NewMatrix(grants)
	assert.ErrorIs(t, err, ErrMissingRole)
}

func TestNewMatrixRejectsUnknownVocabulary(t *testing.T) {
	for _, p := range []Permission{"fly_dashboard", "view_rockets", "viewdashboard", "_"} {
		grants := fullGrants()
		grants[RoleAdmin] = []Permission{p}
		_, err := NewMatrix(grants)
		assert.ErrorIs(t, err, ErrInvalidPermission, "%q", p)
	}

	grants := fullGrants()
	grants["SAFETY_OFFICER"] = []Permission{PermViewDashboard}
	_, err := NewMatrix(grants)
	assert.ErrorIs(t, err, ErrUnknownRole)
}

func TestGrantsReturnsCopy(t *testing.T) {
	m := DefaultMatrix()
	got := m.Grants(RoleDriver)
	got[0] = PermManageUsers
	assert.NotContains(t, m.Grants(RoleDriver), PermManageUsers)
}

func TestParseMatrix(t *testing.T) {
	doc := []byte(`
roles:
  admin: [view_dashboard, manage_users]
  MANAGER: [view_dashboard]
  DISPATCHER: [view_dashboard, dispatch_trips]
  DRIVER: [view_trips]
  ANALYST: [export_reports]
`)
	m, err := ParseMatrix(doc)
	require.NoError(t, err)

	engine := NewEngine(m)
	assert.True(t, engine.HasPermission(RoleAdmin, PermManageUsers))
	assert.True(t, engine.HasPermission(RoleDispatcher, PermDispatchTrips))
	assert.False(t, engine.HasPermission(RoleDriver, PermViewDashboard))
}

func TestParseMatrixRejectsUnknownRole(t *testing.T) {
	_, err := ParseMatrix([]byte("roles:\n  SAFETY_OFFICER: [view_dashboard]\n"))
	assert.ErrorIs(t, err, ErrUnknownRole)
}

func TestParseMatrixRejectsBadYAML(t *testing.T) {
	_, err := ParseMatrix([]byte("roles: [unterminated"))
	assert.Error(t, err)
}

func TestLoadMatrix(t *testing.T) {
	m, err := LoadMatrix("")
	require.NoError(t, err)
	assert.Equal(t, DefaultMatrix().Grants(RoleAdmin), m.Grants(RoleAdmin))

	path := filepath.Join(t.TempDir(), "matrix.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
roles:
  ADMIN: [view_dashboard]
  MANAGER: [view_dashboard]
  DISPATCHER: [view_dashboard]
  DRIVER: [view_dashboard]
  ANALYST: [view_dashboard]
`), 0o600))
	m, err = LoadMatrix(path)
	require.NoError(t, err)
	assert.Equal(t, []Permission{PermViewDashboard}, m.Grants(RoleAdmin))

	_, err = LoadMatrix(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParseRole(t *testing.T) {
	role, ok := ParseRole(" dispatcher ")
	assert.True(t, ok)
	assert.Equal(t, RoleDispatcher, role)

	_, ok = ParseRole("SAFETY_OFFICER")
	assert.False(t, ok)
	_, ok = ParseRole("")
	assert.False(t, ok)
}

func TestPermissionSplit(t *testing.T) {
	verb, resource, ok := PermDispatchTrips.Split()
	assert.True(t, ok)
	assert.Equal(t, "dispatch", verb)
	assert.Equal(t, "trips", resource)

	_, _, ok = Permission("nounderscore").Split()
	assert.False(t, ok)
	assert.Equal(t, PermViewVehicles, PermissionFor(VerbView, ResourceVehicles))
	assert.Equal(t, Permission("View_Vehicles"), PermissionFor("View", "Vehicles"))
}
