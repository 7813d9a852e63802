package rbac

// Engine answers access-control questions against a Matrix. Every
// query fails closed: unknown roles, unknown permissions and a nil
// engine all resolve to "denied". Nothing here returns an error.
type Engine struct {
	matrix *Matrix
}

// NewEngine wraps matrix. A nil matrix denies everything.
func NewEngine(matrix *Matrix) *Engine {
	return &Engine{matrix: matrix}
}

// HasPermission reports whether role is granted p.
func (e *Engine) HasPermission(role Role, p Permission) bool {
	if e == nil {
		return false
	}
	return e.matrix.granted(role, p)
}

// HasAny reports whether at least one of perms is granted. An empty
// list is never satisfied.
func (e *Engine) HasAny(role Role, perms ...Permission) bool {
	for _, p := range perms {
		if e.HasPermission(role, p) {
			return true
		}
	}
	return false
}

// HasAll reports whether every one of perms is granted. An empty list
// is vacuously satisfied, for unknown roles too.
func (e *Engine) HasAll(role Role, perms ...Permission) bool {
	for _, p := range perms {
		if !e.HasPermission(role, p) {
			return false
		}
	}
	return true
}

// CanView checks view_<resource>.
func (e *Engine) CanView(role Role, resource string) bool {
	return e.HasPermission(role, PermissionFor(VerbView, resource))
}

// CanManage checks manage_<resource>.
func (e *Engine) CanManage(role Role, resource string) bool {
	return e.HasPermission(role, PermissionFor(VerbManage, resource))
}

// Permissions returns the sorted grants of role.
func (e *Engine) Permissions(role Role) []Permission {
	if e == nil {
		return nil
	}
	return e.matrix.Grants(role)
}

// For binds the engine to role.
func (e *Engine) For(role Role) Scope {
	return Scope{engine: e, role: role}
}
