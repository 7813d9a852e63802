package rbac

// Scope is the permission view handed to a single caller: the engine
// bound to the caller's role. The zero Scope denies everything.
type Scope struct {
	engine *Engine
	role   Role
}

// Role returns the bound role, empty when the caller has none.
func (s Scope) Role() Role { return s.role }

func (s Scope) HasPermission(p Permission) bool {
	return s.engine.HasPermission(s.role, p)
}

func (s Scope) HasAnyPermission(perms ...Permission) bool {
	return s.engine.HasAny(s.role, perms...)
}

func (s Scope) HasAllPermissions(perms ...Permission) bool {
	return s.engine.HasAll(s.role, perms...)
}

func (s Scope) CanView(resource string) bool {
	return s.engine.CanView(s.role, resource)
}

func (s Scope) CanManage(resource string) bool {
	return s.engine.CanManage(s.role, resource)
}

// Permissions lists what the bound role is granted.
func (s Scope) Permissions() []Permission {
	return s.engine.Permissions(s.role)
}

// Requirement describes the access a piece of content needs: a single
// permission, or a list checked as any-of (default) or all-of.
type Requirement struct {
	Permissions []Permission
	RequireAll  bool
}

// Require builds a single or any-of requirement.
func Require(perms ...Permission) Requirement {
	return Requirement{Permissions: perms}
}

// RequireAll builds an all-of requirement.
func RequireAll(perms ...Permission) Requirement {
	return Requirement{Permissions: perms, RequireAll: true}
}

// Allows evaluates the requirement once against scope.
func (r Requirement) Allows(scope Scope) bool {
	if len(r.Permissions) == 1 {
		return scope.HasPermission(r.Permissions[0])
	}
	if r.RequireAll {
		return scope.HasAllPermissions(r.Permissions...)
	}
	return scope.HasAnyPermission(r.Permissions...)
}

// Select returns granted when scope satisfies req and fallback
// otherwise. Access is evaluated exactly once per call.
func Select[T any](scope Scope, req Requirement, granted, fallback T) T {
	if req.Allows(scope) {
		return granted
	}
	return fallback
}
