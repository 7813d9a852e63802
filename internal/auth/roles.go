package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fleetflow/console/internal/rbac"
	apperrors "github.com/fleetflow/console/pkg/util/errorutil"
)

// RequirePermission admits callers holding p.
func RequirePermission(p rbac.Permission) fiber.Handler {
	return Require(rbac.Require(p))
}

// RequireAnyPermission admits callers holding at least one of perms.
// An empty list admits nobody.
func RequireAnyPermission(perms ...rbac.Permission) fiber.Handler {
	return Require(rbac.Require(perms...))
}

// RequireAllPermissions admits callers holding every one of perms.
// An empty list admits every authenticated caller.
func RequireAllPermissions(perms ...rbac.Permission) fiber.Handler {
	return Require(rbac.RequireAll(perms...))
}

// RequireView admits callers that can view resource.
func RequireView(resource string) fiber.Handler {
	return RequirePermission(rbac.PermissionFor(rbac.VerbView, resource))
}

// Require enforces req against the caller's scope.
func Require(req rbac.Requirement) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !req.Allows(principal.Scope) {
			return apperrors.NewDomainError("FORBIDDEN", "insufficient permissions", fiber.StatusForbidden, map[string]any{
				"required":    permissionNames(req.Permissions),
				"require_all": req.RequireAll,
			})
		}
		return c.Next()
	}
}

// RequireAuthenticated ensures a principal is present.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}

func permissionNames(perms []rbac.Permission) []string {
	names := make([]string, len(perms))
	for i, p := range perms {
		names[i] = string(p)
	}
	return names
}
