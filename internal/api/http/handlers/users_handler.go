package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fleetflow/console/internal/api/dto"
	"github.com/fleetflow/console/internal/auth"
	"github.com/fleetflow/console/internal/rbac"
	"github.com/fleetflow/console/internal/service"
	apperrors "github.com/fleetflow/console/pkg/util/errorutil"
)

// UsersHandler exposes login, profile and permission endpoints.
type UsersHandler struct {
	auth *service.AuthService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService) *UsersHandler {
	return &UsersHandler{auth: authService}
}

// Login handles POST /auth/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	user, token, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user": dto.NewUserResponse(user),
			"auth": dto.AuthResponse{Token: token.Value, ExpiresAt: token.ExpiresAt},
		},
	})
}

// Me handles GET /me.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(principal.User)})
}

// Permissions handles GET /me/permissions.
func (h *UsersHandler) Permissions(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	granted := principal.Scope.Permissions()
	names := make([]string, len(granted))
	for i, p := range granted {
		names[i] = string(p)
	}
	return c.JSON(fiber.Map{"data": dto.PermissionsResponse{Role: principal.Role, Permissions: names}})
}

// CheckPermissions handles POST /me/permissions/check.
func (h *UsersHandler) CheckPermissions(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.PermissionCheckRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	allowed := rbac.Select(principal.Scope, req.Requirement(), true, false)
	return c.JSON(fiber.Map{"data": dto.PermissionCheckResponse{Allowed: allowed}})
}

// List handles GET /users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	users, err := h.auth.ListUsers(c.UserContext(), parsePage(c))
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, dto.NewUserResponse(&users[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}
