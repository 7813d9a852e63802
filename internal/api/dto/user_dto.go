package dto

import (
	"time"

	"github.com/fleetflow/console/internal/domain"
	"github.com/fleetflow/console/internal/rbac"
)

// LoginRequest payload for console login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserResponse is the public view of a console user.
type UserResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	FullName    string    `json:"full_name"`
	PhoneNumber string    `json:"phone_number,omitempty"`
	Role        rbac.Role `json:"role"`
	Active      bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewUserResponse maps a user without its password hash.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		FullName:    u.FullName(),
		PhoneNumber: u.PhoneNumber,
		Role:        u.Role,
		Active:      u.Active,
		CreatedAt:   u.CreatedAt,
	}
}

// PermissionsResponse lists what the caller's role grants.
type PermissionsResponse struct {
	Role        rbac.Role `json:"role"`
	Permissions []string  `json:"permissions"`
}

// PermissionCheckRequest asks whether the caller satisfies a requirement.
// An empty list is vacuously satisfied by require_all and never by any-of.
type PermissionCheckRequest struct {
	Permissions []string `json:"permissions" validate:"dive,required"`
	RequireAll  bool     `json:"require_all"`
}

// Requirement converts the request into an rbac requirement.
func (r PermissionCheckRequest) Requirement() rbac.Requirement {
	perms := make([]rbac.Permission, len(r.Permissions))
	for i, p := range r.Permissions {
		perms[i] = rbac.Permission(p)
	}
	return rbac.Requirement{Permissions: perms, RequireAll: r.RequireAll}
}

// PermissionCheckResponse answers a PermissionCheckRequest.
type PermissionCheckResponse struct {
	Allowed bool `json:"allowed"`
}
