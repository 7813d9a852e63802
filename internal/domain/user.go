package domain

import (
	"time"

	"github.com/fleetflow/console/internal/rbac"
)

// User is a back-office operator. Role drives every permission check.
type User struct {
	ID           string
	Email        string
	FirstName    string
	LastName     string
	PhoneNumber  string
	PasswordHash string
	Role         rbac.Role
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FullName falls back to the email when no name is set.
func (u *User) FullName() string {
	name := u.FirstName
	if u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName
	}
	if name == "" {
		return u.Email
	}
	return name
}
