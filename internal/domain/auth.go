package domain

import (
	"time"

	"github.com/fleetflow/console/internal/rbac"
)

// Token represents issued access token metadata.
type Token struct {
	Value     string
	SubjectID string
	Role      rbac.Role
	ExpiresAt time.Time
	IssuedAt  time.Time
}
