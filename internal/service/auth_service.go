package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/fleetflow/console/internal/auth"
	"github.com/fleetflow/console/internal/config"
	"github.com/fleetflow/console/internal/domain"
	"github.com/fleetflow/console/internal/repository"
	apperrors "github.com/fleetflow/console/pkg/util/errorutil"
)

// AuthService coordinates login and profile lookups.
type AuthService struct {
	users    repository.UserRepository
	tokenMgr *auth.TokenManager
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, users repository.UserRepository) *AuthService {
	return &AuthService{
		users:    users,
		tokenMgr: auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
	}
}

// TokenManager exposes the token manager for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// Login authenticates by email and password. Unknown emails and wrong
// passwords produce the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, domain.Token, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.Token{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, domain.Token{}, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, domain.Token{}, apperrors.NewUnauthorized("invalid credentials")
	}
	if !user.Active {
		return nil, domain.Token{}, apperrors.NewUnauthorized("account disabled")
	}

	value, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, domain.Token{}, err
	}
	return user, domain.Token{Value: value, SubjectID: user.ID, Role: user.Role, ExpiresAt: exp}, nil
}

// ListUsers pages through console users.
func (s *AuthService) ListUsers(ctx context.Context, page repository.Page) ([]domain.User, error) {
	return s.users.List(ctx, page)
}
