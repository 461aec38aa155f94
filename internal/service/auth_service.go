package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mp2tech/service-center/internal/auth"
	"github.com/mp2tech/service-center/internal/config"
	"github.com/mp2tech/service-center/internal/domain"
	"github.com/mp2tech/service-center/internal/repository"
	apperrors "github.com/mp2tech/service-center/pkg/util/errorutil"
)

// AuthService coordinates login and account management flows.
type AuthService struct {
	profiles   repository.ProfileRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	ProfileRepo repository.ProfileRepository
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		profiles:   deps.ProfileRepo,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// Login authenticates a profile by email and password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Profile, string, time.Time, error) {
	profile, err := s.profiles.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(profile.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}
	token, exp, err := s.tokenMgr.GenerateToken(profile.ID, profile.Role)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	return profile, token, exp, nil
}

// RegisterInput describes a new staff account.
type RegisterInput struct {
	Name     string
	Email    string
	Mobile   string
	Address  string
	Password string
	Role     domain.Role
}

// Register creates a staff profile. Callers gate this to admins.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.Profile, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		return nil, apperrors.NewValidationError("email and password are required", nil)
	}
	if input.Role != domain.RoleAdmin && input.Role != domain.RoleTechnician {
		return nil, apperrors.NewValidationError("unknown role", map[string]any{"role": input.Role})
	}

	if _, err := s.profiles.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	profile := &domain.Profile{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		Mobile:       strings.TrimSpace(input.Mobile),
		Address:      strings.TrimSpace(input.Address),
		PasswordHash: hash,
		Role:         input.Role,
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		return nil, apperrors.MapError(err)
	}
	return profile, nil
}

// ChangePassword verifies the current password before updating to a new hash.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	profile, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if err := auth.ComparePassword(profile.PasswordHash, currentPassword); err != nil {
		return apperrors.NewUnauthorized("invalid credentials")
	}
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.MapError(err)
	}
	profile.PasswordHash = hash
	return apperrors.MapError(s.profiles.Update(ctx, profile))
}

// ProfileUpdateInput carries optional profile field updates.
type ProfileUpdateInput struct {
	Name    *string
	Mobile  *string
	Address *string
}

// UpdateProfile edits contact details on a staff profile. Callers gate this
// to admins; email and role are fixed at registration.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, input ProfileUpdateInput) (*domain.Profile, error) {
	profile, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("profile", map[string]any{"user_id": userID})
		}
		return nil, apperrors.MapError(err)
	}
	if input.Name != nil {
		trimmed := strings.TrimSpace(*input.Name)
		if trimmed == "" {
			return nil, apperrors.NewValidationError("name cannot be empty", nil)
		}
		profile.Name = trimmed
	}
	if input.Mobile != nil {
		profile.Mobile = strings.TrimSpace(*input.Mobile)
	}
	if input.Address != nil {
		profile.Address = strings.TrimSpace(*input.Address)
	}
	if err := s.profiles.Update(ctx, profile); err != nil {
		return nil, apperrors.MapError(err)
	}
	return profile, nil
}

// DeactivateProfile soft-deletes a staff account so it can no longer log in.
// Admins cannot deactivate themselves.
func (s *AuthService) DeactivateProfile(ctx context.Context, actorID, userID string) error {
	if actorID == userID {
		return apperrors.NewValidationError("cannot deactivate your own account", nil)
	}
	if err := s.profiles.SoftDelete(ctx, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("profile", map[string]any{"user_id": userID})
		}
		return apperrors.MapError(err)
	}
	return nil
}

// ListTechnicians returns all technician profiles, for assignment pickers.
func (s *AuthService) ListTechnicians(ctx context.Context) ([]domain.Profile, error) {
	return s.profiles.ListByRole(ctx, domain.RoleTechnician)
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
