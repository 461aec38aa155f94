package dto

import (
	"time"

	"github.com/mp2tech/service-center/internal/domain"
)

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the bearer token and profile.
type LoginResponse struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	Profile   ProfileResponse `json:"profile"`
}

// RegisterRequest payload for admin-created staff accounts.
type RegisterRequest struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Mobile   string      `json:"mobile"`
	Address  string      `json:"address"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
}

// UpdateProfileRequest payload; nil fields are left untouched.
type UpdateProfileRequest struct {
	Name    *string `json:"name"`
	Mobile  *string `json:"mobile"`
	Address *string `json:"address"`
}

// ChangePasswordRequest payload.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ProfileResponse is the public view of a staff profile.
type ProfileResponse struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Mobile    string      `json:"mobile"`
	Address   string      `json:"address,omitempty"`
	Role      domain.Role `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
}

// NewProfileResponse maps a domain profile.
func NewProfileResponse(profile *domain.Profile) ProfileResponse {
	return ProfileResponse{
		ID:        profile.ID,
		Name:      profile.Name,
		Email:     profile.Email,
		Mobile:    profile.Mobile,
		Address:   profile.Address,
		Role:      profile.Role,
		CreatedAt: profile.CreatedAt,
	}
}
