package domain

import "time"

// Role enumerates operator roles. Roles live in a lookup table externally but
// only these two carry behavior in the lifecycle engine.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleTechnician Role = "technician"
)

// Profile is a user identity (admin or technician).
type Profile struct {
	ID           string
	Name         string
	Email        string
	Mobile       string
	Address      string
	PasswordHash string
	Role         Role
	IsDeleted    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
