package models

import (
	"time"
)

// UserRole represents the fixed role identifiers that gate route access
type UserRole string

const (
	RoleAdmin   UserRole = "Admin"
	RolePM      UserRole = "PM"
	RoleNPD     UserRole = "NPD"
	RolePMFinal UserRole = "PM-Final"
	RoleSales   UserRole = "Sales"
)

// AllRoles lists every role in pipeline order
var AllRoles = []UserRole{RolePM, RoleNPD, RolePMFinal, RoleSales, RoleAdmin}

// IsValid checks if the role is one of the known identifiers
func (r UserRole) IsValid() bool {
	switch r {
	case RoleAdmin, RolePM, RoleNPD, RolePMFinal, RoleSales:
		return true
	default:
		return false
	}
}

// User represents an authentication principal
type User struct {
	ID           int64     `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"` // Never expose the hash
	Role         UserRole  `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// LoginRequest represents the login form
type LoginRequest struct {
	Username string `form:"username" json:"username" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}
