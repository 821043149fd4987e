// Package model defines domain entities for the application.
package model

import (
	"slices"
	"time"
)

// Role is the closed set of user roles.
type Role string

// Role constants.
const (
	RoleCitizen Role = "citizen"
	RoleAdmin   Role = "admin"
)

// ValidRoles contains all valid role values.
var ValidRoles = []Role{RoleCitizen, RoleAdmin}

// IsValid reports whether r is one of ValidRoles.
func (r Role) IsValid() bool {
	return slices.Contains(ValidRoles, r)
}

// User represents a registered reporter or administrator.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Only loaded when explicitly requested
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserView is the sanitized user representation returned to clients.
type UserView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// View converts a User to its public representation.
func (u *User) View() UserView {
	return UserView{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
	}
}

// Identity holds the authenticated caller decoded from a session token.
// The auth middleware injects it into the request context.
type Identity struct {
	UserID string
	Role   Role
}

// HasRole checks if the identity carries any of the given roles.
func (i *Identity) HasRole(roles ...Role) bool {
	return slices.Contains(roles, i.Role)
}
