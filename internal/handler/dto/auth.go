package dto

import "github.com/civicreport/civicreport/internal/model"

// RegisterRequest represents the request body for registering a user.
type RegisterRequest struct {
	Name     string     `json:"name"`
	Email    string     `json:"email"`
	Password string     `json:"password"`
	Role     model.Role `json:"role,omitempty"`
}

// LoginRequest represents the request body for logging in.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse is returned by register and login.
type TokenResponse struct {
	Success bool           `json:"success"`
	Token   string         `json:"token"`
	User    model.UserView `json:"user"`
}

// UserResponse wraps the authenticated user.
type UserResponse struct {
	Success bool           `json:"success"`
	Data    model.UserView `json:"data"`
}

// ToTokenResponse builds the register/login response. Only the sanitized
// user view is exposed.
func ToTokenResponse(token string, user *model.User) *TokenResponse {
	return &TokenResponse{
		Success: true,
		Token:   token,
		User:    user.View(),
	}
}
