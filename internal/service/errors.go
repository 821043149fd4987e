// Package service provides business logic for the application.
package service

import "errors"

// Service errors.
var (
	// ErrInvalidCredentials is returned for every failed login, whether the
	// email is unknown or the password is wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrIssueNotFound      = errors.New("issue not found")
	ErrForbidden          = errors.New("forbidden")
)

// ValidationError reports rejected input. Message is safe to show to clients.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func newValidationError(msg string) error {
	return &ValidationError{Message: msg}
}
