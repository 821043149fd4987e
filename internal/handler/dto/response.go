// Package dto provides Data Transfer Objects for API requests and responses.
package dto

// ErrorResponse is the failure envelope shared by every route.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// MessageResponse carries a plain status message.
type MessageResponse struct {
	Message string `json:"message"`
}
