// Package handler provides HTTP request handlers.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/civicreport/civicreport/internal/handler/dto"
	"github.com/civicreport/civicreport/internal/middleware"
	"github.com/civicreport/civicreport/internal/service"
)

// Client-facing messages.
const (
	msgWelcome            = "Smart Civic Issue API is running..."
	msgInvalidBody        = "Invalid request body"
	msgBodyTooLarge       = "Request body too large"
	msgInvalidLocation    = "Location must be an object with address and coordinates"
	msgInvalidCredentials = "Invalid credentials"
	msgNotAuthorized      = "Not authorized to access this route"
	msgForbidden          = "Not allowed to perform this action"
	msgIssueNotFound      = "Issue not found"
	msgServerError        = "Server Error"
)

// Handler serves the root and fallback routes.
type Handler struct{}

// New creates a new Handler instance.
func New() *Handler {
	return &Handler{}
}

// Hello reports that the API is up.
// GET /
func (h *Handler) Hello(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: msgWelcome})
}

// NotFound handles 404 responses.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "Route not found")
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes the {success:false,error} envelope.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, dto.ErrorResponse{Error: message})
}

// decodeJSON decodes the request body into dst. On failure it writes the
// error response and returns false: 413 when the body crossed the
// MaxBodySize limit, 400 otherwise.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, msgBodyTooLarge)
	case errors.Is(err, dto.ErrInvalidLocation):
		writeError(w, http.StatusBadRequest, msgInvalidLocation)
	default:
		writeError(w, http.StatusBadRequest, msgInvalidBody)
	}
	return false
}

// handleServiceError maps service errors onto HTTP responses.
// Unexpected errors are logged and reported as a generic 500.
func handleServiceError(logger *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	var vErr *service.ValidationError
	switch {
	case errors.As(err, &vErr):
		writeError(w, http.StatusBadRequest, vErr.Message)
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, msgInvalidCredentials)
	case errors.Is(err, service.ErrUserNotFound):
		// Token outlived its user.
		writeError(w, http.StatusUnauthorized, msgNotAuthorized)
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, msgForbidden)
	case errors.Is(err, service.ErrIssueNotFound):
		writeError(w, http.StatusNotFound, msgIssueNotFound)
	default:
		logger.Error("internal_error",
			slog.String("error", err.Error()),
			slog.String("endpoint", r.Method+" "+r.URL.Path),
			slog.String("request_id", middleware.GetRequestID(r.Context())),
		)
		writeError(w, http.StatusInternalServerError, msgServerError)
	}
}
