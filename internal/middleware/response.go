package middleware

import (
	"encoding/json"
	"net/http"
)

// Messages shared by middleware rejections.
const (
	msgNotAuthorized = "Not authorized to access this route"
	msgServerError   = "Server Error"
)

type errorEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// writeError writes the {success:false,error} envelope used by every route.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorEnvelope{Error: message})
}
