package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/civicreport/civicreport/internal/auth"
	"github.com/civicreport/civicreport/internal/metrics"
	"github.com/civicreport/civicreport/internal/model"
)

// TokenVerifier validates a bearer token and returns the identity it carries.
// *auth.TokenManager satisfies it.
type TokenVerifier interface {
	Verify(token string) (*model.Identity, error)
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger   *slog.Logger
	Verifier TokenVerifier
	Metrics  metrics.Recorder
}

// Auth returns a middleware that guards a route with a bearer session token.
// Every failure produces the same 401 body so callers cannot tell a missing
// token from an expired or forged one. The store is never consulted.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	recorder := cfg.Metrics
	if recorder == nil {
		recorder = metrics.NewNoop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reject := func(reason string) {
				recorder.IncAuthRejected()
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", reason),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeError(w, http.StatusUnauthorized, msgNotAuthorized)
			}

			token, ok := extractBearerToken(r)
			if !ok {
				reject("missing_token")
				return
			}

			identity, err := cfg.Verifier.Verify(token)
			if err != nil {
				reject("invalid_token")
				return
			}

			cfg.Logger.Debug("authentication successful",
				slog.String("user_id", identity.UserID),
				slog.String("role", string(identity.Role)),
				slog.String("request_id", GetRequestID(r.Context())),
			)

			ctx := auth.ContextWithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearerToken returns the token from "Authorization: Bearer <token>".
// The scheme is matched case-insensitively.
func extractBearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}
