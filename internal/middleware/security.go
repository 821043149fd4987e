package middleware

import (
	"log/slog"
	"net/http"

	"github.com/unrolled/secure"
)

// SecurityConfig holds configuration for security headers.
type SecurityConfig struct {
	Logger *slog.Logger
	// IsDevelopment disables HSTS in dev environments.
	IsDevelopment bool
}

// Security returns a middleware that applies security headers to all responses.
// Header policy is delegated to unrolled/secure; Cache-Control is added on top
// since API responses carry tokens and user data.
func Security(cfg SecurityConfig) func(http.Handler) http.Handler {
	sec := secure.New(secure.Options{
		IsDevelopment:         cfg.IsDevelopment,
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		CustomBrowserXssValue: "0",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'",
		PermissionsPolicy:     "geolocation=(), microphone=(), camera=(), payment=(), usb=()",
		STSSeconds:            31536000,
		STSIncludeSubdomains:  true,
		STSPreload:            true,
		ForceSTSHeader:        true,
		SSLProxyHeaders:       map[string]string{"X-Forwarded-Proto": "https"},
	})

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := sec.Process(w, r); err != nil {
				if cfg.Logger != nil {
					cfg.Logger.Warn("secure headers blocked request",
						slog.Any("error", err),
						slog.String("request_id", GetRequestID(r.Context())),
					)
				}
				writeError(w, http.StatusBadRequest, "Request blocked")
				return
			}

			w.Header().Set("Cache-Control", "no-store")

			next.ServeHTTP(w, r)
		})
	}
}

// MaxBodySize returns a middleware that limits request body size.
// Bodies that declare a larger Content-Length are rejected up front; the
// rest are wrapped so reads fail once the limit is crossed.
func MaxBodySize(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil && r.ContentLength > maxBytes {
				writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

			next.ServeHTTP(w, r)
		})
	}
}
