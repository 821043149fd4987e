package middleware

import (
	"net/http"

	"github.com/civicreport/civicreport/internal/auth"
	"github.com/civicreport/civicreport/internal/model"
)

// RequireRole returns middleware that enforces role requirements.
// Must be applied after Auth middleware.
// If multiple roles are provided, having ANY of them is sufficient.
func RequireRole(allowed ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := auth.IdentityFromContext(r.Context())
			if identity == nil {
				writeError(w, http.StatusUnauthorized, msgNotAuthorized)
				return
			}

			if !identity.HasRole(allowed...) {
				writeError(w, http.StatusForbidden,
					"User role "+string(identity.Role)+" is not authorized to access this route")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin is a convenience middleware for admin-only routes.
func RequireAdmin() func(http.Handler) http.Handler {
	return RequireRole(model.RoleAdmin)
}
