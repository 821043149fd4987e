package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/civicreport/civicreport/internal/auth"
	"github.com/civicreport/civicreport/internal/model"
)

func TestRequireRole(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		identity   *model.Identity
		allowed    []model.Role
		wantStatus int
	}{
		{
			name:       "no identity",
			identity:   nil,
			allowed:    []model.Role{model.RoleAdmin},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "admin allowed",
			identity:   &model.Identity{UserID: "a", Role: model.RoleAdmin},
			allowed:    []model.Role{model.RoleAdmin},
			wantStatus: http.StatusOK,
		},
		{
			name:       "citizen forbidden",
			identity:   &model.Identity{UserID: "c", Role: model.RoleCitizen},
			allowed:    []model.Role{model.RoleAdmin},
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "any of several",
			identity:   &model.Identity{UserID: "c", Role: model.RoleCitizen},
			allowed:    []model.Role{model.RoleAdmin, model.RoleCitizen},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := RequireRole(tt.allowed...)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodPatch, "/api/v1/issues/x/status", nil)
			if tt.identity != nil {
				req = req.WithContext(auth.ContextWithIdentity(req.Context(), tt.identity))
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestRequireAdmin_ForbiddenBody(t *testing.T) {
	t.Parallel()

	h := RequireAdmin()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodPatch, "/", nil)
	req = req.WithContext(auth.ContextWithIdentity(req.Context(), &model.Identity{UserID: "c", Role: model.RoleCitizen}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	want := `{"success":false,"error":"User role citizen is not authorized to access this route"}` + "\n"
	if rec.Body.String() != want {
		t.Errorf("body = %q, want %q", rec.Body.String(), want)
	}
}
