package server

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/civicreport/civicreport/internal/handler"
	"github.com/civicreport/civicreport/internal/middleware"
)

// Handlers groups the HTTP handlers mounted by NewRouter.
type Handlers struct {
	Root    *handler.Handler
	Health  *handler.HealthHandler
	Metrics *handler.MetricsHandler
	Auth    *handler.AuthHandler
	Issues  *handler.IssueHandler
}

// RouterConfig carries the middleware settings for NewRouter.
type RouterConfig struct {
	Logger        *slog.Logger
	Auth          middleware.AuthConfig
	RateLimit     middleware.RateLimitConfig
	CORS          middleware.CORSConfig
	IsDevelopment bool
	MaxBodyBytes  int64

	// TrustProxy rewrites RemoteAddr from forwarding headers. Rate limits
	// key on RemoteAddr, so leave it off unless a proxy sets those headers.
	TrustProxy bool
}

// NewRouter configures the chi router with all routes and middleware.
func NewRouter(h Handlers, cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	if cfg.TrustProxy {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recoverer(cfg.Logger))
	r.Use(middleware.Security(middleware.SecurityConfig{
		Logger:        cfg.Logger,
		IsDevelopment: cfg.IsDevelopment,
	}))
	r.Use(middleware.CORS(cfg.CORS))
	if cfg.MaxBodyBytes > 0 {
		r.Use(middleware.MaxBodySize(cfg.MaxBodyBytes))
	}

	// Probes and metrics stay outside rate limiting
	r.Get("/healthz", h.Health.Healthz)
	r.Get("/readyz", h.Health.Readyz)
	if h.Metrics != nil {
		r.Get("/metrics", h.Metrics.Metrics)
	}

	r.Get("/", h.Root.Hello)

	requireAuth := middleware.Auth(cfg.Auth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimitIP(cfg.RateLimit))

		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.RateLimitAuth(cfg.RateLimit)).Post("/register", h.Auth.Register)
			r.With(middleware.RateLimitAuth(cfg.RateLimit)).Post("/login", h.Auth.Login)
			r.With(requireAuth).Get("/me", h.Auth.Me)
		})

		r.Route("/issues", func(r chi.Router) {
			r.Get("/", h.Issues.List)
			r.With(requireAuth).Post("/", h.Issues.Create)

			// Static segments must be registered before /{id}
			r.With(requireAuth).Get("/my-issues", h.Issues.Mine)
			r.With(requireAuth).Get("/stats", h.Issues.Stats)

			r.Get("/{id}", h.Issues.Get)
			r.With(requireAuth, middleware.RequireAdmin()).Patch("/{id}/status", h.Issues.UpdateStatus)
		})
	})

	// 404 and 405 handlers
	r.NotFound(h.Root.NotFound)
	r.MethodNotAllowed(h.Root.MethodNotAllowed)

	return r
}
