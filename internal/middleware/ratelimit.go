package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/civicreport/civicreport/internal/cache"
	"github.com/civicreport/civicreport/internal/metrics"
	"github.com/go-chi/httprate"
)

const msgTooManyRequests = "Too many requests, please try again later"

// AuthLimiter is the Redis-backed token bucket consulted for credential endpoints.
type AuthLimiter interface {
	CheckAuthRateLimit(ctx context.Context, ip string, perMinute, burst int) (*cache.RateLimitResult, error)
}

// RateLimitConfig holds configuration for rate limiting middleware.
type RateLimitConfig struct {
	Logger  *slog.Logger
	Metrics metrics.Recorder

	// Credential endpoints (register, login), per IP, shared across replicas via Redis.
	AuthEnabled   bool
	AuthLimiter   AuthLimiter
	AuthPerMinute int
	AuthBurst     int

	// General API throttling, per IP, in process.
	IPEnabled   bool
	IPPerMinute int
}

func (cfg RateLimitConfig) recorder() metrics.Recorder {
	if cfg.Metrics == nil {
		return metrics.NewNoop()
	}
	return cfg.Metrics
}

// RateLimitAuth returns middleware that throttles credential attempts per IP.
// Redis errors fail open.
func RateLimitAuth(cfg RateLimitConfig) func(http.Handler) http.Handler {
	recorder := cfg.recorder()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.AuthEnabled || cfg.AuthLimiter == nil {
				next.ServeHTTP(w, r)
				return
			}

			ip, _ := httprate.KeyByIP(r)

			result, err := cfg.AuthLimiter.CheckAuthRateLimit(r.Context(), ip, cfg.AuthPerMinute, cfg.AuthBurst)
			if err != nil {
				cfg.Logger.Error("auth rate limit check failed",
					slog.String("error", err.Error()),
					slog.String("request_id", GetRequestID(r.Context())),
				)
			}
			if result == nil {
				next.ServeHTTP(w, r)
				return
			}

			setRateLimitHeaders(w, cfg.AuthPerMinute, result.Remaining, result.ResetAt)

			if !result.Allowed {
				recorder.IncRateLimited()
				cfg.Logger.Warn("rate limit exceeded",
					slog.String("type", "auth"),
					slog.String("ip", ip),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.Int64("retry_after_seconds", int64(result.RetryAfter.Seconds())),
					slog.String("request_id", GetRequestID(r.Context())),
				)

				w.Header().Set("Retry-After", strconv.Itoa(int(result.RetryAfter.Seconds())))
				writeError(w, http.StatusTooManyRequests, msgTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitIP returns middleware that caps requests per client IP per minute.
func RateLimitIP(cfg RateLimitConfig) func(http.Handler) http.Handler {
	if !cfg.IPEnabled || cfg.IPPerMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	recorder := cfg.recorder()

	return httprate.Limit(cfg.IPPerMinute, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			recorder.IncRateLimited()
			cfg.Logger.Warn("rate limit exceeded",
				slog.String("type", "ip"),
				slog.String("endpoint", r.Method+" "+r.URL.Path),
				slog.String("request_id", GetRequestID(r.Context())),
			)
			writeError(w, http.StatusTooManyRequests, msgTooManyRequests)
		}),
	)
}

// setRateLimitHeaders sets standard rate limit response headers.
func setRateLimitHeaders(w http.ResponseWriter, limit int, remaining int64, resetAt time.Time) {
	if limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))
	}
}
