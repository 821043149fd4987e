// Package main is the entrypoint for the CivicReport API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/civicreport/civicreport/internal/auth"
	"github.com/civicreport/civicreport/internal/cache"
	"github.com/civicreport/civicreport/internal/config"
	"github.com/civicreport/civicreport/internal/handler"
	"github.com/civicreport/civicreport/internal/metrics"
	"github.com/civicreport/civicreport/internal/middleware"
	"github.com/civicreport/civicreport/internal/repository"
	"github.com/civicreport/civicreport/internal/server"
	"github.com/civicreport/civicreport/internal/service"
)

func main() {
	// Initialize context
	ctx := context.Background()

	// Load .env for local development, then configuration
	if err := config.LoadDotEnv(); err != nil {
		slog.Error("failed to load .env", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg)

	// Apply schema migrations before accepting traffic
	if cfg.AutoMigrate {
		if err := repository.Migrate(ctx, cfg.DatabaseURL, repository.MigrateUp); err != nil {
			logger.Error("failed to apply migrations",
				slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			)
			os.Exit(1)
		}
		logger.Info("database migrations applied")
	}

	// Initialize database
	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to database")

	// Initialize cache
	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		repo.Close()
		os.Exit(1)
	}
	logger.Info("connected to Redis")

	// Session tokens
	tokens, err := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTExpire)
	if err != nil {
		logger.Error("failed to initialize token manager", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize services
	metricsRecorder := metrics.NewInMemory()
	authService := service.NewAuthService(repo, tokens, logger, metricsRecorder)
	issueService := service.NewIssueService(repo, logger, metricsRecorder)

	// Initialize handlers
	handlers := server.Handlers{
		Root:    handler.New(),
		Health:  handler.NewHealthHandler(repo, cacheClient, logger),
		Metrics: handler.NewMetricsHandler(metricsRecorder),
		Auth:    handler.NewAuthHandler(authService, logger),
		Issues:  handler.NewIssueHandler(issueService, logger),
	}

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.GetCORSAllowedOrigins()

	// Setup router
	r := server.NewRouter(handlers, server.RouterConfig{
		Logger: logger,
		Auth: middleware.AuthConfig{
			Logger:   logger,
			Verifier: tokens,
			Metrics:  metricsRecorder,
		},
		RateLimit: middleware.RateLimitConfig{
			Logger:        logger,
			Metrics:       metricsRecorder,
			AuthEnabled:   cfg.RateLimitAuthEnabled,
			AuthLimiter:   cacheClient,
			AuthPerMinute: cfg.RateLimitAuthRPM,
			AuthBurst:     cfg.RateLimitAuthBurst,
			IPEnabled:     cfg.RateLimitIPEnabled,
			IPPerMinute:   cfg.RateLimitIPRPM,
		},
		CORS:          corsCfg,
		IsDevelopment: cfg.IsDevelopment(),
		MaxBodyBytes:  cfg.MaxRequestBodySize,
		TrustProxy:    cfg.TrustProxy,
	})

	// Create and run server
	srv := server.New(r, cfg, logger)
	srv.OwnStores(repo, cacheClient)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"token_ttl", tokens.TTL().String(),
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	level := parseLogLevel(cfg.LogLevel)

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
