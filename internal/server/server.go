// Package server assembles the CivicReport HTTP API: the route table lives in
// router.go, the process lifecycle here.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/civicreport/civicreport/internal/config"
)

// ShutdownFunc releases a resource once the HTTP server has drained.
type ShutdownFunc func(ctx context.Context) error

type shutdownHook struct {
	name string
	fn   ShutdownFunc
}

// poolCloser matches *repository.Repository, whose Close has no result.
type poolCloser interface {
	Close()
}

// Server serves the API and tears down its stores on SIGINT/SIGTERM.
type Server struct {
	httpServer      *http.Server
	shutdownTimeout time.Duration
	logger          *slog.Logger

	mu    sync.Mutex
	hooks []shutdownHook
}

// New builds a Server listening on cfg.AppPort with the configured timeouts.
func New(handler http.Handler, cfg *config.Config, logger *slog.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.AppPort),
			Handler:           handler,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
		},
		shutdownTimeout: cfg.ShutdownTimeout,
		logger:          logger,
	}
}

// OnShutdown registers fn to run after the HTTP server stops.
// Hooks run in reverse registration order.
func (s *Server) OnShutdown(name string, fn ShutdownFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, shutdownHook{name: name, fn: fn})
}

// OwnStores hands the PostgreSQL pool and Redis client to the server.
// Redis closes first, then PostgreSQL, once in-flight requests finish.
func (s *Server) OwnStores(db poolCloser, redis io.Closer) {
	s.OnShutdown("postgres", func(context.Context) error {
		db.Close()
		return nil
	})
	s.OnShutdown("redis", func(context.Context) error {
		return redis.Close()
	})
}

// Run listens on the configured address and serves until ctx is cancelled
// or the process receives SIGINT/SIGTERM.
func (s *Server) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then shuts down.
// Registered stores are closed on every exit path.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	serverErr := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return errors.Join(fmt.Errorf("server error: %w", err), s.shutdown())
	case <-ctx.Done():
		s.logger.Info("shutdown requested")
		return s.shutdown()
	}
}

// Addr returns the server address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// shutdown drains HTTP traffic, then runs the hooks newest first.
func (s *Server) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	var errs []error

	s.httpServer.SetKeepAlivesEnabled(false)
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
		errs = append(errs, fmt.Errorf("http: %w", err))
	}
	s.logger.Info("HTTP server stopped")

	s.mu.Lock()
	hooks := append([]shutdownHook(nil), s.hooks...)
	s.mu.Unlock()

	for i := len(hooks) - 1; i >= 0; i-- {
		h := hooks[i]
		if err := h.fn(ctx); err != nil {
			s.logger.Error("component shutdown error", "name", h.name, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", h.name, err))
			continue
		}
		s.logger.Info("component stopped", "name", h.name)
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}
	s.logger.Info("server stopped gracefully")
	return nil
}
