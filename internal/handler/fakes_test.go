package handler

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/civicreport/civicreport/internal/auth"
	"github.com/civicreport/civicreport/internal/metrics"
	"github.com/civicreport/civicreport/internal/service"
	"github.com/civicreport/civicreport/internal/testutil/memstore"
)

const testSecret = "handler-test-secret-0123456789abcdef"

var errStoreDown = errors.New("store unavailable")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testEnv wires real services over an in-memory store.
type testEnv struct {
	store    *memstore.Store
	tokens   *auth.TokenManager
	recorder *metrics.InMemoryRecorder
	authH    *AuthHandler
	issueH   *IssueHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	tokens, err := auth.NewTokenManager(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}

	store := memstore.New()
	recorder := metrics.NewInMemory()
	logger := discardLogger()

	return &testEnv{
		store:    store,
		tokens:   tokens,
		recorder: recorder,
		authH:    NewAuthHandler(service.NewAuthService(store, tokens, logger, recorder), logger),
		issueH:   NewIssueHandler(service.NewIssueService(store, logger, recorder), logger),
	}
}
