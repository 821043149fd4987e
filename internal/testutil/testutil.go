package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/civicreport/civicreport/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 420420

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// TruncateAll empties every application table. The schema must already exist.
func TruncateAll(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, "TRUNCATE issues, users"); err != nil {
		return fmt.Errorf("truncate tables: %w", err)
	}
	return nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestUser creates a citizen with sensible defaults. PasswordHash is a
// placeholder and will not verify against any password.
func NewTestUser(t testing.TB) *model.User {
	t.Helper()
	return &model.User{
		ID:           UniqueID("user"),
		Name:         "Test User",
		Email:        UniqueEmail("user"),
		PasswordHash: "$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA",
		Role:         model.RoleCitizen,
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	}
}

// NewTestIssue creates a pending issue owned by userID.
func NewTestIssue(t testing.TB, userID string) *model.Issue {
	t.Helper()
	return &model.Issue{
		ID:          UniqueID("issue"),
		Title:       "Broken streetlight",
		Description: "Lamp on the corner has been out for a week",
		Type:        model.IssueTypeStreetlight,
		Status:      model.IssueStatusPending,
		Priority:    model.IssuePriorityMedium,
		Image:       model.DefaultIssueImage,
		Location: model.Location{
			Address:     "1 Main St",
			Coordinates: &model.Coordinates{Lat: 12.97, Lng: 77.59},
		},
		UserID:    userID,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

// UniqueID generates a unique ID for tests.
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

// UniqueEmail generates a unique lower-case email address for tests.
func UniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d@example.com", prefix, time.Now().UnixNano())
}
