//go:build integration

package repository

import (
	"context"
	"testing"

	"github.com/civicreport/civicreport/internal/testutil"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ============================================================================
// Migration Integration Tests
// ============================================================================

func TestIntegrationMigration_ApplyAllTables(t *testing.T) {
	ctx, pool, _ := newMigrationTestEnv(t)

	for _, table := range []string{"users", "issues", "goose_db_version"} {
		t.Run(table, func(t *testing.T) {
			exists, err := tableExists(ctx, pool, table)
			if err != nil {
				t.Fatalf("tableExists failed: %v", err)
			}
			if !exists {
				t.Errorf("Table %q should exist after migrations", table)
			}
		})
	}
}

func TestIntegrationMigration_UsersTableSchema(t *testing.T) {
	ctx, pool, _ := newMigrationTestEnv(t)

	expectedColumns := []string{"id", "name", "email", "password_hash", "role", "created_at"}

	for _, col := range expectedColumns {
		t.Run(col, func(t *testing.T) {
			exists, err := columnExists(ctx, pool, "users", col)
			if err != nil {
				t.Fatalf("columnExists failed: %v", err)
			}
			if !exists {
				t.Errorf("Column %q should exist in users table", col)
			}
		})
	}
}

func TestIntegrationMigration_IssuesTableSchema(t *testing.T) {
	ctx, pool, _ := newMigrationTestEnv(t)

	expectedColumns := []string{
		"id",
		"title",
		"description",
		"type",
		"status",
		"priority",
		"image",
		"address",
		"lat",
		"lng",
		"user_id",
		"created_at",
	}

	for _, col := range expectedColumns {
		t.Run(col, func(t *testing.T) {
			exists, err := columnExists(ctx, pool, "issues", col)
			if err != nil {
				t.Fatalf("columnExists failed: %v", err)
			}
			if !exists {
				t.Errorf("Column %q should exist in issues table", col)
			}
		})
	}
}

func TestIntegrationMigration_Constraints(t *testing.T) {
	ctx, pool, _ := newMigrationTestEnv(t)

	// Unknown role
	_, err := pool.Exec(ctx, `
		INSERT INTO users (id, name, email, password_hash, role)
		VALUES ('u-role', 'n', 'role@example.com', 'h', 'superuser')
	`)
	if err == nil {
		t.Error("Expected check constraint violation for invalid role")
	}

	if _, err := pool.Exec(ctx, `
		INSERT INTO users (id, name, email, password_hash)
		VALUES ('u-owner', 'n', 'owner@example.com', 'h')
	`); err != nil {
		t.Fatalf("insert owner: %v", err)
	}

	// Title longer than 50 characters
	_, err = pool.Exec(ctx, `
		INSERT INTO issues (id, title, description, type, user_id)
		VALUES ('i-long', repeat('x', 51), 'd', 'Pothole', 'u-owner')
	`)
	if err == nil {
		t.Error("Expected check constraint violation for title > 50 chars")
	}

	// Unknown type
	_, err = pool.Exec(ctx, `
		INSERT INTO issues (id, title, description, type, user_id)
		VALUES ('i-type', 't', 'd', 'Flood', 'u-owner')
	`)
	if err == nil {
		t.Error("Expected check constraint violation for invalid type")
	}

	// Orphan issue
	_, err = pool.Exec(ctx, `
		INSERT INTO issues (id, title, description, type, user_id)
		VALUES ('i-orphan', 't', 'd', 'Pothole', 'nobody')
	`)
	if err == nil {
		t.Error("Expected foreign key violation for unknown user")
	}
}

func TestIntegrationMigration_RollbackAndReapply(t *testing.T) {
	ctx, pool, dbURL := newMigrationTestEnv(t)

	if err := Migrate(ctx, dbURL, MigrateDown); err != nil {
		t.Fatalf("migrate down: %v", err)
	}

	exists, err := tableExists(ctx, pool, "issues")
	if err != nil {
		t.Fatalf("tableExists failed: %v", err)
	}
	if exists {
		t.Error("issues table should not exist after rollback")
	}

	if err := Migrate(ctx, dbURL, MigrateUp); err != nil {
		t.Fatalf("reapply migrations: %v", err)
	}
}

func TestIntegrationMigration_Idempotency(t *testing.T) {
	ctx, _, dbURL := newMigrationTestEnv(t)

	if err := Migrate(ctx, dbURL, MigrateUp); err != nil {
		t.Fatalf("second up should not fail: %v", err)
	}
}

func TestIntegrationMigration_UnknownDirection(t *testing.T) {
	ctx, _, dbURL := newMigrationTestEnv(t)

	if err := Migrate(ctx, dbURL, "sideways"); err == nil {
		t.Error("expected error for unknown direction")
	}
}

// ============================================================================
// Helper Functions
// ============================================================================

func tableExists(ctx context.Context, pool *pgxpool.Pool, tableName string) (bool, error) {
	var exists bool
	err := pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT FROM information_schema.tables 
			WHERE table_schema = 'public' 
			AND table_name = $1
		)
	`, tableName).Scan(&exists)
	return exists, err
}

func columnExists(ctx context.Context, pool *pgxpool.Pool, tableName, columnName string) (bool, error) {
	var exists bool
	err := pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT FROM information_schema.columns 
			WHERE table_schema = 'public' 
			AND table_name = $1 
			AND column_name = $2
		)
	`, tableName, columnName).Scan(&exists)
	return exists, err
}

// ============================================================================
// Test Environment Setup
// ============================================================================

// newMigrationTestEnv returns a pool over a freshly migrated, empty schema.
func newMigrationTestEnv(t *testing.T) (context.Context, *pgxpool.Pool, string) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(pool.Close)

	unlock, err := testutil.AcquireDBLock(ctx, pool)
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		_ = unlock()
	})

	if err := Migrate(ctx, dbURL, MigrateReset); err != nil {
		t.Fatalf("reset migrations: %v", err)
	}
	if err := Migrate(ctx, dbURL, MigrateUp); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	return ctx, pool, dbURL
}
