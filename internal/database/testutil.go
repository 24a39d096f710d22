package database

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
)

// backofficeTables lists every table created by RunMigrations, archives first.
var backofficeTables = []string{
	"monthly_archives", "activity_logs", "expenses",
	"invoices", "budget_items", "budgets", "products", "clients",
}

// TestDB returns a migrated connection pool owned by the calling test.
// Skips the test if TEST_DATABASE_URL is not set.
func TestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	pool, err := Connect(ctx, dbURL)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := RunMigrations(ctx, pool); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return pool
}

// CleanupTables empties every back-office table in a single statement.
func CleanupTables(t *testing.T, db PGXDB) {
	t.Helper()

	stmt := "TRUNCATE TABLE " + strings.Join(backofficeTables, ", ") + " CASCADE"
	if _, err := db.Exec(context.Background(), stmt); err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}
}
