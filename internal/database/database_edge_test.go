package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestConnect_WithTimeout tests connection with very short timeout.
func TestConnect_WithTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Millisecond)
	defer cancel()

	pool, err := Connect(ctx, "postgres://localhost:59999/nonexistent?connect_timeout=1")
	require.Error(t, err)
	require.Nil(t, pool)
}

// TestConnect_WithMalformedURL tests connection with various malformed URLs.
func TestConnect_WithMalformedURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{name: "invalid protocol", url: "http://localhost:5432/test"},
		{name: "invalid port", url: "postgres://localhost:notaport/test"},
		{name: "unknown dsn key", url: "host=localhost port=5432 bogus_option=1 sslmode=disable connect_timeout=1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool, err := Connect(context.Background(), tt.url)
			require.Error(t, err)
			require.Nil(t, pool)
		})
	}
}

func TestRunMigrations_Idempotent(t *testing.T) {
	pool := TestDB(t)
	ctx := context.Background()

	require.NoError(t, RunMigrations(ctx, pool))
	require.NoError(t, RunMigrations(ctx, pool))
}

func TestRunMigrations_WithContextCancellation(t *testing.T) {
	pool := TestDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RunMigrations(ctx, pool)
	require.Error(t, err)
}

func TestCleanupTables_WithData(t *testing.T) {
	pool := TestDB(t)
	ctx := context.Background()
	require.NoError(t, RunMigrations(ctx, pool))

	_, err := pool.Exec(ctx, `INSERT INTO expenses (title, value, date) VALUES ('Aluguel', 1500, '2024-02-01')`)
	require.NoError(t, err)

	CleanupTables(t, pool)

	var count int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM expenses`).Scan(&count))
	require.Zero(t, count)
}
