package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// setupPostgres connects to TEST_DATABASE_URL, applies migrations and
// empties the tables. Tests are skipped when the variable is unset.
func setupPostgres(t *testing.T) (*pgxpool.Pool, string) {
	t.Helper()

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	require.NoError(t, MigrateUp(dbURL))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := Open(ctx, dbURL)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `TRUNCATE preferences, geocoding_cache RESTART IDENTITY`)
	require.NoError(t, err)

	return pool, dbURL
}
