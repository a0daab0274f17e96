package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreferencesRepository_RoundTrip(t *testing.T) {
	pool, _ := setupPostgres(t)
	ctx := context.Background()
	repo := NewPreferencesRepository(pool)

	_, ok, err := repo.Get(ctx, "esri", "address")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.Set(ctx, "esri", "address", "Paris"))
	require.NoError(t, repo.Set(ctx, "esri", "scale", "10000 - Streets"))
	require.NoError(t, repo.Set(ctx, "mapbox", "address", "Berlin"))

	v, ok, err := repo.Get(ctx, "esri", "address")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Paris", v)

	require.NoError(t, repo.Set(ctx, "esri", "address", "Lyon"))
	v, _, err = repo.Get(ctx, "esri", "address")
	require.NoError(t, err)
	assert.Equal(t, "Lyon", v)

	all, err := repo.All(ctx, "esri")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"address": "Lyon", "scale": "10000 - Streets"}, all)

	require.NoError(t, repo.Clear(ctx, "esri"))
	all, err = repo.All(ctx, "esri")
	require.NoError(t, err)
	assert.Empty(t, all)

	v, ok, err = repo.Get(ctx, "mapbox", "address")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Berlin", v)
}

func TestRepository_WithTxRollsBack(t *testing.T) {
	pool, _ := setupPostgres(t)
	ctx := context.Background()

	repo, err := NewRepository(pool)
	require.NoError(t, err)

	boom := errors.New("boom")
	err = repo.WithTx(ctx, func(ctx context.Context, tx *Repository) error {
		require.NoError(t, tx.Preferences().Set(ctx, "esri", "address", "Paris"))
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, ok, err := repo.Preferences().Get(ctx, "esri", "address")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewRepository_NilPool(t *testing.T) {
	_, err := NewRepository(nil)
	assert.Error(t, err)
}

func TestMigrationVersion(t *testing.T) {
	_, dbURL := setupPostgres(t)

	version, dirty, err := MigrationVersion(dbURL)
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
	assert.False(t, dirty)
}

func TestMigrateDown_RejectsNonPositiveSteps(t *testing.T) {
	assert.Error(t, MigrateDown("postgres://unused", 0))
}
