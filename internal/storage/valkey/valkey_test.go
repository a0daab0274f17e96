package valkey

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/Togather-Foundation/mapgen/internal/geo"
	"github.com/Togather-Foundation/mapgen/internal/geocoding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupValkey(t *testing.T) *Client {
	t.Helper()

	addr := os.Getenv("TEST_VALKEY_ADDR")
	if addr == "" {
		t.Skip("TEST_VALKEY_ADDR not set")
	}

	c, err := New(addr)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func TestPreferencesStore_RoundTrip(t *testing.T) {
	c := setupValkey(t)
	ctx := context.Background()
	store := c.Preferences()
	ns := "test-" + t.Name()
	t.Cleanup(func() { _ = store.Clear(ctx, ns) })

	_, ok, err := store.Get(ctx, ns, "address")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, ns, "address", "Paris"))
	require.NoError(t, store.Set(ctx, ns, "remember", "1"))

	v, ok, err := store.Get(ctx, ns, "address")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Paris", v)

	all, err := store.All(ctx, ns)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"address": "Paris", "remember": "1"}, all)

	require.NoError(t, store.Clear(ctx, ns))
	all, err = store.All(ctx, ns)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestGeocodingCache_PutGet(t *testing.T) {
	c := setupValkey(t)
	ctx := context.Background()
	cache := c.GeocodingCache(time.Minute)
	query := "test paris " + time.Now().Format(time.RFC3339Nano)
	t.Cleanup(func() { _ = cache.drop(ctx, query) })

	miss, err := cache.Get(ctx, query)
	require.NoError(t, err)
	assert.Nil(t, miss)

	require.NoError(t, cache.Put(ctx, geocoding.CachedGeocode{
		QueryNormalized: query,
		Position:        geo.Position{Lat: 48.8566, Lon: 2.3522},
		DisplayName:     "Paris",
		Source:          "nominatim",
	}))

	hit, err := cache.Get(ctx, query)
	require.NoError(t, err)
	require.NotNil(t, hit)
	assert.Equal(t, geo.Position{Lat: 48.8566, Lon: 2.3522}, hit.Position)
	assert.Equal(t, "Paris", hit.DisplayName)
	assert.False(t, hit.CreatedAt.IsZero())
}

func TestGeocodingCache_ExpiredEntryNotStored(t *testing.T) {
	c := setupValkey(t)
	ctx := context.Background()
	cache := c.GeocodingCache(time.Minute)
	query := "test expired " + time.Now().Format(time.RFC3339Nano)

	past := time.Now().Add(-time.Second)
	require.NoError(t, cache.Put(ctx, geocoding.CachedGeocode{QueryNormalized: query, ExpiresAt: &past}))

	miss, err := cache.Get(ctx, query)
	require.NoError(t, err)
	assert.Nil(t, miss)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "mapgen:prefs:esri", prefsKey("esri"))
	assert.Equal(t, "mapgen:geocode:paris", geocodeKey("paris"))
}

func TestExpirySeconds(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	at := func(d time.Duration) *time.Time {
		ts := now.Add(d)
		return &ts
	}

	tests := []struct {
		name      string
		ttl       time.Duration
		expiresAt *time.Time
		want      int64
		store     bool
	}{
		{"default ttl", time.Hour, nil, 3600, true},
		{"sub-second ttl rounds up", 300 * time.Millisecond, nil, 1, true},
		{"no ttl keeps forever", 0, nil, 0, true},
		{"explicit expiry", time.Hour, at(90 * time.Second), 90, true},
		{"explicit expiry truncates", time.Hour, at(2500 * time.Millisecond), 2, true},
		{"under a second left", time.Hour, at(999 * time.Millisecond), 0, false},
		{"already expired", time.Hour, at(-time.Minute), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, store := expirySeconds(tt.ttl, tt.expiresAt, now)
			assert.Equal(t, tt.store, store)
			assert.Equal(t, tt.want, got)
		})
	}
}
