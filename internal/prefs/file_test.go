package prefs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", DefaultFileName)

	s := NewFileStore(path)
	_, ok, err := s.Get(ctx, "esri", "address")
	require.NoError(t, err)
	assert.False(t, ok, "missing file reads as empty")

	require.NoError(t, s.Set(ctx, "esri", "address", "Paris"))
	require.NoError(t, s.Set(ctx, "esri", "scale", "10000 - Streets"))
	require.NoError(t, s.Set(ctx, "mapbox", "zoom", "15"))

	reopened := NewFileStore(path)
	v, ok, err := reopened.Get(ctx, "esri", "scale")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "10000 - Streets", v)

	all, err := reopened.All(ctx, "esri")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"address": "Paris", "scale": "10000 - Streets"}, all)
}

func TestFileStore_Clear(t *testing.T) {
	ctx := context.Background()
	s := NewFileStore(filepath.Join(t.TempDir(), DefaultFileName))

	require.NoError(t, s.Set(ctx, "esri", "address", "Paris"))
	require.NoError(t, s.Set(ctx, "mapbox", "address", "Berlin"))
	require.NoError(t, s.Clear(ctx, "esri"))
	require.NoError(t, s.Clear(ctx, "never-written"))

	_, ok, err := s.Get(ctx, "esri", "address")
	require.NoError(t, err)
	assert.False(t, ok)

	v, _, err := s.Get(ctx, "mapbox", "address")
	require.NoError(t, err)
	assert.Equal(t, "Berlin", v)
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte("esri: [unclosed"), 0o644))

	_, _, err := NewFileStore(path).Get(context.Background(), "esri", "address")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse preferences")
}

func TestFileStore_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(filepath.Join(dir, DefaultFileName))
	require.NoError(t, s.Set(context.Background(), "esri", "type", "Imagery"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, DefaultFileName, entries[0].Name())
}
