package kv_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/stockmirror/pkg/kv"
)

// ─── Shared contract ──────────────────────────────────────────────────────────

func exerciseStore(t *testing.T, s kv.Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "products")
	assert.True(t, errors.Is(err, kv.ErrNotFound), "fresh store should miss")

	require.NoError(t, s.Set(ctx, "products", `[{"id":"1"}]`))
	got, err := s.Get(ctx, "products")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"1"}]`, got)

	require.NoError(t, s.Set(ctx, "products", `[]`))
	got, err = s.Get(ctx, "products")
	require.NoError(t, err)
	assert.Equal(t, `[]`, got)

	require.NoError(t, s.Delete(ctx, "products"))
	require.NoError(t, s.Delete(ctx, "products"), "second delete is a no-op")
	_, err = s.Get(ctx, "products")
	assert.True(t, errors.Is(err, kv.ErrNotFound))
}

// ─── Drivers ──────────────────────────────────────────────────────────────────

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, kv.NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	s, err := kv.NewFileStore(t.TempDir())
	require.NoError(t, err)
	exerciseStore(t, s)
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first, err := kv.NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "darkTheme", "true"))

	second, err := kv.NewFileStore(dir)
	require.NoError(t, err)
	got, err := second.Get(ctx, "darkTheme")
	require.NoError(t, err)
	assert.Equal(t, "true", got)
}

func TestFileStoreRejectsPathKeys(t *testing.T) {
	s, err := kv.NewFileStore(t.TempDir())
	require.NoError(t, err)

	err = s.Set(context.Background(), "../escape", "x")
	assert.Error(t, err)
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := kv.Open(context.Background(), kv.Options{Driver: "etcd"})
	assert.Error(t, err)
}

func TestOpenMemory(t *testing.T) {
	s, err := kv.Open(context.Background(), kv.Options{Driver: "memory"})
	require.NoError(t, err)
	assert.NoError(t, kv.Close(s))
}
