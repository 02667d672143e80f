package storage_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/stockmirror/pkg/storage"
)

func TestLocalDiskRoundTrip(t *testing.T) {
	ctx := context.Background()
	d, err := storage.NewLocalDisk(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, d.Put(ctx, "backups/b.json", []byte(`{"b":1}`)))
	require.NoError(t, d.Put(ctx, "backups/a.json", []byte(`{"a":1}`)))

	assert.True(t, d.Exists(ctx, "backups/a.json"))
	data, err := d.Get(ctx, "backups/a.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(data))

	files, err := d.Files(ctx, "backups")
	require.NoError(t, err)
	assert.Equal(t, []string{"backups/a.json", "backups/b.json"}, files)

	require.NoError(t, d.Delete(ctx, "backups/a.json"))
	require.NoError(t, d.Delete(ctx, "backups/a.json"))
	assert.False(t, d.Exists(ctx, "backups/a.json"))
}

func TestLocalDiskMissingDirectoryIsEmpty(t *testing.T) {
	d, err := storage.NewLocalDisk(t.TempDir())
	require.NoError(t, err)

	files, err := d.Files(context.Background(), "nothing-here")
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestLocalDiskStaysInsideRoot(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	d, err := storage.NewLocalDisk(root)
	require.NoError(t, err)

	require.NoError(t, d.Put(ctx, "../../outside.json", []byte("x")))
	assert.True(t, d.Exists(ctx, "outside.json"), "dot segments are clamped to the root")
}

func TestManagerUnknownDisk(t *testing.T) {
	m := &storage.Manager{}
	_, err := m.Disk("ftp")
	assert.True(t, errors.Is(err, storage.ErrDiskNotConfigured))

	local, err := storage.NewLocalDisk(t.TempDir())
	require.NoError(t, err)
	m.Register("local", local)

	got, err := m.Disk("local")
	require.NoError(t, err)
	assert.Same(t, local, got)
}
