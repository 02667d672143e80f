// Package storage is the blob abstraction mirror snapshots are written to.
//
// Two drivers are available:
//   - "local"  local filesystem under STORAGE_LOCAL_ROOT (default)
//   - "s3"     S3-compatible object storage (AWS S3, MinIO, R2, Spaces)
//
//	disks := storage.NewManager()
//	disk, _ := disks.Disk("s3")
//	disk.Put(ctx, "backups/2026-10-17T10-00-00Z.json", data)
package storage

import (
	"context"
	"errors"
)

// ErrDiskNotConfigured is returned by Manager.Disk for unknown or unbooted disks.
var ErrDiskNotConfigured = errors.New("storage: disk is not configured")

// Disk is the driver interface.
type Disk interface {
	// Put writes content to path, creating parent directories as needed.
	Put(ctx context.Context, path string, content []byte) error

	// Get returns the full content of the object at path.
	Get(ctx context.Context, path string) ([]byte, error)

	// Exists reports whether an object exists at path.
	Exists(ctx context.Context, path string) bool

	// Delete removes an object. Missing objects are not an error.
	Delete(ctx context.Context, path string) error

	// Files lists object paths directly inside directory, sorted.
	Files(ctx context.Context, directory string) ([]string, error)
}
