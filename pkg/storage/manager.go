package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/shashiranjanraj/stockmirror/config"
	"github.com/shashiranjanraj/stockmirror/pkg/logger"
)

// Manager holds the booted disks by name.
type Manager struct {
	mu    sync.RWMutex
	disks map[string]Disk
}

// NewManager boots the local disk, and the s3 disk when S3_BUCKET is set.
// An s3 boot failure is logged and leaves only the local disk available.
func NewManager(ctx context.Context) *Manager {
	m := &Manager{disks: map[string]Disk{}}

	local, err := NewLocalDisk(config.StorageLocalRoot())
	if err != nil {
		logger.Warn("storage: local disk disabled", "error", err)
	} else {
		m.disks["local"] = local
	}

	if config.StorageS3Bucket() != "" {
		d, err := NewS3Disk(ctx, S3Options{
			Bucket:   config.StorageS3Bucket(),
			Region:   config.StorageS3Region(),
			Key:      config.StorageS3Key(),
			Secret:   config.StorageS3Secret(),
			Endpoint: config.StorageS3Endpoint(),
		})
		if err != nil {
			logger.Warn("storage: s3 disk disabled", "error", err)
		} else {
			m.disks["s3"] = d
		}
	}
	return m
}

// Register adds or replaces a disk.
func (m *Manager) Register(name string, d Disk) {
	m.mu.Lock()
	if m.disks == nil {
		m.disks = map[string]Disk{}
	}
	m.disks[name] = d
	m.mu.Unlock()
}

// Disk returns the named disk or ErrDiskNotConfigured.
func (m *Manager) Disk(name string) (Disk, error) {
	m.mu.RLock()
	d, ok := m.disks[name]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrDiskNotConfigured, name)
	}
	return d, nil
}
