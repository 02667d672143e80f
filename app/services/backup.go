package services

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/shashiranjanraj/stockmirror/app/models"
	"github.com/shashiranjanraj/stockmirror/pkg/metrics"
	"github.com/shashiranjanraj/stockmirror/pkg/storage"
)

// BackupDir is the directory snapshots are written to on a disk.
const BackupDir = "backups"

// Backup is a snapshot file with the session metadata it was taken under.
type Backup struct {
	TakenAt string          `json:"takenAt"`
	Remote  bool            `json:"remote"`
	Data    models.Snapshot `json:"data"`
}

// Backup writes the current snapshot to disk as JSON and returns its path.
func (m *Mirror) Backup(ctx context.Context, disk storage.Disk) (string, error) {
	if !m.Ready() {
		return "", ErrNotReady
	}

	now := m.opts.Now().UTC()
	body, err := json.MarshalIndent(Backup{
		TakenAt: now.Format("2006-01-02T15:04:05Z"),
		Remote:  m.isRemote,
		Data:    m.Snapshot(),
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("services: encode backup: %w", err)
	}

	name := path.Join(BackupDir, "snapshot-"+now.Format("20060102-150405.000")+".json")
	err = disk.Put(ctx, name, body)
	metrics.RecordBackup(err)
	if err != nil {
		return "", fmt.Errorf("services: write backup: %w", err)
	}

	m.log.Info("snapshot backed up", "path", name, "bytes", len(body))
	return name, nil
}

// Backups lists the snapshot files on disk, oldest first.
func Backups(ctx context.Context, disk storage.Disk) ([]string, error) {
	files, err := disk.Files(ctx, BackupDir)
	if err != nil {
		return nil, fmt.Errorf("services: list backups: %w", err)
	}
	out := make([]string, 0, len(files))
	for _, f := range files {
		if strings.HasPrefix(path.Base(f), "snapshot-") && strings.HasSuffix(f, ".json") {
			out = append(out, f)
		}
	}
	return out, nil
}

// ReadBackup decodes the snapshot file at name.
func ReadBackup(ctx context.Context, disk storage.Disk, name string) (Backup, error) {
	raw, err := disk.Get(ctx, name)
	if err != nil {
		return Backup{}, fmt.Errorf("services: read backup: %w", err)
	}
	var b Backup
	if err := json.Unmarshal(raw, &b); err != nil {
		return Backup{}, fmt.Errorf("services: decode backup: %w", err)
	}
	return b, nil
}
