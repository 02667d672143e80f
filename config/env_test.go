package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/stockmirror/config"
)

func TestDefaults(t *testing.T) {
	assert.Equal(t, "8080", config.AppPort())
	assert.Equal(t, 5*time.Second, config.RemoteTimeout())
	assert.Equal(t, 7, config.ReportWindowDays())
	assert.Equal(t, int64(-1), config.IDNode())
}

func TestDriversFallBackToDefault(t *testing.T) {
	config.Set("DB_DRIVER", "oracle")
	config.Set("STORE_DRIVER", "floppy")
	t.Cleanup(func() {
		config.Set("DB_DRIVER", "postgres")
		config.Set("STORE_DRIVER", "file")
	})

	assert.Equal(t, "postgres", config.DatabaseDriver())
	assert.Equal(t, "file", config.StoreDriver())

	config.Set("STORE_DRIVER", "REDIS")
	assert.Equal(t, "redis", config.StoreDriver())
}

func TestLegacySchemaChangesActiveField(t *testing.T) {
	config.Set("REMOTE_SCHEMA", "legacy")
	t.Cleanup(func() { config.Set("REMOTE_SCHEMA", "canonical") })

	assert.Equal(t, "legacy", config.RemoteSchema())
	assert.Equal(t, "ativo", config.RemoteActiveField())
}

func TestEmptyScheduleDisablesJob(t *testing.T) {
	config.Set("BACKUP_SCHEDULE", "")
	t.Cleanup(func() { config.Set("BACKUP_SCHEDULE", "@every 30m") })

	assert.Equal(t, "", config.BackupSchedule())
}

func TestInvalidNumbersUseDefaults(t *testing.T) {
	config.Set("REPORT_TOP_N", "lots")
	config.Set("REMOTE_TIMEOUT", "-3s")
	t.Cleanup(func() {
		config.Set("REPORT_TOP_N", "")
		config.Set("REMOTE_TIMEOUT", "")
	})

	assert.Equal(t, 5, config.ReportTopN())
	assert.Equal(t, 5*time.Second, config.RemoteTimeout())
}
