package migration_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/stockmirror/pkg/database"
	"github.com/shashiranjanraj/stockmirror/pkg/migration"
)

type widget struct {
	ID   uint `gorm:"primaryKey"`
	Name string
}

type createWidgets struct{}

func (createWidgets) Up(db *gorm.DB) error   { return db.AutoMigrate(&widget{}) }
func (createWidgets) Down(db *gorm.DB) error { return db.Migrator().DropTable(&widget{}) }

func init() {
	migration.Register("20990101000000_create_widgets_table", createWidgets{})
}

func TestRunRollbackStatus(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(ctx, "sqlite", "file:migration_test?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	var out bytes.Buffer
	r := migration.New(db, &out)

	ran, err := r.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, ran)
	assert.True(t, db.Migrator().HasTable(&widget{}))
	assert.Contains(t, out.String(), "Migrated:  20990101000000_create_widgets_table")

	again, err := r.Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, again)

	status, err := r.Status(ctx)
	require.NoError(t, err)
	require.Len(t, status, 1)
	assert.True(t, status[0].Ran)
	assert.Equal(t, 1, status[0].Batch)

	back, err := r.Rollback(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, back)
	assert.False(t, db.Migrator().HasTable(&widget{}))

	status, err = r.Status(ctx)
	require.NoError(t, err)
	assert.False(t, status[0].Ran)
}
