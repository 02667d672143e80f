package migrations

import (
	"gorm.io/gorm"

	"github.com/shashiranjanraj/stockmirror/app/models"
	"github.com/shashiranjanraj/stockmirror/pkg/migration"
)

func init() {
	migration.Register("20260101000000_create_products_table", table{&models.ProductRow{}})
	migration.Register("20260101000001_create_clients_table", table{&models.ClientRow{}})
	migration.Register("20260101000002_create_categories_table", table{&models.CategoryRow{}})
	migration.Register("20260101000003_create_sales_table", table{&models.SaleRow{}})
	migration.Register("20260101000004_create_stock_table", table{&models.StockRow{}})
}

// table creates and drops the table behind one row model.
type table struct {
	model interface{}
}

func (t table) Up(db *gorm.DB) error {
	return db.AutoMigrate(t.model)
}

func (t table) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(t.model)
}
