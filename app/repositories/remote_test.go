package repositories_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/stockmirror/app/adapters"
	"github.com/shashiranjanraj/stockmirror/app/models"
	"github.com/shashiranjanraj/stockmirror/app/repositories"
	"github.com/shashiranjanraj/stockmirror/pkg/database"
)

func openRemote(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Open(context.Background(), "sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	require.NoError(t, db.AutoMigrate(&models.ProductRow{}, &models.ClientRow{}, &models.StockRow{}, &models.SaleRow{}))
	return db
}

func seedRemote(t *testing.T, db *gorm.DB) {
	t.Helper()
	require.NoError(t, db.Create(&[]models.ProductRow{
		{ID: 1, Name: "Notebook", Category: "Electronics", Price: 2999.99, StockQty: 15, StockMin: 5, Active: true},
		{ID: 2, Name: "Mouse", Category: "Peripherals", Price: 89.99, StockQty: 45, StockMin: 10, Active: true},
		{ID: 3, Name: "Retired", Category: "Peripherals", Price: 10, StockQty: 1, StockMin: 1, Active: true},
	}).Error)
	// gorm skips zero-valued fields that carry a default, so retire explicitly.
	require.NoError(t, db.Model(&models.ProductRow{}).Where("id = ?", 3).Update("active", false).Error)

	require.NoError(t, db.Create(&[]models.StockRow{
		{ID: 10, ProductID: 1, Quantity: 15, Minimum: 5, Active: true},
		{ID: 11, ProductID: 2, Quantity: 45, Minimum: 10, Active: true},
	}).Error)
	require.NoError(t, db.Create(&models.SaleRow{
		ID: 1, ClientName: "Maria", ProductName: "Mouse", Quantity: 2, Amount: 179.98,
		Date: time.Date(2024, 1, 16, 10, 0, 0, 0, time.UTC), Active: true,
	}).Error)
}

func TestSelectWhereFiltersActiveRows(t *testing.T) {
	db := openRemote(t)
	seedRemote(t, db)
	store := repositories.NewGormRowStore(db, repositories.CanonicalSchema)

	rows, err := store.SelectWhere(context.Background(), "products", "active", true)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	products, rejected := adapters.Products.AdaptAll(rows)
	assert.Empty(t, rejected)
	names := []string{products[0].Name, products[1].Name}
	assert.ElementsMatch(t, []string{"Notebook", "Mouse"}, names)
}

func TestSelectAllAndLimit(t *testing.T) {
	db := openRemote(t)
	seedRemote(t, db)
	store := repositories.NewGormRowStore(db, repositories.CanonicalSchema)

	all, err := store.SelectAll(context.Background(), "products")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	one, err := store.SelectLimit(context.Background(), "products", 1)
	require.NoError(t, err)
	assert.Len(t, one, 1)
}

func TestSelectStockJoinsProductName(t *testing.T) {
	db := openRemote(t)
	seedRemote(t, db)
	store := repositories.NewGormRowStore(db, repositories.CanonicalSchema)

	rows, err := store.SelectStock(context.Background())
	require.NoError(t, err)

	entries, rejected := adapters.Stock.AdaptAll(rows)
	require.Empty(t, rejected)
	require.Len(t, entries, 2)

	byProduct := map[string]models.StockEntry{}
	for _, e := range entries {
		byProduct[e.ProductID] = e
	}
	assert.Equal(t, "Mouse", byProduct["2"].ProductName)
	assert.Equal(t, 45, byProduct["2"].Quantity)
	assert.Equal(t, 10, byProduct["2"].Minimum)
}

func TestSelectSalesAdapts(t *testing.T) {
	db := openRemote(t)
	seedRemote(t, db)
	store := repositories.NewGormRowStore(db, repositories.CanonicalSchema)

	rows, err := store.SelectWhere(context.Background(), "sales", "active", true)
	require.NoError(t, err)

	sales, rejected := adapters.Sales.AdaptAll(rows)
	require.Empty(t, rejected)
	require.Len(t, sales, 1)
	assert.Equal(t, "Maria", sales[0].ClientName)
	assert.InDelta(t, 179.98, sales[0].Amount, 1e-9)
}

func TestRejectsUnsafeIdentifiers(t *testing.T) {
	db := openRemote(t)
	store := repositories.NewGormRowStore(db, repositories.CanonicalSchema)

	_, err := store.SelectAll(context.Background(), "products; DROP TABLE products")
	assert.Error(t, err)

	_, err = store.SelectWhere(context.Background(), "products", "active = 1 OR 1", true)
	assert.Error(t, err)
}

func TestMissingTableIsAnError(t *testing.T) {
	db := openRemote(t)
	store := repositories.NewGormRowStore(db, repositories.CanonicalSchema)

	_, err := store.SelectAll(context.Background(), "categories")
	assert.Error(t, err)
}
