package seeders

import (
	"strconv"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shashiranjanraj/stockmirror/app/models"
)

func init() {
	Register("products", SeedProducts)
	Register("clients", SeedClients)
	Register("categories", SeedCategories)
	Register("sales", SeedSales)
	Register("stock", SeedStock)
}

// Each seeder upserts the default rows by primary key, so seeding twice
// leaves one copy.

func SeedProducts(db *gorm.DB) error {
	var rows []models.ProductRow
	for _, p := range Defaults().Products {
		rows = append(rows, models.ProductRow{
			ID: rowID(p.ID), Name: p.Name, Category: p.Category, Price: p.Price,
			StockQty: p.StockQty, StockMin: p.StockMin, Active: true,
		})
	}
	return upsert(db, &rows)
}

func SeedClients(db *gorm.DB) error {
	var rows []models.ClientRow
	for _, c := range Defaults().Clients {
		rows = append(rows, models.ClientRow{
			ID: rowID(c.ID), Name: c.Name, Email: c.Email, Phone: c.Phone, City: c.City,
			Status: string(c.Status), Active: true,
		})
	}
	return upsert(db, &rows)
}

func SeedCategories(db *gorm.DB) error {
	var rows []models.CategoryRow
	for _, c := range Defaults().Categories {
		rows = append(rows, models.CategoryRow{
			ID: rowID(c.ID), Name: c.Name, Description: c.Description, Notes: c.Notes,
			Status: string(c.Status), Active: true,
		})
	}
	return upsert(db, &rows)
}

func SeedSales(db *gorm.DB) error {
	var rows []models.SaleRow
	for _, s := range Defaults().Sales {
		rows = append(rows, models.SaleRow{
			ID: rowID(s.ID), ClientName: s.ClientName, ProductName: s.ProductName,
			Quantity: s.Quantity, Amount: s.Amount, Date: s.Date, Active: true,
		})
	}
	return upsert(db, &rows)
}

func SeedStock(db *gorm.DB) error {
	var rows []models.StockRow
	for _, e := range Defaults().Stock {
		rows = append(rows, models.StockRow{
			ID: rowID(e.ID), ProductID: rowID(e.ProductID), Quantity: e.Quantity, Minimum: e.Minimum, Active: true,
		})
	}
	return upsert(db, &rows)
}

func upsert(db *gorm.DB, rows interface{}) error {
	return db.Clauses(clause.OnConflict{UpdateAll: true}).Create(rows).Error
}

// rowID converts the numeric default ids to the remote primary key.
func rowID(id string) uint {
	n, _ := strconv.ParseUint(id, 10, 64)
	return uint(n)
}
