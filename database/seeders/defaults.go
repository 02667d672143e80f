package seeders

import (
	"time"

	"github.com/shashiranjanraj/stockmirror/app/models"
)

// Defaults is the example data a fresh local store is seeded with and the
// seed command writes to the remote.
func Defaults() models.Snapshot {
	products := []models.Product{
		{ID: "1", Name: "Notebook Dell Inspiron", Category: "Eletrônicos", Price: 2999.99, StockQty: 15, StockMin: 5},
		{ID: "2", Name: "Mouse Gamer RGB", Category: "Periféricos", Price: 89.99, StockQty: 45, StockMin: 10},
		{ID: "3", Name: "Teclado Mecânico", Category: "Periféricos", Price: 199.99, StockQty: 25, StockMin: 8},
		{ID: "4", Name: "Monitor 24\" Full HD", Category: "Eletrônicos", Price: 599.99, StockQty: 12, StockMin: 3},
	}

	stock := make([]models.StockEntry, len(products))
	for i, p := range products {
		stock[i] = models.StockEntry{ID: p.ID, ProductID: p.ID, ProductName: p.Name, Quantity: p.StockQty, Minimum: p.StockMin}
	}

	return models.Snapshot{
		Products: products,
		Clients: []models.Client{
			{ID: "1", Name: "João Silva", Email: "joao@email.com", Phone: "11999999999", City: "São Paulo", Status: models.StatusActive},
			{ID: "2", Name: "Maria Santos", Email: "maria@email.com", Phone: "11888888888", City: "Rio de Janeiro", Status: models.StatusActive},
			{ID: "3", Name: "Pedro Costa", Email: "pedro@email.com", Phone: "11777777777", City: "Belo Horizonte", Status: models.StatusActive},
		},
		Categories: []models.Category{
			{ID: "1", Name: "Eletrônicos", Description: "Produtos eletrônicos", Notes: "Categoria principal", Status: models.StatusActive},
			{ID: "2", Name: "Periféricos", Description: "Acessórios para computador", Notes: "Acessórios", Status: models.StatusActive},
			{ID: "3", Name: "Software", Description: "Programas e licenças", Notes: "Licenças", Status: models.StatusActive},
		},
		Sales: []models.Sale{
			{ID: "1", ClientName: "João Silva", ProductName: "Notebook Dell Inspiron", Quantity: 1, Amount: 2999.99, Date: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
			{ID: "2", ClientName: "Maria Santos", ProductName: "Mouse Gamer RGB", Quantity: 2, Amount: 179.98, Date: time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC)},
		},
		Stock: stock,
	}
}
