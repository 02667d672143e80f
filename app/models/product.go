package models

// Product is a catalogue item with its on-hand quantity.
type Product struct {
	ID       string  `json:"id"       csv:"id"`
	Name     string  `json:"name"     csv:"name"`
	Category string  `json:"category" csv:"category"`
	Price    float64 `json:"price"    csv:"price"`
	StockQty int     `json:"stockQty" csv:"stock_qty"`
	StockMin int     `json:"stockMin" csv:"stock_min"`
}

// LowStock reports whether the product is at or under its alert threshold.
func (p Product) LowStock() bool { return p.StockQty <= p.StockMin }
