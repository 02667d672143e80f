package models

// StockEntry is the stock view of one product.
type StockEntry struct {
	ID          string `json:"id"          csv:"id"`
	ProductID   string `json:"productId"   csv:"product_id"`
	ProductName string `json:"productName" csv:"product"`
	Quantity    int    `json:"quantity"    csv:"quantity"`
	Minimum     int    `json:"minimum"     csv:"minimum"`
}

// StockStatus buckets a quantity against its minimum.
type StockStatus string

const (
	StockOut       StockStatus = "out_of_stock"
	StockLow       StockStatus = "low"
	StockAttention StockStatus = "attention"
	StockOK        StockStatus = "ok"
)

// StatusOf classifies qty against min: out at or below zero, low at or below
// min, attention at or below twice min.
func StatusOf(qty, min int) StockStatus {
	switch {
	case qty <= 0:
		return StockOut
	case qty <= min:
		return StockLow
	case qty <= 2*min:
		return StockAttention
	default:
		return StockOK
	}
}

// Severity orders statuses most critical first.
func (s StockStatus) Severity() int {
	switch s {
	case StockOut:
		return 0
	case StockLow:
		return 1
	case StockAttention:
		return 2
	default:
		return 3
	}
}
