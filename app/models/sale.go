package models

import "time"

// Sale records a purchase. Client and product are referenced by name.
type Sale struct {
	ID          string    `json:"id"          csv:"id"`
	ClientName  string    `json:"clientName"  csv:"client"`
	ProductName string    `json:"productName" csv:"product"`
	Quantity    int       `json:"quantity"    csv:"quantity"`
	Amount      float64   `json:"amount"      csv:"amount"`
	Date        time.Time `json:"date"        csv:"date"`
}

// UnitPrice is the per-item price the sale was made at.
func (s Sale) UnitPrice() float64 {
	if s.Quantity == 0 {
		return 0
	}
	return s.Amount / float64(s.Quantity)
}
