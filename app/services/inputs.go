package services

import (
	"strings"

	"github.com/shashiranjanraj/stockmirror/app/models"
	"github.com/shashiranjanraj/stockmirror/pkg/validate"
)

// check runs the validate tags of v.
func check(v interface{}) *ValidationError {
	if errs := validate.Struct(v); validate.HasErrors(errs) {
		return invalid(errs)
	}
	return nil
}

// ─── Products ─────────────────────────────────────────────────────────────────

// ProductInput is a new product.
type ProductInput struct {
	Name     string  `json:"name"     validate:"required"`
	Category string  `json:"category" validate:"required"`
	Price    float64 `json:"price"    validate:"gt=0"`
	StockQty int     `json:"stockQty" validate:"gt=0"`
	StockMin int     `json:"stockMin" validate:"gt=0"`
}

func (in *ProductInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
}

// ProductPatch holds the fields an update supplies; nil fields are kept.
type ProductPatch struct {
	Name     *string  `json:"name"`
	Category *string  `json:"category"`
	Price    *float64 `json:"price"`
	StockQty *int     `json:"stockQty"`
	StockMin *int     `json:"stockMin"`
}

func (p ProductPatch) apply(rec models.Product) models.Product {
	if p.Name != nil {
		rec.Name = strings.TrimSpace(*p.Name)
	}
	if p.Category != nil {
		rec.Category = strings.TrimSpace(*p.Category)
	}
	if p.Price != nil {
		rec.Price = *p.Price
	}
	if p.StockQty != nil {
		rec.StockQty = *p.StockQty
	}
	if p.StockMin != nil {
		rec.StockMin = *p.StockMin
	}
	return rec
}

// productRecord is the looser rule set a stored product must keep: a sold
// out or free product is still valid.
type productRecord struct {
	Name     string  `json:"name"     validate:"required"`
	Category string  `json:"category" validate:"required"`
	Price    float64 `json:"price"    validate:"gte=0"`
	StockQty int     `json:"stockQty" validate:"gte=0"`
	StockMin int     `json:"stockMin" validate:"gte=0"`
}

func toProductRecord(p models.Product) productRecord {
	return productRecord{Name: p.Name, Category: p.Category, Price: p.Price, StockQty: p.StockQty, StockMin: p.StockMin}
}

// ─── Clients ──────────────────────────────────────────────────────────────────

// ClientInput is a new client. Status defaults to active.
type ClientInput struct {
	Name   string        `json:"name"   validate:"required"`
	Email  string        `json:"email"  validate:"required,email"`
	Phone  string        `json:"phone"  validate:"required"`
	City   string        `json:"city"   validate:"required"`
	Status models.Status `json:"status" validate:"nullable,in=active,inactive"`
}

func (in *ClientInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.City = strings.TrimSpace(in.City)
	if strings.TrimSpace(string(in.Status)) == "" {
		in.Status = models.StatusActive
	}
}

type ClientPatch struct {
	Name   *string        `json:"name"`
	Email  *string        `json:"email"`
	Phone  *string        `json:"phone"`
	City   *string        `json:"city"`
	Status *models.Status `json:"status"`
}

func (p ClientPatch) apply(rec models.Client) models.Client {
	if p.Name != nil {
		rec.Name = strings.TrimSpace(*p.Name)
	}
	if p.Email != nil {
		rec.Email = strings.TrimSpace(*p.Email)
	}
	if p.Phone != nil {
		rec.Phone = strings.TrimSpace(*p.Phone)
	}
	if p.City != nil {
		rec.City = strings.TrimSpace(*p.City)
	}
	if p.Status != nil {
		rec.Status = *p.Status
	}
	return rec
}

// clientRecord skips the email format rule: remote rows may carry the
// placeholder text instead of an address.
type clientRecord struct {
	Name   string        `json:"name"   validate:"required"`
	Email  string        `json:"email"  validate:"required"`
	Phone  string        `json:"phone"  validate:"required"`
	City   string        `json:"city"   validate:"required"`
	Status models.Status `json:"status" validate:"required,in=active,inactive"`
}

func toClientRecord(c models.Client) clientRecord {
	return clientRecord{Name: c.Name, Email: c.Email, Phone: c.Phone, City: c.City, Status: c.Status}
}

// ─── Categories ───────────────────────────────────────────────────────────────

// CategoryInput is a new category. Status defaults to active.
type CategoryInput struct {
	Name        string        `json:"name"        validate:"required"`
	Description string        `json:"description"`
	Notes       string        `json:"notes"`
	Status      models.Status `json:"status"      validate:"nullable,in=active,inactive"`
}

func (in *CategoryInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Notes = strings.TrimSpace(in.Notes)
	if strings.TrimSpace(string(in.Status)) == "" {
		in.Status = models.StatusActive
	}
}

type CategoryPatch struct {
	Name        *string        `json:"name"`
	Description *string        `json:"description"`
	Notes       *string        `json:"notes"`
	Status      *models.Status `json:"status"`
}

func (p CategoryPatch) apply(rec models.Category) models.Category {
	if p.Name != nil {
		rec.Name = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		rec.Description = strings.TrimSpace(*p.Description)
	}
	if p.Notes != nil {
		rec.Notes = strings.TrimSpace(*p.Notes)
	}
	if p.Status != nil {
		rec.Status = *p.Status
	}
	return rec
}

type categoryRecord struct {
	Name   string        `json:"name"   validate:"required"`
	Status models.Status `json:"status" validate:"required,in=active,inactive"`
}

func toCategoryRecord(c models.Category) categoryRecord {
	return categoryRecord{Name: c.Name, Status: c.Status}
}

// ─── Sales and stock ──────────────────────────────────────────────────────────

// SaleInput is a new sale. Client and product are referenced by name.
type SaleInput struct {
	ClientName  string  `json:"clientName"  validate:"required"`
	ProductName string  `json:"productName" validate:"required"`
	Quantity    int     `json:"quantity"    validate:"gt=0"`
	UnitPrice   float64 `json:"unitPrice"   validate:"gt=0"`
}

func (in *SaleInput) normalize() {
	in.ClientName = strings.TrimSpace(in.ClientName)
	in.ProductName = strings.TrimSpace(in.ProductName)
}

type SalePatch struct {
	ClientName  *string  `json:"clientName"`
	ProductName *string  `json:"productName"`
	Quantity    *int     `json:"quantity"`
	UnitPrice   *float64 `json:"unitPrice"`
}

// QuickSaleInput sells a product at its list price. A blank client name is
// recorded as adapters.NotInformed.
type QuickSaleInput struct {
	ClientName string `json:"clientName"`
	Quantity   int    `json:"quantity"   validate:"gt=0"`
}

// Adjustment directions.
const (
	Inbound  = "inbound"
	Outbound = "outbound"
)

// AdjustInput moves stock in or out of a product.
type AdjustInput struct {
	Direction string `json:"direction" validate:"required,in=inbound,outbound"`
	Quantity  int    `json:"quantity"  validate:"gt=0"`
}
