package services

import (
	"math"
	"strings"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/shashiranjanraj/stockmirror/app/models"
	"github.com/shashiranjanraj/stockmirror/pkg/collection"
)

// Reports are pure functions of a snapshot. The Mirror methods at the bottom
// run them against the current state.

// DashboardSummary holds the dashboard counters.
type DashboardSummary struct {
	Products      int     `json:"products"`
	Clients       int     `json:"clients"`
	Categories    int     `json:"categories"`
	Sales         int     `json:"sales"`
	StockEntries  int     `json:"stockEntries"`
	Revenue       float64 `json:"revenue"`
	LowStock      int     `json:"lowStock"`
	OutOfStock    int     `json:"outOfStock"`
	StockUnits    int     `json:"stockUnits"`
	ActiveClients int     `json:"activeClients"`
}

// DayRevenue is one bucket of the revenue histogram. Date is YYYY-MM-DD.
type DayRevenue struct {
	Date    string  `json:"date"    csv:"date"`
	Sales   int     `json:"sales"   csv:"sales"`
	Revenue float64 `json:"revenue" csv:"revenue"`
}

// ProductSales ranks a product by units sold.
type ProductSales struct {
	Product  string  `json:"product"  csv:"product"`
	Quantity int     `json:"quantity" csv:"quantity"`
	Revenue  float64 `json:"revenue"  csv:"revenue"`
}

// PerformanceSummary holds the ratio metrics. All ratios are 0 when their
// divisor is 0.
type PerformanceSummary struct {
	ConversionRate float64 `json:"conversionRate"`
	AverageTicket  float64 `json:"averageTicket"`
	Productivity   float64 `json:"productivity"`
	BuyingClients  int     `json:"buyingClients"`
	TotalClients   int     `json:"totalClients"`
	SalesCount     int     `json:"salesCount"`
	BusinessDays   int     `json:"businessDays"`
}

// StockLine is a stock entry with its status tier.
type StockLine struct {
	models.StockEntry
	Status models.StockStatus `json:"status" csv:"status"`
}

// ─── Pure aggregates ──────────────────────────────────────────────────────────

// LowStockCount counts products with stockQty <= stockMin.
func LowStockCount(products []models.Product) int {
	return collection.Count(products, models.Product.LowStock)
}

// TotalRevenue sums sale amounts, rounded to cents.
func TotalRevenue(sales []models.Sale) float64 {
	if len(sales) == 0 {
		return 0
	}
	sum, err := stats.Sum(stats.Float64Data(collection.Map(sales, func(s models.Sale) float64 { return s.Amount })))
	if err != nil {
		return 0
	}
	return roundCents(sum)
}

func Dashboard(s models.Snapshot) DashboardSummary {
	return DashboardSummary{
		Products:      len(s.Products),
		Clients:       len(s.Clients),
		Categories:    len(s.Categories),
		Sales:         len(s.Sales),
		StockEntries:  len(s.Stock),
		Revenue:       TotalRevenue(s.Sales),
		LowStock:      LowStockCount(s.Products),
		OutOfStock:    collection.Count(s.Products, func(p models.Product) bool { return p.StockQty <= 0 }),
		StockUnits:    int(collection.Sum(s.Products, func(p models.Product) float64 { return float64(p.StockQty) })),
		ActiveClients: collection.Count(s.Clients, func(c models.Client) bool { return c.Status == models.StatusActive }),
	}
}

// RevenueByDay buckets sales into the days trailing window ending on now's
// day, oldest first. Days without sales are present with zero revenue.
func RevenueByDay(sales []models.Sale, now time.Time, days int) []DayRevenue {
	if days <= 0 {
		return []DayRevenue{}
	}
	byDay := collection.GroupBy(sales, func(s models.Sale) string {
		return s.Date.In(now.Location()).Format(time.DateOnly)
	})

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	out := make([]DayRevenue, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i).Format(time.DateOnly)
		bucket := byDay[day]
		out = append(out, DayRevenue{Date: day, Sales: len(bucket), Revenue: TotalRevenue(bucket)})
	}
	return out
}

// TopProducts ranks products by units sold, ties broken by name.
func TopProducts(sales []models.Sale, n int) []ProductSales {
	byProduct := collection.GroupBy(sales, func(s models.Sale) string { return s.ProductName })

	ranked := make([]ProductSales, 0, len(byProduct))
	for name, group := range byProduct {
		ranked = append(ranked, ProductSales{
			Product:  name,
			Quantity: int(collection.Sum(group, func(s models.Sale) float64 { return float64(s.Quantity) })),
			Revenue:  TotalRevenue(group),
		})
	}
	ranked = collection.SortBy(ranked, func(a, b ProductSales) bool {
		if a.Quantity != b.Quantity {
			return a.Quantity > b.Quantity
		}
		return a.Product < b.Product
	})
	return collection.Take(ranked, n)
}

// BusinessDaysElapsed counts Monday to Friday days from the first of now's
// month through now's day, inclusive.
func BusinessDaysElapsed(now time.Time) int {
	n := 0
	for d := 1; d <= now.Day(); d++ {
		switch time.Date(now.Year(), now.Month(), d, 12, 0, 0, 0, now.Location()).Weekday() {
		case time.Saturday, time.Sunday:
		default:
			n++
		}
	}
	return n
}

// Performance computes conversion rate (distinct buying clients over all
// clients), average ticket (revenue over sales) and productivity (sales over
// business days elapsed this month).
func Performance(s models.Snapshot, now time.Time) PerformanceSummary {
	buyers := collection.UniqueBy(s.Sales, func(sale models.Sale) string {
		return strings.ToLower(strings.TrimSpace(sale.ClientName))
	})

	p := PerformanceSummary{
		BuyingClients: len(buyers),
		TotalClients:  len(s.Clients),
		SalesCount:    len(s.Sales),
		BusinessDays:  BusinessDaysElapsed(now),
	}
	if p.TotalClients > 0 {
		p.ConversionRate = round4(float64(p.BuyingClients) / float64(p.TotalClients))
	}
	if p.SalesCount > 0 {
		mean, err := stats.Mean(stats.Float64Data(collection.Map(s.Sales, func(sale models.Sale) float64 { return sale.Amount })))
		if err == nil {
			p.AverageTicket = roundCents(mean)
		}
	}
	if p.BusinessDays > 0 {
		p.Productivity = round4(float64(p.SalesCount) / float64(p.BusinessDays))
	}
	return p
}

// StockReport tags each entry with its status, most critical first, then by
// product name.
func StockReport(stock []models.StockEntry) []StockLine {
	lines := collection.Map(stock, func(e models.StockEntry) StockLine {
		return StockLine{StockEntry: e, Status: models.StatusOf(e.Quantity, e.Minimum)}
	})
	return collection.SortBy(lines, func(a, b StockLine) bool {
		if a.Status.Severity() != b.Status.Severity() {
			return a.Status.Severity() < b.Status.Severity()
		}
		return a.ProductName < b.ProductName
	})
}

func roundCents(f float64) float64 { return math.Round(f*100) / 100 }
func round4(f float64) float64     { return math.Round(f*10000) / 10000 }

// ─── Mirror shortcuts ─────────────────────────────────────────────────────────

func (m *Mirror) Dashboard() DashboardSummary { return Dashboard(m.Snapshot()) }

func (m *Mirror) LowStockCount() int { return LowStockCount(m.Products()) }

// LowStockProducts lists products at or under their minimum.
func (m *Mirror) LowStockProducts() []models.Product {
	return collection.Filter(m.Products(), models.Product.LowStock)
}

func (m *Mirror) RevenueByDay(days int) []DayRevenue {
	return RevenueByDay(m.Sales(), m.opts.Now(), days)
}

func (m *Mirror) TopProducts(n int) []ProductSales { return TopProducts(m.Sales(), n) }

func (m *Mirror) Performance() PerformanceSummary { return Performance(m.Snapshot(), m.opts.Now()) }

func (m *Mirror) StockReport() []StockLine { return StockReport(m.Stock()) }
