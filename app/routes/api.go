// Package routes registers the HTTP API on a router.
package routes

import (
	"github.com/shashiranjanraj/stockmirror/app/controllers"
	"github.com/shashiranjanraj/stockmirror/app/services"
	"github.com/shashiranjanraj/stockmirror/pkg/metrics"
	"github.com/shashiranjanraj/stockmirror/pkg/router"
	"github.com/shashiranjanraj/stockmirror/pkg/storage"
)

// RegisterAPI mounts every endpoint of the mirror. backups may be nil.
func RegisterAPI(r *router.Router, m *services.Mirror, backups storage.Disk) {
	products := controllers.NewProductController(m)
	clients := controllers.NewClientController(m)
	categories := controllers.NewCategoryController(m)
	sales := controllers.NewSaleController(m)
	stock := controllers.NewStockController(m)
	reports := controllers.NewReportController(m)
	mirror := controllers.NewMirrorController(m, backups)

	r.Get("/health", "health", mirror.Health)
	r.Get("/metrics", "metrics", metrics.Handler())

	api := r.Group("/api")

	p := api.Group("/products")
	p.Get("/", "products.index", products.Index)
	p.Post("/", "products.store", products.Store)
	p.Get("/{id}", "products.show", products.Show)
	p.Put("/{id}", "products.update", products.Update)
	p.Delete("/{id}", "products.destroy", products.Destroy)
	p.Post("/{id}/sell", "products.sell", products.Sell)

	c := api.Group("/clients")
	c.Get("/", "clients.index", clients.Index)
	c.Post("/", "clients.store", clients.Store)
	c.Get("/{id}", "clients.show", clients.Show)
	c.Put("/{id}", "clients.update", clients.Update)
	c.Delete("/{id}", "clients.destroy", clients.Destroy)

	g := api.Group("/categories")
	g.Get("/", "categories.index", categories.Index)
	g.Post("/", "categories.store", categories.Store)
	g.Get("/{id}", "categories.show", categories.Show)
	g.Put("/{id}", "categories.update", categories.Update)
	g.Delete("/{id}", "categories.destroy", categories.Destroy)

	s := api.Group("/sales")
	s.Get("/", "sales.index", sales.Index)
	s.Post("/", "sales.store", sales.Store)
	s.Get("/{id}", "sales.show", sales.Show)
	s.Put("/{id}", "sales.update", sales.Update)
	s.Delete("/{id}", "sales.destroy", sales.Destroy)
	s.Post("/{id}/cancel", "sales.cancel", sales.Cancel)

	st := api.Group("/stock")
	st.Get("/", "stock.index", stock.Index)
	st.Get("/{id}", "stock.show", stock.Show)
	st.Post("/{id}/adjust", "stock.adjust", stock.Adjust)

	api.Get("/dashboard", "dashboard", reports.Dashboard)

	rep := api.Group("/reports")
	rep.Get("/revenue", "reports.revenue", reports.Revenue)
	rep.Get("/top-products", "reports.top_products", reports.TopProducts)
	rep.Get("/performance", "reports.performance", reports.Performance)
	rep.Get("/stock", "reports.stock", reports.Stock)
	rep.Get("/sales.csv", "reports.sales_csv", reports.SalesCSV)
	rep.Get("/sales.xlsx", "reports.sales_xlsx", reports.SalesXLSX)

	api.Get("/preferences", "preferences.show", mirror.Preferences)
	api.Put("/preferences", "preferences.update", mirror.SavePreferences)

	mir := api.Group("/mirror")
	mir.Get("/status", "mirror.status", mirror.Status)
	mir.Post("/reload", "mirror.reload", mirror.Reload)
	mir.Post("/backup", "mirror.backup", mirror.Backup)
	mir.Get("/backups", "mirror.backups", mirror.Backups)

	api.Get("/events", "events", mirror.Events)
}
