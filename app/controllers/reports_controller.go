package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/stockmirror/app/services"
	"github.com/shashiranjanraj/stockmirror/config"
	"github.com/shashiranjanraj/stockmirror/pkg/export"
	"github.com/shashiranjanraj/stockmirror/pkg/logger"
	"github.com/shashiranjanraj/stockmirror/pkg/response"
)

// ReportController serves the dashboard counters and the reports region.
type ReportController struct {
	mirror *services.Mirror
}

func NewReportController(m *services.Mirror) *ReportController {
	return &ReportController{mirror: m}
}

func (c *ReportController) Dashboard(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, c.mirror.Dashboard())
}

// Revenue is the per-day histogram; ?days=N overrides REPORT_WINDOW_DAYS.
func (c *ReportController) Revenue(w http.ResponseWriter, r *http.Request) {
	response.Success(w, c.mirror.RevenueByDay(queryInt(r, "days", config.ReportWindowDays())))
}

// TopProducts ranks products by units sold; ?n=N overrides REPORT_TOP_N.
func (c *ReportController) TopProducts(w http.ResponseWriter, r *http.Request) {
	response.Success(w, c.mirror.TopProducts(queryInt(r, "n", config.ReportTopN())))
}

func (c *ReportController) Performance(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, c.mirror.Performance())
}

func (c *ReportController) Stock(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, c.mirror.StockReport())
}

// ─── Exports ──────────────────────────────────────────────────────────────────

func (c *ReportController) SalesCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", export.ContentTypeCSV)
	w.Header().Set("Content-Disposition", `attachment; filename="sales.csv"`)
	if err := export.CSV(w, c.mirror.Sales()); err != nil {
		logger.WithCtx(r.Context()).Error("sales csv export failed", "error", err)
	}
}

// SalesXLSX writes a workbook with the sales, stock and revenue sheets.
func (c *ReportController) SalesXLSX(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", export.ContentTypeXLSX)
	w.Header().Set("Content-Disposition", `attachment; filename="sales.xlsx"`)
	err := export.XLSX(w,
		export.Sheet{Name: "Sales", Rows: c.mirror.Sales()},
		export.Sheet{Name: "Stock", Rows: c.mirror.StockReport()},
		export.Sheet{Name: "Revenue", Rows: c.mirror.RevenueByDay(config.ReportWindowDays())},
	)
	if err != nil {
		logger.WithCtx(r.Context()).Error("sales xlsx export failed", "error", err)
	}
}
