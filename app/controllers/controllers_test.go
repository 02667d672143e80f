package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/stockmirror/app/repositories"
	"github.com/shashiranjanraj/stockmirror/app/routes"
	"github.com/shashiranjanraj/stockmirror/app/services"
	"github.com/shashiranjanraj/stockmirror/database/seeders"
	"github.com/shashiranjanraj/stockmirror/pkg/ids"
	"github.com/shashiranjanraj/stockmirror/pkg/kv"
	"github.com/shashiranjanraj/stockmirror/pkg/logger"
	"github.com/shashiranjanraj/stockmirror/pkg/router"
	"github.com/shashiranjanraj/stockmirror/pkg/storage"
)

var testNow = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

type envelope struct {
	Status  int               `json:"status"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
}

type api struct {
	t      *testing.T
	mirror *services.Mirror
	h      http.Handler
}

func newAPI(t *testing.T) *api {
	t.Helper()
	m, err := services.New(services.Options{
		Local:    repositories.NewLocalStore(kv.NewMemoryStore()),
		IDs:      ids.MustNew(2),
		Defaults: seeders.Defaults(),
		Now:      func() time.Time { return testNow },
		Log:      logger.Discard(),
	})
	require.NoError(t, err)
	require.NoError(t, m.Init(context.Background()))
	t.Cleanup(func() { _ = m.Close() })

	disk, err := storage.NewLocalDisk(t.TempDir())
	require.NoError(t, err)

	r := router.New()
	routes.RegisterAPI(r, m, disk)
	return &api{t: t, mirror: m, h: r.Handler()}
}

func (a *api) do(method, path, body string) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.h.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func decodeData(t *testing.T, env envelope, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, dest))
}

// ─── Products ─────────────────────────────────────────────────────────────────

func TestProductLifecycle(t *testing.T) {
	a := newAPI(t)

	rec, env := a.do(http.MethodPost, "/api/products",
		`{"name":"Webcam HD","category":"Periféricos","price":149.9,"stockQty":7,"stockMin":2}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	decodeData(t, env, &created)
	assert.Equal(t, "Webcam HD", created.Name)
	require.NotEmpty(t, created.ID)

	rec, _ = a.do(http.MethodGet, "/api/products/"+created.ID, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env = a.do(http.MethodPut, "/api/products/"+created.ID, `{"price":139.9}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var updated struct {
		Price float64 `json:"price"`
	}
	decodeData(t, env, &updated)
	assert.Equal(t, 139.9, updated.Price)

	rec, env = a.do(http.MethodDelete, "/api/products/"+created.ID, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Deleted", env.Message)

	rec, _ = a.do(http.MethodGet, "/api/products/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProductValidation(t *testing.T) {
	a := newAPI(t)
	before := len(a.mirror.Products())

	rec, env := a.do(http.MethodPost, "/api/products", `{"name":"","category":"X","price":1,"stockQty":1,"stockMin":1}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, env.Errors, "name")
	assert.Len(t, a.mirror.Products(), before)

	rec, _ = a.do(http.MethodPost, "/api/products", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = a.do(http.MethodPost, "/api/products", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateUnknownProduct(t *testing.T) {
	a := newAPI(t)
	rec, _ := a.do(http.MethodPut, "/api/products/missing", `{"price":10}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = a.do(http.MethodDelete, "/api/products/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestQuickSale(t *testing.T) {
	a := newAPI(t)

	rec, env := a.do(http.MethodPost, "/api/products/2/sell", `{"clientName":"Pedro Costa","quantity":2}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var sale struct {
		ProductName string  `json:"productName"`
		Amount      float64 `json:"amount"`
	}
	decodeData(t, env, &sale)
	assert.Equal(t, "Mouse Gamer RGB", sale.ProductName)
	assert.Equal(t, 179.98, sale.Amount)

	p, _ := a.mirror.Product("2")
	assert.Equal(t, 43, p.StockQty)

	rec, _ = a.do(http.MethodPost, "/api/products/404/sell", `{"clientName":"Pedro Costa","quantity":1}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// ─── Sales and stock ──────────────────────────────────────────────────────────

func TestSaleRejectedForInsufficientStock(t *testing.T) {
	a := newAPI(t)
	sales := len(a.mirror.Sales())

	rec, env := a.do(http.MethodPost, "/api/sales",
		`{"clientName":"João Silva","productName":"Mouse Gamer RGB","quantity":100,"unitPrice":89.99}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, env.Errors, "quantity")
	assert.Len(t, a.mirror.Sales(), sales)

	p, _ := a.mirror.Product("2")
	assert.Equal(t, 45, p.StockQty)
}

func TestCreateThenCancelSale(t *testing.T) {
	a := newAPI(t)

	rec, env := a.do(http.MethodPost, "/api/sales",
		`{"clientName":"João Silva","productName":"Mouse Gamer RGB","quantity":2,"unitPrice":89.99}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var sale struct {
		ID string `json:"id"`
	}
	decodeData(t, env, &sale)

	p, _ := a.mirror.Product("2")
	require.Equal(t, 43, p.StockQty)

	rec, _ = a.do(http.MethodPost, "/api/sales/"+sale.ID+"/cancel", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	p, _ = a.mirror.Product("2")
	assert.Equal(t, 45, p.StockQty)
	_, found := a.mirror.Sale(sale.ID)
	assert.False(t, found)
}

func TestAdjustStock(t *testing.T) {
	a := newAPI(t)

	rec, env := a.do(http.MethodPost, "/api/stock/2/adjust", `{"direction":"Inbound","quantity":5}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var entry struct {
		Quantity int `json:"quantity"`
		Minimum  int `json:"minimum"`
	}
	decodeData(t, env, &entry)
	assert.Equal(t, 50, entry.Quantity)
	assert.Equal(t, 10, entry.Minimum)

	rec, _ = a.do(http.MethodPost, "/api/stock/2/adjust", `{"direction":"outbound","quantity":500}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec, _ = a.do(http.MethodPost, "/api/stock/2/adjust", `{"direction":"sideways","quantity":1}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

// ─── Reports and session ──────────────────────────────────────────────────────

func TestDashboard(t *testing.T) {
	a := newAPI(t)

	rec, env := a.do(http.MethodGet, "/api/dashboard", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var d services.DashboardSummary
	decodeData(t, env, &d)
	assert.Equal(t, 4, d.Products)
	assert.Equal(t, 3, d.Clients)
	assert.Equal(t, 2, d.Sales)
	assert.Equal(t, 0, d.LowStock)
}

func TestReportQueryParameters(t *testing.T) {
	a := newAPI(t)

	_, env := a.do(http.MethodGet, "/api/reports/revenue?days=3", "")
	var days []services.DayRevenue
	decodeData(t, env, &days)
	assert.Len(t, days, 3)

	_, env = a.do(http.MethodGet, "/api/reports/top-products?n=1", "")
	var top []services.ProductSales
	decodeData(t, env, &top)
	require.Len(t, top, 1)
	assert.Equal(t, "Mouse Gamer RGB", top[0].Product)
}

func TestSalesCSVExport(t *testing.T) {
	a := newAPI(t)

	rec, _ := a.do(http.MethodGet, "/api/reports/sales.csv", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	assert.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "id,client,product,quantity,amount,date"))
}

func TestSalesXLSXExport(t *testing.T) {
	a := newAPI(t)

	rec, _ := a.do(http.MethodGet, "/api/reports/sales.xlsx", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))
}

func TestPreferencesRoundTrip(t *testing.T) {
	a := newAPI(t)

	rec, _ := a.do(http.MethodPut, "/api/preferences", `{"darkTheme":true}`)
	require.Equal(t, http.StatusOK, rec.Code)

	_, env := a.do(http.MethodGet, "/api/preferences", "")
	var prefs struct {
		DarkTheme       bool `json:"darkTheme"`
		IsAuthenticated bool `json:"isAuthenticated"`
	}
	decodeData(t, env, &prefs)
	assert.True(t, prefs.DarkTheme)
	assert.False(t, prefs.IsAuthenticated)
}

func TestMirrorStatusAndBackup(t *testing.T) {
	a := newAPI(t)

	_, env := a.do(http.MethodGet, "/api/mirror/status", "")
	var status struct {
		Ready  bool `json:"ready"`
		Remote bool `json:"remote"`
		Counts struct {
			Products int `json:"products"`
		} `json:"counts"`
	}
	decodeData(t, env, &status)
	assert.True(t, status.Ready)
	assert.False(t, status.Remote)
	assert.Equal(t, 4, status.Counts.Products)

	rec, env := a.do(http.MethodPost, "/api/mirror/backup", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	var backup struct {
		Path string `json:"path"`
	}
	decodeData(t, env, &backup)
	assert.True(t, strings.HasPrefix(backup.Path, "backups/snapshot-"))

	rec, env = a.do(http.MethodGet, "/api/mirror/backups", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []string
	decodeData(t, env, &listed)
	assert.Equal(t, []string{backup.Path}, listed)

	rec, _ = a.do(http.MethodPost, "/api/mirror/reload", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = a.do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestEventsStreamReceivesChanges(t *testing.T) {
	a := newAPI(t)
	srv := httptest.NewServer(a.h)
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	require.Eventually(t, func() bool {
		return a.mirror.Bus().Subscribers(services.ChangedTopic) == 1
	}, 2*time.Second, 10*time.Millisecond)

	_, err = a.mirror.DeleteClient(context.Background(), "3")
	require.NoError(t, err)

	buf := make([]byte, 512)
	var got strings.Builder
	for !strings.Contains(got.String(), "\n\n") {
		n, err := resp.Body.Read(buf)
		require.NoError(t, err)
		got.Write(buf[:n])
	}
	assert.Contains(t, got.String(), "event: changed")
	assert.Contains(t, got.String(), `"collection":"clients"`)
	assert.Contains(t, got.String(), `"op":"delete"`)
}
