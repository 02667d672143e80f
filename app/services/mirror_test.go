package services_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/stockmirror/app/adapters"
	"github.com/shashiranjanraj/stockmirror/app/models"
	"github.com/shashiranjanraj/stockmirror/app/repositories"
	"github.com/shashiranjanraj/stockmirror/app/services"
	"github.com/shashiranjanraj/stockmirror/database/seeders"
	"github.com/shashiranjanraj/stockmirror/pkg/event"
	"github.com/shashiranjanraj/stockmirror/pkg/ids"
	"github.com/shashiranjanraj/stockmirror/pkg/kv"
	"github.com/shashiranjanraj/stockmirror/pkg/logger"
)

// Wednesday; ten business days into the month.
var testNow = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

// ─── Fakes ────────────────────────────────────────────────────────────────────

type fakeRemote struct {
	tables   map[string][]adapters.Row
	stock    []adapters.Row
	failing  map[string]error
	probeErr error
	closed   bool
}

func (f *fakeRemote) SelectAll(_ context.Context, table string) ([]adapters.Row, error) {
	if err := f.failing[table]; err != nil {
		return nil, err
	}
	return f.tables[table], nil
}

func (f *fakeRemote) SelectWhere(ctx context.Context, table, field string, value interface{}) ([]adapters.Row, error) {
	rows, err := f.SelectAll(ctx, table)
	if err != nil {
		return nil, err
	}
	var out []adapters.Row
	for _, r := range rows {
		if v, ok := r[field]; !ok || v == value {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRemote) SelectLimit(ctx context.Context, table string, limit int) ([]adapters.Row, error) {
	if f.probeErr != nil {
		return nil, f.probeErr
	}
	rows, err := f.SelectAll(ctx, table)
	if err != nil || len(rows) <= limit {
		return rows, err
	}
	return rows[:limit], nil
}

func (f *fakeRemote) SelectStock(context.Context) ([]adapters.Row, error) {
	if err := f.failing["stock"]; err != nil {
		return nil, err
	}
	return f.stock, nil
}

func (f *fakeRemote) Close() error {
	f.closed = true
	return nil
}

// gatedStore parks the first Get of key after arm until release is closed.
type gatedStore struct {
	kv.Store
	key     string
	armed   atomic.Bool
	once    sync.Once
	reached chan struct{}
	release chan struct{}
}

func newGatedStore(key string) *gatedStore {
	return &gatedStore{
		Store:   kv.NewMemoryStore(),
		key:     key,
		reached: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (g *gatedStore) Get(ctx context.Context, key string) (string, error) {
	if key == g.key && g.armed.Load() {
		g.once.Do(func() {
			close(g.reached)
			<-g.release
		})
	}
	return g.Store.Get(ctx, key)
}

// failingStore rejects writes to failKey once it is set.
type failingStore struct {
	kv.Store
	failKey string
}

func (f *failingStore) Set(ctx context.Context, key, value string) error {
	if f.failKey != "" && key == f.failKey {
		return errors.New("disk full")
	}
	return f.Store.Set(ctx, key, value)
}

func newLocalMirror(t *testing.T, store kv.Store) *services.Mirror {
	t.Helper()
	m, err := services.New(services.Options{
		Local:    repositories.NewLocalStore(store),
		IDs:      ids.MustNew(1),
		Defaults: seeders.Defaults(),
		Now:      func() time.Time { return testNow },
		Log:      logger.Discard(),
	})
	require.NoError(t, err)
	require.NoError(t, m.Init(context.Background()))
	t.Cleanup(func() { _ = m.Close() })
	return m
}

type harness struct {
	mirror *services.Mirror
	store  *kv.MemoryStore
	bus    *event.Bus
}

func newHarness(t *testing.T, store *kv.MemoryStore, dial func(context.Context) (repositories.RowStore, error)) harness {
	t.Helper()
	if store == nil {
		store = kv.NewMemoryStore()
	}
	bus := event.New()
	m, err := services.New(services.Options{
		Dial:     dial,
		Local:    repositories.NewLocalStore(store),
		Bus:      bus,
		IDs:      ids.MustNew(1),
		Defaults: seeders.Defaults(),
		Now:      func() time.Time { return testNow },
		Log:      logger.Discard(),
	})
	require.NoError(t, err)
	require.NoError(t, m.Init(context.Background()))
	t.Cleanup(func() { _ = m.Close() })
	return harness{mirror: m, store: store, bus: bus}
}

func dialing(remote *fakeRemote) func(context.Context) (repositories.RowStore, error) {
	return func(context.Context) (repositories.RowStore, error) { return remote, nil }
}

func productNamed(t *testing.T, m *services.Mirror, name string) models.Product {
	t.Helper()
	for _, p := range m.Products() {
		if p.Name == name {
			return p
		}
	}
	t.Fatalf("product %q not found", name)
	return models.Product{}
}

func stockFor(t *testing.T, m *services.Mirror, productID string) models.StockEntry {
	t.Helper()
	for _, e := range m.Stock() {
		if e.ProductID == productID {
			return e
		}
	}
	t.Fatalf("no stock entry for product %s", productID)
	return models.StockEntry{}
}

func assertStockInLockstep(t *testing.T, m *services.Mirror) {
	t.Helper()
	products := m.Products()
	require.Len(t, m.Stock(), len(products))
	for _, p := range products {
		e := stockFor(t, m, p.ID)
		assert.Equal(t, p.StockQty, e.Quantity, "stock quantity for %s", p.Name)
		assert.Equal(t, p.StockMin, e.Minimum, "stock minimum for %s", p.Name)
		assert.Equal(t, p.Name, e.ProductName)
	}
}

// ─── Resolver and loader ──────────────────────────────────────────────────────

func TestProbeFailureFallsBackToDefaults(t *testing.T) {
	remote := &fakeRemote{probeErr: errors.New("connection refused")}
	h := newHarness(t, nil, dialing(remote))

	assert.False(t, h.mirror.IsRemote())
	assert.True(t, remote.closed)

	d := seeders.Defaults()
	assert.Len(t, h.mirror.Products(), len(d.Products))
	assert.Len(t, h.mirror.Clients(), len(d.Clients))
	assert.Len(t, h.mirror.Categories(), len(d.Categories))
	assert.Len(t, h.mirror.Sales(), len(d.Sales))
	assertStockInLockstep(t, h.mirror)

	assert.ElementsMatch(t, []string{"products", "clients", "categories", "sales", "stock"}, h.store.Keys())
}

func TestDialFailureFallsBackToStoredData(t *testing.T) {
	store := kv.NewMemoryStore()
	local := repositories.NewLocalStore(store)
	stored := []models.Product{{ID: "p1", Name: "Webcam", Category: "Video", Price: 150, StockQty: 7, StockMin: 2}}
	require.NoError(t, repositories.Save(context.Background(), local, models.Products, stored))

	h := newHarness(t, store, func(context.Context) (repositories.RowStore, error) {
		return nil, errors.New("no route to host")
	})

	assert.False(t, h.mirror.IsRemote())
	assert.Equal(t, stored, h.mirror.Products())
	assert.Len(t, h.mirror.Clients(), len(seeders.Defaults().Clients))
	assertStockInLockstep(t, h.mirror)
}

func TestRemoteBackedLoad(t *testing.T) {
	remote := &fakeRemote{
		tables: map[string][]adapters.Row{
			"products": {
				{"id": int64(10), "name": "Headset", "category": "Audio", "price": 249.9, "stock_qty": int64(8), "stock_min": int64(2), "active": true},
				{"id": int64(11), "nome": "Caixa de Som", "preco": "99.5", "estoque": "4", "estoque_minimo": "5", "active": true},
				{"id": int64(12), "sku": "unknown-shape", "active": true},
				{"id": int64(13), "name": "Retired", "price": 1.0, "active": false},
			},
			"sales": {
				{"id": int64(1), "client_name": "Ana", "product_name": "Headset", "quantity": int64(1), "amount": 249.9, "date": "2026-10-13", "active": true},
			},
		},
		stock: []adapters.Row{
			{"id": int64(100), "product_id": int64(10), "product_name": "Headset", "quantity": int64(8), "minimum": int64(2)},
		},
	}
	h := newHarness(t, nil, dialing(remote))
	require.True(t, h.mirror.IsRemote())

	products := h.mirror.Products()
	require.Len(t, products, 2)
	assert.Equal(t, "Headset", products[0].Name)
	assert.Equal(t, "Caixa de Som", products[1].Name)
	assert.Equal(t, adapters.NotInformed, products[1].Category)

	stock := h.mirror.Stock()
	require.Len(t, stock, 1)
	assert.Equal(t, "100", stock[0].ID)

	// Clients and categories are empty remotely and come from the seed.
	assert.Len(t, h.mirror.Clients(), len(seeders.Defaults().Clients))

	// Write-behind backup of the remote products.
	saved, found, err := repositories.Load[models.Product](context.Background(), repositories.NewLocalStore(h.store), models.Products)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, products, saved)
}

func TestRemoteStockMissingIsDerived(t *testing.T) {
	remote := &fakeRemote{
		tables: map[string][]adapters.Row{
			"products": {{"id": "7", "name": "Cable", "category": "Misc", "price": 9.9, "stock_qty": 30, "stock_min": 5}},
		},
		failing: map[string]error{"stock": errors.New("relation \"stock\" does not exist")},
	}
	h := newHarness(t, nil, dialing(remote))

	require.True(t, h.mirror.IsRemote())
	assertStockInLockstep(t, h.mirror)
}

func TestRemoteCollectionErrorFallsBackPerCollection(t *testing.T) {
	store := kv.NewMemoryStore()
	local := repositories.NewLocalStore(store)
	backup := []models.Client{{ID: "c9", Name: "Cached", Email: "c@x.io", Phone: "1", City: "Recife", Status: models.StatusActive}}
	require.NoError(t, repositories.Save(context.Background(), local, models.Clients, backup))

	remote := &fakeRemote{
		tables: map[string][]adapters.Row{
			"products": {{"id": 1, "name": "Cable", "price": 9.9, "stock_qty": 30, "stock_min": 5}},
		},
		failing: map[string]error{"clients": errors.New("timeout")},
	}
	h := newHarness(t, store, dialing(remote))

	assert.True(t, h.mirror.IsRemote())
	assert.Equal(t, backup, h.mirror.Clients())
	assert.Equal(t, "Cable", h.mirror.Products()[0].Name)
}

func TestPersistReloadRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	h := newHarness(t, store, nil)

	_, err := h.mirror.CreateProduct(ctx, services.ProductInput{Name: "Webcam", Category: "Video", Price: 150, StockQty: 7, StockMin: 2})
	require.NoError(t, err)
	_, err = h.mirror.CreateClient(ctx, services.ClientInput{Name: "Ana", Email: "ana@x.io", Phone: "1", City: "Recife"})
	require.NoError(t, err)
	before := h.mirror.Snapshot()

	again := newHarness(t, store, nil)
	after := again.mirror.Snapshot()
	assert.Equal(t, before.Products, after.Products)
	assert.Equal(t, before.Clients, after.Clients)
	assert.Equal(t, before.Categories, after.Categories)
	assert.Equal(t, before.Stock, after.Stock)
	require.Len(t, after.Sales, len(before.Sales))
	for i := range before.Sales {
		assert.True(t, before.Sales[i].Date.Equal(after.Sales[i].Date))
	}
}

func TestReloadWaitsForConcurrentMutation(t *testing.T) {
	ctx := context.Background()
	store := newGatedStore("stock")
	m := newLocalMirror(t, store)
	before := len(m.Clients())

	store.armed.Store(true)
	reloaded := make(chan error, 1)
	go func() { reloaded <- m.Reload(ctx) }()
	<-store.reached

	created := make(chan error, 1)
	go func() {
		_, err := m.CreateClient(ctx, services.ClientInput{Name: "Ana", Email: "ana@x.io", Phone: "1", City: "Recife"})
		created <- err
	}()

	select {
	case err := <-created:
		t.Fatalf("mutation committed during reload: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	close(store.release)
	require.NoError(t, <-reloaded)
	require.NoError(t, <-created)

	stored, found, err := repositories.Load[models.Client](ctx, repositories.NewLocalStore(store), models.Clients)
	require.NoError(t, err)
	require.True(t, found)
	assert.Len(t, stored, before+1)
	assert.Equal(t, stored, m.Clients())
}

func TestFailedPersistRestoresWrittenKeys(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{Store: kv.NewMemoryStore()}
	m := newLocalMirror(t, store)
	local := repositories.NewLocalStore(store)
	before := m.Snapshot()
	mouse := productNamed(t, m, "Mouse Gamer RGB")

	store.failKey = "sales"
	_, err := m.CreateSale(ctx, services.SaleInput{ClientName: "Ana", ProductName: mouse.Name, Quantity: 1, UnitPrice: mouse.Price})
	require.Error(t, err)

	assert.Equal(t, before, m.Snapshot())
	products, _, err := repositories.Load[models.Product](ctx, local, models.Products)
	require.NoError(t, err)
	assert.Equal(t, before.Products, products)
	stock, _, err := repositories.Load[models.StockEntry](ctx, local, models.Stock)
	require.NoError(t, err)
	assert.Equal(t, before.Stock, stock)
}

func TestReloadKeepsSourceDecision(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil, nil)

	stream, cancel := h.bus.Stream(services.ChangedTopic, 4)
	defer cancel()

	require.NoError(t, h.mirror.Reload(ctx))
	assert.False(t, h.mirror.IsRemote())

	ev := (<-stream).(models.Change)
	assert.Equal(t, models.OpReload, ev.Op)
}

func TestInitTwiceFails(t *testing.T) {
	h := newHarness(t, nil, nil)
	assert.Error(t, h.mirror.Init(context.Background()))
}

func TestMutationsNeedInit(t *testing.T) {
	m, err := services.New(services.Options{Local: repositories.NewLocalStore(kv.NewMemoryStore()), Log: logger.Discard()})
	require.NoError(t, err)

	_, err = m.CreateCategory(context.Background(), services.CategoryInput{Name: "Audio"})
	assert.ErrorIs(t, err, services.ErrNotReady)
}

func TestNewRequiresLocalStore(t *testing.T) {
	_, err := services.New(services.Options{})
	assert.Error(t, err)
}
