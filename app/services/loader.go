package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/shashiranjanraj/stockmirror/app/adapters"
	"github.com/shashiranjanraj/stockmirror/app/models"
	"github.com/shashiranjanraj/stockmirror/app/repositories"
	"github.com/shashiranjanraj/stockmirror/pkg/metrics"
)

// Load sources recorded in metrics and logs.
const (
	sourceRemote  = "remote"
	sourceLocal   = "local"
	sourceSeed    = "seed"
	sourceDerived = "derived"
)

// load fills a fresh snapshot. Remote-backed sessions fetch the four base
// collections concurrently; stock is resolved afterwards because it may be
// derived from the loaded products.
func (m *Mirror) load(ctx context.Context) (models.Snapshot, error) {
	var snap models.Snapshot
	d := m.opts.Defaults

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		snap.Products, err = loadCollection(gctx, m, models.Products, adapters.Products, d.Products, m.selectActive(models.Products))
		return err
	})
	g.Go(func() (err error) {
		snap.Clients, err = loadCollection(gctx, m, models.Clients, adapters.Clients, d.Clients, m.selectActive(models.Clients))
		return err
	})
	g.Go(func() (err error) {
		snap.Categories, err = loadCollection(gctx, m, models.Categories, adapters.Categories, d.Categories, m.selectActive(models.Categories))
		return err
	})
	g.Go(func() (err error) {
		snap.Sales, err = loadCollection(gctx, m, models.Sales, adapters.Sales, d.Sales, m.selectActive(models.Sales))
		return err
	})
	if err := g.Wait(); err != nil {
		return models.Snapshot{}, err
	}

	stock, err := m.loadStock(ctx, snap.Products)
	if err != nil {
		return models.Snapshot{}, err
	}
	snap.Stock = stock
	return snap, nil
}

func (m *Mirror) selectActive(c models.Collection) func(context.Context) ([]adapters.Row, error) {
	if !m.isRemote {
		return nil
	}
	return func(ctx context.Context) ([]adapters.Row, error) {
		return m.remote.SelectWhere(ctx, string(c), m.opts.ActiveField, true)
	}
}

// loadCollection loads one collection: remote first when fetch is set, then
// the local store, then the defaults.
func loadCollection[T any](
	ctx context.Context,
	m *Mirror,
	c models.Collection,
	set adapters.Set[T],
	defaults []T,
	fetch func(context.Context) ([]adapters.Row, error),
) ([]T, error) {
	log := m.log.With("collection", string(c))

	if fetch != nil {
		items, ok := fetchRemote(ctx, m, c, set, fetch)
		if ok {
			if err := repositories.Save(ctx, m.opts.Local, c, items); err != nil {
				log.Warn("write-behind backup failed", "error", err)
			}
			metrics.RecordLoad(string(c), sourceRemote)
			return items, nil
		}
	}

	items, found, err := repositories.Load[T](ctx, m.opts.Local, c)
	if err != nil {
		return nil, fmt.Errorf("services: load %s: %w", c, err)
	}
	if found {
		metrics.RecordLoad(string(c), sourceLocal)
		log.Debug("loaded from local store", "count", len(items))
		return items, nil
	}

	seeded := append(make([]T, 0, len(defaults)), defaults...)
	if err := repositories.Save(ctx, m.opts.Local, c, seeded); err != nil {
		return nil, fmt.Errorf("services: seed %s: %w", c, err)
	}
	metrics.RecordLoad(string(c), sourceSeed)
	log.Info("seeded defaults", "count", len(seeded))
	return seeded, nil
}

// fetchRemote returns ok=false when the query failed or produced no usable
// rows, which sends the caller to the local store.
func fetchRemote[T any](
	ctx context.Context,
	m *Mirror,
	c models.Collection,
	set adapters.Set[T],
	fetch func(context.Context) ([]adapters.Row, error),
) ([]T, bool) {
	log := m.log.With("collection", string(c))

	rctx, cancel := context.WithTimeout(ctx, m.opts.Timeout)
	defer cancel()

	rows, err := fetch(rctx)
	if err != nil {
		log.Warn("remote load failed, falling back to local store", "error", err)
		return nil, false
	}

	items, rejected := set.AdaptAll(rows)
	for _, r := range rejected {
		log.Warn("remote row rejected", "index", r.Index, "error", r.Err)
	}
	metrics.RecordRejected(string(c), len(rejected))

	if len(items) == 0 {
		log.Info("remote returned no rows, falling back to local store", "rejected", len(rejected))
		return nil, false
	}
	return items, true
}

// loadStock reads the joined remote stock table. Without remote stock data,
// or in local-only sessions, stock is derived from products and persisted.
func (m *Mirror) loadStock(ctx context.Context, products []models.Product) ([]models.StockEntry, error) {
	if m.isRemote {
		entries, ok := fetchRemote(ctx, m, models.Stock, adapters.Stock, m.remote.SelectStock)
		if ok {
			if err := repositories.Save(ctx, m.opts.Local, models.Stock, entries); err != nil {
				m.log.Warn("write-behind backup failed", "collection", "stock", "error", err)
			}
			metrics.RecordLoad(string(models.Stock), sourceRemote)
			return entries, nil
		}
	}

	existing, _, err := repositories.Load[models.StockEntry](ctx, m.opts.Local, models.Stock)
	if err != nil {
		m.log.Warn("stored stock unreadable, rebuilding", "error", err)
		existing = nil
	}

	stock := DeriveStock(products, existing)
	if err := repositories.Save(ctx, m.opts.Local, models.Stock, stock); err != nil {
		return nil, fmt.Errorf("services: save stock: %w", err)
	}
	metrics.RecordLoad(string(models.Stock), sourceDerived)
	return stock, nil
}

// DeriveStock builds one stock entry per product. Entry ids from existing are
// kept when they match a product by id or name; new entries take the
// product's id.
func DeriveStock(products []models.Product, existing []models.StockEntry) []models.StockEntry {
	byProduct := make(map[string]string, len(existing))
	byName := make(map[string]string, len(existing))
	for _, e := range existing {
		if e.ProductID != "" {
			byProduct[e.ProductID] = e.ID
		}
		if _, ok := byName[e.ProductName]; !ok {
			byName[e.ProductName] = e.ID
		}
	}

	used := make(map[string]bool, len(products))
	out := make([]models.StockEntry, 0, len(products))
	for _, p := range products {
		id, ok := byProduct[p.ID]
		if !ok || used[id] {
			id, ok = byName[p.Name]
		}
		if !ok || used[id] {
			id = p.ID
		}
		used[id] = true

		out = append(out, models.StockEntry{
			ID:          id,
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    p.StockQty,
			Minimum:     p.StockMin,
		})
	}
	return out
}
