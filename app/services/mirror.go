// Package services holds the data mirror: the in-memory copy of the five
// collections, the logic that fills it from the remote row-store or the local
// store, the mutations that change it and the reports computed from it.
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/shashiranjanraj/stockmirror/app/models"
	"github.com/shashiranjanraj/stockmirror/app/repositories"
	"github.com/shashiranjanraj/stockmirror/pkg/event"
	"github.com/shashiranjanraj/stockmirror/pkg/ids"
	"github.com/shashiranjanraj/stockmirror/pkg/logger"
	"github.com/shashiranjanraj/stockmirror/pkg/metrics"
)

// ChangedTopic is the event fired after every persisted mutation and reload.
// The payload is a models.Change.
const ChangedTopic = "mirror.changed"

const defaultRemoteTimeout = 5 * time.Second

// Options configures a Mirror. Local is required; everything else has a
// usable zero value.
type Options struct {
	// Dial opens the remote row-store. Nil means local-only.
	Dial func(ctx context.Context) (repositories.RowStore, error)

	Local    *repositories.LocalStore
	Bus      *event.Bus
	IDs      *ids.Generator
	Defaults models.Snapshot

	// ActiveField is the remote soft-delete column. Defaults to "active".
	ActiveField string
	// Timeout bounds the probe and each remote load.
	Timeout time.Duration

	Now func() time.Time
	Log *slog.Logger
}

// Mirror is the application state shared by the HTTP layer, the CLI and the
// scheduler. Build it with New, then call Init once.
type Mirror struct {
	opts Options
	log  *slog.Logger

	remote   repositories.RowStore
	isRemote bool

	// wmu serializes mutations and reloads; mu guards the fields below it.
	wmu      sync.Mutex
	mu       sync.Mutex
	data     models.Snapshot
	ready    bool
	loadedAt time.Time
}

func New(opts Options) (*Mirror, error) {
	if opts.Local == nil {
		return nil, errors.New("services: a local store is required")
	}
	if opts.Bus == nil {
		opts.Bus = event.New()
	}
	if opts.IDs == nil {
		g, err := ids.New(-1)
		if err != nil {
			return nil, fmt.Errorf("services: id generator: %w", err)
		}
		opts.IDs = g
	}
	if opts.ActiveField == "" {
		opts.ActiveField = "active"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultRemoteTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Log == nil {
		opts.Log = logger.L
	}
	return &Mirror{opts: opts, log: opts.Log.With("component", "mirror")}, nil
}

// ─── Lifecycle ────────────────────────────────────────────────────────────────

// Init decides whether the session is remote-backed and loads every
// collection. Only a failing local store makes it return an error.
func (m *Mirror) Init(ctx context.Context) error {
	m.mu.Lock()
	if m.ready {
		m.mu.Unlock()
		return errors.New("services: mirror already initialised")
	}
	m.mu.Unlock()

	m.resolve(ctx)

	snap, err := m.load(ctx)
	if err != nil {
		m.closeRemote()
		return err
	}

	m.mu.Lock()
	m.data = snap
	m.ready = true
	m.loadedAt = m.opts.Now()
	m.mu.Unlock()

	metrics.LowStockProducts.Set(float64(LowStockCount(snap.Products)))
	m.log.Info("mirror ready",
		"remote", m.isRemote,
		"products", len(snap.Products),
		"clients", len(snap.Clients),
		"categories", len(snap.Categories),
		"sales", len(snap.Sales),
		"stock", len(snap.Stock),
	)
	return nil
}

// Reload loads every collection again. The remote decision made by Init
// stays fixed. Mutations wait until the new snapshot is in place.
func (m *Mirror) Reload(ctx context.Context) error {
	m.wmu.Lock()
	defer m.wmu.Unlock()

	if !m.Ready() {
		return ErrNotReady
	}

	snap, err := m.load(ctx)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.data = snap
	m.loadedAt = m.opts.Now()
	m.mu.Unlock()

	metrics.LowStockProducts.Set(float64(LowStockCount(snap.Products)))
	m.notify(models.Change{Op: models.OpReload})
	return nil
}

// Close releases the remote connection. The mirror rejects mutations
// afterwards.
func (m *Mirror) Close() error {
	m.mu.Lock()
	m.ready = false
	m.mu.Unlock()
	return m.closeRemote()
}

func (m *Mirror) closeRemote() error {
	if c, ok := m.remote.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// resolve dials and probes the remote once. Any failure leaves the session
// local-only.
func (m *Mirror) resolve(ctx context.Context) {
	defer func() { metrics.SetRemoteBacked(m.isRemote) }()

	if m.opts.Dial == nil {
		m.log.Info("no remote configured, running local-only")
		return
	}

	pctx, cancel := context.WithTimeout(ctx, m.opts.Timeout)
	defer cancel()

	store, err := m.opts.Dial(pctx)
	if err != nil {
		m.log.Warn("remote unavailable, running local-only", "error", err)
		return
	}
	if _, err := store.SelectLimit(pctx, string(models.Products), 1); err != nil {
		m.log.Warn("remote probe failed, running local-only", "error", err)
		if c, ok := store.(io.Closer); ok {
			_ = c.Close()
		}
		return
	}

	m.remote = store
	m.isRemote = true
}

// ─── Reads ────────────────────────────────────────────────────────────────────

// IsRemote reports whether reads come from the remote row-store.
func (m *Mirror) IsRemote() bool { return m.isRemote }

// Ready reports whether Init completed and Close was not called.
func (m *Mirror) Ready() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ready
}

// Bus returns the event bus change notifications are fired on.
func (m *Mirror) Bus() *event.Bus { return m.opts.Bus }

// Now is the mirror's clock.
func (m *Mirror) Now() time.Time { return m.opts.Now() }

// LoadedAt is when the collections were last loaded.
func (m *Mirror) LoadedAt() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadedAt
}

// Snapshot returns a copy of every collection.
func (m *Mirror) Snapshot() models.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.Clone()
}

func (m *Mirror) Products() []models.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.data.Products)
}

func (m *Mirror) Clients() []models.Client {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.data.Clients)
}

func (m *Mirror) Categories() []models.Category {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.data.Categories)
}

func (m *Mirror) Sales() []models.Sale {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.data.Sales)
}

func (m *Mirror) Stock() []models.StockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.data.Stock)
}

func (m *Mirror) Product(id string) (models.Product, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return find(m.data.Products, func(p models.Product) string { return p.ID }, id)
}

func (m *Mirror) Client(id string) (models.Client, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return find(m.data.Clients, func(c models.Client) string { return c.ID }, id)
}

func (m *Mirror) Category(id string) (models.Category, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return find(m.data.Categories, func(c models.Category) string { return c.ID }, id)
}

func (m *Mirror) Sale(id string) (models.Sale, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return find(m.data.Sales, func(s models.Sale) string { return s.ID }, id)
}

func (m *Mirror) StockEntry(id string) (models.StockEntry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return find(m.data.Stock, func(e models.StockEntry) string { return e.ID }, id)
}

// Preferences reads the UI flags from the local store.
func (m *Mirror) Preferences(ctx context.Context) (models.Preferences, error) {
	return m.opts.Local.Preferences(ctx)
}

// SavePreferences writes the UI flags to the local store.
func (m *Mirror) SavePreferences(ctx context.Context, p models.Preferences) error {
	return m.opts.Local.SavePreferences(ctx, p)
}

func (m *Mirror) notify(c models.Change) {
	if c.At.IsZero() {
		c.At = m.opts.Now()
	}
	m.opts.Bus.Fire(ChangedTopic, c)
}

func find[T any](items []T, key func(T) string, id string) (T, bool) {
	for _, it := range items {
		if key(it) == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}
