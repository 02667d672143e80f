package services

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/shashiranjanraj/stockmirror/app/models"
	"github.com/shashiranjanraj/stockmirror/app/repositories"
	"github.com/shashiranjanraj/stockmirror/pkg/metrics"
)

// change is what a mutation body reports back to the pipeline.
type change struct {
	outcome Outcome
	id      string
	touched []models.Collection
}

// mutate runs one mutation: body edits a private copy of the mirror, then
// stock is recomputed if products changed, the touched collections are
// persisted, the copy replaces the mirror and a change event is fired.
// A body error or a NotFound outcome leaves everything untouched.
func (m *Mirror) mutate(ctx context.Context, c models.Collection, op models.Op, body func(next *models.Snapshot) (change, error)) (Outcome, error) {
	ch, low, err := m.commit(ctx, body)
	var verr *ValidationError
	switch {
	case errors.Is(err, ErrNotReady):
		return NotFound, err
	case errors.As(err, &verr):
		metrics.RecordMutation(string(c), string(op), "rejected")
		return NotFound, err
	case err != nil:
		metrics.RecordMutation(string(c), string(op), "failed")
		return NotFound, err
	}
	if ch.outcome == NotFound {
		metrics.RecordMutation(string(c), string(op), NotFound.String())
		return NotFound, nil
	}

	metrics.LowStockProducts.Set(float64(low))
	metrics.RecordMutation(string(c), string(op), ch.outcome.String())
	m.notify(models.Change{Collection: c, Op: op, ID: ch.id})
	return ch.outcome, nil
}

// commit applies body and persists the result while holding the write lock,
// so a concurrent Reload cannot swap in a snapshot that misses it.
func (m *Mirror) commit(ctx context.Context, body func(next *models.Snapshot) (change, error)) (change, int, error) {
	m.wmu.Lock()
	defer m.wmu.Unlock()

	m.mu.Lock()
	if !m.ready {
		m.mu.Unlock()
		return change{}, 0, ErrNotReady
	}
	prev := m.data
	next := prev.Clone()
	m.mu.Unlock()

	ch, err := body(&next)
	if err != nil || ch.outcome == NotFound {
		return ch, 0, err
	}

	if slices.Contains(ch.touched, models.Products) {
		next.Stock = DeriveStock(next.Products, next.Stock)
		ch.touched = append(ch.touched, models.Stock)
	}
	if err := m.persist(ctx, prev, next, ch.touched); err != nil {
		return change{}, 0, err
	}

	m.mu.Lock()
	m.data = next
	m.mu.Unlock()
	return ch, LowStockCount(next.Products), nil
}

// persist writes the touched collections one key at a time. When a write
// fails, the keys already written are put back from prev so the local store
// matches the mirror again.
func (m *Mirror) persist(ctx context.Context, prev, next models.Snapshot, touched []models.Collection) error {
	var written []models.Collection
	for _, c := range slices.Compact(slices.Sorted(slices.Values(touched))) {
		if err := m.save(ctx, next, c); err != nil {
			for _, w := range written {
				if rerr := m.save(context.WithoutCancel(ctx), prev, w); rerr != nil {
					m.log.Error("local store left inconsistent", "collection", string(w), "error", rerr)
				}
			}
			return fmt.Errorf("services: persist: %w", err)
		}
		written = append(written, c)
	}
	return nil
}

func (m *Mirror) save(ctx context.Context, s models.Snapshot, c models.Collection) error {
	switch c {
	case models.Products:
		return repositories.Save(ctx, m.opts.Local, c, s.Products)
	case models.Clients:
		return repositories.Save(ctx, m.opts.Local, c, s.Clients)
	case models.Categories:
		return repositories.Save(ctx, m.opts.Local, c, s.Categories)
	case models.Sales:
		return repositories.Save(ctx, m.opts.Local, c, s.Sales)
	case models.Stock:
		return repositories.Save(ctx, m.opts.Local, c, s.Stock)
	}
	return nil
}

func indexByID[T any](items []T, key func(T) string, id string) int {
	return slices.IndexFunc(items, func(it T) bool { return key(it) == id })
}

func productID(p models.Product) string   { return p.ID }
func clientID(c models.Client) string     { return c.ID }
func categoryID(c models.Category) string { return c.ID }
func saleID(s models.Sale) string         { return s.ID }
func stockID(e models.StockEntry) string  { return e.ID }

// ─── Products ─────────────────────────────────────────────────────────────────

func (m *Mirror) CreateProduct(ctx context.Context, in ProductInput) (Result[models.Product], error) {
	in.normalize()
	if errs := check(in); errs != nil {
		return Result[models.Product]{}, errs
	}

	rec := models.Product{
		ID:       m.opts.IDs.Next(),
		Name:     in.Name,
		Category: in.Category,
		Price:    in.Price,
		StockQty: in.StockQty,
		StockMin: in.StockMin,
	}
	out, err := m.mutate(ctx, models.Products, models.OpCreate, func(s *models.Snapshot) (change, error) {
		s.Products = append(s.Products, rec)
		return change{Created, rec.ID, []models.Collection{models.Products}}, nil
	})
	return result(out, rec), err
}

// UpdateProduct merges patch over the product. Stock follows the new
// quantity and minimum.
func (m *Mirror) UpdateProduct(ctx context.Context, id string, patch ProductPatch) (Result[models.Product], error) {
	var rec models.Product
	out, err := m.mutate(ctx, models.Products, models.OpUpdate, func(s *models.Snapshot) (change, error) {
		i := indexByID(s.Products, productID, id)
		if i < 0 {
			return change{}, nil
		}
		rec = patch.apply(s.Products[i])
		if errs := check(toProductRecord(rec)); errs != nil {
			return change{}, errs
		}
		s.Products[i] = rec
		return change{Updated, id, []models.Collection{models.Products}}, nil
	})
	return result(out, rec), err
}

func (m *Mirror) DeleteProduct(ctx context.Context, id string) (Result[models.Product], error) {
	var rec models.Product
	out, err := m.mutate(ctx, models.Products, models.OpDelete, func(s *models.Snapshot) (change, error) {
		i := indexByID(s.Products, productID, id)
		if i < 0 {
			return change{}, nil
		}
		rec = s.Products[i]
		s.Products = slices.Delete(s.Products, i, i+1)
		return change{Deleted, id, []models.Collection{models.Products}}, nil
	})
	return result(out, rec), err
}

// ─── Clients ──────────────────────────────────────────────────────────────────

func (m *Mirror) CreateClient(ctx context.Context, in ClientInput) (Result[models.Client], error) {
	in.normalize()
	if errs := check(in); errs != nil {
		return Result[models.Client]{}, errs
	}

	rec := models.Client{
		ID:     m.opts.IDs.Next(),
		Name:   in.Name,
		Email:  in.Email,
		Phone:  in.Phone,
		City:   in.City,
		Status: in.Status,
	}
	out, err := m.mutate(ctx, models.Clients, models.OpCreate, func(s *models.Snapshot) (change, error) {
		s.Clients = append(s.Clients, rec)
		return change{Created, rec.ID, []models.Collection{models.Clients}}, nil
	})
	return result(out, rec), err
}

func (m *Mirror) UpdateClient(ctx context.Context, id string, patch ClientPatch) (Result[models.Client], error) {
	var rec models.Client
	out, err := m.mutate(ctx, models.Clients, models.OpUpdate, func(s *models.Snapshot) (change, error) {
		i := indexByID(s.Clients, clientID, id)
		if i < 0 {
			return change{}, nil
		}
		rec = patch.apply(s.Clients[i])
		if errs := check(toClientRecord(rec)); errs != nil {
			return change{}, errs
		}
		s.Clients[i] = rec
		return change{Updated, id, []models.Collection{models.Clients}}, nil
	})
	return result(out, rec), err
}

func (m *Mirror) DeleteClient(ctx context.Context, id string) (Result[models.Client], error) {
	var rec models.Client
	out, err := m.mutate(ctx, models.Clients, models.OpDelete, func(s *models.Snapshot) (change, error) {
		i := indexByID(s.Clients, clientID, id)
		if i < 0 {
			return change{}, nil
		}
		rec = s.Clients[i]
		s.Clients = slices.Delete(s.Clients, i, i+1)
		return change{Deleted, id, []models.Collection{models.Clients}}, nil
	})
	return result(out, rec), err
}

// ─── Categories ───────────────────────────────────────────────────────────────

func (m *Mirror) CreateCategory(ctx context.Context, in CategoryInput) (Result[models.Category], error) {
	in.normalize()
	if errs := check(in); errs != nil {
		return Result[models.Category]{}, errs
	}

	rec := models.Category{
		ID:          m.opts.IDs.Next(),
		Name:        in.Name,
		Description: in.Description,
		Notes:       in.Notes,
		Status:      in.Status,
	}
	out, err := m.mutate(ctx, models.Categories, models.OpCreate, func(s *models.Snapshot) (change, error) {
		s.Categories = append(s.Categories, rec)
		return change{Created, rec.ID, []models.Collection{models.Categories}}, nil
	})
	return result(out, rec), err
}

func (m *Mirror) UpdateCategory(ctx context.Context, id string, patch CategoryPatch) (Result[models.Category], error) {
	var rec models.Category
	out, err := m.mutate(ctx, models.Categories, models.OpUpdate, func(s *models.Snapshot) (change, error) {
		i := indexByID(s.Categories, categoryID, id)
		if i < 0 {
			return change{}, nil
		}
		rec = patch.apply(s.Categories[i])
		if errs := check(toCategoryRecord(rec)); errs != nil {
			return change{}, errs
		}
		s.Categories[i] = rec
		return change{Updated, id, []models.Collection{models.Categories}}, nil
	})
	return result(out, rec), err
}

func (m *Mirror) DeleteCategory(ctx context.Context, id string) (Result[models.Category], error) {
	var rec models.Category
	out, err := m.mutate(ctx, models.Categories, models.OpDelete, func(s *models.Snapshot) (change, error) {
		i := indexByID(s.Categories, categoryID, id)
		if i < 0 {
			return change{}, nil
		}
		rec = s.Categories[i]
		s.Categories = slices.Delete(s.Categories, i, i+1)
		return change{Deleted, id, []models.Collection{models.Categories}}, nil
	})
	return result(out, rec), err
}

// result drops the record for NotFound and failed mutations.
func result[T any](out Outcome, rec T) Result[T] {
	if out == NotFound {
		var zero T
		return Result[T]{Outcome: NotFound, Record: zero}
	}
	return Result[T]{Outcome: out, Record: rec}
}
