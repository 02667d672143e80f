package services

import (
	"context"
	"math"
	"slices"
	"strings"

	"github.com/shashiranjanraj/stockmirror/app/adapters"
	"github.com/shashiranjanraj/stockmirror/app/models"
)

// productByName returns the index of the first product called name. Sales
// reference products by name, so duplicates resolve to the first match.
func productByName(products []models.Product, name string) int {
	name = strings.TrimSpace(name)
	return slices.IndexFunc(products, func(p models.Product) bool { return p.Name == name })
}

func amountOf(qty int, unitPrice float64) float64 {
	return math.Round(float64(qty)*unitPrice*100) / 100
}

// take removes qty from the named product after checking availability.
func take(s *models.Snapshot, productName string, qty int) error {
	i := productByName(s.Products, productName)
	if i < 0 {
		return unknownProduct(productName)
	}
	p := &s.Products[i]
	if p.StockQty < qty {
		return insufficientStock(p.Name, p.StockQty, qty)
	}
	p.StockQty -= qty
	return nil
}

// restore returns qty to the named product. It reports false when the
// product no longer exists.
func restore(s *models.Snapshot, productName string, qty int) bool {
	i := productByName(s.Products, productName)
	if i < 0 {
		return false
	}
	s.Products[i].StockQty += qty
	return true
}

// ─── Sales ────────────────────────────────────────────────────────────────────

// CreateSale records a sale and takes its quantity out of the product's
// stock. The product must exist and hold at least the quantity sold.
func (m *Mirror) CreateSale(ctx context.Context, in SaleInput) (Result[models.Sale], error) {
	in.normalize()
	if errs := check(in); errs != nil {
		return Result[models.Sale]{}, errs
	}

	rec := models.Sale{
		ID:          m.opts.IDs.Next(),
		ClientName:  in.ClientName,
		ProductName: in.ProductName,
		Quantity:    in.Quantity,
		Amount:      amountOf(in.Quantity, in.UnitPrice),
		Date:        m.opts.Now(),
	}
	out, err := m.mutate(ctx, models.Sales, models.OpCreate, func(s *models.Snapshot) (change, error) {
		if err := take(s, rec.ProductName, rec.Quantity); err != nil {
			return change{}, err
		}
		s.Sales = append(s.Sales, rec)
		return change{Created, rec.ID, []models.Collection{models.Sales, models.Products}}, nil
	})
	return result(out, rec), err
}

// SellProduct is the quick-sale action: it sells the product with id at its
// current price. A missing product yields NotFound.
func (m *Mirror) SellProduct(ctx context.Context, id string, in QuickSaleInput) (Result[models.Sale], error) {
	in.ClientName = strings.TrimSpace(in.ClientName)
	if in.ClientName == "" {
		in.ClientName = adapters.NotInformed
	}
	if errs := check(in); errs != nil {
		return Result[models.Sale]{}, errs
	}

	var rec models.Sale
	out, err := m.mutate(ctx, models.Sales, models.OpCreate, func(s *models.Snapshot) (change, error) {
		i := indexByID(s.Products, productID, id)
		if i < 0 {
			return change{}, nil
		}
		p := &s.Products[i]
		if p.StockQty < in.Quantity {
			return change{}, insufficientStock(p.Name, p.StockQty, in.Quantity)
		}
		p.StockQty -= in.Quantity

		rec = models.Sale{
			ID:          m.opts.IDs.Next(),
			ClientName:  in.ClientName,
			ProductName: p.Name,
			Quantity:    in.Quantity,
			Amount:      amountOf(in.Quantity, p.Price),
			Date:        m.opts.Now(),
		}
		s.Sales = append(s.Sales, rec)
		return change{Created, rec.ID, []models.Collection{models.Sales, models.Products}}, nil
	})
	return result(out, rec), err
}

// UpdateSale merges patch over the sale and moves stock accordingly: the old
// quantity goes back to the old product, the new quantity is taken from the
// new one. The unit price defaults to the one the sale was made at.
func (m *Mirror) UpdateSale(ctx context.Context, id string, patch SalePatch) (Result[models.Sale], error) {
	var rec models.Sale
	out, err := m.mutate(ctx, models.Sales, models.OpUpdate, func(s *models.Snapshot) (change, error) {
		i := indexByID(s.Sales, saleID, id)
		if i < 0 {
			return change{}, nil
		}
		old := s.Sales[i]

		in := SaleInput{
			ClientName:  old.ClientName,
			ProductName: old.ProductName,
			Quantity:    old.Quantity,
			UnitPrice:   old.UnitPrice(),
		}
		if patch.ClientName != nil {
			in.ClientName = *patch.ClientName
		}
		if patch.ProductName != nil {
			in.ProductName = *patch.ProductName
		}
		if patch.Quantity != nil {
			in.Quantity = *patch.Quantity
		}
		if patch.UnitPrice != nil {
			in.UnitPrice = *patch.UnitPrice
		}
		in.normalize()
		if errs := check(in); errs != nil {
			return change{}, errs
		}

		restore(s, old.ProductName, old.Quantity)
		if err := take(s, in.ProductName, in.Quantity); err != nil {
			return change{}, err
		}

		rec = old
		rec.ClientName = in.ClientName
		rec.ProductName = in.ProductName
		rec.Quantity = in.Quantity
		rec.Amount = amountOf(in.Quantity, in.UnitPrice)
		s.Sales[i] = rec
		return change{Updated, id, []models.Collection{models.Sales, models.Products}}, nil
	})
	return result(out, rec), err
}

// DeleteSale removes the sale record. Stock is not touched; use CancelSale
// to give the quantity back.
func (m *Mirror) DeleteSale(ctx context.Context, id string) (Result[models.Sale], error) {
	var rec models.Sale
	out, err := m.mutate(ctx, models.Sales, models.OpDelete, func(s *models.Snapshot) (change, error) {
		i := indexByID(s.Sales, saleID, id)
		if i < 0 {
			return change{}, nil
		}
		rec = s.Sales[i]
		s.Sales = slices.Delete(s.Sales, i, i+1)
		return change{Deleted, id, []models.Collection{models.Sales}}, nil
	})
	return result(out, rec), err
}

// CancelSale returns the sale's quantity to its product, then removes the
// sale. A sale whose product is gone is still removed.
func (m *Mirror) CancelSale(ctx context.Context, id string) (Result[models.Sale], error) {
	var rec models.Sale
	out, err := m.mutate(ctx, models.Sales, models.OpCancel, func(s *models.Snapshot) (change, error) {
		i := indexByID(s.Sales, saleID, id)
		if i < 0 {
			return change{}, nil
		}
		rec = s.Sales[i]
		touched := []models.Collection{models.Sales}
		if restore(s, rec.ProductName, rec.Quantity) {
			touched = append(touched, models.Products)
		} else {
			m.log.Warn("cancelled sale references a missing product", "sale", id, "product", rec.ProductName)
		}
		s.Sales = slices.Delete(s.Sales, i, i+1)
		return change{Deleted, id, touched}, nil
	})
	return result(out, rec), err
}

// ─── Stock ────────────────────────────────────────────────────────────────────

// AdjustStock moves quantity in or out of the product behind the stock entry
// id. Outbound moves may not take stock below zero. The returned record is
// the recomputed stock entry.
func (m *Mirror) AdjustStock(ctx context.Context, id string, in AdjustInput) (Result[models.StockEntry], error) {
	in.Direction = strings.ToLower(strings.TrimSpace(in.Direction))
	if errs := check(in); errs != nil {
		return Result[models.StockEntry]{}, errs
	}

	var rec models.StockEntry
	out, err := m.mutate(ctx, models.Stock, models.OpAdjust, func(s *models.Snapshot) (change, error) {
		i := indexByID(s.Stock, stockID, id)
		if i < 0 {
			return change{}, nil
		}
		entry := s.Stock[i]

		p := indexByID(s.Products, productID, entry.ProductID)
		if p < 0 {
			p = productByName(s.Products, entry.ProductName)
		}
		if p < 0 {
			return change{}, unknownProduct(entry.ProductName)
		}
		product := &s.Products[p]

		if in.Direction == Outbound {
			if product.StockQty < in.Quantity {
				return change{}, insufficientStock(product.Name, product.StockQty, in.Quantity)
			}
			product.StockQty -= in.Quantity
		} else {
			product.StockQty += in.Quantity
		}

		rec = models.StockEntry{
			ID:          entry.ID,
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    product.StockQty,
			Minimum:     product.StockMin,
		}
		return change{Updated, id, []models.Collection{models.Products}}, nil
	})
	return result(out, rec), err
}
