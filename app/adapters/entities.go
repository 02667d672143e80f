package adapters

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cast"

	"github.com/shashiranjanraj/stockmirror/app/models"
)

// ─── Products ─────────────────────────────────────────────────────────────────

var Products = Set[models.Product]{
	{
		Variant: "canonical",
		Match:   func(r Row) bool { return has(r, "name") && has(r, "price") },
		Adapt: func(r Row) (models.Product, error) {
			return product(r, productFields{
				id: "id", name: []string{"name"}, category: []string{"category", "category_name"},
				price: "price", qty: []string{"stock_qty", "quantity"}, min: []string{"stock_min", "minimum"},
			})
		},
	},
	{
		Variant: "legacy",
		Match:   func(r Row) bool { return has(r, "nome") && has(r, "preco") },
		Adapt: func(r Row) (models.Product, error) {
			return product(r, productFields{
				id: "id", name: []string{"nome"}, category: []string{"categoria"},
				price: "preco", qty: []string{"estoque", "quantidade"}, min: []string{"estoque_minimo", "quantidade_minima"},
			})
		},
	},
}

type productFields struct {
	id             string
	name, category []string
	price          string
	qty, min       []string
}

func product(r Row, f productFields) (models.Product, error) {
	pid, err := id(r, f.id)
	if err != nil {
		return models.Product{}, err
	}
	price, err := number(r, f.price)
	if err != nil {
		return models.Product{}, err
	}
	if price < 0 {
		return models.Product{}, fmt.Errorf("negative price %v", price)
	}
	qty, err := integer(r, f.qty...)
	if err != nil {
		return models.Product{}, err
	}
	min, err := integer(r, f.min...)
	if err != nil {
		return models.Product{}, err
	}
	return models.Product{
		ID:       pid,
		Name:     text(r, f.name...),
		Category: text(r, f.category...),
		Price:    price,
		StockQty: qty,
		StockMin: min,
	}, nil
}

// ─── Clients ──────────────────────────────────────────────────────────────────

var Clients = Set[models.Client]{
	{
		Variant: "canonical",
		Match:   func(r Row) bool { return has(r, "name", "full_name") },
		Adapt: func(r Row) (models.Client, error) {
			return client(r, []string{"name", "full_name"}, []string{"phone"}, []string{"city"})
		},
	},
	{
		Variant: "legacy",
		Match:   func(r Row) bool { return has(r, "nome") },
		Adapt: func(r Row) (models.Client, error) {
			return client(r, []string{"nome"}, []string{"telefone"}, []string{"cidade"})
		},
	},
}

func client(r Row, name, phone, city []string) (models.Client, error) {
	cid, err := id(r, "id")
	if err != nil {
		return models.Client{}, err
	}
	status, err := parseStatus(r)
	if err != nil {
		return models.Client{}, err
	}
	return models.Client{
		ID:     cid,
		Name:   text(r, name...),
		Email:  text(r, "email"),
		Phone:  text(r, phone...),
		City:   text(r, city...),
		Status: status,
	}, nil
}

// ─── Categories ───────────────────────────────────────────────────────────────

var Categories = Set[models.Category]{
	{
		Variant: "canonical",
		Match:   func(r Row) bool { return has(r, "name") },
		Adapt: func(r Row) (models.Category, error) {
			return category(r, "name", "description", "notes")
		},
	},
	{
		Variant: "legacy",
		Match:   func(r Row) bool { return has(r, "nome") },
		Adapt: func(r Row) (models.Category, error) {
			return category(r, "nome", "descricao", "observacoes")
		},
	},
}

func category(r Row, name, description, notes string) (models.Category, error) {
	cid, err := id(r, "id")
	if err != nil {
		return models.Category{}, err
	}
	status, err := parseStatus(r)
	if err != nil {
		return models.Category{}, err
	}
	return models.Category{
		ID:          cid,
		Name:        text(r, name),
		Description: text(r, description),
		Notes:       text(r, notes),
		Status:      status,
	}, nil
}

// ─── Sales ────────────────────────────────────────────────────────────────────

var Sales = Set[models.Sale]{
	{
		Variant: "canonical",
		Match:   func(r Row) bool { return has(r, "client_name", "client") && has(r, "product_name", "product") },
		Adapt: func(r Row) (models.Sale, error) {
			return sale(r, saleFields{
				client: []string{"client_name", "client"}, product: []string{"product_name", "product"},
				qty: "quantity", amount: "amount", unit: "unit_price", date: []string{"date", "created_at"},
			})
		},
	},
	{
		Variant: "legacy",
		Match:   func(r Row) bool { return has(r, "cliente") && has(r, "produto") },
		Adapt: func(r Row) (models.Sale, error) {
			return sale(r, saleFields{
				client: []string{"cliente"}, product: []string{"produto"},
				qty: "quantidade", amount: "valor", unit: "preco_unitario", date: []string{"data", "data_venda"},
			})
		},
	},
}

type saleFields struct {
	client, product []string
	qty, amount     string
	unit            string
	date            []string
}

func sale(r Row, f saleFields) (models.Sale, error) {
	sid, err := id(r, "id")
	if err != nil {
		return models.Sale{}, err
	}
	qty, err := integer(r, f.qty)
	if err != nil {
		return models.Sale{}, err
	}
	amount, err := number(r, f.amount)
	if err != nil {
		return models.Sale{}, err
	}
	if !has(r, f.amount) {
		unit, err := number(r, f.unit)
		if err != nil {
			return models.Sale{}, err
		}
		amount = math.Round(unit*float64(qty)*100) / 100
	}
	when, err := date(r, f.date...)
	if err != nil {
		return models.Sale{}, err
	}
	return models.Sale{
		ID:          sid,
		ClientName:  text(r, f.client...),
		ProductName: text(r, f.product...),
		Quantity:    qty,
		Amount:      amount,
		Date:        when,
	}, nil
}

// ─── Stock ────────────────────────────────────────────────────────────────────

// Stock rows arrive joined with their product; the product name is exposed
// as product_name by the row-store.
var Stock = Set[models.StockEntry]{
	{
		Variant: "canonical",
		Match:   func(r Row) bool { return has(r, "product_id") && has(r, "quantity") },
		Adapt: func(r Row) (models.StockEntry, error) {
			return stock(r, "product_id", "quantity", []string{"minimum", "stock_min"})
		},
	},
	{
		Variant: "legacy",
		Match:   func(r Row) bool { return has(r, "produto_id") && has(r, "quantidade") },
		Adapt: func(r Row) (models.StockEntry, error) {
			return stock(r, "produto_id", "quantidade", []string{"quantidade_minima", "minimo"})
		},
	},
}

func stock(r Row, productID, qty string, min []string) (models.StockEntry, error) {
	sid, err := id(r, "id")
	if err != nil {
		return models.StockEntry{}, err
	}
	pid, err := id(r, productID)
	if err != nil {
		return models.StockEntry{}, err
	}
	q, err := integer(r, qty)
	if err != nil {
		return models.StockEntry{}, err
	}
	m, err := integer(r, min...)
	if err != nil {
		return models.StockEntry{}, err
	}
	return models.StockEntry{
		ID:          sid,
		ProductID:   pid,
		ProductName: text(r, "product_name", "produto_nome", "nome"),
		Quantity:    q,
		Minimum:     m,
	}, nil
}

// ─── Shared ───────────────────────────────────────────────────────────────────

// parseStatus reads status (or the ativo flag) into a Status. Missing means
// active; anything unknown is rejected.
func parseStatus(r Row) (models.Status, error) {
	v, ok := lookup(r, "status", "situacao")
	if !ok {
		if flag, ok := lookup(r, "ativo"); ok && !cast.ToBool(flag) {
			return models.StatusInactive, nil
		}
		return models.StatusActive, nil
	}
	if b, isBool := v.(bool); isBool {
		if b {
			return models.StatusActive, nil
		}
		return models.StatusInactive, nil
	}
	switch strings.ToLower(strings.TrimSpace(cast.ToString(v))) {
	case "", "active", "ativo", "ativa":
		return models.StatusActive, nil
	case "inactive", "inativo", "inativa":
		return models.StatusInactive, nil
	default:
		return "", fmt.Errorf("%w: status %q", ErrUnrecognizedShape, v)
	}
}
