package repositories

import (
	"context"
	"fmt"
	"regexp"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shashiranjanraj/stockmirror/app/adapters"
	"github.com/shashiranjanraj/stockmirror/app/models"
	"github.com/shashiranjanraj/stockmirror/pkg/database"
	"github.com/shashiranjanraj/stockmirror/pkg/metrics"
)

// RowStore is the read-only surface of the remote backend.
type RowStore interface {
	// SelectAll returns every row of table.
	SelectAll(ctx context.Context, table string) ([]adapters.Row, error)

	// SelectWhere returns the rows of table whose field equals value.
	SelectWhere(ctx context.Context, table, field string, value interface{}) ([]adapters.Row, error)

	// SelectLimit returns at most limit rows of table.
	SelectLimit(ctx context.Context, table string, limit int) ([]adapters.Row, error)

	// SelectStock returns active stock rows joined with their product's name,
	// exposed as product_name.
	SelectStock(ctx context.Context) ([]adapters.Row, error)
}

// Schema describes the remote column layout the row-store queries against.
type Schema struct {
	ActiveField       string // soft-delete flag; empty disables the filter
	StockProductKey   string // stock column referencing products.id
	ProductNameColumn string // products column holding the name
}

// CanonicalSchema matches database/migrations.
var CanonicalSchema = Schema{ActiveField: "active", StockProductKey: "product_id", ProductNameColumn: "name"}

// LegacySchema matches the Portuguese layout of the first backend.
var LegacySchema = Schema{ActiveField: "ativo", StockProductKey: "produto_id", ProductNameColumn: "nome"}

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// GormRowStore implements RowStore on a gorm connection.
type GormRowStore struct {
	db     *gorm.DB
	schema Schema
}

func NewGormRowStore(db *gorm.DB, schema Schema) *GormRowStore {
	return &GormRowStore{db: db, schema: schema}
}

func (s *GormRowStore) SelectAll(ctx context.Context, table string) ([]adapters.Row, error) {
	return s.find(ctx, "select_all", table, func(q *gorm.DB) *gorm.DB { return q })
}

func (s *GormRowStore) SelectWhere(ctx context.Context, table, field string, value interface{}) ([]adapters.Row, error) {
	if !identifier.MatchString(field) {
		return nil, fmt.Errorf("remote: invalid column %q", field)
	}
	return s.find(ctx, "select_where", table, func(q *gorm.DB) *gorm.DB {
		return q.Where(clause.Eq{Column: clause.Column{Name: field}, Value: value})
	})
}

func (s *GormRowStore) SelectLimit(ctx context.Context, table string, limit int) ([]adapters.Row, error) {
	return s.find(ctx, "select_limit", table, func(q *gorm.DB) *gorm.DB { return q.Limit(limit) })
}

func (s *GormRowStore) SelectStock(ctx context.Context) ([]adapters.Row, error) {
	st, pt := string(models.Stock), string(models.Products)
	for _, col := range []string{s.schema.StockProductKey, s.schema.ProductNameColumn} {
		if !identifier.MatchString(col) {
			return nil, fmt.Errorf("remote: invalid column %q", col)
		}
	}

	return s.find(ctx, "select_stock", st, func(q *gorm.DB) *gorm.DB {
		q = q.Select(fmt.Sprintf("%s.*, %s.%s AS product_name", st, pt, s.schema.ProductNameColumn)).
			Joins(fmt.Sprintf("LEFT JOIN %s ON %s.id = %s.%s", pt, pt, st, s.schema.StockProductKey))
		if s.schema.ActiveField != "" && identifier.MatchString(s.schema.ActiveField) {
			q = q.Where(clause.Eq{Column: clause.Column{Table: st, Name: s.schema.ActiveField}, Value: true})
		}
		return q
	})
}

// Close releases the connection pool.
func (s *GormRowStore) Close() error {
	return database.Close(s.db)
}

func (s *GormRowStore) find(ctx context.Context, op, table string, scope func(*gorm.DB) *gorm.DB) ([]adapters.Row, error) {
	if !identifier.MatchString(table) {
		return nil, fmt.Errorf("remote: invalid table %q", table)
	}

	defer metrics.ObserveRemoteQuery(op, table)()

	var rows []map[string]interface{}
	if err := scope(s.db.WithContext(ctx).Table(table)).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("remote: %s %s: %w", op, table, err)
	}

	out := make([]adapters.Row, len(rows))
	for i, r := range rows {
		out[i] = r
	}
	return out, nil
}
