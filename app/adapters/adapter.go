// Package adapters maps raw remote rows onto the canonical models.
//
// Each external row shape has its own adapter: "canonical" for the English
// column layout provisioned by database/migrations, "legacy" for the
// Portuguese layout of the first backend (nome, preco, estoque, ...).
// A row no adapter recognises is rejected with ErrUnrecognizedShape rather
// than guessed at.
package adapters

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/spf13/cast"
)

// NotInformed stands in for optional text fields the source left out.
const NotInformed = "not informed"

// ErrUnrecognizedShape is returned for rows no adapter matches.
var ErrUnrecognizedShape = errors.New("adapters: unrecognized row shape")

// Row is one record as returned by the row-store.
type Row = map[string]interface{}

// Adapter converts one external shape into T.
type Adapter[T any] struct {
	Variant string
	Match   func(Row) bool
	Adapt   func(Row) (T, error)
}

// Set tries its adapters in order; the first match wins.
type Set[T any] []Adapter[T]

// Adapt converts row with the first matching adapter and reports its variant.
func (s Set[T]) Adapt(row Row) (T, string, error) {
	var zero T
	for _, a := range s {
		if !a.Match(row) {
			continue
		}
		rec, err := a.Adapt(row)
		if err != nil {
			return zero, a.Variant, fmt.Errorf("%s: %w", a.Variant, err)
		}
		return rec, a.Variant, nil
	}
	return zero, "", fmt.Errorf("%w (columns: %s)", ErrUnrecognizedShape, columns(row))
}

// Rejection describes a row AdaptAll could not convert.
type Rejection struct {
	Index int
	Err   error
}

// AdaptAll converts every row, collecting rejections instead of stopping.
func (s Set[T]) AdaptAll(rows []Row) ([]T, []Rejection) {
	out := make([]T, 0, len(rows))
	var rejected []Rejection
	for i, row := range rows {
		rec, _, err := s.Adapt(row)
		if err != nil {
			rejected = append(rejected, Rejection{Index: i, Err: err})
			continue
		}
		out = append(out, rec)
	}
	return out, rejected
}

// ─── Field helpers ────────────────────────────────────────────────────────────

func has(row Row, keys ...string) bool {
	for _, k := range keys {
		if _, ok := row[k]; ok {
			return true
		}
	}
	return false
}

// lookup returns the first non-nil value among keys.
func lookup(row Row, keys ...string) (interface{}, bool) {
	for _, k := range keys {
		if v, ok := row[k]; ok && v != nil {
			if b, isBytes := v.([]byte); isBytes {
				return string(b), true
			}
			return v, true
		}
	}
	return nil, false
}

// text returns the first non-blank value among keys, or NotInformed.
func text(row Row, keys ...string) string {
	v, ok := lookup(row, keys...)
	if !ok {
		return NotInformed
	}
	s := strings.TrimSpace(cast.ToString(v))
	if s == "" {
		return NotInformed
	}
	return s
}

func id(row Row, keys ...string) (string, error) {
	v, ok := lookup(row, keys...)
	if !ok {
		return "", fmt.Errorf("missing %s", strings.Join(keys, "/"))
	}
	s, err := cast.ToStringE(v)
	if err != nil || strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("bad %s %v", keys[0], v)
	}
	return strings.TrimSpace(s), nil
}

func number(row Row, keys ...string) (float64, error) {
	v, ok := lookup(row, keys...)
	if !ok {
		return 0, nil
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", keys[0], err)
	}
	return f, nil
}

func integer(row Row, keys ...string) (int, error) {
	f, err := number(row, keys...)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

func date(row Row, keys ...string) (time.Time, error) {
	v, ok := lookup(row, keys...)
	if !ok {
		return time.Time{}, nil
	}
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		if strings.TrimSpace(t) == "" {
			return time.Time{}, nil
		}
		parsed, err := dateparse.ParseLocal(t)
		if err != nil {
			return time.Time{}, fmt.Errorf("%s: %w", keys[0], err)
		}
		return parsed, nil
	default:
		return cast.ToTimeE(v)
	}
}

func columns(row Row) string {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, ",")
}
