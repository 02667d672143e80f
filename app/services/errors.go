package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrInsufficientStock rejects a sale or outbound adjustment larger than
	// the product's stock.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrUnknownProduct rejects a sale or adjustment naming no known product.
	ErrUnknownProduct = errors.New("unknown product")

	// ErrNotReady is returned by mutations before Init or after Close.
	ErrNotReady = errors.New("services: mirror is not initialised")
)

// ValidationError reports rejected input. Nothing was mutated.
type ValidationError struct {
	Message string
	Fields  map[string]string
	Err     error
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s: %s", k, e.Fields[k])
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(fields map[string]string) *ValidationError {
	return &ValidationError{Message: "The given data was invalid.", Fields: fields}
}

func insufficientStock(product string, have, want int) *ValidationError {
	return &ValidationError{
		Message: fmt.Sprintf("Insufficient stock for %s: %d available, %d requested.", product, have, want),
		Fields:  map[string]string{"quantity": fmt.Sprintf("Only %d units available.", have)},
		Err:     ErrInsufficientStock,
	}
}

func unknownProduct(name string) *ValidationError {
	return &ValidationError{
		Message: fmt.Sprintf("Product %q does not exist.", name),
		Fields:  map[string]string{"productName": "The selected product is invalid."},
		Err:     ErrUnknownProduct,
	}
}
