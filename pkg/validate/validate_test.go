package validate_test

import (
	"testing"

	"github.com/shashiranjanraj/stockmirror/pkg/validate"
)

type productInput struct {
	Name     string  `json:"name"     validate:"required,max=120"`
	Category string  `json:"category" validate:"required"`
	Price    float64 `json:"price"    validate:"gt=0"`
	StockQty int     `json:"stockQty" validate:"gt=0"`
	StockMin int     `json:"stockMin" validate:"gt=0"`
}

func TestValidInput(t *testing.T) {
	errs := validate.Struct(productInput{Name: "Mouse", Category: "Peripherals", Price: 89.99, StockQty: 45, StockMin: 10})
	if validate.HasErrors(errs) {
		t.Errorf("expected no errors, got: %v", errs)
	}
}

func TestRequiredFails(t *testing.T) {
	errs := validate.Struct(productInput{})
	for _, field := range []string{"name", "category", "price", "stockQty", "stockMin"} {
		if _, ok := errs[field]; !ok {
			t.Errorf("expected an error for %s, got: %v", field, errs)
		}
	}
}

func TestBlankStringIsEmpty(t *testing.T) {
	errs := validate.Struct(&productInput{Name: "   ", Category: "x", Price: 1, StockQty: 1, StockMin: 1})
	if errs["name"] != "The name field is required." {
		t.Errorf("unexpected name message: %q", errs["name"])
	}
}

func TestEmailRule(t *testing.T) {
	type in struct {
		Email string `json:"email" validate:"required,email"`
	}
	if errs := validate.Struct(in{Email: "not-an-email"}); !validate.HasErrors(errs) {
		t.Error("expected email validation error")
	}
	if errs := validate.Struct(in{Email: "maria@email.com"}); validate.HasErrors(errs) {
		t.Errorf("expected valid email to pass, got: %v", errs)
	}
}

func TestInRule(t *testing.T) {
	type in struct {
		Direction string `json:"direction" validate:"required,in=inbound,outbound"`
	}
	if errs := validate.Struct(in{Direction: "sideways"}); !validate.HasErrors(errs) {
		t.Error("expected invalid direction to fail")
	}
	if errs := validate.Struct(in{Direction: "outbound"}); validate.HasErrors(errs) {
		t.Errorf("expected outbound to pass: %v", errs)
	}
}

func TestNullableSkipsRules(t *testing.T) {
	type in struct {
		Status string `json:"status" validate:"nullable,in=active,inactive"`
	}
	if errs := validate.Struct(in{}); validate.HasErrors(errs) {
		t.Errorf("expected empty nullable to pass: %v", errs)
	}
	if errs := validate.Struct(in{Status: "archived"}); !validate.HasErrors(errs) {
		t.Error("expected unknown status to fail")
	}
}

func TestPointerFields(t *testing.T) {
	type patch struct {
		Price *float64 `json:"price" validate:"nullable,gt=0"`
	}
	zero, ten := 0.0, 10.0
	if errs := validate.Struct(patch{}); validate.HasErrors(errs) {
		t.Errorf("nil pointer should be skipped: %v", errs)
	}
	if errs := validate.Struct(patch{Price: &ten}); validate.HasErrors(errs) {
		t.Errorf("expected 10 to pass: %v", errs)
	}
	// A pointer to zero is "empty" and nullable skips it.
	if errs := validate.Struct(patch{Price: &zero}); validate.HasErrors(errs) {
		t.Errorf("expected pointer to zero to be skipped: %v", errs)
	}
}

func TestNumericBounds(t *testing.T) {
	type in struct {
		Qty int `json:"qty" validate:"gte=0,lte=100"`
	}
	if errs := validate.Struct(in{Qty: -1}); !validate.HasErrors(errs) {
		t.Error("expected -1 to fail")
	}
	if errs := validate.Struct(in{Qty: 101}); !validate.HasErrors(errs) {
		t.Error("expected 101 to fail")
	}
	if errs := validate.Struct(in{Qty: 0}); validate.HasErrors(errs) {
		t.Errorf("expected 0 to pass: %v", errs)
	}
}
