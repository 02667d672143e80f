// Package validate provides struct-tag validation for request and mutation
// inputs.
//
// Supported rules (comma-separated in the `validate` tag):
//
//	required        field must not be zero/blank
//	nullable        if empty, skip the remaining rules for this field
//	email           valid email address
//	min=N           string: min length | number: min value
//	max=N           string: max length | number: max value
//	gt=N            number > N
//	gte=N           number >= N
//	lt=N            number < N
//	lte=N           number <= N
//	in=a,b,c        value must be one of the listed items
//
// Example:
//
//	type SaleInput struct {
//	    ClientName string  `json:"clientName" validate:"required"`
//	    Quantity   int     `json:"quantity"   validate:"gt=0"`
//	    Direction  string  `json:"direction"  validate:"required,in=inbound,outbound"`
//	}
package validate

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var emailRE = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var knownRules = map[string]bool{
	"required": true, "nullable": true, "email": true,
	"min": true, "max": true, "gt": true, "gte": true, "lt": true, "lte": true,
	"in": true,
}

// ─── Public API ───────────────────────────────────────────────────────────────

// Struct validates the exported fields of v that carry a `validate` tag.
// Returns field name (json tag) → message; an empty map means valid.
func Struct(v interface{}) map[string]string {
	errs := make(map[string]string)

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return errs
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return errs
	}
	rt := rv.Type()

	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		tag := field.Tag.Get("validate")
		if tag == "" {
			continue
		}

		name := jsonFieldName(field)
		value := deref(rv.Field(i))
		rules := splitRules(tag)

		if hasRule(rules, "nullable") && isEmpty(value) {
			continue
		}

		for _, rule := range rules {
			if rule == "nullable" {
				continue
			}
			if msg := applyRule(rule, name, value); msg != "" {
				errs[name] = msg
				break
			}
		}
	}

	return errs
}

// HasErrors reports whether errs holds any failure.
func HasErrors(errs map[string]string) bool { return len(errs) > 0 }

// ─── Rules ────────────────────────────────────────────────────────────────────

func applyRule(rule, field string, v reflect.Value) string {
	key, param, _ := strings.Cut(rule, "=")

	if key == "required" {
		if isEmpty(v) {
			return fmt.Sprintf("The %s field is required.", field)
		}
		return ""
	}
	if !v.IsValid() {
		return ""
	}

	switch key {
	case "email":
		if !emailRE.MatchString(asString(v)) {
			return fmt.Sprintf("The %s must be a valid email address.", field)
		}

	case "min", "max":
		n, err := strconv.ParseFloat(param, 64)
		if err != nil {
			return fmt.Sprintf("The %s rule %q is malformed.", field, rule)
		}
		size, unit := measure(v)
		if key == "min" && size < n {
			return fmt.Sprintf("The %s must be at least %s%s.", field, param, unit)
		}
		if key == "max" && size > n {
			return fmt.Sprintf("The %s may not be greater than %s%s.", field, param, unit)
		}

	case "gt", "gte", "lt", "lte":
		n, err := strconv.ParseFloat(param, 64)
		if err != nil {
			return fmt.Sprintf("The %s rule %q is malformed.", field, rule)
		}
		if !isNumericKind(v) {
			return fmt.Sprintf("The %s must be a number.", field)
		}
		f := toFloat(v)
		switch {
		case key == "gt" && !(f > n):
			return fmt.Sprintf("The %s must be greater than %s.", field, param)
		case key == "gte" && !(f >= n):
			return fmt.Sprintf("The %s must be greater than or equal to %s.", field, param)
		case key == "lt" && !(f < n):
			return fmt.Sprintf("The %s must be less than %s.", field, param)
		case key == "lte" && !(f <= n):
			return fmt.Sprintf("The %s must be less than or equal to %s.", field, param)
		}

	case "in":
		raw := asString(v)
		for _, opt := range strings.Split(param, ",") {
			if strings.TrimSpace(opt) == raw {
				return ""
			}
		}
		return fmt.Sprintf("The selected %s is invalid.", field)
	}
	return ""
}

// ─── Helpers ──────────────────────────────────────────────────────────────────

func deref(v reflect.Value) reflect.Value {
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

func isEmpty(v reflect.Value) bool {
	if !v.IsValid() {
		return true
	}
	switch v.Kind() {
	case reflect.String:
		return strings.TrimSpace(v.String()) == ""
	case reflect.Slice, reflect.Map, reflect.Array:
		return v.Len() == 0
	default:
		return v.IsZero()
	}
}

func isNumericKind(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func toFloat(v reflect.Value) float64 {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint())
	case reflect.Float32, reflect.Float64:
		return v.Float()
	}
	return 0
}

// measure returns the number min/max compare against and the unit to print.
func measure(v reflect.Value) (float64, string) {
	switch {
	case v.Kind() == reflect.String:
		return float64(utf8.RuneCountInString(v.String())), " characters"
	case isNumericKind(v):
		return toFloat(v), ""
	case v.Kind() == reflect.Slice || v.Kind() == reflect.Map:
		return float64(v.Len()), " items"
	}
	return 0, ""
}

func asString(v reflect.Value) string {
	if v.Kind() == reflect.String {
		return v.String()
	}
	return fmt.Sprintf("%v", v.Interface())
}

func jsonFieldName(f reflect.StructField) string {
	tag := f.Tag.Get("json")
	if tag == "" || tag == "-" {
		return f.Name
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		return f.Name
	}
	return name
}

// splitRules splits on commas, re-joining list params such as in=a,b,c.
func splitRules(tag string) []string {
	var rules []string
	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, _, _ := strings.Cut(part, "=")
		if len(rules) > 0 && !knownRules[key] {
			rules[len(rules)-1] += "," + part
			continue
		}
		rules = append(rules, part)
	}
	return rules
}

func hasRule(rules []string, target string) bool {
	for _, r := range rules {
		if r == target {
			return true
		}
	}
	return false
}
