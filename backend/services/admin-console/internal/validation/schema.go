// Package validation evaluates declarative field schemas against form records.
//
// A Schema is an ordered list of fields, so the same record always yields the
// same messages in the same order. Evaluation is pure: no I/O, no mutation.
package validation

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// Rule is the rule set attached to one field. Zero values disable a check.
type Rule struct {
	Required  bool
	MinLength int
	MaxLength int
	Numeric   bool
	Min       *float64
	Max       *float64
	OneOf     []string
	Email     bool
}

// Field binds a rule to a record key.
type Field struct {
	Name string
	Rule Rule
}

// Schema is evaluated in declaration order.
type Schema []Field

// Bound returns a pointer for Rule.Min / Rule.Max literals.
func Bound(v float64) *float64 {
	return &v
}

var formatValidator = validator.New()

// Validate returns the violated-rule messages for record; empty means valid.
func (s Schema) Validate(record map[string]any) []string {
	var errs []string
	for _, f := range s {
		errs = append(errs, f.check(record[f.Name])...)
	}
	return errs
}

// Valid reports whether record satisfies every rule.
func (s Schema) Valid(record map[string]any) bool {
	return len(s.Validate(record)) == 0
}

// Partial keeps only the fields present in record, for partial edits.
// Rules of kept fields are unchanged, so a present-but-empty required field
// still fails.
func (s Schema) Partial(record map[string]any) Schema {
	out := make(Schema, 0, len(s))
	for _, f := range s {
		if _, ok := record[f.Name]; ok {
			out = append(out, f)
		}
	}
	return out
}

// Field returns the named field rule.
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

func (f Field) check(value any) []string {
	r := f.Rule
	if absent(value) {
		if r.Required {
			return []string{fmt.Sprintf("%s is required", f.Name)}
		}
		return nil
	}

	var errs []string
	if r.MinLength > 0 || r.MaxLength > 0 {
		n := utf8.RuneCountInString(stringify(value))
		if r.MinLength > 0 && n < r.MinLength {
			errs = append(errs, fmt.Sprintf("%s must be at least %d characters", f.Name, r.MinLength))
		}
		if r.MaxLength > 0 && n > r.MaxLength {
			errs = append(errs, fmt.Sprintf("%s must be no more than %d characters", f.Name, r.MaxLength))
		}
	}

	if r.Numeric || r.Min != nil || r.Max != nil {
		num, ok := toNumber(value)
		if !ok {
			errs = append(errs, fmt.Sprintf("%s must be a number", f.Name))
		} else {
			if r.Min != nil && num < *r.Min {
				errs = append(errs, fmt.Sprintf("%s must be at least %s", f.Name, formatNumber(*r.Min)))
			}
			if r.Max != nil && num > *r.Max {
				errs = append(errs, fmt.Sprintf("%s must be no more than %s", f.Name, formatNumber(*r.Max)))
			}
		}
	}

	if len(r.OneOf) > 0 && !contains(r.OneOf, stringify(value)) {
		errs = append(errs, fmt.Sprintf("%s must be one of: %s", f.Name, strings.Join(r.OneOf, ", ")))
	}

	if r.Email && formatValidator.Var(stringify(value), "email") != nil {
		errs = append(errs, fmt.Sprintf("%s must be a valid email address", f.Name))
	}

	return errs
}

// absent treats missing, nil, blank strings and false as not provided.
// Numeric zero counts as provided.
func absent(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case *string:
		return v == nil || strings.TrimSpace(*v) == ""
	case bool:
		return !v
	case float64:
		return math.IsNaN(v)
	}
	return false
}

func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case *string:
		return *v
	case fmt.Stringer:
		return v.String()
	}
	return fmt.Sprint(value)
}

func toNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, !math.IsNaN(v)
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || math.IsNaN(n) {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
