// Package schema describes the fields of each stored entity: their kind,
// storage name and constraints. A Schema validates inputs into a single
// apperr validation error and tells the query façade which fields may be
// filtered, sorted and selected.
package schema

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/ayush/devcamper/backend/internal/apperr"
)

// Kind is the value type of a field.
type Kind int

const (
	String Kind = iota
	Number
	Bool
	Time
	ID
	Strings
)

func (k Kind) String() string {
	switch k {
	case String:
		return "string"
	case Number:
		return "number"
	case Bool:
		return "bool"
	case Time:
		return "time"
	case ID:
		return "id"
	case Strings:
		return "strings"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Field is one entry of a Schema. Constraint messages double as the switch
// that enables the constraint.
type Field struct {
	Name   string
	Column string
	Kind   Kind

	// Hidden fields are never filtered, sorted or selected by clients.
	Hidden bool

	Required   string
	MaxLen     int
	MaxLenMsg  string
	MinLen     int
	MinLenMsg  string
	Min        *float64
	Max        *float64
	RangeMsg   string
	Pattern    *regexp.Regexp
	PatternMsg string
	Enum       []string
	EnumMsg    string
}

// StorageName is the column or document key holding the field.
func (f Field) StorageName() string {
	if f.Column != "" {
		return f.Column
	}
	return f.Name
}

// Schema is the typed description of one entity.
type Schema struct {
	Name   string
	Fields []Field
}

// Lookup returns the visible field called name.
func (s Schema) Lookup(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name && !f.Hidden {
			return f, true
		}
	}
	return Field{}, false
}

// Float returns a pointer for Field.Min and Field.Max literals.
func Float(v float64) *float64 { return &v }

// Validate checks values against every field. Keys missing from values are
// required-checked unless partial is set, in which case only the supplied
// keys are checked (update semantics).
func (s Schema) Validate(values map[string]any, partial bool) error {
	var result *multierror.Error
	for _, f := range s.Fields {
		v, present := values[f.Name]
		if !present {
			if !partial && f.Required != "" {
				result = multierror.Append(result, fmt.Errorf("%s", f.Required))
			}
			continue
		}
		for _, err := range f.check(v) {
			result = multierror.Append(result, err)
		}
	}

	if result == nil {
		return nil
	}
	result.ErrorFormat = joinMessages
	return apperr.Validation("%s", result.Error())
}

func joinMessages(errs []error) string {
	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, ", ")
}

func (f Field) check(v any) []error {
	var errs []error
	fail := func(msg string) { errs = append(errs, fmt.Errorf("%s", msg)) }

	switch val := v.(type) {
	case nil:
		if f.Required != "" {
			fail(f.Required)
		}
	case string:
		val = strings.TrimSpace(val)
		if val == "" {
			if f.Required != "" {
				fail(f.Required)
			}
			return errs
		}
		if f.MaxLen > 0 && len(val) > f.MaxLen {
			fail(f.MaxLenMsg)
		}
		if f.MinLen > 0 && len(val) < f.MinLen {
			fail(f.MinLenMsg)
		}
		if f.Pattern != nil && !f.Pattern.MatchString(val) {
			fail(f.PatternMsg)
		}
		if len(f.Enum) > 0 && !contains(f.Enum, val) {
			fail(f.enumMessage(val))
		}
	case []string:
		if len(val) == 0 && f.Required != "" {
			fail(f.Required)
		}
		for _, item := range val {
			if len(f.Enum) > 0 && !contains(f.Enum, item) {
				fail(f.enumMessage(item))
			}
		}
	case float64:
		f.checkRange(val, fail)
	case int:
		f.checkRange(float64(val), fail)
	}
	return errs
}

func (f Field) checkRange(v float64, fail func(string)) {
	if (f.Min != nil && v < *f.Min) || (f.Max != nil && v > *f.Max) {
		fail(f.RangeMsg)
	}
}

func (f Field) enumMessage(v string) string {
	if f.EnumMsg != "" {
		return f.EnumMsg
	}
	return fmt.Sprintf("`%s` is not a valid value for %s", v, f.Name)
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
