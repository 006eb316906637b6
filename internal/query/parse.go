// Package query turns list request parameters into a store-neutral Query
// and translates it for MongoDB and PostgreSQL.
//
// A request such as
//
//	?tuition[gte]=1000&careers[in]=Business,Other&select=name,tuition&sort=-createdAt&page=2&limit=5
//
// yields two filters, a sparse field set, one descending sort key and the
// second page of five. Field names and their value types come from the
// resource's schema.Schema; anything outside it is a validation error.
package query

import (
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ayush/devcamper/backend/internal/apperr"
	"github.com/ayush/devcamper/backend/internal/schema"
)

const (
	DefaultLimit = 25
	MaxLimit     = 100
	DefaultSort  = "-createdAt"
)

// Op is a filter operator.
type Op string

const (
	Eq  Op = "eq"
	Gt  Op = "gt"
	Gte Op = "gte"
	Lt  Op = "lt"
	Lte Op = "lte"
	In  Op = "in"
)

var operators = map[string]Op{"gt": Gt, "gte": Gte, "lt": Lt, "lte": Lte, "in": In}

// Reserved keys never become filters.
var reserved = map[string]bool{"select": true, "sort": true, "page": true, "limit": true}

// Filter is one field condition. Value is typed for the field kind; for In
// it is a []any.
type Filter struct {
	Field schema.Field
	Op    Op
	Value any
}

// SortKey is one ordering key.
type SortKey struct {
	Field schema.Field
	Desc  bool
}

// Query is a parsed list request.
type Query struct {
	Filters []Filter
	Select  []schema.Field
	Sort    []SortKey
	Page    int
	Limit   int
}

// PageRef addresses a neighbouring page.
type PageRef struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Pagination holds the neighbouring pages; either may be absent.
type Pagination struct {
	Next *PageRef `json:"next,omitempty"`
	Prev *PageRef `json:"prev,omitempty"`
}

var filterKey = regexp.MustCompile(`^([A-Za-z0-9_.]+)\[([a-z]+)\]$`)

// Parse builds a Query from request parameters against s.
func Parse(values url.Values, s schema.Schema) (Query, error) {
	q := Query{Page: 1, Limit: DefaultLimit}

	// Sorted keys keep filter order stable across requests.
	keys := make([]string, 0, len(values))
	for k := range values {
		if !reserved[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	for _, key := range keys {
		name, op := key, Eq
		if m := filterKey.FindStringSubmatch(key); m != nil {
			var ok bool
			if op, ok = operators[m[2]]; !ok {
				return Query{}, apperr.Validation("Unknown operator %q on %s", m[2], m[1])
			}
			name = m[1]
		}
		field, ok := s.Lookup(name)
		if !ok {
			return Query{}, apperr.Validation("Cannot filter %s by %s", s.Name, name)
		}
		for _, raw := range values[key] {
			v, err := typed(field, op, raw)
			if err != nil {
				return Query{}, err
			}
			q.Filters = append(q.Filters, Filter{Field: field, Op: op, Value: v})
		}
	}

	if sel := values.Get("select"); sel != "" {
		for _, name := range splitList(sel) {
			field, ok := s.Lookup(name)
			if !ok {
				return Query{}, apperr.Validation("Cannot select %s on %s", name, s.Name)
			}
			q.Select = append(q.Select, field)
		}
	}

	sortParam := values.Get("sort")
	if sortParam == "" {
		sortParam = DefaultSort
	}
	for _, name := range splitList(sortParam) {
		desc := strings.HasPrefix(name, "-")
		name = strings.TrimPrefix(name, "-")
		field, ok := s.Lookup(name)
		if !ok {
			return Query{}, apperr.Validation("Cannot sort %s by %s", s.Name, name)
		}
		q.Sort = append(q.Sort, SortKey{Field: field, Desc: desc})
	}

	var err error
	if q.Page, err = positive(values.Get("page"), "page", 1); err != nil {
		return Query{}, err
	}
	if q.Limit, err = positive(values.Get("limit"), "limit", DefaultLimit); err != nil {
		return Query{}, err
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	return q, nil
}

// Skip is the number of matching records before the requested page.
func (q Query) Skip() int {
	return (q.Page - 1) * q.Limit
}

// Paginate describes the pages around q given the total match count.
func (q Query) Paginate(total int64) Pagination {
	var p Pagination
	if int64(q.Page)*int64(q.Limit) < total {
		p.Next = &PageRef{Page: q.Page + 1, Limit: q.Limit}
	}
	if q.Page > 1 {
		p.Prev = &PageRef{Page: q.Page - 1, Limit: q.Limit}
	}
	return p
}

func positive(raw, name string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, apperr.Validation("Invalid %s %q", name, raw)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func typed(f schema.Field, op Op, raw string) (any, error) {
	if op == In {
		parts := splitList(raw)
		if len(parts) == 0 {
			return nil, apperr.Validation("Empty list for %s", f.Name)
		}
		vals := make([]any, len(parts))
		for i, p := range parts {
			v, err := scalar(f, p)
			if err != nil {
				return nil, err
			}
			vals[i] = v
		}
		return vals, nil
	}
	return scalar(f, raw)
}

var timeLayouts = []string{time.RFC3339, "2006-01-02"}

func scalar(f schema.Field, raw string) (any, error) {
	switch f.Kind {
	case schema.Number:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, apperr.Validation("Invalid number %q for %s", raw, f.Name)
		}
		return v, nil
	case schema.Bool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, apperr.Validation("Invalid boolean %q for %s", raw, f.Name)
		}
		return v, nil
	case schema.Time:
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, raw); err == nil {
				return t, nil
			}
		}
		return nil, apperr.Validation("Invalid date %q for %s", raw, f.Name)
	case schema.ID:
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return nil, apperr.Validation("Invalid id %q for %s", raw, f.Name)
		}
		return id, nil
	}
	return raw, nil
}
