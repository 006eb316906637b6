package query

import (
	"encoding/json"
	"strings"
)

// Sparse trims each item's JSON form down to the selected fields, the id
// and any keys named in keep. Without a selection items are returned as is.
func Sparse[T any](q Query, items []T, keep ...string) ([]any, error) {
	out := make([]any, len(items))
	if len(q.Select) == 0 {
		for i, it := range items {
			out[i] = it
		}
		return out, nil
	}

	wanted := map[string]bool{"id": true}
	for _, f := range q.Select {
		wanted[jsonKey(f.Name)] = true
	}
	for _, k := range keep {
		wanted[k] = true
	}

	for i, it := range items {
		raw, err := json.Marshal(it)
		if err != nil {
			return nil, err
		}
		var full map[string]json.RawMessage
		if err := json.Unmarshal(raw, &full); err != nil {
			return nil, err
		}
		trimmed := make(map[string]json.RawMessage, len(wanted))
		for k, v := range full {
			if wanted[k] {
				trimmed[k] = v
			}
		}
		out[i] = trimmed
	}
	return out, nil
}

// jsonKey maps a schema field name to the top-level JSON key carrying it.
func jsonKey(name string) string {
	if name == "_id" {
		return "id"
	}
	if i := strings.IndexByte(name, '.'); i > 0 {
		return name[:i]
	}
	return name
}
