package query

import (
	"fmt"
	"strings"
)

var sqlOps = map[Op]string{Eq: "=", Gt: ">", Gte: ">=", Lt: "<", Lte: "<="}

// SQL is the PostgreSQL rendering of a Query. Column names come from the
// schema, values travel as positional arguments.
type SQL struct {
	Columns []string
	Where   string
	Args    []any
	OrderBy string
	Limit   int
	Offset  int
}

// SQL renders q. key is always part of Columns so rows stay addressable.
func (q Query) SQL(key string) SQL {
	out := SQL{Limit: q.Limit, Offset: q.Skip()}

	if len(q.Select) > 0 {
		out.Columns = append(out.Columns, key)
		for _, f := range q.Select {
			if col := f.StorageName(); col != key {
				out.Columns = append(out.Columns, col)
			}
		}
	}

	var conds []string
	for _, f := range q.Filters {
		col := f.Field.StorageName()
		if f.Op == In {
			vals, _ := f.Value.([]any)
			marks := make([]string, len(vals))
			for i, v := range vals {
				out.Args = append(out.Args, v)
				marks[i] = fmt.Sprintf("$%d", len(out.Args))
			}
			conds = append(conds, fmt.Sprintf("%s IN (%s)", col, strings.Join(marks, ", ")))
			continue
		}
		out.Args = append(out.Args, f.Value)
		conds = append(conds, fmt.Sprintf("%s %s $%d", col, sqlOps[f.Op], len(out.Args)))
	}
	out.Where = strings.Join(conds, " AND ")

	order := make([]string, len(q.Sort))
	for i, k := range q.Sort {
		dir := "ASC"
		if k.Desc {
			dir = "DESC"
		}
		order[i] = k.Field.StorageName() + " " + dir
	}
	out.OrderBy = strings.Join(order, ", ")
	return out
}
