package table

import "sort"

// Plugin is a virtual table producing rows on demand.
// Schema must be stable for the lifetime of the plugin. Generate must return at least every row
// matching the request constraints, it may return more and the engine filters the rest.
type Plugin interface {
	Name() string
	Schema() Schema
	Generate(req Request) ([]Row, error)
}

// Request is passed to Plugin.Generate for a single scan
type Request struct {
	Constraints ConstraintSet
	used        map[string]bool // nil means every column is used
}

// NewRequest makes a request for the given constraints. Without used columns every column is
// considered used.
func NewRequest(cs ConstraintSet, used ...string) Request {
	res := Request{Constraints: cs}
	if len(used) > 0 {
		res.used = make(map[string]bool, len(used))
		for _, u := range used {
			res.used[u] = true
		}
	}
	return res
}

// IsColumnUsed reports whether the engine reads the column, plugins may skip costly fields otherwise
func (r Request) IsColumnUsed(name string) bool {
	if r.used == nil {
		return true
	}
	return r.used[name]
}

// AnyColumnUsed reports whether at least one of the columns is used
func (r Request) AnyColumnUsed(names ...string) bool {
	for _, n := range names {
		if r.IsColumnUsed(n) {
			return true
		}
	}
	return false
}

// UsedColumns returns sorted names of used columns, nil if every column is used
func (r Request) UsedColumns() []string {
	if r.used == nil {
		return nil
	}
	res := make([]string, 0, len(r.used))
	for k := range r.used {
		res = append(res, k)
	}
	sort.Strings(res)
	return res
}

// Func is an adapter making a Plugin from a name, schema and generator function
type Func struct {
	TableName   string
	TableSchema Schema
	Gen         func(req Request) ([]Row, error)
}

// Name returns table name
func (f Func) Name() string { return f.TableName }

// Schema returns table schema
func (f Func) Schema() Schema { return f.TableSchema }

// Generate calls the generator function
func (f Func) Generate(req Request) ([]Row, error) { return f.Gen(req) }
