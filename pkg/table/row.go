package table

import (
	"strconv"
	"strings"
)

// Row is an ordered mapping from column name to string-serialized value.
// Rows made by Schema.NewRow always carry every declared column, unset values are empty strings.
type Row struct {
	names  []string
	values []string
}

// NewRow makes a row from parallel lists of names and values.
// Missing values are filled with empty strings, extra values are ignored.
func NewRow(names, values []string) Row {
	r := Row{names: append([]string{}, names...), values: make([]string, len(names))}
	copy(r.values, values)
	return r
}

// Len returns number of columns in the row
func (r Row) Len() int { return len(r.names) }

// Columns returns column names in order
func (r Row) Columns() []string { return append([]string{}, r.names...) }

// Values returns values in column order
func (r Row) Values() []string { return append([]string{}, r.values...) }

// Get returns value of the column and false if the row has no such column
func (r Row) Get(name string) (string, bool) {
	for i, n := range r.names {
		if n == name {
			return r.values[i], true
		}
	}
	return "", false
}

// Value returns value of the column, empty for absent columns
func (r Row) Value(name string) string {
	v, _ := r.Get(name)
	return v
}

// Set sets value of a declared column. Returns false if the row has no such column,
// rows never grow columns outside of their schema.
func (r *Row) Set(name, value string) bool {
	for i, n := range r.names {
		if n == name {
			r.values[i] = value
			return true
		}
	}
	return false
}

// SetInt sets a signed integer value as canonical decimal text
func (r *Row) SetInt(name string, v int64) bool {
	return r.Set(name, strconv.FormatInt(v, 10))
}

// SetUint sets an unsigned integer value as canonical decimal text
func (r *Row) SetUint(name string, v uint64) bool {
	return r.Set(name, strconv.FormatUint(v, 10))
}

// SetFloat sets a floating point value in the shortest decimal form
func (r *Row) SetFloat(name string, v float64) bool {
	return r.Set(name, strconv.FormatFloat(v, 'f', -1, 64))
}

// SetBool sets boolean as 1 or 0
func (r *Row) SetBool(name string, v bool) bool {
	if v {
		return r.Set(name, "1")
	}
	return r.Set(name, "0")
}

// Map returns the row as a plain map. Column order is lost.
func (r Row) Map() map[string]string {
	res := make(map[string]string, len(r.names))
	for i, n := range r.names {
		res[n] = r.values[i]
	}
	return res
}

// String returns row in "name=value, ..." form, used in logs and test failures
func (r Row) String() string {
	var sb strings.Builder
	for i, n := range r.names {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(n)
		sb.WriteString("=")
		sb.WriteString(r.values[i])
	}
	return sb.String()
}
