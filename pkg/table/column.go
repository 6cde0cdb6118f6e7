// Package table defines the row, column and constraint model shared by every virtual table,
// and the Plugin contract tables implement to produce rows on demand.
package table

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// ColumnType is the declared semantic type of a column.
// Values are always carried as text, the type tells the engine how to interpret them.
type ColumnType int

// enum of supported column types
const (
	Text ColumnType = iota
	Integer
	BigInt
	Double
)

// String returns the SQL type name used in the table declaration
func (t ColumnType) String() string {
	switch t {
	case Integer:
		return "INTEGER"
	case BigInt:
		return "BIGINT"
	case Double:
		return "DOUBLE"
	default:
		return "TEXT"
	}
}

// Numeric reports whether values of this type are decimal numbers
func (t ColumnType) Numeric() bool {
	return t == Integer || t == BigInt || t == Double
}

// ColumnDef defines a single column of a table
type ColumnDef struct {
	Name string
	Type ColumnType

	Index    bool // equality on this column narrows generation
	Unique   bool // indexed column with at most one row per value
	Required bool // without a constraint on one of the required columns the table yields nothing
}

// Schema is the ordered list of columns of a table
type Schema []ColumnDef

// Names returns column names in declaration order
func (s Schema) Names() []string {
	res := make([]string, len(s))
	for i, c := range s {
		res[i] = c.Name
	}
	return res
}

// Index returns position of the column or -1 if not declared
func (s Schema) Index(name string) int {
	for i, c := range s {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Column returns column definition by name
func (s Schema) Column(name string) (ColumnDef, bool) {
	if i := s.Index(name); i >= 0 {
		return s[i], true
	}
	return ColumnDef{}, false
}

// Required returns names of the required columns
func (s Schema) Required() []string {
	var res []string
	for _, c := range s {
		if c.Required {
			res = append(res, c.Name)
		}
	}
	return res
}

// NewRow makes a row with every declared column set to empty string
func (s Schema) NewRow() Row {
	return Row{names: s.Names(), values: make([]string, len(s))}
}

// Declaration returns the CREATE TABLE statement describing the schema
func (s Schema) Declaration(name string) string {
	cols := make([]string, 0, len(s))
	for _, c := range s {
		cols = append(cols, fmt.Sprintf("%q %s", c.Name, c.Type))
	}
	return fmt.Sprintf("CREATE TABLE %q (%s)", name, strings.Join(cols, ", "))
}

// Validate checks the schema has columns, all named and unique
func (s Schema) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("no columns declared")
	}
	errs := new(multierror.Error)
	seen := make(map[string]bool, len(s))
	for i, c := range s {
		if c.Name == "" {
			errs = multierror.Append(errs, fmt.Errorf("column %d has no name", i))
			continue
		}
		if seen[c.Name] {
			errs = multierror.Append(errs, fmt.Errorf("duplicate column %q", c.Name))
		}
		seen[c.Name] = true
		if c.Unique && !c.Index {
			errs = multierror.Append(errs, fmt.Errorf("column %q is unique but not indexed", c.Name))
		}
	}
	return errs.ErrorOrNil()
}
