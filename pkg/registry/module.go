package registry

import (
	"errors"
	"fmt"
	"hash/fnv"
	"log"
	"strconv"
	"strings"

	"modernc.org/sqlite/vtab"

	"github.com/umputun/hostql/pkg/table"
)

// Module returns the engine module serving every registered table.
// The module takes the plugin name from its first argument, "USING module(processes)",
// and falls back to the name of the virtual table.
func (r *Registry) Module() vtab.Module { return &module{reg: r} }

type module struct {
	reg *Registry
}

func (m *module) Create(ctx vtab.Context, args []string) (vtab.Table, error) { return m.connect(ctx, args) }

func (m *module) Connect(ctx vtab.Context, args []string) (vtab.Table, error) { return m.connect(ctx, args) }

// connect args are module name, database name, table name and then module arguments
func (m *module) connect(ctx vtab.Context, args []string) (vtab.Table, error) {
	if len(args) < 3 {
		return nil, fmt.Errorf("not enough module arguments: %v", args)
	}
	name := args[2]
	if len(args) > 3 {
		name = strings.Trim(strings.TrimSpace(args[3]), `"'`)
	}
	p, err := m.reg.Lookup(name)
	if err != nil {
		return nil, err
	}
	schema := p.Schema()
	if err := ctx.Declare(schema.Declaration(name)); err != nil {
		return nil, fmt.Errorf("can't declare table %s: %w", name, err)
	}
	return &virtualTable{plugin: p, schema: schema}, nil
}

type virtualTable struct {
	plugin table.Plugin
	schema table.Schema
}

func (t *virtualTable) BestIndex(info *vtab.IndexInfo) error {
	bestIndex(t.schema, info)
	return nil
}

func (t *virtualTable) Open() (vtab.Cursor, error) { return &cursor{tbl: t}, nil }

func (t *virtualTable) Disconnect() error { return nil }

func (t *virtualTable) Destroy() error { return nil }

type cursorState int

const (
	stateUnopened cursorState = iota
	statePositioned
	stateExhausted
	stateClosed
)

var errCursorClosed = errors.New("cursor closed")

// cursor walks rows generated by the latest Filter call. Each Filter generates rows again,
// the engine calls it once per outer row of a nested loop join.
type cursor struct {
	tbl   *virtualTable
	state cursorState
	rows  []table.Row
	pos   int
}

func (c *cursor) Filter(_ int, idxStr string, vals []vtab.Value) error {
	if c.state == stateClosed {
		return errCursorClosed
	}
	p, err := decodePlan(idxStr)
	if err != nil {
		return fmt.Errorf("can't decode plan for %s: %w", c.tbl.plugin.Name(), err)
	}
	cs, err := p.constraints(c.tbl.schema, vals)
	if err != nil {
		return fmt.Errorf("can't make constraints for %s: %w", c.tbl.plugin.Name(), err)
	}
	req := table.NewRequest(cs, p.usedColumns(c.tbl.schema)...)
	log.Printf("[DEBUG] generate %s, constraints: %q", c.tbl.plugin.Name(), cs.String())
	rows, err := c.tbl.plugin.Generate(req)
	if err != nil {
		c.rows, c.state = nil, stateExhausted
		return fmt.Errorf("can't generate %s: %w", c.tbl.plugin.Name(), err)
	}
	c.rows, c.pos = rows, 0
	c.state = statePositioned
	if len(rows) == 0 {
		c.state = stateExhausted
	}
	return nil
}

func (c *cursor) Next() error {
	switch c.state {
	case stateClosed:
		return errCursorClosed
	case statePositioned:
		c.pos++
		if c.pos >= len(c.rows) {
			c.state = stateExhausted
		}
	}
	return nil
}

func (c *cursor) Eof() bool { return c.state != statePositioned }

func (c *cursor) Column(col int) (vtab.Value, error) {
	if c.state != statePositioned {
		return nil, fmt.Errorf("cursor of %s is not positioned", c.tbl.plugin.Name())
	}
	if col < 0 || col >= len(c.tbl.schema) {
		return nil, fmt.Errorf("column %d out of range for %s", col, c.tbl.plugin.Name())
	}
	def := c.tbl.schema[col]
	return columnValue(c.rows[c.pos].Value(def.Name), def.Type), nil
}

// Rowid is derived from row values, so the same row gets the same id in every Filter call.
// The engine relies on it to drop duplicates when it unions OR terms.
func (c *cursor) Rowid() (int64, error) {
	if c.state != statePositioned {
		return 0, fmt.Errorf("cursor of %s is not positioned", c.tbl.plugin.Name())
	}
	h := fnv.New64a()
	for _, v := range c.rows[c.pos].Values() {
		_, _ = h.Write([]byte(v))
		_, _ = h.Write([]byte{0})
	}
	return int64(h.Sum64()), nil // nolint
}

func (c *cursor) Close() error {
	c.rows, c.state = nil, stateClosed
	return nil
}

// columnValue converts text to the declared type, empty numeric values are NULL
// and values failing to parse are passed as text
func columnValue(v string, typ table.ColumnType) vtab.Value {
	switch typ {
	case table.Integer, table.BigInt:
		if v == "" {
			return nil
		}
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
		return v
	case table.Double:
		if v == "" {
			return nil
		}
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		return v
	default:
		return v
	}
}
