package registry

import (
	"fmt"
	"strconv"
	"strings"

	"modernc.org/sqlite/vtab"

	"github.com/umputun/hostql/pkg/table"
)

// cost estimates reported to the planner
const (
	costIndexed     = 1
	costScan        = 1e6
	costUnsatisfied = 1e12
)

// plan is what BestIndex hands over to Filter through idxStr. Slots are ordered by argv position.
type plan struct {
	used  uint64 // column usage bitmask, bit 63 stands for every column past 62
	slots []slot
}

type slot struct {
	col int
	op  table.Op
}

// encode makes idxStr form of the plan, "used-hex|col:op,col:op"
func (p plan) encode() string {
	parts := make([]string, len(p.slots))
	for i, s := range p.slots {
		parts[i] = fmt.Sprintf("%d:%d", s.col, s.op)
	}
	return strconv.FormatUint(p.used, 16) + "|" + strings.Join(parts, ",")
}

func decodePlan(s string) (plan, error) {
	if s == "" {
		return plan{used: ^uint64(0)}, nil
	}
	used, slots, ok := strings.Cut(s, "|")
	if !ok {
		return plan{}, fmt.Errorf("invalid plan %q", s)
	}
	var res plan
	var err error
	if res.used, err = strconv.ParseUint(used, 16, 64); err != nil {
		return plan{}, fmt.Errorf("invalid column usage in plan %q: %w", s, err)
	}
	if slots == "" {
		return res, nil
	}
	for _, elem := range strings.Split(slots, ",") {
		c, o, ok := strings.Cut(elem, ":")
		if !ok {
			return plan{}, fmt.Errorf("invalid slot %q in plan %q", elem, s)
		}
		col, err := strconv.Atoi(c)
		if err != nil {
			return plan{}, fmt.Errorf("invalid column in plan %q: %w", s, err)
		}
		op, err := strconv.Atoi(o)
		if err != nil {
			return plan{}, fmt.Errorf("invalid operator in plan %q: %w", s, err)
		}
		res.slots = append(res.slots, slot{col: col, op: table.Op(op)})
	}
	return res, nil
}

// usedColumns returns names of columns marked in the usage bitmask, nil if all of them are used
func (p plan) usedColumns(schema table.Schema) []string {
	if p.used == ^uint64(0) {
		return nil
	}
	res := []string{}
	for i, c := range schema {
		bit := i
		if bit > 63 {
			bit = 63
		}
		if p.used&(1<<uint(bit)) != 0 {
			res = append(res, c.Name)
		}
	}
	return res
}

// pushdownOp maps engine operator to the supported ones, false for operators not pushed down
func pushdownOp(op vtab.ConstraintOp) (table.Op, bool) {
	switch op {
	case vtab.OpEQ:
		return table.OpEQ, true
	case vtab.OpLT:
		return table.OpLT, true
	case vtab.OpLE:
		return table.OpLE, true
	case vtab.OpGT:
		return table.OpGT, true
	case vtab.OpGE:
		return table.OpGE, true
	case vtab.OpLIKE:
		return table.OpLike, true
	default:
		return 0, false
	}
}

// bestIndex picks usable constraints, assigns argv slots and estimates the cost of the scan.
// Omit is never set, the engine re-checks every constraint itself.
func bestIndex(schema table.Schema, info *vtab.IndexInfo) {
	p := plan{used: info.ColUsed}
	if p.used == 0 {
		p.used = ^uint64(0) // count(*) and friends report nothing, treat as everything
	}

	indexed, unique := false, false
	required := schema.Required()
	requiredMet := len(required) == 0
	for i, c := range info.Constraints {
		if !c.Usable || c.Column < 0 || c.Column >= len(schema) {
			continue
		}
		op, ok := pushdownOp(c.Op)
		if !ok {
			continue
		}
		info.Constraints[i].ArgIndex = len(p.slots)
		p.slots = append(p.slots, slot{col: c.Column, op: op})

		def := schema[c.Column]
		if op == table.OpEQ && def.Index {
			indexed = true
			unique = unique || def.Unique
		}
		if def.Required && (op == table.OpEQ || op == table.OpLike) {
			requiredMet = true
		}
	}

	info.IdxNum = int64(len(p.slots))
	info.IdxStr = p.encode()
	switch {
	case indexed:
		info.EstimatedCost = costIndexed
		info.EstimatedRows = 1
		if unique {
			info.IdxFlags |= vtab.IndexScanUnique
		}
	case !requiredMet:
		info.EstimatedCost = costUnsatisfied
		info.EstimatedRows = int64(costUnsatisfied)
	default:
		info.EstimatedCost = costScan / float64(len(p.slots)+1)
		info.EstimatedRows = int64(info.EstimatedCost)
	}
}

// constraints pairs plan slots with values bound by the engine. NULL values are dropped.
func (p plan) constraints(schema table.Schema, vals []vtab.Value) (table.ConstraintSet, error) {
	if len(vals) != len(p.slots) {
		return table.ConstraintSet{}, fmt.Errorf("plan has %d slots, got %d values", len(p.slots), len(vals))
	}
	ccs := make([]table.ColumnConstraint, 0, len(vals))
	for i, s := range p.slots {
		if s.col < 0 || s.col >= len(schema) {
			return table.ConstraintSet{}, fmt.Errorf("column %d out of range", s.col)
		}
		v, ok := valueText(vals[i])
		if !ok {
			continue
		}
		ccs = append(ccs, table.ColumnConstraint{
			Column:     schema[s.col].Name,
			Constraint: table.Constraint{Op: s.op, Operands: []string{v}},
		})
	}
	return table.NewConstraintSet(ccs...), nil
}

// valueText converts a bound value to its canonical text, false for NULL
func valueText(v vtab.Value) (string, bool) {
	switch vv := v.(type) {
	case nil:
		return "", false
	case string:
		return vv, true
	case []byte:
		return string(vv), true
	case int64:
		return strconv.FormatInt(vv, 10), true
	case float64:
		return strconv.FormatFloat(vv, 'f', -1, 64), true
	case bool:
		if vv {
			return "1", true
		}
		return "0", true
	default:
		return fmt.Sprint(vv), true
	}
}
