package table

import (
	"cmp"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/go-pkgz/stringutils"
)

// Op is a constraint operator
type Op int

// enum of operators a constraint can carry
const (
	OpEQ Op = iota + 1
	OpLT
	OpLE
	OpGT
	OpGE
	OpLike
	OpIn
)

// String returns SQL spelling of the operator
func (o Op) String() string {
	switch o {
	case OpEQ:
		return "="
	case OpLT:
		return "<"
	case OpLE:
		return "<="
	case OpGT:
		return ">"
	case OpGE:
		return ">="
	case OpLike:
		return "LIKE"
	case OpIn:
		return "IN"
	default:
		return "?"
	}
}

// Constraint is a single predicate on one column: an operator and its literal operand(s).
// Only IN carries more than one operand.
type Constraint struct {
	Op       Op
	Operands []string
}

// Eq makes an equality constraint
func Eq(v string) Constraint { return Constraint{Op: OpEQ, Operands: []string{v}} }

// LikeOf makes a LIKE constraint
func LikeOf(pattern string) Constraint { return Constraint{Op: OpLike, Operands: []string{pattern}} }

// In makes an IN constraint
func In(vals ...string) Constraint {
	return Constraint{Op: OpIn, Operands: append([]string{}, vals...)}
}

// Operand returns the first operand, empty if none
func (c Constraint) Operand() string {
	if len(c.Operands) == 0 {
		return ""
	}
	return c.Operands[0]
}

// Matches checks value against the constraint. Numeric types compare numerically,
// text compares bytewise, LIKE follows the engine's LIKE semantics.
func (c Constraint) Matches(value string, typ ColumnType) bool {
	switch c.Op {
	case OpLike:
		return Like(c.Operand(), value)
	case OpIn:
		for _, op := range c.Operands {
			if compare(value, op, typ) == 0 {
				return true
			}
		}
		return false
	case OpEQ:
		return compare(value, c.Operand(), typ) == 0
	case OpLT:
		return compare(value, c.Operand(), typ) < 0
	case OpLE:
		return compare(value, c.Operand(), typ) <= 0
	case OpGT:
		return compare(value, c.Operand(), typ) > 0
	case OpGE:
		return compare(value, c.Operand(), typ) >= 0
	}
	return false
}

// String returns constraint in SQL-ish form, like "= 1" or "IN (1, 2)"
func (c Constraint) String() string {
	if c.Op == OpIn {
		return fmt.Sprintf("IN (%s)", strings.Join(c.Operands, ", "))
	}
	return fmt.Sprintf("%s %s", c.Op, c.Operand())
}

// compare numeric values numerically if both parse, integers exactly, falls back to bytewise comparison
func compare(a, b string, typ ColumnType) int {
	if !typ.Numeric() {
		return strings.Compare(a, b)
	}
	ia, errA := strconv.ParseInt(a, 10, 64)
	ib, errB := strconv.ParseInt(b, 10, 64)
	if errA == nil && errB == nil {
		return cmp.Compare(ia, ib)
	}
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	if errA == nil && errB == nil {
		return cmp.Compare(fa, fb)
	}
	return strings.Compare(a, b)
}

// ConstraintList is the ordered list of constraints applied to one column
type ConstraintList []Constraint

// Equals returns operands of all "=" and "IN" constraints, deduplicated, in order of appearance
func (l ConstraintList) Equals() []string {
	var res []string
	for _, c := range l {
		if c.Op == OpEQ || c.Op == OpIn {
			res = append(res, c.Operands...)
		}
	}
	return stringutils.DeDup(res)
}

// Patterns returns operands of all LIKE constraints
func (l ConstraintList) Patterns() []string {
	var res []string
	for _, c := range l {
		if c.Op == OpLike {
			res = append(res, c.Operand())
		}
	}
	return stringutils.DeDup(res)
}

// Exists reports whether any constraint uses one of the operators, any operator if none given
func (l ConstraintList) Exists(ops ...Op) bool {
	if len(ops) == 0 {
		return len(l) > 0
	}
	for _, c := range l {
		for _, op := range ops {
			if c.Op == op {
				return true
			}
		}
	}
	return false
}

// Matches reports whether value satisfies every constraint of the list
func (l ConstraintList) Matches(value string, typ ColumnType) bool {
	for _, c := range l {
		if !c.Matches(value, typ) {
			return false
		}
	}
	return true
}

// ColumnConstraint binds a constraint to a column name, used to build ConstraintSet
type ColumnConstraint struct {
	Column string
	Constraint
}

// ConstraintSet maps column names to constraints applying to them for the current scan.
// It is immutable once built, accessors hand out copies.
type ConstraintSet struct {
	cols map[string]ConstraintList
}

// NewConstraintSet makes a set from column constraints, keeping their order per column
func NewConstraintSet(ccs ...ColumnConstraint) ConstraintSet {
	res := ConstraintSet{cols: make(map[string]ConstraintList)}
	for _, cc := range ccs {
		c := Constraint{Op: cc.Op, Operands: append([]string{}, cc.Operands...)}
		res.cols[cc.Column] = append(res.cols[cc.Column], c)
	}
	return res
}

// Get returns constraints of the column, empty list if the column has none
func (s ConstraintSet) Get(column string) ConstraintList {
	src := s.cols[column]
	if len(src) == 0 {
		return ConstraintList{}
	}
	res := make(ConstraintList, len(src))
	for i, c := range src {
		res[i] = Constraint{Op: c.Op, Operands: append([]string{}, c.Operands...)}
	}
	return res
}

// Has reports whether the column has at least one constraint
func (s ConstraintSet) Has(column string) bool { return len(s.cols[column]) > 0 }

// Columns returns sorted names of constrained columns
func (s ConstraintSet) Columns() []string {
	res := make([]string, 0, len(s.cols))
	for k, v := range s.cols {
		if len(v) > 0 {
			res = append(res, k)
		}
	}
	sort.Strings(res)
	return res
}

// Empty reports whether no column is constrained
func (s ConstraintSet) Empty() bool { return len(s.Columns()) == 0 }

// String returns the set in a stable "col op val AND ..." form
func (s ConstraintSet) String() string {
	var parts []string
	for _, col := range s.Columns() {
		for _, c := range s.cols[col] {
			parts = append(parts, col+" "+c.String())
		}
	}
	return strings.Join(parts, " AND ")
}
