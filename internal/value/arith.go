package value

import (
	"bytes"
	"fmt"
)

// OperationError is returned by the arithmetic/comparison functions
// below when the operand types are not supported for the operation.
type OperationError struct {
	Op       string
	LhsTag   Tag
	RhsTag   Tag
	Detail   string
}

func (e *OperationError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("unable to %s %s and %s: %s", e.Op, e.LhsTag, e.RhsTag, e.Detail)
	}
	return fmt.Sprintf("unable to %s %s and %s", e.Op, e.LhsTag, e.RhsTag)
}

func opErr(op string, lhs, rhs Value) error {
	return &OperationError{Op: op, LhsTag: TagOf(lhs), RhsTag: TagOf(rhs)}
}

func asNumbers(lhs, rhs Value) (lf, rf float64, bothInt bool, ok bool) {
	switch l := lhs.(type) {
	case int64:
		switch r := rhs.(type) {
		case int64:
			return float64(l), float64(r), true, true
		case float64:
			return float64(l), r, false, true
		}
	case float64:
		switch r := rhs.(type) {
		case int64:
			return l, float64(r), false, true
		case float64:
			return l, r, false, true
		}
	}
	return 0, 0, false, false
}

// Add implements `+`. Numeric operands add per the usual int/float
// promotion rules; Bytes operands concatenate.
func Add(lhs, rhs Value) (Value, error) {
	if lb, ok := lhs.([]byte); ok {
		if rb, ok := rhs.([]byte); ok {
			out := make([]byte, 0, len(lb)+len(rb))
			out = append(out, lb...)
			out = append(out, rb...)
			return out, nil
		}
	}
	if lf, rf, bothInt, ok := asNumbers(lhs, rhs); ok {
		if bothInt {
			return lhs.(int64) + rhs.(int64), nil
		}
		return lf + rf, nil
	}
	return nil, opErr("add", lhs, rhs)
}

// Sub implements `-`.
func Sub(lhs, rhs Value) (Value, error) {
	if lf, rf, bothInt, ok := asNumbers(lhs, rhs); ok {
		if bothInt {
			return lhs.(int64) - rhs.(int64), nil
		}
		return lf - rf, nil
	}
	return nil, opErr("subtract", lhs, rhs)
}

// Mul implements `*`.
func Mul(lhs, rhs Value) (Value, error) {
	if lf, rf, bothInt, ok := asNumbers(lhs, rhs); ok {
		if bothInt {
			return lhs.(int64) * rhs.(int64), nil
		}
		return lf * rf, nil
	}
	return nil, opErr("multiply", lhs, rhs)
}

// Div implements `/`. Division by zero fails regardless of operand
// kind.
func Div(lhs, rhs Value) (Value, error) {
	lf, rf, _, ok := asNumbers(lhs, rhs)
	if !ok {
		return nil, opErr("divide", lhs, rhs)
	}
	if rf == 0 {
		return nil, &OperationError{Op: "divide", LhsTag: TagOf(lhs), RhsTag: TagOf(rhs), Detail: "division by zero"}
	}
	return lf / rf, nil
}

// Rem implements `%`. Modulo by zero fails.
func Rem(lhs, rhs Value) (Value, error) {
	li, lok := lhs.(int64)
	ri, rok := rhs.(int64)
	if lok && rok {
		if ri == 0 {
			return nil, &OperationError{Op: "rem", LhsTag: TagOf(lhs), RhsTag: TagOf(rhs), Detail: "modulo by zero"}
		}
		return li % ri, nil
	}
	lf, rf, _, ok := asNumbers(lhs, rhs)
	if !ok {
		return nil, opErr("rem", lhs, rhs)
	}
	if rf == 0 {
		return nil, &OperationError{Op: "rem", LhsTag: TagOf(lhs), RhsTag: TagOf(rhs), Detail: "modulo by zero"}
	}
	out := lf - rf*float64(int64(lf/rf))
	return out, nil
}

// Merge implements the `merge` operator: Object×Object only, with
// right-hand keys overwriting left-hand ones.
func Merge(lhs, rhs Value) (Value, error) {
	lo, lok := lhs.(Object)
	ro, rok := rhs.(Object)
	if !lok || !rok {
		return nil, opErr("merge", lhs, rhs)
	}
	out := make(Object, len(lo)+len(ro))
	for k, v := range lo {
		out[k] = Clone(v)
	}
	for k, v := range ro {
		out[k] = Clone(v)
	}
	return out, nil
}

func compareNumeric(lhs, rhs Value) (int, bool) {
	lf, rf, _, ok := asNumbers(lhs, rhs)
	if !ok {
		return 0, false
	}
	switch {
	case lf < rf:
		return -1, true
	case lf > rf:
		return 1, true
	default:
		return 0, true
	}
}

func compareBytes(lhs, rhs Value) (int, bool) {
	lb, lok := lhs.([]byte)
	rb, rok := rhs.([]byte)
	if !lok || !rok {
		return 0, false
	}
	return bytes.Compare(lb, rb), true
}

// Gt, Ge, Lt, Le implement the ordered comparisons. They accept
// Integer/Float pairs (with promotion) and Bytes/Bytes pairs.
func Gt(lhs, rhs Value) (Value, error) {
	return orderedCompare("gt", lhs, rhs, func(c int) bool { return c > 0 })
}

func Ge(lhs, rhs Value) (Value, error) {
	return orderedCompare("ge", lhs, rhs, func(c int) bool { return c >= 0 })
}

func Lt(lhs, rhs Value) (Value, error) {
	return orderedCompare("lt", lhs, rhs, func(c int) bool { return c < 0 })
}

func Le(lhs, rhs Value) (Value, error) {
	return orderedCompare("le", lhs, rhs, func(c int) bool { return c <= 0 })
}

func orderedCompare(op string, lhs, rhs Value, test func(int) bool) (Value, error) {
	if c, ok := compareNumeric(lhs, rhs); ok {
		return test(c), nil
	}
	if c, ok := compareBytes(lhs, rhs); ok {
		return test(c), nil
	}
	return nil, opErr(op, lhs, rhs)
}

// Negate implements unary `-`. Float only.
func Negate(v Value) (Value, error) {
	f, ok := v.(float64)
	if !ok {
		return nil, &OperationError{Op: "negate", LhsTag: TagOf(v), RhsTag: TagOf(v), Detail: "negation only supported for floats"}
	}
	return -f, nil
}

// Not implements unary `!`. Boolean only.
func Not(v Value) (Value, error) {
	b, ok := v.(bool)
	if !ok {
		return nil, &OperationError{Op: "not", LhsTag: TagOf(v), RhsTag: TagOf(v), Detail: "negation only supported for booleans"}
	}
	return !b, nil
}

// EqualLossy implements the VM's equality semantics: numeric kinds
// coerce across Integer/Float, Bytes compare byte-wise, Null equals
// only Null, everything else falls back to deep structural equality.
func EqualLossy(lhs, rhs Value) bool {
	if lhs == nil || rhs == nil {
		return lhs == nil && rhs == nil
	}
	if c, ok := compareNumeric(lhs, rhs); ok {
		return c == 0
	}
	if lb, ok := lhs.([]byte); ok {
		if rb, ok := rhs.([]byte); ok {
			return bytes.Equal(lb, rb)
		}
		return false
	}
	switch l := lhs.(type) {
	case []Value:
		r, ok := rhs.([]Value)
		if !ok || len(l) != len(r) {
			return false
		}
		for i := range l {
			if !EqualLossy(l[i], r[i]) {
				return false
			}
		}
		return true
	case Object:
		r, ok := rhs.(Object)
		if !ok || len(l) != len(r) {
			return false
		}
		for k, lv := range l {
			rv, ok := r[k]
			if !ok || !EqualLossy(lv, rv) {
				return false
			}
		}
		return true
	default:
		return lhs == rhs
	}
}
