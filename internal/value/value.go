package value

import (
	"fmt"
	"strconv"
)

const (
	NUMBER_OBJ  = "NUMBER"
	INTEGER_OBJ = "INTEGER"
	STRING_OBJ  = "STRING"
	BOOLEAN_OBJ = "BOOLEAN"
	ERROR_OBJ   = "ERROR"
)

type ValueType string

type Value interface {
	Type() ValueType
	Inspect() string
}

type Number struct {
	Value float64
}

func (n *Number) Type() ValueType { return NUMBER_OBJ }
func (n *Number) Inspect() string { return strconv.FormatFloat(n.Value, 'g', -1, 64) }

type Integer struct {
	Value int64
}

func (i *Integer) Type() ValueType { return INTEGER_OBJ }
func (i *Integer) Inspect() string { return strconv.FormatInt(i.Value, 10) }

type String struct {
	Value string
}

func (s *String) Type() ValueType { return STRING_OBJ }
func (s *String) Inspect() string { return s.Value }

type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ValueType { return BOOLEAN_OBJ }
func (b *Boolean) Inspect() string { return fmt.Sprintf("%t", b.Value) }

// Error is the value domain's only failure carrier. Arithmetic never panics;
// a bad operation yields an Error value that propagates through subsequent
// operations unchanged.
type Error struct {
	Message string
}

func (e *Error) Type() ValueType { return ERROR_OBJ }
func (e *Error) Inspect() string { return "ERROR: " + e.Message }

func NewError(format string, a ...interface{}) *Error {
	return &Error{Message: fmt.Sprintf(format, a...)}
}

func IsError(v Value) bool {
	if v != nil {
		return v.Type() == ERROR_OBJ
	}
	return false
}

// ToNumber is the domain's tolerant coercion: every value has a numeric
// reading, unparseable strings and errors read as 0.
func ToNumber(v Value) float64 {
	switch v := v.(type) {
	case *Number:
		return v.Value
	case *Integer:
		return float64(v.Value)
	case *Boolean:
		if v.Value {
			return 1
		}
		return 0
	case *String:
		f, err := strconv.ParseFloat(v.Value, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func Add(left, right Value) Value {
	if e := firstError(left, right); e != nil {
		return e
	}
	if left.Type() == STRING_OBJ || right.Type() == STRING_OBJ {
		return &String{Value: left.Inspect() + right.Inspect()}
	}
	if l, r, ok := bothIntegers(left, right); ok {
		return &Integer{Value: l + r}
	}
	return &Number{Value: ToNumber(left) + ToNumber(right)}
}

func Sub(left, right Value) Value {
	if e := firstError(left, right); e != nil {
		return e
	}
	if left.Type() == STRING_OBJ || right.Type() == STRING_OBJ {
		return NewError("unknown operator: %s - %s", left.Type(), right.Type())
	}
	if l, r, ok := bothIntegers(left, right); ok {
		return &Integer{Value: l - r}
	}
	return &Number{Value: ToNumber(left) - ToNumber(right)}
}

func Mul(left, right Value) Value {
	if e := firstError(left, right); e != nil {
		return e
	}
	if left.Type() == STRING_OBJ || right.Type() == STRING_OBJ {
		return NewError("unknown operator: %s * %s", left.Type(), right.Type())
	}
	if l, r, ok := bothIntegers(left, right); ok {
		return &Integer{Value: l * r}
	}
	return &Number{Value: ToNumber(left) * ToNumber(right)}
}

// Div owns the zero-divisor policy: a numerically zero divisor yields an
// Error value, never a panic and never an IEEE infinity. Integer division
// stays integral only when exact.
func Div(left, right Value) Value {
	if e := firstError(left, right); e != nil {
		return e
	}
	divisor := ToNumber(right)
	if divisor == 0 {
		return NewError("division by zero")
	}
	if l, r, ok := bothIntegers(left, right); ok {
		if l%r == 0 {
			return &Integer{Value: l / r}
		}
	}
	return &Number{Value: ToNumber(left) / divisor}
}

func firstError(left, right Value) Value {
	if IsError(left) {
		return left
	}
	if IsError(right) {
		return right
	}
	return nil
}

func bothIntegers(left, right Value) (int64, int64, bool) {
	l, lok := left.(*Integer)
	r, rok := right.(*Integer)
	if !lok || !rok {
		return 0, 0, false
	}
	return l.Value, r.Value, true
}
