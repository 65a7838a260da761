package transform

import (
	"math"

	"flux/internal/ast"
	"flux/internal/value"
)

// Environment is the caller-supplied semi-global scope: named, still
// unevaluated expressions. It is read-only for the duration of one Realize
// call.
type Environment map[string]ast.ValueExpr

// Result is the realized mapping. It doubles as the evaluator's working
// accumulator: modifiers evaluated earlier are visible to later ones through
// this.* references.
type Result map[string]value.Value

// zero is the substitute for every missing reference. Absence is never an
// error in this language.
var zero = &ast.IntegerLiteral{Value: 0}

// Realize folds a transformer's modifier sequence into a value mapping.
// nCycles and env are constants for the whole pass. The fold is inherently
// sequential: each modifier may observe the keys written before it, so the
// sequence cannot be evaluated out of order.
func Realize(nCycles float64, env Environment, t *ast.Transformer) Result {
	return RealizeInto(nCycles, env, t, Result{})
}

// RealizeInto folds into an existing accumulator. Hosts with a running
// session (the REPL) use this to keep earlier results visible to later
// programs; the core contract is Realize, which always starts empty.
func RealizeInto(nCycles float64, env Environment, t *ast.Transformer, m Result) Result {
	for _, mod := range t.Modifiers {
		m[mod.Key] = eval(nCycles, env, m, mod.Value)
	}
	return m
}

func eval(nCycles float64, env Environment, m Result, expr ast.ValueExpr) value.Value {
	switch expr := expr.(type) {

	case *ast.NumberLiteral:
		return &value.Number{Value: expr.Value}

	case *ast.IntegerLiteral:
		return &value.Integer{Value: expr.Value}

	case *ast.StringLiteral:
		return &value.String{Value: expr.Value}

	case *ast.BooleanLiteral:
		return &value.Boolean{Value: expr.Value}

	case *ast.ThisRef:
		if v, ok := m[expr.Name]; ok {
			return v
		}
		return &value.Integer{Value: 0}

	case *ast.SemiGlobalRef:
		// A semi-global expands in the caller's local scope: the found
		// expression evaluates against the same accumulator and phase, so it
		// may itself reach back into this.* keys.
		found, ok := env[expr.Name]
		if !ok {
			found = zero
		}
		return eval(nCycles, env, m, found)

	case *ast.InfixExpression:
		left := eval(nCycles, env, m, expr.Left)
		right := eval(nCycles, env, m, expr.Right)
		switch expr.Operator {
		case "+":
			return value.Add(left, right)
		case "-":
			return value.Sub(left, right)
		case "*":
			return value.Mul(left, right)
		case "/":
			return value.Div(left, right)
		default:
			return value.NewError("unknown operator: %s", expr.Operator)
		}

	case *ast.OscExpression:
		f := value.ToNumber(eval(nCycles, env, m, expr.Freq))
		return &value.Number{Value: math.Sin(f * 2 * math.Pi * nCycles)}

	case *ast.RangeExpression:
		lo := value.ToNumber(eval(nCycles, env, m, expr.Lo))
		hi := value.ToNumber(eval(nCycles, env, m, expr.Hi))
		x := value.ToNumber(eval(nCycles, env, m, expr.X))
		return &value.Number{Value: (x*0.5+0.5)*(hi-lo) + lo}

	default:
		return value.NewError("unknown expression type: %T", expr)
	}
}
