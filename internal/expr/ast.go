package expr

import (
	"fmt"
	"math"

	"calculator-mcp/internal/calc"
)

// node is an evaluable AST node. The node set is closed: numbers,
// bound variables, unary and binary arithmetic, calls into the builtin
// table, and references to builtins that were not applied.
type node interface {
	eval(env map[string]float64) (float64, error)
}

type numberNode struct {
	value float64
}

func (n *numberNode) eval(map[string]float64) (float64, error) {
	return n.value, nil
}

type varNode struct {
	name string
}

func (n *varNode) eval(env map[string]float64) (float64, error) {
	v, ok := env[n.name]
	if !ok {
		return 0, invalidf("variable %q has no value", n.name)
	}
	return v, nil
}

type negNode struct {
	operand node
}

func (n *negNode) eval(env map[string]float64) (float64, error) {
	v, err := n.operand.eval(env)
	if err != nil {
		return 0, err
	}
	return -v, nil
}

type binaryNode struct {
	op          tokenKind
	left, right node
}

func (n *binaryNode) eval(env map[string]float64) (float64, error) {
	x, err := n.left.eval(env)
	if err != nil {
		return 0, err
	}
	y, err := n.right.eval(env)
	if err != nil {
		return 0, err
	}

	switch n.op {
	case tokPlus:
		return x + y, nil
	case tokMinus:
		return x - y, nil
	case tokStar:
		return x * y, nil
	case tokSlash:
		if y == 0 {
			return 0, divisionByZero()
		}
		return x / y, nil
	case tokPower:
		return power(x, y)
	default:
		return 0, invalidf("unsupported operator")
	}
}

// power follows real exponentiation: 0 to a negative power divides by
// zero and a negative base to a fractional power has no real value.
func power(x, y float64) (float64, error) {
	if x == 0 && y < 0 {
		return 0, divisionByZero()
	}
	r := math.Pow(x, y)
	if math.IsNaN(r) && !math.IsNaN(x) && !math.IsNaN(y) {
		return 0, nonNumeric("negative base raised to a fractional power")
	}
	if math.IsInf(r, 0) && !math.IsInf(x, 0) && !math.IsInf(y, 0) {
		return 0, nonNumeric("numerical result out of range")
	}
	return r, nil
}

type callNode struct {
	fn   *builtin
	args []node
}

func (n *callNode) eval(env map[string]float64) (float64, error) {
	vals := make([]float64, len(n.args))
	finite := true
	for i, a := range n.args {
		v, err := a.eval(env)
		if err != nil {
			return 0, err
		}
		vals[i] = v
		finite = finite && !math.IsNaN(v) && !math.IsInf(v, 0)
	}

	r := n.fn.fn(vals)
	if finite && math.IsNaN(r) {
		return 0, nonNumeric("math domain error in " + n.fn.name)
	}
	if finite && math.IsInf(r, 0) {
		return 0, nonNumeric("math range error in " + n.fn.name)
	}
	return r, nil
}

// refNode is a builtin or the math namespace named without being applied.
type refNode struct {
	name  string
	class string
}

func (n *refNode) eval(map[string]float64) (float64, error) {
	return 0, invalidf("%s %q cannot be used as a number", n.class, n.name)
}

func invalidf(format string, args ...interface{}) *calc.Error {
	return calc.New(calc.KindInvalidExpression, "evaluate",
		"Invalid mathematical expression or disallowed function/variable: "+fmt.Sprintf(format, args...))
}

func divisionByZero() *calc.Error {
	return calc.New(calc.KindDivisionByZero, "evaluate", "Division by zero is not allowed in the expression.")
}

func nonNumeric(detail string) *calc.Error {
	msg := "Expression did not evaluate to a numeric value."
	if detail != "" {
		msg += " (" + detail + ")"
	}
	return calc.New(calc.KindNonNumeric, "evaluate", msg)
}
