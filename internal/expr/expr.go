// Package expr parses and evaluates restricted arithmetic expressions.
//
// An expression is infix arithmetic over float64 with + - * / ** and
// parentheses, the constants pi and e, and calls to a fixed set of math
// functions (sin, cos, tan, asin, acos, atan, exp, log, log10, sqrt, pow,
// fabs), optionally written as math.<name>. Every other identifier is
// rejected while parsing, so an expression can do nothing but arithmetic.
package expr

import (
	"math"
	"strings"
)

// Program is a compiled expression. It is immutable and safe for
// concurrent use.
type Program struct {
	src   string
	root  node
	calls map[string]bool
}

// Compile parses src. Names listed in vars are bound variables whose
// values are supplied to Eval; they may not collide with the allow-list.
func Compile(src string, vars ...string) (*Program, error) {
	bound := make(map[string]bool, len(vars))
	for _, v := range vars {
		if _, ok := constants[v]; ok || v == namespace || functions[v] != nil {
			return nil, invalidf("variable name %q shadows a builtin", v)
		}
		bound[v] = true
	}

	if strings.TrimSpace(src) == "" {
		return nil, invalidf("empty expression")
	}

	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}

	p := &parser{toks: toks, vars: bound, calls: make(map[string]bool)}
	root, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, invalidf("unexpected %s at position %d", t, t.pos)
	}

	return &Program{src: src, root: root, calls: p.calls}, nil
}

// String returns the source text of the program.
func (p *Program) String() string {
	return p.src
}

// Calls reports whether the program applies the named builtin function.
func (p *Program) Calls(name string) bool {
	return p.calls[name]
}

// Eval evaluates the program with the given variable values. A program
// that is only a reference to a function or to the math namespace has no
// numeric value.
func (p *Program) Eval(env map[string]float64) (float64, error) {
	if _, ok := p.root.(*refNode); ok {
		return 0, nonNumeric("")
	}
	return p.root.eval(env)
}

// Evaluate compiles and evaluates an expression without variables.
// The result must be a finite number.
func Evaluate(expression string) (float64, error) {
	p, err := Compile(expression)
	if err != nil {
		return 0, err
	}
	v, err := p.Eval(nil)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, nonNumeric("result is not finite")
	}
	return v, nil
}
