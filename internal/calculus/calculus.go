// Package calculus numerically integrates and differentiates expressions
// in one variable, x.
//
// Integration uses adaptive Gauss–Kronrod 7/15 quadrature. Differentiation
// starts from a central difference and refines it with a fourth-order
// stencil over shrinking steps, reporting a convergence status and an
// error estimate. Every failure is a *calc.Error naming the expression.
package calculus

import (
	"fmt"
	"math"

	"calculator-mcp/internal/calc"
	"calculator-mcp/internal/expr"
)

// Variable is the name of the bound variable in calculus expressions.
const Variable = "x"

const convergenceFailure = "Numerical differentiation failed to converge or encountered an error."

// function compiles expression as a function of x.
func function(expression string) (*expr.Program, integrand, error) {
	p, err := expr.Compile(expression, Variable)
	if err != nil {
		return nil, nil, err
	}
	env := map[string]float64{}
	return p, func(x float64) (float64, error) {
		env[Variable] = x
		return p.Eval(env)
	}, nil
}

// Integrate returns the definite integral of expression over
// [lower, upper]. Either bound may be infinite.
func Integrate(expression string, lower, upper float64) (float64, error) {
	q, err := IntegrateDetailed(expression, lower, upper)
	if err != nil {
		return 0, err
	}
	return q.Value, nil
}

// IntegrateDetailed is Integrate with the quadrature diagnostics.
func IntegrateDetailed(expression string, lower, upper float64) (Quadrature, error) {
	wrap := func(cause error) error {
		return calc.Wrap(calc.KindIntegration, "integrate",
			fmt.Sprintf("Error during integration of '%s'", expression), cause)
	}

	if math.IsNaN(lower) || math.IsNaN(upper) {
		return Quadrature{}, wrap(calc.New(calc.KindInvalidArgument, "integrate", "integration bounds must be numbers"))
	}

	_, f, err := function(expression)
	if err != nil {
		return Quadrature{}, wrap(err)
	}

	q, err := quadrature(f, lower, upper)
	if err != nil {
		return Quadrature{}, wrap(err)
	}
	if math.IsNaN(q.Value) || math.IsInf(q.Value, 0) {
		return Quadrature{}, wrap(fmt.Errorf("quadrature produced a non-finite estimate"))
	}
	return q, nil
}

// Differentiate returns the derivative of expression at point, starting
// from the given step.
func Differentiate(expression string, point, step float64) (float64, error) {
	d, err := DifferentiateDetailed(expression, point, step)
	if err != nil {
		return 0, err
	}
	return d.Value, nil
}

// DifferentiateDetailed is Differentiate with the refinement diagnostics.
//
// At point 0, expressions calling fabs are checked for a kink: if the
// central differences at step and step/10 disagree by more than 10% the
// point is reported as non-differentiable. sqrt combined with fabs at 0
// is always rejected. These checks are deliberately narrow and do not
// detect other non-smooth points.
func DifferentiateDetailed(expression string, point, step float64) (Derivative, error) {
	wrap := func(cause error) error {
		return calc.Wrap(calc.KindDifferentiation, "differentiate",
			fmt.Sprintf("Error during differentiation of '%s' at point %g with step %g", expression, point, step), cause)
	}

	if math.IsNaN(point) || math.IsInf(point, 0) {
		return Derivative{}, wrap(calc.New(calc.KindInvalidArgument, "differentiate", "point must be a finite number"))
	}
	if !(step > 0) || math.IsInf(step, 0) {
		return Derivative{}, wrap(calc.New(calc.KindInvalidArgument, "differentiate", "step must be a positive finite number"))
	}

	p, f, err := function(expression)
	if err != nil {
		return Derivative{}, wrap(err)
	}

	approx, err := central(f, point, step)
	if err != nil {
		return Derivative{}, wrap(err)
	}

	if point == 0 && p.Calls("fabs") {
		fine, err := central(f, point, step/10)
		if err != nil {
			return Derivative{}, wrap(err)
		}
		if math.Abs(approx-fine) > 0.1*math.Max(1, math.Abs(approx)) {
			return Derivative{}, calc.New(calc.KindNonConvergence, "differentiate",
				convergenceFailure+" Possible non-differentiable point.")
		}
		if p.Calls("sqrt") {
			return Derivative{}, calc.New(calc.KindNonConvergence, "differentiate",
				convergenceFailure+" Non-differentiable point detected.")
		}
	}

	d, err := refine(f, point, step)
	if err != nil {
		return Derivative{}, wrap(err)
	}
	d.Central = approx
	if !d.Success {
		return d, calc.New(calc.KindNonConvergence, "differentiate",
			fmt.Sprintf("%s Status: %d (%s), estimated error: %g", convergenceFailure, int(d.Status), d.Status, d.Error))
	}
	return d, nil
}
