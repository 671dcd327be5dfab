package calculus

import (
	"errors"
	"math"
	"strings"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"

	"calculator-mcp/internal/calc"
)

func TestIntegrate(t *testing.T) {
	tests := []struct {
		name         string
		expr         string
		lower, upper float64
		want         float64
		tol          float64
	}{
		{name: "identity", expr: "x", lower: 0, upper: 1, want: 0.5, tol: 1e-12},
		{name: "square", expr: "x**2", lower: 0, upper: 1, want: 1.0 / 3, tol: 1e-12},
		{name: "sine over half period", expr: "math.sin(x)", lower: 0, upper: math.Pi, want: 2, tol: 1e-10},
		{name: "product with sine", expr: "x**2 * math.sin(x)", lower: 0, upper: math.Pi, want: math.Pi*math.Pi - 4, tol: 1e-9},
		{name: "reversed bounds", expr: "x", lower: 1, upper: 0, want: -0.5, tol: 1e-12},
		{name: "empty interval", expr: "x**2", lower: 3, upper: 3, want: 0, tol: 0},
		{name: "gaussian over the real line", expr: "exp(-x**2)", lower: math.Inf(-1), upper: math.Inf(1), want: math.Sqrt(math.Pi), tol: 1e-7},
		{name: "exponential decay", expr: "exp(-x)", lower: 0, upper: math.Inf(1), want: 1, tol: 1e-7},
		{name: "lorentzian half line", expr: "1/(1+x**2)", lower: math.Inf(-1), upper: 0, want: math.Pi / 2, tol: 1e-7},
		{name: "oscillating", expr: "cos(10*x)", lower: 0, upper: math.Pi / 20, want: 0.1, tol: 1e-10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Integrate(tt.expr, tt.lower, tt.upper)
			if err != nil {
				t.Fatalf("Integrate(%q) unexpected error: %v", tt.expr, err)
			}
			if math.Abs(got-tt.want) > tt.tol {
				t.Errorf("Integrate(%q, %v, %v) = %.15g, want %.15g", tt.expr, tt.lower, tt.upper, got, tt.want)
			}
		})
	}
}

func TestIntegrateDetailed(t *testing.T) {
	q, err := IntegrateDetailed("x**2", 0, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !q.Converged {
		t.Error("expected convergence for a polynomial")
	}
	if q.Intervals != 1 {
		t.Errorf("expected a single interval, got %d", q.Intervals)
	}
	if q.Evaluations != 15 {
		t.Errorf("expected 15 evaluations, got %d", q.Evaluations)
	}
	if q.AbsError > 1e-12 {
		t.Errorf("error estimate too large: %g", q.AbsError)
	}
}

func TestIntegrate_Errors(t *testing.T) {
	tests := []struct {
		name         string
		expr         string
		lower, upper float64
		causeKind    calc.Kind
	}{
		{name: "singularity at a node", expr: "1/x", lower: -1, upper: 1, causeKind: calc.KindDivisionByZero},
		{name: "unknown function", expr: "nonexistent_func(x)", lower: 0, upper: 1, causeKind: calc.KindInvalidExpression},
		{name: "syntax error", expr: "x +", lower: 0, upper: 1, causeKind: calc.KindInvalidExpression},
		{name: "domain error", expr: "sqrt(x)", lower: -1, upper: 1, causeKind: calc.KindNonNumeric},
		{name: "function reference", expr: "math.sin", lower: 0, upper: 1, causeKind: calc.KindNonNumeric},
		{name: "nan bound", expr: "x", lower: math.NaN(), upper: 1, causeKind: calc.KindInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Integrate(tt.expr, tt.lower, tt.upper)
			if err == nil {
				t.Fatal("expected error")
			}
			if calc.KindOf(err) != calc.KindIntegration {
				t.Errorf("outer kind = %v, want integration failure", calc.KindOf(err))
			}
			if !errors.Is(err, tt.causeKind) {
				t.Errorf("expected cause kind %v in chain: %v", tt.causeKind, err)
			}
			if !strings.HasPrefix(err.Error(), "Error during integration of '"+tt.expr+"'") {
				t.Errorf("unexpected message: %q", err.Error())
			}
		})
	}
}

func TestDifferentiate(t *testing.T) {
	tests := []struct {
		name  string
		expr  string
		point float64
		step  float64
		want  float64
		tol   float64
	}{
		{name: "square", expr: "x**2", point: 2, step: DefaultStep, want: 4, tol: 1e-6},
		{name: "cube", expr: "x**3", point: 1, step: DefaultStep, want: 3, tol: 1e-6},
		{name: "sine at zero", expr: "math.sin(x)", point: 0, step: DefaultStep, want: 1, tol: 1e-6},
		{name: "exp at zero", expr: "math.exp(x)", point: 0, step: DefaultStep, want: 1, tol: 1e-6},
		{name: "custom step", expr: "x**2", point: 2, step: 1e-5, want: 4, tol: 1e-6},
		{name: "large values", expr: "x**2", point: 1000, step: DefaultStep, want: 2000, tol: 1e-3},
		{name: "log", expr: "log(x)", point: 1, step: DefaultStep, want: 1, tol: 1e-6},
		{name: "fabs away from zero", expr: "fabs(x)", point: -3, step: DefaultStep, want: -1, tol: 1e-6},
		{name: "smooth fabs product at zero", expr: "x*fabs(x)", point: 0, step: DefaultStep, want: 0, tol: 1e-6},
		{name: "large step", expr: "sin(x)", point: 1, step: 0.1, want: math.Cos(1), tol: 1e-7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Differentiate(tt.expr, tt.point, tt.step)
			if err != nil {
				t.Fatalf("Differentiate(%q, %v) unexpected error: %v", tt.expr, tt.point, err)
			}
			if !scalar.EqualWithinAbsOrRel(got, tt.want, tt.tol, tt.tol) {
				t.Errorf("Differentiate(%q, %v) = %.12g, want %.12g", tt.expr, tt.point, got, tt.want)
			}
		})
	}
}

func TestDifferentiateDetailed(t *testing.T) {
	d, err := DifferentiateDetailed("x**3 + 2*x", 1, DefaultStep)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.Success || d.Status != StatusConverged {
		t.Errorf("expected convergence, got success=%v status=%v", d.Success, d.Status)
	}
	if !scalar.EqualWithinAbsOrRel(d.Central, 5, 1e-6, 1e-6) {
		t.Errorf("central difference = %v, want 5", d.Central)
	}
	if d.Iterations < 2 || d.Evaluations != 4*d.Iterations {
		t.Errorf("unexpected iteration accounting: %d iterations, %d evaluations", d.Iterations, d.Evaluations)
	}
	if d.Error < 0 || d.Error > 1e-6 {
		t.Errorf("unexpected error estimate %g", d.Error)
	}
}

func TestDifferentiate_Errors(t *testing.T) {
	tests := []struct {
		name      string
		expr      string
		point     float64
		step      float64
		wantKind  calc.Kind
		causeKind calc.Kind
		errSubstr string
	}{
		{
			name: "unknown function", expr: "nonexistent_func(x)", point: 1, step: DefaultStep,
			wantKind: calc.KindDifferentiation, causeKind: calc.KindInvalidExpression,
			errSubstr: "Error during differentiation of 'nonexistent_func(x)' at point 1",
		},
		{
			name: "non-numeric", expr: "math.sin", point: 1, step: DefaultStep,
			wantKind: calc.KindDifferentiation, causeKind: calc.KindNonNumeric,
		},
		{
			name: "domain error at a sample", expr: "log(x)", point: 0, step: DefaultStep,
			wantKind: calc.KindDifferentiation, causeKind: calc.KindNonNumeric,
		},
		{
			name: "zero step", expr: "x", point: 1, step: 0,
			wantKind: calc.KindDifferentiation, causeKind: calc.KindInvalidArgument,
		},
		{
			name: "negative step", expr: "x", point: 1, step: -1e-3,
			wantKind: calc.KindDifferentiation, causeKind: calc.KindInvalidArgument,
		},
		{
			name: "non-finite point", expr: "x", point: math.Inf(1), step: DefaultStep,
			wantKind: calc.KindDifferentiation, causeKind: calc.KindInvalidArgument,
		},
		{
			name: "kink detected", expr: "x/fabs(x)", point: 0, step: DefaultStep,
			wantKind: calc.KindNonConvergence, causeKind: calc.KindNonConvergence,
			errSubstr: "Possible non-differentiable point",
		},
		{
			name: "sqrt of fabs at zero", expr: "math.sqrt(math.fabs(x))", point: 0, step: 1e-8,
			wantKind: calc.KindNonConvergence, causeKind: calc.KindNonConvergence,
			errSubstr: "Non-differentiable point detected",
		},
		{
			name: "jump away from zero", expr: "(x-1)/fabs(x-1)", point: 1, step: DefaultStep,
			wantKind: calc.KindNonConvergence, causeKind: calc.KindNonConvergence,
			errSubstr: "Status: -1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Differentiate(tt.expr, tt.point, tt.step)
			if err == nil {
				t.Fatal("expected error")
			}
			if calc.KindOf(err) != tt.wantKind {
				t.Errorf("outer kind = %v, want %v (%v)", calc.KindOf(err), tt.wantKind, err)
			}
			if !errors.Is(err, tt.causeKind) {
				t.Errorf("expected %v in chain: %v", tt.causeKind, err)
			}
			if tt.wantKind == calc.KindNonConvergence &&
				!strings.HasPrefix(err.Error(), "Numerical differentiation failed to converge or encountered an error") {
				t.Errorf("unexpected prefix: %q", err.Error())
			}
			if tt.errSubstr != "" && !strings.Contains(err.Error(), tt.errSubstr) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.errSubstr)
			}
		})
	}
}

func TestRefine_Statuses(t *testing.T) {
	tests := []struct {
		name   string
		f      func(x float64) float64
		h      float64
		status Status
	}{
		{
			name:   "jump makes the error grow",
			f:      func(x float64) float64 { return math.Copysign(1, x) },
			h:      1e-3,
			status: StatusErrorIncreased,
		},
		{
			name: "slow convergence exhausts iterations",
			f: func(x float64) float64 {
				return math.Copysign(math.Pow(math.Abs(x), 1.5), x)
			},
			h:      1,
			status: StatusMaxIterations,
		},
		{
			name:   "undefined to the left",
			f:      math.Sqrt,
			h:      1e-3,
			status: StatusNonFinite,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := refine(func(x float64) (float64, error) { return tt.f(x), nil }, 0, tt.h)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if d.Status != tt.status {
				t.Errorf("status = %d (%v), want %d (%v)", d.Status, d.Status, tt.status, tt.status)
			}
			if d.Success {
				t.Error("expected Success to be false")
			}
		})
	}
}

func TestStatus_String(t *testing.T) {
	want := map[Status]string{
		StatusConverged:      "converged",
		StatusErrorIncreased: "error estimate increased",
		StatusMaxIterations:  "maximum iterations reached",
		StatusNonFinite:      "non-finite value encountered",
		Status(7):            "unknown status",
	}
	for s, w := range want {
		if s.String() != w {
			t.Errorf("Status(%d).String() = %q, want %q", int(s), s.String(), w)
		}
	}
}
