package calculus

import "math"

// Status reports how a derivative refinement terminated.
type Status int

const (
	StatusConverged      Status = 0
	StatusErrorIncreased Status = -1
	StatusMaxIterations  Status = -2
	StatusNonFinite      Status = -3
)

// String returns a short description of the status.
func (s Status) String() string {
	switch s {
	case StatusConverged:
		return "converged"
	case StatusErrorIncreased:
		return "error estimate increased"
	case StatusMaxIterations:
		return "maximum iterations reached"
	case StatusNonFinite:
		return "non-finite value encountered"
	default:
		return "unknown status"
	}
}

const (
	// DefaultStep is the initial step used when the caller gives none.
	DefaultStep = 1e-6

	diffMaxIter    = 10
	diffStepFactor = 2.0
	diffAbsTol     = 1e-8
	diffRelTol     = 1e-8
	// roundoffSafety scales the rounding-error bound of each stencil, since
	// the integrand itself may be evaluated with several ulps of error.
	roundoffSafety = 10.0
	machineEpsilon = 2.220446049250313e-16
)

// Derivative is the outcome of a derivative estimation.
type Derivative struct {
	Value float64
	// Error is the estimated error magnitude: the change between the two
	// last accepted refinements.
	Error float64
	// Central is the plain central difference at the initial step.
	Central     float64
	Success     bool
	Status      Status
	Iterations  int
	Evaluations int
}

type stencilResult struct {
	value    float64
	roundoff float64
	finite   bool
}

// stencil4 is the fourth-order central difference
// (f(x-2h) - 8f(x-h) + 8f(x+h) - f(x+2h)) / 12h together with a bound on
// its rounding error.
func stencil4(f integrand, x, h float64) (stencilResult, error) {
	offsets := [4]float64{-2, -1, 1, 2}
	coeffs := [4]float64{1, -8, 8, -1}

	var sum, absSum float64
	for i, k := range offsets {
		y, err := f(x + k*h)
		if err != nil {
			return stencilResult{}, err
		}
		if math.IsNaN(y) || math.IsInf(y, 0) {
			return stencilResult{finite: false}, nil
		}
		sum += coeffs[i] * y
		absSum += math.Abs(coeffs[i] * y)
	}

	d := sum / (12 * h)
	return stencilResult{
		value:    d,
		roundoff: machineEpsilon * (absSum/(12*h) + math.Abs(d)),
		finite:   !math.IsNaN(d) && !math.IsInf(d, 0),
	}, nil
}

// central returns (f(x+h) - f(x-h)) / 2h.
func central(f integrand, x, h float64) (float64, error) {
	fwd, err := f(x + h)
	if err != nil {
		return 0, err
	}
	bwd, err := f(x - h)
	if err != nil {
		return 0, err
	}
	return (fwd - bwd) / (2 * h), nil
}

// refine estimates f'(x) by evaluating the fourth-order stencil at steps
// h, h/2, h/4, ... until successive estimates agree within tolerance.
// Changes below the stencils' rounding-error bound count as agreement.
func refine(f integrand, x, h float64) (Derivative, error) {
	evals := 0
	counted := func(x float64) (float64, error) {
		evals++
		return f(x)
	}

	var (
		prev    stencilResult
		prevErr = math.Inf(1)
		best    Derivative
	)
	for i := 0; i < diffMaxIter; i++ {
		cur, err := stencil4(counted, x, h)
		if err != nil {
			return Derivative{}, err
		}
		if !cur.finite {
			best.Status = StatusNonFinite
			best.Iterations = i + 1
			best.Evaluations = evals
			if i == 0 {
				best.Value = math.NaN()
				best.Error = math.NaN()
			}
			return best, nil
		}

		if i == 0 {
			best = Derivative{Value: cur.value, Error: math.NaN()}
		} else {
			change := math.Abs(cur.value - prev.value)
			tol := diffAbsTol + diffRelTol*math.Abs(cur.value) + roundoffSafety*(cur.roundoff+prev.roundoff)
			if change <= tol {
				return Derivative{
					Value:       cur.value,
					Error:       change,
					Success:     true,
					Status:      StatusConverged,
					Iterations:  i + 1,
					Evaluations: evals,
				}, nil
			}
			if i >= 2 && change > prevErr {
				best.Status = StatusErrorIncreased
				best.Iterations = i + 1
				best.Evaluations = evals
				return best, nil
			}
			best = Derivative{Value: cur.value, Error: change}
			prevErr = change
		}

		prev = cur
		h /= diffStepFactor
	}

	best.Status = StatusMaxIterations
	best.Iterations = diffMaxIter
	best.Evaluations = evals
	return best, nil
}
