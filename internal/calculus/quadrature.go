package calculus

import (
	"fmt"
	"math"
)

// Gauss–Kronrod 7/15 abscissae and weights on [-1, 1] (QUADPACK qk15).
// The Gauss nodes are the odd-indexed Kronrod nodes; index 7 is the centre.
var (
	kronrodNodes = [8]float64{
		0.991455371120812639206854697526329,
		0.949107912342758524526189684047851,
		0.864864423359769072789712788640926,
		0.741531185599394439863864773280788,
		0.586087235467691130294144845693013,
		0.405845151377397166906606412076961,
		0.207784955007898467600689403773245,
		0.000000000000000000000000000000000,
	}
	kronrodWeights = [8]float64{
		0.022935322010529224963732008058970,
		0.063092092629978553290700663189204,
		0.104790010322250183839876322541518,
		0.140653259715525918745189590510238,
		0.169004726639267902826583426598550,
		0.190350578064785409913256402421014,
		0.204432940075298892414161999234649,
		0.209482141084727828012999174891714,
	}
	gaussWeights = [4]float64{
		0.129484966168869693270611432679082,
		0.279705391489276667901467771423780,
		0.381830050505118944950369775488975,
		0.417959183673469387755102040816327,
	}
)

const (
	quadEpsAbs = 1.49e-8
	quadEpsRel = 1.49e-8
	// quadLimit is the maximum number of subintervals.
	quadLimit = 50
)

// Quadrature is the outcome of an adaptive integration.
type Quadrature struct {
	Value       float64
	AbsError    float64
	Intervals   int
	Evaluations int
	// Converged is false when the subdivision limit was reached before the
	// error estimate met the tolerance; Value is still the best estimate.
	Converged bool
}

type integrand func(x float64) (float64, error)

type segment struct {
	a, b   float64
	result float64
	err    float64
}

// sample evaluates f and rejects non-finite values.
func sample(f integrand, x float64) (float64, error) {
	y, err := f(x)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(y) || math.IsInf(y, 0) {
		return 0, fmt.Errorf("integrand is not finite at x = %g", x)
	}
	return y, nil
}

// kronrod15 applies the 15-point Kronrod rule to [a, b] and estimates its
// error from the embedded 7-point Gauss rule.
func kronrod15(f integrand, a, b float64) (segment, error) {
	center := 0.5 * (a + b)
	half := 0.5 * (b - a)
	absHalf := math.Abs(half)

	fc, err := sample(f, center)
	if err != nil {
		return segment{}, err
	}
	resK := fc * kronrodWeights[7]
	resG := fc * gaussWeights[3]
	resAbs := math.Abs(resK)

	var f1, f2 [7]float64
	for j := 0; j < 7; j++ {
		dx := half * kronrodNodes[j]
		y1, err := sample(f, center-dx)
		if err != nil {
			return segment{}, err
		}
		y2, err := sample(f, center+dx)
		if err != nil {
			return segment{}, err
		}
		f1[j], f2[j] = y1, y2
		resK += kronrodWeights[j] * (y1 + y2)
		resAbs += kronrodWeights[j] * (math.Abs(y1) + math.Abs(y2))
		if j%2 == 1 {
			resG += gaussWeights[j/2] * (y1 + y2)
		}
	}

	mean := resK * 0.5
	resAsc := kronrodWeights[7] * math.Abs(fc-mean)
	for j := 0; j < 7; j++ {
		resAsc += kronrodWeights[j] * (math.Abs(f1[j]-mean) + math.Abs(f2[j]-mean))
	}

	result := resK * half
	resAbs *= absHalf
	resAsc *= absHalf
	absErr := math.Abs((resK - resG) * half)

	if resAsc != 0 && absErr != 0 {
		absErr = resAsc * math.Min(1, math.Pow(200*absErr/resAsc, 1.5))
	}
	const epsilon = 2.220446049250313e-16
	if resAbs > math.SmallestNonzeroFloat64/(50*epsilon) {
		absErr = math.Max(50*epsilon*resAbs, absErr)
	}

	return segment{a: a, b: b, result: result, err: absErr}, nil
}

// adaptive integrates f over the finite interval [a, b] by repeatedly
// bisecting the subinterval with the largest error estimate.
func adaptive(f integrand, a, b float64) (Quadrature, error) {
	evals := 0
	counted := func(x float64) (float64, error) {
		evals++
		return f(x)
	}

	first, err := kronrod15(counted, a, b)
	if err != nil {
		return Quadrature{}, err
	}
	segs := []segment{first}

	for {
		var total, totalErr float64
		worst := 0
		for i, s := range segs {
			total += s.result
			totalErr += s.err
			if s.err > segs[worst].err {
				worst = i
			}
		}

		q := Quadrature{
			Value:       total,
			AbsError:    totalErr,
			Intervals:   len(segs),
			Evaluations: evals,
		}
		if totalErr <= math.Max(quadEpsAbs, quadEpsRel*math.Abs(total)) {
			q.Converged = true
			return q, nil
		}
		if len(segs) >= quadLimit {
			return q, nil
		}

		s := segs[worst]
		mid := 0.5 * (s.a + s.b)
		if mid == s.a || mid == s.b {
			// The interval can no longer be split in floating point.
			return q, nil
		}
		left, err := kronrod15(counted, s.a, mid)
		if err != nil {
			return Quadrature{}, err
		}
		right, err := kronrod15(counted, mid, s.b)
		if err != nil {
			return Quadrature{}, err
		}
		segs[worst] = left
		segs = append(segs, right)
	}
}

// quadrature integrates f over [lower, upper]. Infinite bounds are mapped
// onto finite intervals by substitution; lower > upper negates the result.
func quadrature(f integrand, lower, upper float64) (Quadrature, error) {
	if lower == upper {
		return Quadrature{Converged: true}, nil
	}
	if lower > upper {
		q, err := quadrature(f, upper, lower)
		q.Value = -q.Value
		return q, err
	}

	switch lowerInf, upperInf := math.IsInf(lower, -1), math.IsInf(upper, 1); {
	case lowerInf && upperInf:
		// x = t / (1 - t²), t in (-1, 1)
		return adaptive(func(t float64) (float64, error) {
			d := 1 - t*t
			y, err := f(t / d)
			return y * (1 + t*t) / (d * d), err
		}, -1, 1)
	case upperInf:
		// x = lower + t / (1 - t), t in [0, 1)
		return adaptive(func(t float64) (float64, error) {
			d := 1 - t
			y, err := f(lower + t/d)
			return y / (d * d), err
		}, 0, 1)
	case lowerInf:
		// x = upper - t / (1 - t), t in [0, 1)
		return adaptive(func(t float64) (float64, error) {
			d := 1 - t
			y, err := f(upper - t/d)
			return y / (d * d), err
		}, 0, 1)
	}
	return adaptive(f, lower, upper)
}
