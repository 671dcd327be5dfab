package calc

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestArithmeticProperty_Inverses(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("add then subtract returns a", prop.ForAll(
		func(a, b float64) bool {
			got := Subtract(Add(a, b), b)
			return math.Abs(got-a) <= 1e-12*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
		},
		gen.Float64Range(-1e12, 1e12),
		gen.Float64Range(-1e12, 1e12),
	))

	properties.Property("multiply then divide returns a", prop.ForAll(
		func(a, b float64) bool {
			got, err := Divide(Multiply(a, b), b)
			if err != nil {
				return false
			}
			return math.Abs(got-a) <= 1e-12*math.Max(1, math.Abs(a))
		},
		gen.Float64Range(-1e6, 1e6),
		gen.Float64Range(1e-3, 1e6),
	))

	properties.Property("divide by zero always fails", prop.ForAll(
		func(a float64) bool {
			_, err := Divide(a, 0)
			return KindOf(err) == KindDivisionByZero
		},
		gen.Float64Range(-1e12, 1e12),
	))

	properties.TestingRun(t)
}
