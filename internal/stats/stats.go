// Package stats provides descriptive statistics over float64 sequences.
// Every function rejects empty input with a calc.KindInsufficientInput error.
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"calculator-mcp/internal/calc"
)

// DefaultDDOF is the delta degrees of freedom giving the sample statistic.
const DefaultDDOF = 1

func emptyInput(op, statistic string) error {
	return calc.New(calc.KindInsufficientInput, op,
		"Input list cannot be empty for "+statistic+" calculation.")
}

// Mean returns the arithmetic mean of data.
func Mean(data []float64) (float64, error) {
	if len(data) == 0 {
		return 0, emptyInput("mean", "mean")
	}
	return stat.Mean(data, nil), nil
}

// Median returns the middle value of the sorted data, or the average of
// the two middle values when the length is even. data is not modified.
func Median(data []float64) (float64, error) {
	if len(data) == 0 {
		return 0, emptyInput("median", "median")
	}
	sorted := sortedCopy(data)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2], nil
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2, nil
}

// Mode returns every value that occurs with the highest frequency, in
// ascending order.
func Mode(data []float64) ([]float64, error) {
	if len(data) == 0 {
		return nil, emptyInput("mode", "mode")
	}
	sorted := sortedCopy(data)

	var modes []float64
	best := 0
	for i := 0; i < len(sorted); {
		j := i + 1
		for j < len(sorted) && sorted[j] == sorted[i] {
			j++
		}
		switch count := j - i; {
		case count > best:
			best = count
			modes = append(modes[:0], sorted[i])
		case count == best:
			modes = append(modes, sorted[i])
		}
		i = j
	}
	return modes, nil
}

// Variance returns the variance of data with ddof delta degrees of
// freedom: the sum of squared deviations divided by len(data) - ddof.
// len(data) must exceed ddof.
func Variance(data []float64, ddof int) (float64, error) {
	if err := checkDDOF("variance", "variance", data, ddof); err != nil {
		return 0, err
	}
	return variance(data, ddof), nil
}

// StdDev returns the square root of Variance(data, ddof).
func StdDev(data []float64, ddof int) (float64, error) {
	if err := checkDDOF("std_dev", "standard deviation", data, ddof); err != nil {
		return 0, err
	}
	return math.Sqrt(variance(data, ddof)), nil
}

func variance(data []float64, ddof int) float64 {
	_, popVar := stat.PopMeanVariance(data, nil)
	n := float64(len(data))
	return popVar * n / (n - float64(ddof))
}

func checkDDOF(op, statistic string, data []float64, ddof int) error {
	if ddof < 0 {
		return calc.New(calc.KindInvalidArgument, op, "ddof must be non-negative for "+statistic+" calculation.")
	}
	if len(data) == 0 {
		return emptyInput(op, statistic)
	}
	if len(data) <= ddof {
		return calc.New(calc.KindInsufficientInput, op,
			"Input list too small for "+statistic+" calculation with given ddof.")
	}
	return nil
}

func sortedCopy(data []float64) []float64 {
	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)
	return sorted
}
