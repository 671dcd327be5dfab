package calc

// Add returns a + b.
func Add(a, b float64) float64 {
	return a + b
}

// Subtract returns a - b.
func Subtract(a, b float64) float64 {
	return a - b
}

// Multiply returns a * b.
func Multiply(a, b float64) float64 {
	return a * b
}

// Divide returns a / b. A zero divisor is rejected rather than producing Inf.
func Divide(a, b float64) (float64, error) {
	if b == 0 {
		return 0, New(KindDivisionByZero, "divide", "Division by zero is not allowed.")
	}
	return a / b, nil
}
