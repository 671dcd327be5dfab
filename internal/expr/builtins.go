package expr

import (
	"math"
	"sort"
)

// builtin is an allow-listed function. Functions taking a variable number
// of arguments set minArgs < maxArgs.
type builtin struct {
	name    string
	minArgs int
	maxArgs int
	fn      func(args []float64) float64
}

// namespace is the name of the module alias accepted in "math.<name>".
const namespace = "math"

// The allow-list. These tables are built once and never mutated.
var (
	constants = map[string]float64{
		"pi": math.Pi,
		"e":  math.E,
	}

	functions = map[string]*builtin{
		"sin":   unary("sin", math.Sin),
		"cos":   unary("cos", math.Cos),
		"tan":   unary("tan", math.Tan),
		"asin":  unary("asin", math.Asin),
		"acos":  unary("acos", math.Acos),
		"atan":  unary("atan", math.Atan),
		"exp":   unary("exp", math.Exp),
		"log10": unary("log10", math.Log10),
		"sqrt":  unary("sqrt", math.Sqrt),
		"fabs":  unary("fabs", math.Abs),
		"log": {
			name:    "log",
			minArgs: 1,
			maxArgs: 2,
			fn: func(args []float64) float64 {
				if len(args) == 2 {
					return math.Log(args[0]) / math.Log(args[1])
				}
				return math.Log(args[0])
			},
		},
		"pow": {
			name:    "pow",
			minArgs: 2,
			maxArgs: 2,
			fn: func(args []float64) float64 {
				return math.Pow(args[0], args[1])
			},
		},
	}
)

func unary(name string, f func(float64) float64) *builtin {
	return &builtin{
		name:    name,
		minArgs: 1,
		maxArgs: 1,
		fn: func(args []float64) float64 {
			return f(args[0])
		},
	}
}

// Names returns the allow-listed function and constant names.
func Names() []string {
	names := make([]string, 0, len(constants)+len(functions))
	for name := range functions {
		names = append(names, name)
	}
	for name := range constants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
