package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"calculator-mcp/internal/calc"
	"calculator-mcp/internal/calculus"
	"calculator-mcp/internal/expr"
	"calculator-mcp/internal/stats"
)

// FuncTool is a Tool backed by a plain function. A successful call is
// serialized as {"result": <value>}; a failed call carries the error
// message verbatim.
type FuncTool struct {
	name        string
	description string
	params      map[string]interface{}
	run         func(args map[string]interface{}) (interface{}, error)
}

// Name returns the tool's identifier.
func (t *FuncTool) Name() string {
	return t.name
}

// Description returns what the tool does.
func (t *FuncTool) Description() string {
	return t.description
}

// Parameters returns the JSON Schema for the tool's input.
func (t *FuncTool) Parameters() map[string]interface{} {
	return t.params
}

// Execute runs the underlying function.
func (t *FuncTool) Execute(ctx context.Context, args map[string]interface{}) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if args == nil {
		args = map[string]interface{}{}
	}

	value, err := t.run(args)
	if err != nil {
		return &Result{
			Success: false,
			Error:   err.Error(),
		}, nil
	}

	out, err := json.Marshal(map[string]interface{}{"result": value})
	if err != nil {
		return &Result{
			Success: false,
			Error:   fmt.Sprintf("failed to encode result of %s: %v", t.name, err),
		}, nil
	}
	return &Result{
		Success: true,
		Output:  string(out),
	}, nil
}

func schema(required []string, props map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}

func numberProp(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "number",
		"description": description,
	}
}

func stringProp(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

func listProp(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "array",
		"items":       map[string]interface{}{"type": "number"},
		"description": description,
	}
}

func ddofProp() map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"default":     stats.DefaultDDOF,
		"description": "Delta degrees of freedom: 1 for the sample statistic, 0 for the population statistic",
	}
}

func binary(name, description string, fn func(a, b float64) (float64, error)) *FuncTool {
	return &FuncTool{
		name:        name,
		description: description,
		params: schema([]string{"a", "b"}, map[string]interface{}{
			"a": numberProp("The first operand"),
			"b": numberProp("The second operand"),
		}),
		run: func(args map[string]interface{}) (interface{}, error) {
			a, err := numberArg(args, "a")
			if err != nil {
				return nil, err
			}
			b, err := numberArg(args, "b")
			if err != nil {
				return nil, err
			}
			return fn(a, b)
		},
	}
}

func infallible(fn func(a, b float64) float64) func(a, b float64) (float64, error) {
	return func(a, b float64) (float64, error) {
		return fn(a, b), nil
	}
}

func sequence(name, description string, fn func(data []float64) (interface{}, error)) *FuncTool {
	return &FuncTool{
		name:        name,
		description: description,
		params: schema([]string{"data"}, map[string]interface{}{
			"data": listProp("The list of numbers"),
		}),
		run: func(args map[string]interface{}) (interface{}, error) {
			data, err := floatsArg(args, "data")
			if err != nil {
				return nil, err
			}
			return fn(data)
		},
	}
}

func dispersion(name, description string, fn func(data []float64, ddof int) (float64, error)) *FuncTool {
	return &FuncTool{
		name:        name,
		description: description,
		params: schema([]string{"data"}, map[string]interface{}{
			"data": listProp("The list of numbers"),
			"ddof": ddofProp(),
		}),
		run: func(args map[string]interface{}) (interface{}, error) {
			data, err := floatsArg(args, "data")
			if err != nil {
				return nil, err
			}
			ddof, err := intArgDefault(args, "ddof", stats.DefaultDDOF)
			if err != nil {
				return nil, err
			}
			return fn(data, ddof)
		},
	}
}

var expressionHelp = "Allowed: + - * / ** and parentheses, constants and functions " +
	strings.Join(expr.Names(), ", ") + " (also as math.<name>)."

// NewEvaluateTool creates the evaluate_expression tool.
func NewEvaluateTool() *FuncTool {
	return &FuncTool{
		name:        "evaluate_expression",
		description: "Evaluates a mathematical expression string respecting PEMDAS/BODMAS. " + expressionHelp,
		params: schema([]string{"expression"}, map[string]interface{}{
			"expression": stringProp("The expression to evaluate, e.g. \"(2 + 3) * sqrt(16)\""),
		}),
		run: func(args map[string]interface{}) (interface{}, error) {
			src, err := stringArg(args, "expression")
			if err != nil {
				return nil, err
			}
			return expr.Evaluate(src)
		},
	}
}

// NewIntegrateTool creates the numerical_integrate tool.
func NewIntegrateTool() *FuncTool {
	return &FuncTool{
		name:        "numerical_integrate",
		description: "Numerically integrates an expression in x from lower_bound to upper_bound, e.g. \"x**2 * math.sin(x)\". " + expressionHelp,
		params: schema([]string{"expression", "lower_bound", "upper_bound"}, map[string]interface{}{
			"expression":  stringProp("The integrand as a function of x"),
			"lower_bound": numberProp("The lower limit of integration"),
			"upper_bound": numberProp("The upper limit of integration"),
		}),
		run: func(args map[string]interface{}) (interface{}, error) {
			src, err := stringArg(args, "expression")
			if err != nil {
				return nil, err
			}
			lower, err := numberArg(args, "lower_bound")
			if err != nil {
				return nil, err
			}
			upper, err := numberArg(args, "upper_bound")
			if err != nil {
				return nil, err
			}
			return calculus.Integrate(src, lower, upper)
		},
	}
}

// NewDifferentiateTool creates the numerical_differentiate tool.
func NewDifferentiateTool() *FuncTool {
	return &FuncTool{
		name:        "numerical_differentiate",
		description: "Numerically differentiates an expression in x at a point, e.g. \"x**3 + 2*x\". " + expressionHelp,
		params: schema([]string{"expression", "point"}, map[string]interface{}{
			"expression": stringProp("The function of x to differentiate"),
			"point":      numberProp("The point at which to evaluate the derivative"),
			"initial_step": map[string]interface{}{
				"type":        "number",
				"default":     calculus.DefaultStep,
				"description": "The initial step size",
			},
		}),
		run: func(args map[string]interface{}) (interface{}, error) {
			src, err := stringArg(args, "expression")
			if err != nil {
				return nil, err
			}
			point, err := numberArg(args, "point")
			if err != nil {
				return nil, err
			}
			step, err := numberArgDefault(args, "initial_step", calculus.DefaultStep)
			if err != nil {
				return nil, err
			}
			return calculus.Differentiate(src, point, step)
		},
	}
}

// Calculator returns the full calculator tool set in a stable order.
func Calculator() []Tool {
	return []Tool{
		binary("add", "Add two numbers.", infallible(calc.Add)),
		binary("subtract", "Subtract b from a.", infallible(calc.Subtract)),
		binary("multiply", "Multiply two numbers.", infallible(calc.Multiply)),
		binary("divide", "Divide a by b, error on division by zero.", calc.Divide),
		NewEvaluateTool(),
		sequence("calculate_mean", "Calculates the mean (average) of a list of numbers.",
			func(data []float64) (interface{}, error) { return stats.Mean(data) }),
		sequence("calculate_median", "Calculates the median of a list of numbers.",
			func(data []float64) (interface{}, error) { return stats.Median(data) }),
		sequence("calculate_mode", "Calculates the mode(s) of a list of numbers. Can return multiple modes.",
			func(data []float64) (interface{}, error) { return stats.Mode(data) }),
		dispersion("calculate_std_dev", "Calculates the standard deviation of a list of numbers. ddof=1 for sample, ddof=0 for population.", stats.StdDev),
		dispersion("calculate_variance", "Calculates the variance of a list of numbers. ddof=1 for sample, ddof=0 for population.", stats.Variance),
		NewIntegrateTool(),
		NewDifferentiateTool(),
	}
}
