package tool

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"calculator-mcp/internal/calc"
)

func argError(format string, a ...interface{}) error {
	return calc.New(calc.KindInvalidArgument, "arguments", fmt.Sprintf(format, a...))
}

// toFloat64 converts an interface{} to float64.
// Handles the numeric types that may come from JSON decoding.
func toFloat64(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	default:
		return 0, fmt.Errorf("expected number, got %T", v)
	}
}

func numberArg(args map[string]interface{}, name string) (float64, error) {
	v, ok := args[name]
	if !ok {
		return 0, argError("missing '%s' argument", name)
	}
	f, err := toFloat64(v)
	if err != nil {
		return 0, argError("invalid '%s' argument: %v", name, err)
	}
	return f, nil
}

func numberArgDefault(args map[string]interface{}, name string, def float64) (float64, error) {
	if v, ok := args[name]; !ok || v == nil {
		return def, nil
	}
	return numberArg(args, name)
}

func intArgDefault(args map[string]interface{}, name string, def int) (int, error) {
	if v, ok := args[name]; !ok || v == nil {
		return def, nil
	}
	f, err := numberArg(args, name)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, argError("invalid '%s' argument: expected integer, got %v", name, f)
	}
	return int(f), nil
}

func stringArg(args map[string]interface{}, name string) (string, error) {
	s, ok := args[name].(string)
	if !ok {
		return "", argError("missing or invalid '%s' argument", name)
	}
	return s, nil
}

// floatsArg reads a list of numbers. Models sometimes send the list as a
// string, so a string holding a JSON array is accepted too.
func floatsArg(args map[string]interface{}, name string) ([]float64, error) {
	switch v := args[name].(type) {
	case []float64:
		return v, nil
	case []interface{}:
		out := make([]float64, len(v))
		for i, item := range v {
			f, err := toFloat64(item)
			if err != nil {
				return nil, argError("invalid '%s' argument at index %d: %v", name, i, err)
			}
			out[i] = f
		}
		return out, nil
	case string:
		out, err := parseFloats(v)
		if err != nil {
			return nil, argError("invalid '%s' argument: %v", name, err)
		}
		return out, nil
	case nil:
		return nil, argError("missing '%s' argument", name)
	default:
		return nil, argError("invalid '%s' argument: expected list of numbers, got %T", name, v)
	}
}

// parseFloats decodes a JSON array of numbers, repairing malformed JSON
// and retrying once if the first attempt fails.
func parseFloats(content string) ([]float64, error) {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "[") {
		content = "[" + content + "]"
	}

	var out []float64
	err := json.Unmarshal([]byte(content), &out)
	if err == nil {
		return out, nil
	}

	repaired, repairErr := jsonrepair.JSONRepair(content)
	if repairErr != nil {
		return nil, fmt.Errorf("failed to parse list and failed to repair JSON: %w, repair error: %v", err, repairErr)
	}
	out = nil
	if err := json.Unmarshal([]byte(repaired), &out); err != nil {
		return nil, fmt.Errorf("failed to parse repaired list %s: %w", repaired, err)
	}
	return out, nil
}
