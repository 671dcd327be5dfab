// Package tool defines the Tool interface and the calculator tool set
// served over MCP.
package tool

import "context"

// Tool defines the interface for tools that can be called by an agent.
// Each tool has a name, description, parameter schema, and an Execute method.
type Tool interface {
	// Name returns the unique identifier for this tool.
	Name() string

	// Description returns a human-readable description of what the tool does.
	Description() string

	// Parameters returns a JSON Schema object describing the tool's input parameters.
	Parameters() map[string]interface{}

	// Execute runs the tool with the provided arguments and returns the result.
	// Failures of the computation itself are reported through Result, not err.
	Execute(ctx context.Context, args map[string]interface{}) (*Result, error)
}

// Result represents the result of executing a tool.
type Result struct {
	Success bool   `json:"success"`
	Output  string `json:"output"`
	Error   string `json:"error,omitempty"`
}

// Definition describes a tool as advertised to clients.
type Definition struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// ToDefinition converts a Tool to its Definition.
func ToDefinition(t Tool) Definition {
	return Definition{
		Name:        t.Name(),
		Description: t.Description(),
		InputSchema: t.Parameters(),
	}
}

// ToDefinitions converts a slice of Tools to Definitions.
func ToDefinitions(tools []Tool) []Definition {
	defs := make([]Definition, len(tools))
	for i, t := range tools {
		defs[i] = ToDefinition(t)
	}
	return defs
}
