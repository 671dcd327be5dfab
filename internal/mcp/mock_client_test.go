package mcp

import (
	"context"
	"fmt"

	"calculator-mcp/internal/tool"
)

// MockMCPClient is a mock implementation of MCPClient for testing.
type MockMCPClient struct {
	ListToolsFunc func(ctx context.Context) ([]ToolInfo, error)
	CallToolFunc  func(ctx context.Context, name string, args map[string]interface{}) (*tool.Result, error)

	calls []string
}

// NewMockMCPClient creates a new MockMCPClient with default implementations.
func NewMockMCPClient() *MockMCPClient {
	return &MockMCPClient{}
}

// ListTools implements MCPClient.
func (m *MockMCPClient) ListTools(ctx context.Context) ([]ToolInfo, error) {
	if m.ListToolsFunc != nil {
		return m.ListToolsFunc(ctx)
	}
	return []ToolInfo{
		{
			Name:        "add",
			Description: "Add two numbers.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"a": map[string]interface{}{"type": "number"},
					"b": map[string]interface{}{"type": "number"},
				},
				"required": []interface{}{"a", "b"},
			},
		},
	}, nil
}

// CallTool implements MCPClient.
func (m *MockMCPClient) CallTool(ctx context.Context, name string, args map[string]interface{}) (*tool.Result, error) {
	m.calls = append(m.calls, name)
	if m.CallToolFunc != nil {
		return m.CallToolFunc(ctx, name, args)
	}
	return &tool.Result{
		Success: true,
		Output:  fmt.Sprintf("Called %s with args: %v", name, args),
	}, nil
}
