package mcp

import (
	"context"
	"log"

	"calculator-mcp/internal/tool"
)

// RemoteTool adapts a tool listed by an MCP server to the tool.Tool
// interface, forwarding every call to the server.
type RemoteTool struct {
	client MCPClient
	info   ToolInfo
}

// NewRemoteTool creates a RemoteTool for the given tool info.
func NewRemoteTool(client MCPClient, info ToolInfo) *RemoteTool {
	return &RemoteTool{
		client: client,
		info:   info,
	}
}

// RemoteTools lists the server's tools and wraps each one.
func RemoteTools(ctx context.Context, client MCPClient) ([]tool.Tool, error) {
	infos, err := client.ListTools(ctx)
	if err != nil {
		return nil, err
	}
	tools := make([]tool.Tool, len(infos))
	for i, info := range infos {
		tools[i] = NewRemoteTool(client, info)
	}
	return tools, nil
}

// Name returns the tool's name from the MCP server.
func (r *RemoteTool) Name() string {
	return r.info.Name
}

// Description returns the tool's description from the MCP server.
func (r *RemoteTool) Description() string {
	return r.info.Description
}

// Parameters returns the tool's input schema from the MCP server.
func (r *RemoteTool) Parameters() map[string]interface{} {
	if r.info.InputSchema == nil {
		return map[string]interface{}{
			"type":       "object",
			"properties": map[string]interface{}{},
		}
	}
	return r.info.InputSchema
}

// Execute forwards the tool call to the MCP server and returns the result.
func (r *RemoteTool) Execute(ctx context.Context, args map[string]interface{}) (*tool.Result, error) {
	log.Printf("[MCP Client] Calling tool %q with args: %v", r.info.Name, args)

	result, err := r.client.CallTool(ctx, r.info.Name, args)
	if err != nil {
		log.Printf("[MCP Client] Tool %q error: %v", r.info.Name, err)
		return nil, err
	}

	if result.Success {
		log.Printf("[MCP Client] Tool %q succeeded: %s", r.info.Name, truncate(result.Output, 100))
	} else {
		log.Printf("[MCP Client] Tool %q failed: %s", r.info.Name, result.Error)
	}

	return result, nil
}

// Info returns the underlying ToolInfo.
func (r *RemoteTool) Info() ToolInfo {
	return r.info
}

// truncate shortens a string for logging.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
