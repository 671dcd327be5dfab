package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"calculator-mcp/internal/tool"
)

// SSEServer serves the same tools as Server over the MCP SSE transport
// (GET /sse for the event stream, POST /message for requests).
type SSEServer struct {
	mcp *server.MCPServer
	sse *server.SSEServer
}

// NewSSEServer creates an SSE server for the given tools. baseURL is the
// externally visible address advertised to clients; empty means it is
// derived from the listen address.
func NewSSEServer(name, version, baseURL string, tools []tool.Tool) (*SSEServer, error) {
	s := server.NewMCPServer(name, version, server.WithToolCapabilities(false))

	for _, t := range tools {
		schema, err := json.Marshal(t.Parameters())
		if err != nil {
			return nil, fmt.Errorf("failed to encode schema of %s: %w", t.Name(), err)
		}
		s.AddTool(mcpgo.NewToolWithRawSchema(t.Name(), t.Description(), schema), handler(t))
	}

	var opts []server.SSEOption
	if baseURL != "" {
		opts = append(opts, server.WithBaseURL(baseURL))
	}

	return &SSEServer{
		mcp: s,
		sse: server.NewSSEServer(s, opts...),
	}, nil
}

// handler adapts a Tool to an mcp-go tool handler. Tool failures become
// error results, never protocol errors.
func handler(t tool.Tool) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
		args := req.GetArguments()
		if args == nil {
			args = make(map[string]interface{})
		}

		log.Printf("[MCP SSE Server] Executing tool %q with args: %v", t.Name(), args)

		result, err := t.Execute(ctx, args)
		if err != nil {
			log.Printf("[MCP SSE Server] Tool %q execution error: %v", t.Name(), err)
			return mcpgo.NewToolResultError(errorPayload(fmt.Sprintf("Tool execution error: %v", err))), nil
		}
		if !result.Success {
			log.Printf("[MCP SSE Server] Tool %q returned error: %s", t.Name(), result.Error)
			return mcpgo.NewToolResultError(errorPayload(result.Error)), nil
		}
		return mcpgo.NewToolResultText(result.Output), nil
	}
}

// Start listens on addr and blocks until the server stops.
func (s *SSEServer) Start(addr string) error {
	log.Printf("[MCP SSE Server] Listening on %s", addr)
	return s.sse.Start(addr)
}

// Shutdown gracefully stops the server.
func (s *SSEServer) Shutdown(ctx context.Context) error {
	log.Printf("[MCP SSE Server] Shutting down")
	return s.sse.Shutdown(ctx)
}
