package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"sync"

	"calculator-mcp/internal/tool"
)

// maxMessageSize bounds a single newline-delimited JSON-RPC message.
const maxMessageSize = 1024 * 1024

// Server handles incoming JSON-RPC requests and exposes tools via MCP over
// a newline-delimited stream such as stdio.
type Server struct {
	tools   []tool.Tool
	byName  map[string]tool.Tool
	output  io.Writer
	mu      sync.Mutex
	running bool

	name    string
	version string
}

// NewServer creates a new MCP server with the given tools. Tools are listed
// in the order given.
func NewServer(name, version string, tools []tool.Tool) *Server {
	byName := make(map[string]tool.Tool, len(tools))
	for _, t := range tools {
		byName[t.Name()] = t
	}
	return &Server{
		tools:   tools,
		byName:  byName,
		name:    name,
		version: version,
	}
}

// Serve reads requests from input and writes responses to output.
// It blocks until input is exhausted, the context is cancelled or a read
// error occurs.
func (s *Server) Serve(ctx context.Context, input io.Reader, output io.Writer) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server already running")
	}
	s.running = true
	s.output = output
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	scanner := bufio.NewScanner(input)
	scanner.Buffer(make([]byte, 0, 64*1024), maxMessageSize)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			log.Printf("[MCP Server] Failed to parse message: %v", err)
			s.sendError(nil, CodeParseError, "Parse error", nil)
			continue
		}

		s.handleRequest(ctx, &req)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	return nil
}

// handleRequest processes a single JSON-RPC request.
func (s *Server) handleRequest(ctx context.Context, req *Request) {
	log.Printf("[MCP Server] Received request: method=%s id=%v", req.Method, req.ID)

	if req.IsNotification() {
		switch req.Method {
		case "notifications/initialized":
			log.Printf("[MCP Server] Client initialized")
		default:
			log.Printf("[MCP Server] Ignoring notification: %s", req.Method)
		}
		return
	}

	switch req.Method {
	case "initialize":
		s.handleInitialize(req)
	case "ping":
		s.sendResult(req.ID, map[string]interface{}{})
	case "tools/list":
		s.handleToolsList(req)
	case "tools/call":
		s.handleToolsCall(ctx, req)
	default:
		log.Printf("[MCP Server] Unknown method: %s", req.Method)
		s.sendError(req.ID, CodeMethodNotFound, fmt.Sprintf("Method not found: %s", req.Method), nil)
	}
}

// handleInitialize handles the MCP initialize request.
func (s *Server) handleInitialize(req *Request) {
	log.Printf("[MCP Server] Initializing server: %s v%s", s.name, s.version)
	result := map[string]interface{}{
		"protocolVersion": protocolVersion,
		"capabilities": map[string]interface{}{
			"tools": map[string]interface{}{},
		},
		"serverInfo": map[string]interface{}{
			"name":    s.name,
			"version": s.version,
		},
	}
	s.sendResult(req.ID, result)
}

// handleToolsList handles the tools/list request.
func (s *Server) handleToolsList(req *Request) {
	defs := tool.ToDefinitions(s.tools)
	log.Printf("[MCP Server] Listing %d tools", len(defs))
	s.sendResult(req.ID, map[string]interface{}{
		"tools": defs,
	})
}

// handleToolsCall handles the tools/call request.
func (s *Server) handleToolsCall(ctx context.Context, req *Request) {
	var params callParams
	if len(req.Params) == 0 || json.Unmarshal(req.Params, &params) != nil {
		log.Printf("[MCP Server] Invalid params for tools/call")
		s.sendError(req.ID, CodeInvalidParams, "Invalid params", nil)
		return
	}
	if params.Name == "" {
		log.Printf("[MCP Server] Missing tool name in tools/call")
		s.sendError(req.ID, CodeInvalidParams, "Missing tool name", nil)
		return
	}

	t, exists := s.byName[params.Name]
	if !exists {
		log.Printf("[MCP Server] Unknown tool requested: %s", params.Name)
		s.sendToolResult(req.ID, errorPayload(fmt.Sprintf("Unknown tool: %s", params.Name)), true)
		return
	}

	args := params.Arguments
	if args == nil {
		args = make(map[string]interface{})
	}

	log.Printf("[MCP Server] Executing tool %q with args: %v", params.Name, args)

	result, err := t.Execute(ctx, args)
	if err != nil {
		log.Printf("[MCP Server] Tool %q execution error: %v", params.Name, err)
		s.sendToolResult(req.ID, errorPayload(fmt.Sprintf("Tool execution error: %v", err)), true)
		return
	}

	if !result.Success {
		log.Printf("[MCP Server] Tool %q returned error: %s", params.Name, result.Error)
		s.sendToolResult(req.ID, errorPayload(result.Error), true)
		return
	}

	log.Printf("[MCP Server] Tool %q succeeded: %s", params.Name, result.Output)
	s.sendToolResult(req.ID, result.Output, false)
}

// sendResult sends a successful JSON-RPC response.
func (s *Server) sendResult(id interface{}, result interface{}) {
	data, err := json.Marshal(result)
	if err != nil {
		log.Printf("[MCP Server] Failed to encode result: %v", err)
		s.sendError(id, CodeInternalError, "Internal error", nil)
		return
	}
	s.writeResponse(Response{
		JSONRPC: jsonrpcVersion,
		ID:      id,
		Result:  data,
	})
}

// sendError sends a JSON-RPC error response.
func (s *Server) sendError(id interface{}, code int, message string, data interface{}) {
	s.writeResponse(Response{
		JSONRPC: jsonrpcVersion,
		ID:      id,
		Error: &RPCError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	})
}

// sendToolResult sends a tool call result in MCP format.
func (s *Server) sendToolResult(id interface{}, text string, isError bool) {
	s.sendResult(id, callResult{
		Content: []content{{Type: "text", Text: text}},
		IsError: isError,
	})
}

// writeResponse writes a JSON-RPC response to the output.
func (s *Server) writeResponse(resp Response) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(resp)
	if err != nil {
		log.Printf("[MCP Server] Failed to encode response: %v", err)
		return
	}
	if _, err := s.output.Write(append(data, '\n')); err != nil {
		log.Printf("[MCP Server] Failed to write response: %v", err)
	}
}
