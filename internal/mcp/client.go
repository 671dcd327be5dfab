package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"calculator-mcp/internal/tool"
)

// MCPClient is the set of operations a caller needs from an MCP server.
type MCPClient interface {
	// ListTools retrieves the list of available tools from the MCP server.
	ListTools(ctx context.Context) ([]ToolInfo, error)

	// CallTool invokes a tool on the MCP server with the given arguments.
	CallTool(ctx context.Context, name string, args map[string]interface{}) (*tool.Result, error)
}

// Client speaks JSON-RPC 2.0 to an MCP server over a newline-delimited
// stream. Calls are serialised; one request is in flight at a time.
type Client struct {
	w io.Writer
	r *bufio.Reader

	requestID atomic.Int64
	mu        sync.Mutex
}

// NewClient creates a client that writes requests to w and reads
// responses from r.
func NewClient(r io.Reader, w io.Writer) *Client {
	return &Client{
		w: w,
		r: bufio.NewReader(r),
	}
}

// Initialize performs the MCP handshake and returns the server's info.
func (c *Client) Initialize(ctx context.Context, clientName, clientVersion string) (map[string]interface{}, error) {
	params := map[string]interface{}{
		"protocolVersion": protocolVersion,
		"capabilities":    map[string]interface{}{},
		"clientInfo": map[string]interface{}{
			"name":    clientName,
			"version": clientVersion,
		},
	}

	var result struct {
		ServerInfo map[string]interface{} `json:"serverInfo"`
	}
	if err := c.call(ctx, "initialize", params, &result); err != nil {
		return nil, fmt.Errorf("initialize request failed: %w", err)
	}

	if err := c.notify("notifications/initialized"); err != nil {
		return nil, fmt.Errorf("failed to send initialized notification: %w", err)
	}
	return result.ServerInfo, nil
}

// Ping checks that the server is responsive.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.call(ctx, "ping", nil, nil); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}
	return nil
}

// ListTools retrieves the list of available tools from the MCP server.
func (c *Client) ListTools(ctx context.Context) ([]ToolInfo, error) {
	var result listResult
	if err := c.call(ctx, "tools/list", nil, &result); err != nil {
		return nil, fmt.Errorf("tools/list request failed: %w", err)
	}
	if result.Tools == nil {
		return []ToolInfo{}, nil
	}
	return result.Tools, nil
}

// CallTool invokes a tool on the MCP server. A tool that reports an error
// yields an unsuccessful Result, not a Go error.
func (c *Client) CallTool(ctx context.Context, name string, args map[string]interface{}) (*tool.Result, error) {
	var result callResult
	if err := c.call(ctx, "tools/call", callParams{Name: name, Arguments: args}, &result); err != nil {
		return nil, fmt.Errorf("tools/call %s failed: %w", name, err)
	}

	text := result.text()
	if result.IsError {
		return &tool.Result{
			Success: false,
			Error:   errorMessage(text),
		}, nil
	}
	return &tool.Result{
		Success: true,
		Output:  text,
	}, nil
}

// errorMessage unwraps an {"error": msg} payload; other text is returned as is.
func errorMessage(text string) string {
	var payload struct {
		Error *string `json:"error"`
	}
	if json.Unmarshal([]byte(text), &payload) == nil && payload.Error != nil {
		return *payload.Error
	}
	return text
}

// call sends a request and decodes the result into out, which may be nil.
func (c *Client) call(ctx context.Context, method string, params interface{}, out interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	id := c.requestID.Add(1)
	req := struct {
		JSONRPC string      `json:"jsonrpc"`
		ID      int64       `json:"id"`
		Method  string      `json:"method"`
		Params  interface{} `json:"params,omitempty"`
	}{jsonrpcVersion, id, method, params}

	if err := c.writeMessage(req); err != nil {
		return err
	}

	resp, err := c.readResponse(ctx, id)
	if err != nil {
		return err
	}
	if resp.Error != nil {
		return resp.Error
	}
	if out == nil || len(resp.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Result, out); err != nil {
		return fmt.Errorf("failed to decode %s result: %w", method, err)
	}
	return nil
}

func (c *Client) notify(method string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.writeMessage(map[string]interface{}{
		"jsonrpc": jsonrpcVersion,
		"method":  method,
	})
}

// writeMessage writes one newline-delimited JSON-RPC message.
func (c *Client) writeMessage(msg interface{}) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	if _, err := c.w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	return nil
}

// readResponse reads messages until the response to id arrives, skipping
// server notifications and stale responses.
func (c *Client) readResponse(ctx context.Context, id int64) (*Response, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		line, err := c.r.ReadBytes('\n')
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}

		var msg struct {
			Response
			Method string `json:"method"`
		}
		if err := json.Unmarshal(line, &msg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal response: %w", err)
		}
		if msg.Method != "" {
			continue
		}
		if n, ok := msg.ID.(float64); !ok || int64(n) != id {
			if msg.ID == nil && msg.Error != nil {
				return nil, msg.Error
			}
			continue
		}
		return &msg.Response, nil
	}
}
