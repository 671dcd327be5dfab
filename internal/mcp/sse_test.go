package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"calculator-mcp/internal/tool"
)

func handleSSE(t *testing.T, srv *SSEServer, message string) map[string]interface{} {
	t.Helper()

	reply := srv.mcp.HandleMessage(context.Background(), json.RawMessage(message))
	data, err := json.Marshal(reply)
	if err != nil {
		t.Fatalf("failed to encode reply: %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("failed to decode reply %s: %v", data, err)
	}
	if decoded["error"] != nil {
		t.Fatalf("unexpected error reply: %s", data)
	}
	result, ok := decoded["result"].(map[string]interface{})
	if !ok {
		t.Fatalf("reply has no result: %s", data)
	}
	return result
}

func newSSECalculator(t *testing.T) *SSEServer {
	t.Helper()
	srv, err := NewSSEServer("test-server", "1.0.0", "http://localhost:8001", tool.Calculator())
	if err != nil {
		t.Fatalf("NewSSEServer failed: %v", err)
	}
	handleSSE(t, srv, `{"jsonrpc":"2.0","id":0,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"1.0.0"}}}`)
	return srv
}

func TestSSEServer_ToolsList(t *testing.T) {
	result := handleSSE(t, newSSECalculator(t), `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)

	tools, ok := result["tools"].([]interface{})
	if !ok {
		t.Fatalf("expected tools list, got %T", result["tools"])
	}
	if len(tools) != len(tool.Calculator()) {
		t.Fatalf("expected %d tools, got %d", len(tool.Calculator()), len(tools))
	}

	names := make(map[string]bool)
	for _, item := range tools {
		info := item.(map[string]interface{})
		names[info["name"].(string)] = true
		schema, ok := info["inputSchema"].(map[string]interface{})
		if !ok || schema["type"] != "object" {
			t.Errorf("tool %v: unexpected schema %v", info["name"], info["inputSchema"])
		}
	}
	for _, tl := range tool.Calculator() {
		if !names[tl.Name()] {
			t.Errorf("tool %s not listed", tl.Name())
		}
	}
}

func TestSSEServer_ToolsCall(t *testing.T) {
	tests := []struct {
		name        string
		request     string
		wantText    string
		wantIsError bool
	}{
		{
			name:     "subtract",
			request:  `{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"subtract","arguments":{"a":10,"b":4}}}`,
			wantText: `{"result":6}`,
		},
		{
			name:        "empty median",
			request:     `{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"calculate_median","arguments":{"data":[]}}}`,
			wantText:    `{"error":"Input list cannot be empty for median calculation."}`,
			wantIsError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := handleSSE(t, newSSECalculator(t), tt.request)

			isError, _ := result["isError"].(bool)
			if isError != tt.wantIsError {
				t.Errorf("expected isError=%v, got %v", tt.wantIsError, isError)
			}
			items, ok := result["content"].([]interface{})
			if !ok || len(items) != 1 {
				t.Fatalf("expected one content item, got %v", result["content"])
			}
			text := items[0].(map[string]interface{})["text"]
			if text != tt.wantText {
				t.Errorf("expected %s, got %v", tt.wantText, text)
			}
		})
	}
}
