package mcp

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os/exec"
	"sync"

	"calculator-mcp/internal/tool"
)

// StdioClient spawns an MCP server as a subprocess and communicates
// via JSON-RPC 2.0 over its stdin/stdout.
type StdioClient struct {
	command string
	args    []string
	env     map[string]string

	cmd    *exec.Cmd
	stdin  io.WriteCloser
	client *Client

	mu        sync.Mutex
	connected bool
}

// NewStdioClient creates a new StdioClient with the given command and arguments.
func NewStdioClient(command string, args []string, env map[string]string) *StdioClient {
	return &StdioClient{
		command: command,
		args:    args,
		env:     env,
	}
}

// Connect starts the MCP server subprocess and initializes the connection.
func (c *StdioClient) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		return nil
	}

	c.cmd = exec.CommandContext(ctx, c.command, c.args...)

	if len(c.env) > 0 {
		c.cmd.Env = c.cmd.Environ()
		for k, v := range c.env {
			c.cmd.Env = append(c.cmd.Env, fmt.Sprintf("%s=%s", k, v))
		}
	}

	stdin, err := c.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("failed to create stdin pipe: %w", err)
	}
	c.stdin = stdin

	stdout, err := c.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to create stdout pipe: %w", err)
	}

	stderr, err := c.cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	if err := c.cmd.Start(); err != nil {
		return fmt.Errorf("failed to start MCP server: %w", err)
	}

	go logServerStderr(bufio.NewReader(stderr))

	c.client = NewClient(stdout, stdin)
	info, err := c.client.Initialize(ctx, "calc", "0.1.0")
	if err != nil {
		c.cmd.Process.Kill()
		c.cmd.Wait()
		return fmt.Errorf("failed to initialize MCP connection: %w", err)
	}
	log.Printf("[MCP Client] Connected to %v %v", info["name"], info["version"])

	c.connected = true
	return nil
}

// ListTools retrieves the list of available tools from the MCP server.
func (c *StdioClient) ListTools(ctx context.Context) ([]ToolInfo, error) {
	client, err := c.connectedClient()
	if err != nil {
		return nil, err
	}
	return client.ListTools(ctx)
}

// CallTool invokes a tool on the MCP server with the given arguments.
func (c *StdioClient) CallTool(ctx context.Context, name string, args map[string]interface{}) (*tool.Result, error) {
	client, err := c.connectedClient()
	if err != nil {
		return nil, err
	}
	return client.CallTool(ctx, name, args)
}

// Ping checks that the server subprocess is responsive.
func (c *StdioClient) Ping(ctx context.Context) error {
	client, err := c.connectedClient()
	if err != nil {
		return err
	}
	return client.Ping(ctx)
}

func (c *StdioClient) connectedClient() (*Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return nil, fmt.Errorf("not connected to MCP server")
	}
	return c.client, nil
}

// Close terminates the MCP server subprocess.
func (c *StdioClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return nil
	}

	c.connected = false

	if c.stdin != nil {
		c.stdin.Close()
	}

	if c.cmd != nil && c.cmd.Process != nil {
		c.cmd.Process.Kill()
		c.cmd.Wait()
	}

	return nil
}

// logServerStderr forwards the server's stderr output to the log.
func logServerStderr(r *bufio.Reader) {
	for {
		line, err := r.ReadString('\n')
		if line != "" {
			log.Printf("[MCP Server stderr] %s", line)
		}
		if err != nil {
			return
		}
	}
}
