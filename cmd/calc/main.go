// Package main provides a command-line client that runs the calculator MCP
// server as a subprocess and calls its tools.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"calculator-mcp/internal/mcp"
	"calculator-mcp/internal/tool"
)

func main() {
	serverPath := flag.String("server", "calculator-mcp", "Path to the calculator MCP server binary")
	verbose := flag.Bool("v", false, "Log protocol activity to stderr")
	flag.Usage = printUsage
	flag.Parse()

	log.SetOutput(io.Discard)
	if *verbose {
		log.SetOutput(os.Stderr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, *serverPath, flag.Args())
	stop()
	os.Exit(code)
}

func run(ctx context.Context, serverPath string, args []string) int {
	if len(args) == 0 {
		printUsage()
		return 2
	}

	client := mcp.NewStdioClient(serverPath, nil, nil)
	if err := client.Connect(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer client.Close()

	if err := client.Ping(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: server not responding: %v\n", err)
		return 1
	}

	switch args[0] {
	case "list":
		return list(ctx, client)
	case "call":
		if len(args) < 2 || len(args) > 3 {
			printUsage()
			return 2
		}
		raw := "{}"
		if len(args) == 3 {
			raw = args[2]
		}
		return call(ctx, client, args[1], raw)
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n", args[0])
		printUsage()
		return 2
	}
}

func list(ctx context.Context, client mcp.MCPClient) int {
	tools, err := mcp.RemoteTools(ctx, client)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	for _, t := range tools {
		fmt.Printf("%-24s %s\n", t.Name(), t.Description())
	}
	return 0
}

func call(ctx context.Context, client mcp.MCPClient, name, raw string) int {
	var args map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: arguments must be a JSON object: %v\n", err)
		return 2
	}

	tools, err := mcp.RemoteTools(ctx, client)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	var target tool.Tool
	for _, t := range tools {
		if t.Name() == name {
			target = t
			break
		}
	}
	if target == nil {
		fmt.Fprintf(os.Stderr, "Error: unknown tool %q\n", name)
		return 1
	}

	if args == nil {
		args = make(map[string]interface{})
	}
	result, err := target.Execute(ctx, args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if !result.Success {
		fmt.Fprintf(os.Stderr, "Error: %s\n", result.Error)
		return 1
	}
	fmt.Println(result.Output)
	return 0
}

// printUsage prints the usage information.
func printUsage() {
	fmt.Fprintln(os.Stderr, "Calculator MCP client")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  calc [-server path] [-v] list")
	fmt.Fprintln(os.Stderr, "  calc [-server path] [-v] call <tool> '<json arguments>'")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Examples:")
	fmt.Fprintln(os.Stderr, `  calc call add '{"a": 2, "b": 3}'`)
	fmt.Fprintln(os.Stderr, `  calc call numerical_integrate '{"expression": "x**2", "lower_bound": 0, "upper_bound": 3}'`)
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Flags:")
	flag.PrintDefaults()
}
