// Package main provides the entry point for the calculator MCP server,
// served over stdio or SSE.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"calculator-mcp/internal/mcp"
	"calculator-mcp/internal/tool"
)

func main() {
	configPath := flag.String("config", "", "Path to JSON configuration file")
	transport := flag.String("transport", "", "Transport to serve: 'stdio' or 'sse' (overrides config)")
	addr := flag.String("addr", "", "Listen address for the sse transport (overrides config)")
	envFile := flag.String("env", ".env", "Path to .env file loaded before configuration")
	flag.Parse()

	// Logs go to stderr so stdout stays a clean JSON-RPC channel.
	log.SetOutput(os.Stderr)

	if err := mcp.LoadEnv(*envFile); err != nil {
		log.Fatalf("Error loading environment: %v", err)
	}

	cfg, err := mcp.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	if *transport != "" {
		cfg.Transport = *transport
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func run(ctx context.Context, cfg *mcp.Config) error {
	tools := tool.Calculator()

	switch cfg.Transport {
	case mcp.TransportSSE:
		return runSSE(ctx, cfg, tools)
	case mcp.TransportStdio:
		return runStdio(ctx, cfg, tools)
	default:
		return fmt.Errorf("unknown transport %q", cfg.Transport)
	}
}

func runStdio(ctx context.Context, cfg *mcp.Config, tools []tool.Tool) error {
	server := mcp.NewServer(cfg.Name, cfg.Version, tools)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(ctx, os.Stdin, os.Stdout)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	case <-ctx.Done():
		log.Printf("[MCP Server] Shutting down")
		return nil
	}
}

func runSSE(ctx context.Context, cfg *mcp.Config, tools []tool.Tool) error {
	server, err := mcp.NewSSEServer(cfg.Name, cfg.Version, cfg.BaseURL, tools)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(cfg.Addr)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}
