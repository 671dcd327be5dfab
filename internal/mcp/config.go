package mcp

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// Supported transports.
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
)

// Defaults applied before the config file and environment.
const (
	DefaultName    = "calculator-mcp-server"
	DefaultVersion = "0.1.0"
	DefaultAddr    = "localhost:8001"
)

// Environment variables overriding the config file.
const (
	EnvName      = "CALCULATOR_MCP_NAME"
	EnvTransport = "CALCULATOR_MCP_TRANSPORT"
	EnvAddr      = "CALCULATOR_MCP_ADDR"
	EnvBaseURL   = "CALCULATOR_MCP_BASE_URL"
)

// Config defines how the calculator server is exposed.
type Config struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Transport string `json:"transport"`
	Addr      string `json:"addr"`
	BaseURL   string `json:"baseURL"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() *Config {
	return &Config{
		Name:      DefaultName,
		Version:   DefaultVersion,
		Transport: TransportStdio,
		Addr:      DefaultAddr,
	}
}

// LoadEnv loads variables from the given .env files into the process
// environment. Missing files are skipped and variables already set win.
func LoadEnv(files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", f, err)
		}
	}
	return nil
}

// LoadConfig builds the configuration from defaults, the JSON file at path
// (skipped when path is empty) and the environment, then validates it.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("config file not found: %s", path)
			}
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	for env, field := range map[string]*string{
		EnvName:      &c.Name,
		EnvTransport: &c.Transport,
		EnvAddr:      &c.Addr,
		EnvBaseURL:   &c.BaseURL,
	} {
		if v, ok := os.LookupEnv(env); ok && v != "" {
			*field = v
		}
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("name is required")
	}
	switch c.Transport {
	case TransportStdio:
	case TransportSSE:
		if c.Addr == "" {
			return fmt.Errorf("addr is required for the %s transport", TransportSSE)
		}
	default:
		return fmt.Errorf("unknown transport %q (want %s or %s)", c.Transport, TransportStdio, TransportSSE)
	}
	return nil
}
