/*
Copyright 2026 Altaira Labs.

SPDX-License-Identifier: Apache-2.0

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package config loads the cosmosdb-mcp server configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds server configuration loaded from a YAML file and the environment.
type Config struct {
	// Cosmos DB account
	AccountEndpoint string `yaml:"accountEndpoint"`
	AccountKey      string `yaml:"accountKey"` // Empty selects DefaultAzureCredential

	// MockDataPath points at a YAML fixture served instead of a real account.
	MockDataPath string `yaml:"mockData"`

	// Transport
	Transport  string `yaml:"transport"` // "stdio" or "http"
	HTTPAddr   string `yaml:"httpAddr"`
	HTTPPath   string `yaml:"httpPath"`
	HealthAddr string `yaml:"healthAddr"` // Empty disables the ops server

	// StrictErrors flags failed tool calls with IsError.
	StrictErrors bool `yaml:"strictErrors"`

	// Query throttling: page reads per second, 0 = unlimited.
	QueryRate  float64 `yaml:"queryRate"`
	QueryBurst int     `yaml:"queryBurst"`

	// Circuit breaker over page reads: consecutive upstream failures before
	// opening, 0 = disabled.
	BreakerFailures int           `yaml:"breakerFailures"`
	BreakerCooldown time.Duration `yaml:"breakerCooldown"`

	// Tracing configuration
	TracingEnabled    bool    `yaml:"tracingEnabled"`
	TracingEndpoint   string  `yaml:"tracingEndpoint"`
	TracingSampleRate float64 `yaml:"tracingSampleRate"`
	TracingInsecure   bool    `yaml:"tracingInsecure"`

	LogLevel string `yaml:"logLevel"`
}

// Environment variable names.
const (
	EnvAccountEndpoint   = "ACCOUNT_ENDPOINT"
	EnvAccountKey        = "ACCOUNT_KEY"
	EnvConfigPath        = "COSMOSDB_MCP_CONFIG"
	EnvMockData          = "COSMOSDB_MCP_MOCK_DATA"
	EnvTransport         = "COSMOSDB_MCP_TRANSPORT"
	EnvHTTPAddr          = "COSMOSDB_MCP_HTTP_ADDR"
	EnvHTTPPath          = "COSMOSDB_MCP_HTTP_PATH"
	EnvHealthAddr        = "COSMOSDB_MCP_HEALTH_ADDR"
	EnvStrictErrors      = "COSMOSDB_MCP_STRICT_ERRORS"
	EnvQueryRate         = "COSMOSDB_MCP_QUERY_RATE"
	EnvQueryBurst        = "COSMOSDB_MCP_QUERY_BURST"
	EnvBreakerFailures   = "COSMOSDB_MCP_BREAKER_FAILURES"
	EnvBreakerCooldown   = "COSMOSDB_MCP_BREAKER_COOLDOWN"
	EnvTracingEnabled    = "COSMOSDB_MCP_TRACING_ENABLED"
	EnvTracingEndpoint   = "COSMOSDB_MCP_TRACING_ENDPOINT"
	EnvTracingSampleRate = "COSMOSDB_MCP_TRACING_SAMPLE_RATE"
	EnvTracingInsecure   = "COSMOSDB_MCP_TRACING_INSECURE"
	EnvLogLevel          = "LOG_LEVEL"
)

// Default values.
const (
	DefaultTransport  = TransportStdio
	DefaultHTTPAddr   = ":8080"
	DefaultHTTPPath   = "/mcp"
	DefaultHealthAddr = ":8081"
	DefaultQueryBurst = 1

	DefaultBreakerCooldown = 30 * time.Second
)

// Transport constants.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

const errFmtInvalidEnvVar = "invalid %s: %w"

// ErrMissingEndpoint is returned when no account endpoint is configured
// and the server is not running on fixture data.
var ErrMissingEndpoint = errors.New(EnvAccountEndpoint + " is required")

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Transport:         DefaultTransport,
		HTTPAddr:          DefaultHTTPAddr,
		HTTPPath:          DefaultHTTPPath,
		HealthAddr:        DefaultHealthAddr,
		QueryBurst:        DefaultQueryBurst,
		BreakerCooldown:   DefaultBreakerCooldown,
		TracingSampleRate: 1.0, // Default to sampling all traces
	}
}

// LoadConfig builds the configuration from defaults, the YAML file named by
// COSMOSDB_MCP_CONFIG (if any) and then environment variables, in that order.
// The result is not validated; call Validate once flag overrides are applied.
func LoadConfig() (*Config, error) {
	cfg := Default()
	if path := os.Getenv(EnvConfigPath); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile overlays the YAML file at path onto cfg. Keys absent from the
// file keep their current values.
func (cfg *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (cfg *Config) applyEnv() error {
	cfg.AccountEndpoint = getEnvOrDefault(EnvAccountEndpoint, cfg.AccountEndpoint)
	cfg.AccountKey = getEnvOrDefault(EnvAccountKey, cfg.AccountKey)
	cfg.MockDataPath = getEnvOrDefault(EnvMockData, cfg.MockDataPath)
	cfg.Transport = getEnvOrDefault(EnvTransport, cfg.Transport)
	cfg.HTTPAddr = getEnvOrDefault(EnvHTTPAddr, cfg.HTTPAddr)
	cfg.HTTPPath = getEnvOrDefault(EnvHTTPPath, cfg.HTTPPath)
	cfg.TracingEndpoint = getEnvOrDefault(EnvTracingEndpoint, cfg.TracingEndpoint)
	cfg.LogLevel = getEnvOrDefault(EnvLogLevel, cfg.LogLevel)

	// An explicitly empty health address disables the ops server.
	if v, ok := os.LookupEnv(EnvHealthAddr); ok {
		cfg.HealthAddr = v
	}

	cfg.StrictErrors = getEnvBool(EnvStrictErrors, cfg.StrictErrors)
	cfg.TracingEnabled = getEnvBool(EnvTracingEnabled, cfg.TracingEnabled)
	cfg.TracingInsecure = getEnvBool(EnvTracingInsecure, cfg.TracingInsecure)

	if err := cfg.parseQueryRate(); err != nil {
		return err
	}
	if err := cfg.parseBreaker(); err != nil {
		return err
	}
	return cfg.parseTracingSampleRate()
}

// parseQueryRate parses the query throttling overrides from environment.
func (cfg *Config) parseQueryRate() error {
	if v := os.Getenv(EnvQueryRate); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf(errFmtInvalidEnvVar, EnvQueryRate, err)
		}
		cfg.QueryRate = r
	}
	if v := os.Getenv(EnvQueryBurst); v != "" {
		b, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf(errFmtInvalidEnvVar, EnvQueryBurst, err)
		}
		cfg.QueryBurst = b
	}
	return nil
}

// parseBreaker parses the circuit breaker overrides from environment.
func (cfg *Config) parseBreaker() error {
	if v := os.Getenv(EnvBreakerFailures); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf(errFmtInvalidEnvVar, EnvBreakerFailures, err)
		}
		cfg.BreakerFailures = n
	}
	if v := os.Getenv(EnvBreakerCooldown); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf(errFmtInvalidEnvVar, EnvBreakerCooldown, err)
		}
		cfg.BreakerCooldown = d
	}
	return nil
}

// parseTracingSampleRate parses the tracing sample rate from environment.
func (cfg *Config) parseTracingSampleRate() error {
	rate := os.Getenv(EnvTracingSampleRate)
	if rate == "" {
		return nil
	}
	r, err := strconv.ParseFloat(rate, 64)
	if err != nil {
		return fmt.Errorf(errFmtInvalidEnvVar, EnvTracingSampleRate, err)
	}
	cfg.TracingSampleRate = r
	return nil
}

// MockMode reports whether the server runs on fixture data.
func (cfg *Config) MockMode() bool {
	return cfg.MockDataPath != ""
}

// Validate checks the configuration for missing or inconsistent values.
func (cfg *Config) Validate() error {
	if cfg.AccountEndpoint == "" && !cfg.MockMode() {
		return ErrMissingEndpoint
	}
	switch cfg.Transport {
	case TransportStdio:
	case TransportHTTP:
		if cfg.HTTPAddr == "" {
			return fmt.Errorf("http transport requires a listen address")
		}
	default:
		return fmt.Errorf("unsupported transport %q (want %s or %s)", cfg.Transport, TransportStdio, TransportHTTP)
	}
	if cfg.QueryRate < 0 {
		return fmt.Errorf("query rate must not be negative")
	}
	if cfg.QueryRate > 0 && cfg.QueryBurst < 1 {
		return fmt.Errorf("query burst must be at least 1 when a query rate is set")
	}
	if cfg.BreakerFailures < 0 {
		return fmt.Errorf("breaker failures must not be negative")
	}
	if cfg.BreakerFailures > 0 && cfg.BreakerCooldown <= 0 {
		return fmt.Errorf("breaker cooldown must be positive")
	}
	if cfg.TracingSampleRate < 0 || cfg.TracingSampleRate > 1 {
		return fmt.Errorf("tracing sample rate must be between 0.0 and 1.0")
	}
	if cfg.TracingEnabled && cfg.TracingEndpoint == "" {
		return fmt.Errorf("tracing endpoint is required when tracing is enabled")
	}
	return nil
}

// getEnvOrDefault returns the environment variable value or a default.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns true or false for "true"/"false" and def otherwise.
func getEnvBool(key string, def bool) bool {
	switch os.Getenv(key) {
	case "true":
		return true
	case "false":
		return false
	}
	return def
}
