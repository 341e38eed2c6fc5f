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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every variable LoadConfig reads for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		EnvAccountEndpoint, EnvAccountKey, EnvConfigPath, EnvMockData,
		EnvTransport, EnvHTTPAddr, EnvHTTPPath, EnvHealthAddr, EnvStrictErrors,
		EnvQueryRate, EnvQueryBurst, EnvBreakerFailures, EnvBreakerCooldown, EnvTracingEnabled, EnvTracingEndpoint,
		EnvTracingSampleRate, EnvTracingInsecure, EnvLogLevel,
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, TransportStdio, cfg.Transport)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "/mcp", cfg.HTTPPath)
	assert.Equal(t, ":8081", cfg.HealthAddr)
	assert.Equal(t, 1.0, cfg.TracingSampleRate)
	assert.False(t, cfg.MockMode())

	assert.ErrorIs(t, cfg.Validate(), ErrMissingEndpoint)
}

func TestLoadConfig_Environment(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvAccountEndpoint, "https://acct.documents.azure.com:443/")
	t.Setenv(EnvAccountKey, "c2VjcmV0")
	t.Setenv(EnvTransport, "http")
	t.Setenv(EnvHTTPAddr, ":9999")
	t.Setenv(EnvHealthAddr, "")
	t.Setenv(EnvStrictErrors, "true")
	t.Setenv(EnvQueryRate, "2.5")
	t.Setenv(EnvQueryBurst, "4")
	t.Setenv(EnvBreakerFailures, "5")
	t.Setenv(EnvBreakerCooldown, "1m")
	t.Setenv(EnvTracingEnabled, "true")
	t.Setenv(EnvTracingEndpoint, "localhost:4317")
	t.Setenv(EnvTracingSampleRate, "0.25")
	t.Setenv(EnvLogLevel, "debug")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "https://acct.documents.azure.com:443/", cfg.AccountEndpoint)
	assert.Equal(t, "c2VjcmV0", cfg.AccountKey)
	assert.Equal(t, TransportHTTP, cfg.Transport)
	assert.Equal(t, ":9999", cfg.HTTPAddr)
	assert.Empty(t, cfg.HealthAddr)
	assert.True(t, cfg.StrictErrors)
	assert.Equal(t, 2.5, cfg.QueryRate)
	assert.Equal(t, 4, cfg.QueryBurst)
	assert.Equal(t, 5, cfg.BreakerFailures)
	assert.Equal(t, time.Minute, cfg.BreakerCooldown)
	assert.True(t, cfg.TracingEnabled)
	assert.Equal(t, 0.25, cfg.TracingSampleRate)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfig_InvalidNumbers(t *testing.T) {
	for _, key := range []string{EnvQueryRate, EnvQueryBurst, EnvBreakerFailures, EnvBreakerCooldown, EnvTracingSampleRate} {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, "lots")
			_, err := LoadConfig()
			assert.ErrorContains(t, err, "invalid "+key)
		})
	}
}

func TestLoadConfig_FileThenEnvironment(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, `
accountEndpoint: https://from-file.documents.azure.com:443/
transport: http
httpAddr: ":7000"
strictErrors: true
queryRate: 10
breakerFailures: 3
breakerCooldown: 45s
`)
	t.Setenv(EnvConfigPath, path)
	t.Setenv(EnvHTTPAddr, ":7001")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "https://from-file.documents.azure.com:443/", cfg.AccountEndpoint)
	assert.Equal(t, TransportHTTP, cfg.Transport)
	assert.Equal(t, ":7001", cfg.HTTPAddr)
	assert.True(t, cfg.StrictErrors)
	assert.Equal(t, 10.0, cfg.QueryRate)
	assert.Equal(t, 3, cfg.BreakerFailures)
	assert.Equal(t, 45*time.Second, cfg.BreakerCooldown)
	// Untouched by the file.
	assert.Equal(t, DefaultHealthAddr, cfg.HealthAddr)
	assert.Equal(t, DefaultQueryBurst, cfg.QueryBurst)
}

func TestLoadConfig_EnvironmentOverridesFileBool(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvConfigPath, writeFile(t, "strictErrors: true\n"))
	t.Setenv(EnvStrictErrors, "false")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.False(t, cfg.StrictErrors)
}

func TestLoadConfig_FileErrors(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvConfigPath, filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := LoadConfig()
	assert.ErrorContains(t, err, "failed to read config file")

	t.Setenv(EnvConfigPath, writeFile(t, "transport: [not, a, string]\n"))
	_, err = LoadConfig()
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.AccountEndpoint = "https://acct.documents.azure.com:443/"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{
			name:   "mock mode needs no endpoint",
			mutate: func(c *Config) { c.AccountEndpoint = ""; c.MockDataPath = "fixture.yaml" },
		},
		{
			name:    "missing endpoint",
			mutate:  func(c *Config) { c.AccountEndpoint = "" },
			wantErr: "ACCOUNT_ENDPOINT is required",
		},
		{
			name:    "unknown transport",
			mutate:  func(c *Config) { c.Transport = "sse" },
			wantErr: `unsupported transport "sse"`,
		},
		{
			name:    "http without address",
			mutate:  func(c *Config) { c.Transport = TransportHTTP; c.HTTPAddr = "" },
			wantErr: "requires a listen address",
		},
		{
			name:    "negative rate",
			mutate:  func(c *Config) { c.QueryRate = -1 },
			wantErr: "must not be negative",
		},
		{
			name:    "rate without burst",
			mutate:  func(c *Config) { c.QueryRate = 5; c.QueryBurst = 0 },
			wantErr: "burst must be at least 1",
		},
		{
			name:    "negative breaker failures",
			mutate:  func(c *Config) { c.BreakerFailures = -1 },
			wantErr: "breaker failures must not be negative",
		},
		{
			name:    "breaker without cooldown",
			mutate:  func(c *Config) { c.BreakerFailures = 3; c.BreakerCooldown = 0 },
			wantErr: "breaker cooldown must be positive",
		},
		{
			name:    "sample rate out of range",
			mutate:  func(c *Config) { c.TracingSampleRate = 1.5 },
			wantErr: "between 0.0 and 1.0",
		},
		{
			name:    "tracing without endpoint",
			mutate:  func(c *Config) { c.TracingEnabled = true },
			wantErr: "tracing endpoint is required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
