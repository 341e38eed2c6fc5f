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

// Command cosmosdb-mcp serves read-only Azure Cosmos DB tools over the
// Model Context Protocol.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/altairalabs/cosmosdb-mcp/internal/config"
)

// version is set at build time via -ldflags.
var version = "dev"

// errToolFailed is returned by "call" in strict mode when the tool failed.
// The payload has already been printed.
var errToolFailed = errors.New("tool call failed")

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := execute(ctx, os.Args[1:]); err != nil {
		if !errors.Is(err, errToolFailed) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		cancel()
		os.Exit(1)
	}
}

func execute(ctx context.Context, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	root := newRootCmd(cfg)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// newRootCmd builds the command tree. Flag defaults come from cfg, which
// already holds the config file and environment values, so an explicit
// flag wins over both.
func newRootCmd(cfg *config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:   "cosmosdb-mcp",
		Short: "MCP server exposing read-only Azure Cosmos DB tools",
		Long: `cosmosdb-mcp lets MCP clients list databases and containers, query
documents by field, count documents, infer a container schema and sample
documents from an Azure Cosmos DB (NoSQL API) account.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return cfg.Validate()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&cfg.AccountEndpoint, "account-endpoint", cfg.AccountEndpoint, "Cosmos DB account endpoint (env "+config.EnvAccountEndpoint+")")
	flags.StringVar(&cfg.AccountKey, "account-key", cfg.AccountKey, "Cosmos DB account key; empty uses DefaultAzureCredential (env "+config.EnvAccountKey+")")
	flags.StringVar(&cfg.MockDataPath, "mock-data", cfg.MockDataPath, "Serve a YAML fixture instead of a Cosmos DB account (env "+config.EnvMockData+")")
	flags.BoolVar(&cfg.StrictErrors, "strict-errors", cfg.StrictErrors, "Report failed tool calls as errors (env "+config.EnvStrictErrors+")")
	flags.Float64Var(&cfg.QueryRate, "query-rate", cfg.QueryRate, "Maximum result pages read per second, 0 for unlimited (env "+config.EnvQueryRate+")")
	flags.IntVar(&cfg.QueryBurst, "query-burst", cfg.QueryBurst, "Page read burst size (env "+config.EnvQueryBurst+")")
	flags.IntVar(&cfg.BreakerFailures, "breaker-failures", cfg.BreakerFailures, "Consecutive upstream failures that open the circuit breaker, 0 to disable (env "+config.EnvBreakerFailures+")")
	flags.DurationVar(&cfg.BreakerCooldown, "breaker-cooldown", cfg.BreakerCooldown, "How long an open circuit breaker rejects reads (env "+config.EnvBreakerCooldown+")")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info or error (env "+config.EnvLogLevel+")")

	// Running the binary with no subcommand serves, which is how MCP hosts launch it.
	root.RunE = func(cmd *cobra.Command, _ []string) error {
		return runServe(cmd.Context(), cfg)
	}
	addServeFlags(root.Flags(), cfg)

	root.AddCommand(newServeCmd(cfg), newCallCmd(cfg), newToolsCmd())
	return root
}
