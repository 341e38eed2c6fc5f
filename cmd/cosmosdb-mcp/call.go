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

package main

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/altairalabs/cosmosdb-mcp/internal/config"
	"github.com/altairalabs/cosmosdb-mcp/internal/tools"
	"github.com/altairalabs/cosmosdb-mcp/pkg/logctx"
)

const transportCLI = "cli"

func newCallCmd(cfg *config.Config) *cobra.Command {
	var (
		pairs   []string
		rawJSON string
	)
	cmd := &cobra.Command{
		Use:   "call <tool>",
		Short: "Run one tool and print its payload",
		Example: `  cosmosdb-mcp call get_databases
  cosmosdb-mcp call get_document_by_field --arg database=shop --arg container=orders --arg field=status --arg value=open
  cosmosdb-mcp call get_sample_documents --json '{"database":"shop","container":"orders","count":3}'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			toolArgs, err := buildArgs(rawJSON, pairs)
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.close()

			ctx := logctx.WithLoggingContext(cmd.Context(), &logctx.LoggingFields{
				RequestID: uuid.NewString(),
				Transport: transportCLI,
			})
			res := a.registry.Dispatch(ctx, tools.Request{Name: args[0], Args: toolArgs})
			fmt.Fprintln(cmd.OutOrStdout(), res.Payload)

			if res.Failed && cfg.StrictErrors {
				return errToolFailed
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&pairs, "arg", nil, "Tool argument as key=value (repeatable)")
	cmd.Flags().StringVar(&rawJSON, "json", "", "Tool arguments as a JSON object")
	return cmd
}

// buildArgs merges a JSON argument object with key=value pairs.
// Pairs win over JSON keys of the same name.
func buildArgs(rawJSON string, pairs []string) (tools.Args, error) {
	args, err := tools.DecodeArgs([]byte(rawJSON))
	if err != nil {
		return nil, err
	}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --arg %q: want key=value", pair)
		}
		args[key] = value
	}
	return args, nil
}
