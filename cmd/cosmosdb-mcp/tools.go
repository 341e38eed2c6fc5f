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
	"text/tabwriter"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/altairalabs/cosmosdb-mcp/internal/tools"
)

func newToolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the available tools and their parameters",
		Args:  cobra.NoArgs,
		// Listing needs no account.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			registry := tools.NewQueryRegistry(tools.NewAdapter(nil, nil, nil, logr.Discard()))

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TOOL\tPARAMETERS\tDESCRIPTION")
			for _, def := range registry.Definitions() {
				fmt.Fprintf(w, "%s\t%s\t%s\n", def.Name, formatParams(def.Params), def.Description)
			}
			return w.Flush()
		},
	}
}

func formatParams(params []tools.Param) string {
	if len(params) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(params))
	for _, p := range params {
		s := fmt.Sprintf("%s:%s", p.Name, p.Type)
		if !p.Required {
			s = fmt.Sprintf("[%s=%v]", s, p.Default)
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, " ")
}
