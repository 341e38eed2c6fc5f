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
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/altairalabs/cosmosdb-mcp/internal/config"
	"github.com/altairalabs/cosmosdb-mcp/internal/server"
)

func newServeCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the tools over MCP (stdio or streamable HTTP)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), cfg)
		},
	}
	addServeFlags(cmd.Flags(), cfg)
	return cmd
}

func addServeFlags(fs *pflag.FlagSet, cfg *config.Config) {
	fs.StringVar(&cfg.Transport, "transport", cfg.Transport, "MCP transport: stdio or http (env "+config.EnvTransport+")")
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "MCP HTTP listen address (env "+config.EnvHTTPAddr+")")
	fs.StringVar(&cfg.HTTPPath, "http-path", cfg.HTTPPath, "MCP HTTP endpoint path (env "+config.EnvHTTPPath+")")
	fs.StringVar(&cfg.HealthAddr, "health-addr", cfg.HealthAddr, "Health and metrics listen address, empty to disable (env "+config.EnvHealthAddr+")")
}

func runServe(ctx context.Context, cfg *config.Config) error {
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()
	log := a.log

	var ready atomic.Bool
	var opsSrv *http.Server
	if cfg.HealthAddr != "" {
		opsSrv = server.NewOpsServer(server.OpsConfig{
			Addr:     cfg.HealthAddr,
			Gatherer: a.gatherer,
			Ready: func(context.Context) error {
				if !ready.Load() {
					return errors.New("not ready")
				}
				return nil
			},
			Tools: a.registry.Definitions(),
		})
		startHTTPServer(log, "ops", cfg.HealthAddr, opsSrv)
		defer shutdownServer(log, "ops", opsSrv)
	}

	srv := server.New(a.registry, server.Config{
		Version:      version,
		Transport:    cfg.Transport,
		StrictErrors: cfg.StrictErrors,
	}, log)

	log.Info("cosmosdb-mcp ready",
		"version", version,
		"transport", cfg.Transport,
		"mock", cfg.MockMode(),
		"strictErrors", cfg.StrictErrors,
		"tools", len(a.registry.Definitions()),
	)
	ready.Store(true)

	switch cfg.Transport {
	case config.TransportHTTP:
		err = srv.RunHTTP(ctx, cfg.HTTPAddr, cfg.HTTPPath)
	default:
		err = srv.RunStdio(ctx)
	}
	ready.Store(false)
	log.Info("shutting down")
	if err != nil {
		return fmt.Errorf("serving MCP: %w", err)
	}
	return nil
}

// startHTTPServer starts an HTTP server in a background goroutine.
func startHTTPServer(log logr.Logger, name, addr string, srv *http.Server) {
	go func() {
		log.Info("starting server", "server", name, "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(err, "server error", "server", name)
		}
	}()
}

// shutdownServer gracefully stops srv with a 30-second timeout.
func shutdownServer(log logr.Logger, name string, srv *http.Server) {
	shutCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		log.Error(err, "server shutdown error", "server", name)
	}
}
