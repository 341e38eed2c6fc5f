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

// Package server exposes the tool registry over the Model Context Protocol.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-logr/logr"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/altairalabs/cosmosdb-mcp/internal/tools"
	"github.com/altairalabs/cosmosdb-mcp/pkg/logctx"
)

// Transport names.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// DefaultHTTPPath is where the streamable HTTP transport is mounted.
const DefaultHTTPPath = "/mcp"

// shutdownTimeout bounds graceful HTTP shutdown.
const shutdownTimeout = 30 * time.Second

// Config configures the MCP server.
type Config struct {
	// Name and Version identify the server to clients.
	Name    string
	Version string

	// Transport is recorded on every invocation's log context.
	Transport string

	// StrictErrors marks failed tool calls with IsError. When false every
	// result is reported as a success and failures are only visible in
	// the payload text.
	StrictErrors bool
}

// Server serves the tools of a Registry over MCP.
type Server struct {
	cfg      Config
	registry *tools.Registry
	mcp      *mcp.Server
	log      logr.Logger
}

// New creates a Server advertising every tool in registry.
func New(registry *tools.Registry, cfg Config, log logr.Logger) *Server {
	if cfg.Name == "" {
		cfg.Name = "cosmosdb-mcp"
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	if cfg.Transport == "" {
		cfg.Transport = TransportStdio
	}

	s := &Server{
		cfg:      cfg,
		registry: registry,
		mcp: mcp.NewServer(&mcp.Implementation{
			Name:    cfg.Name,
			Version: cfg.Version,
		}, nil),
		log: log.WithName("server"),
	}

	for _, def := range registry.Definitions() {
		s.mcp.AddTool(toolFor(def), s.handler(def.Name))
	}
	return s
}

// MCP returns the underlying MCP server.
func (s *Server) MCP() *mcp.Server {
	return s.mcp
}

func toolFor(def tools.Definition) *mcp.Tool {
	notDestructive := false
	closedWorld := false
	return &mcp.Tool{
		Name:        def.Name,
		Description: def.Description,
		InputSchema: inputSchema(def),
		Annotations: &mcp.ToolAnnotations{
			ReadOnlyHint:    true,
			IdempotentHint:  true,
			DestructiveHint: &notDestructive,
			OpenWorldHint:   &closedWorld,
		},
	}
}

// handler adapts a registry tool to an MCP tool handler. It never returns a
// protocol error: malformed arguments are degraded like any tool failure.
func (s *Server) handler(name string) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ctx = logctx.WithTransport(ctx, s.cfg.Transport)
		if req.Session != nil {
			if id := req.Session.ID(); id != "" {
				ctx = logctx.WithSessionID(ctx, id)
			}
		}

		var raw []byte
		if req.Params != nil {
			raw = req.Params.Arguments
		}
		args, err := tools.DecodeArgs(raw)
		if err != nil {
			logctx.LoggerWithContext(s.log, ctx).Error(err, "Error decoding tool arguments", "tool", name)
			return s.result(tools.Result{Payload: err.Error(), Failed: true}), nil
		}

		return s.result(s.registry.Dispatch(ctx, tools.Request{Name: name, Args: args})), nil
	}
}

func (s *Server) result(res tools.Result) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: res.Payload}},
		IsError: s.cfg.StrictErrors && res.Failed,
	}
}

// RunStdio serves a single session over stdin/stdout until ctx is done or
// the client disconnects.
func (s *Server) RunStdio(ctx context.Context) error {
	s.log.Info("serving MCP", "transport", TransportStdio)
	if err := s.mcp.Run(ctx, &mcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("stdio transport: %w", err)
	}
	return nil
}

// HTTPHandler returns the streamable HTTP handler for this server.
func (s *Server) HTTPHandler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcp
	}, nil)
}

// NewHTTPServer creates an HTTP server with the MCP endpoint mounted at path.
// Requests are traced through the global tracer provider, so tool spans
// join the caller's trace when it propagates one.
func (s *Server) NewHTTPServer(addr, path string) *http.Server {
	if path == "" {
		path = DefaultHTTPPath
	}
	mux := http.NewServeMux()
	mux.Handle(path, otelhttp.NewHandler(s.HTTPHandler(), "mcp"))
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// RunHTTP serves the streamable HTTP transport on addr until ctx is done,
// then shuts down gracefully.
func (s *Server) RunHTTP(ctx context.Context, addr, path string) error {
	if path == "" {
		path = DefaultHTTPPath
	}
	srv := s.NewHTTPServer(addr, path)

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("serving MCP", "transport", TransportHTTP, "addr", addr, "path", path)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http transport: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		return fmt.Errorf("http transport shutdown: %w", err)
	}
	return nil
}
