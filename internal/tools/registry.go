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

package tools

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/altairalabs/cosmosdb-mcp/internal/tracing"
	"github.com/altairalabs/cosmosdb-mcp/pkg/logctx"
	"github.com/altairalabs/cosmosdb-mcp/pkg/metrics"
)

// ParamType is the declared type of a tool parameter.
type ParamType string

// Parameter types. Tools only take strings and integers.
const (
	ParamString  ParamType = "string"
	ParamInteger ParamType = "integer"
)

// Param describes one named tool parameter.
type Param struct {
	Name        string
	Type        ParamType
	Description string
	Required    bool
	// Default is used when an optional parameter is omitted.
	Default any
}

// Definition describes a tool as advertised to callers.
type Definition struct {
	Name        string
	Description string
	Params      []Param
	// FailureMessage is the log message written when the tool fails.
	FailureMessage string
}

// HandlerFunc runs a tool. Errors are turned into text payloads by the registry.
type HandlerFunc func(ctx context.Context, args Args) (string, error)

type registeredTool struct {
	def     Definition
	handler Handler
}

// Registry holds tool definitions and dispatches invocations to them.
type Registry struct {
	tools   map[string]*registeredTool
	order   []string
	log     logr.Logger
	metrics metrics.Recorder
	tracer  *tracing.Provider
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for failure reporting.
func WithLogger(log logr.Logger) Option {
	return func(r *Registry) {
		r.log = log
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m metrics.Recorder) Option {
	return func(r *Registry) {
		if m != nil {
			r.metrics = m
		}
	}
}

// WithTracer sets the tracing provider.
func WithTracer(p *tracing.Provider) Option {
	return func(r *Registry) {
		r.tracer = p
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		tools:   make(map[string]*registeredTool),
		log:     logr.Discard(),
		metrics: metrics.NoOpToolMetrics{},
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.WithName("tools")
	return r
}

// NewQueryRegistry creates a registry with the Cosmos DB tools backed by a.
func NewQueryRegistry(a *Adapter, opts ...Option) *Registry {
	r := NewRegistry(opts...)
	r.registerQueryTools(a)
	return r
}

// Register adds a tool. Names must be unique. Register is not safe to call
// concurrently with Dispatch; register every tool before serving.
func (r *Registry) Register(def Definition, h HandlerFunc) error {
	if def.Name == "" {
		return fmt.Errorf("tool name is required")
	}
	if _, exists := r.tools[def.Name]; exists {
		return fmt.Errorf("tool %q already registered", def.Name)
	}
	if def.FailureMessage == "" {
		def.FailureMessage = fmt.Sprintf("Error running %s", def.Name)
	}
	r.tools[def.Name] = &registeredTool{def: def, handler: r.wrap(def, h)}
	r.order = append(r.order, def.Name)
	return nil
}

func (r *Registry) mustRegister(def Definition, h HandlerFunc) {
	if err := r.Register(def, h); err != nil {
		panic(err)
	}
}

// Definitions returns all tool definitions in registration order.
func (r *Registry) Definitions() []Definition {
	defs := make([]Definition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.tools[name].def)
	}
	return defs
}

// Lookup returns the definition of a tool.
func (r *Registry) Lookup(name string) (Definition, bool) {
	t, ok := r.tools[name]
	if !ok {
		return Definition{}, false
	}
	return t.def, true
}

// Dispatch routes a request to its tool and returns the tool's result.
// It never fails: unknown tools and tool failures come back as a Result
// whose payload is the failure message.
func (r *Registry) Dispatch(ctx context.Context, req Request) Result {
	if logctx.RequestID(ctx) == "" {
		ctx = logctx.WithRequestID(ctx, uuid.NewString())
	}
	ctx = logctx.WithTool(ctx, req.Name)
	if db, ok := req.Args[ArgDatabase].(string); ok {
		ctx = logctx.WithDatabase(ctx, db)
	}
	if c, ok := req.Args[ArgContainer].(string); ok {
		ctx = logctx.WithContainer(ctx, c)
	}

	t, ok := r.tools[req.Name]
	if !ok {
		err := fmt.Errorf("unknown tool %q", req.Name)
		logctx.LoggerWithContext(r.log, ctx).Error(err, "Error dispatching tool")
		return Result{Payload: err.Error(), Failed: true}
	}

	args := req.Args
	if args == nil {
		args = Args{}
	}
	return t.handler(ctx, args)
}
