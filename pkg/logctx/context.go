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

// Package logctx provides structured logging context management.
// It allows storing and extracting common logging fields from context.Context,
// so every log line written for a tool invocation carries the same identifiers.
package logctx

import (
	"context"

	"github.com/go-logr/logr"
)

// contextKey is a private type for context keys to avoid collisions.
type contextKey string

// Context keys for common logging fields.
const (
	// ContextKeyRequestID identifies a single tool invocation.
	ContextKeyRequestID contextKey = "request_id"

	// ContextKeySessionID identifies the MCP session the invocation arrived on.
	ContextKeySessionID contextKey = "session_id"

	// ContextKeyTransport identifies the transport (stdio, http, cli).
	ContextKeyTransport contextKey = "transport"

	// ContextKeyTool identifies the tool being called.
	ContextKeyTool contextKey = "tool"

	// ContextKeyDatabase identifies the Cosmos DB database.
	ContextKeyDatabase contextKey = "database"

	// ContextKeyContainer identifies the Cosmos DB container.
	ContextKeyContainer contextKey = "container"
)

// allContextKeys lists all context keys that should be extracted for logging.
var allContextKeys = []contextKey{
	ContextKeyRequestID,
	ContextKeySessionID,
	ContextKeyTransport,
	ContextKeyTool,
	ContextKeyDatabase,
	ContextKeyContainer,
}

// WithRequestID returns a new context with the request ID set.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// WithSessionID returns a new context with the session ID set.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, ContextKeySessionID, sessionID)
}

// WithTransport returns a new context with the transport name set.
func WithTransport(ctx context.Context, transport string) context.Context {
	return context.WithValue(ctx, ContextKeyTransport, transport)
}

// WithTool returns a new context with the tool name set.
func WithTool(ctx context.Context, tool string) context.Context {
	return context.WithValue(ctx, ContextKeyTool, tool)
}

// WithDatabase returns a new context with the database name set.
func WithDatabase(ctx context.Context, database string) context.Context {
	return context.WithValue(ctx, ContextKeyDatabase, database)
}

// WithContainer returns a new context with the container name set.
func WithContainer(ctx context.Context, container string) context.Context {
	return context.WithValue(ctx, ContextKeyContainer, container)
}

// LoggingFields holds all standard logging context fields.
type LoggingFields struct {
	RequestID string
	SessionID string
	Transport string
	Tool      string
	Database  string
	Container string
}

// WithLoggingContext returns a new context with multiple logging fields set at once.
// Only non-empty values are set.
func WithLoggingContext(ctx context.Context, fields *LoggingFields) context.Context {
	if fields == nil {
		return ctx
	}
	if fields.RequestID != "" {
		ctx = WithRequestID(ctx, fields.RequestID)
	}
	if fields.SessionID != "" {
		ctx = WithSessionID(ctx, fields.SessionID)
	}
	if fields.Transport != "" {
		ctx = WithTransport(ctx, fields.Transport)
	}
	if fields.Tool != "" {
		ctx = WithTool(ctx, fields.Tool)
	}
	if fields.Database != "" {
		ctx = WithDatabase(ctx, fields.Database)
	}
	if fields.Container != "" {
		ctx = WithContainer(ctx, fields.Container)
	}
	return ctx
}

// ExtractLoggingFields extracts all logging fields from a context.
func ExtractLoggingFields(ctx context.Context) LoggingFields {
	return LoggingFields{
		RequestID: value(ctx, ContextKeyRequestID),
		SessionID: value(ctx, ContextKeySessionID),
		Transport: value(ctx, ContextKeyTransport),
		Tool:      value(ctx, ContextKeyTool),
		Database:  value(ctx, ContextKeyDatabase),
		Container: value(ctx, ContextKeyContainer),
	}
}

// LogrValues extracts context values and returns them as key-value pairs
// suitable for use with logr.Logger.WithValues().
// Only non-empty values are included.
func LogrValues(ctx context.Context) []interface{} {
	var values []interface{}
	for _, key := range allContextKeys {
		if s := value(ctx, key); s != "" {
			values = append(values, string(key), s)
		}
	}
	return values
}

// LoggerWithContext returns a logger enriched with all context values.
func LoggerWithContext(log logr.Logger, ctx context.Context) logr.Logger {
	values := LogrValues(ctx)
	if len(values) == 0 {
		return log
	}
	return log.WithValues(values...)
}

// RequestID extracts the request ID from the context.
func RequestID(ctx context.Context) string {
	return value(ctx, ContextKeyRequestID)
}

// Tool extracts the tool name from the context.
func Tool(ctx context.Context) string {
	return value(ctx, ContextKeyTool)
}

func value(ctx context.Context, key contextKey) string {
	if v := ctx.Value(key); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
