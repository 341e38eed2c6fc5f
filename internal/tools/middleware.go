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
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/altairalabs/cosmosdb-mcp/internal/cosmos"
	"github.com/altairalabs/cosmosdb-mcp/internal/tracing"
	"github.com/altairalabs/cosmosdb-mcp/pkg/logctx"
	"github.com/altairalabs/cosmosdb-mcp/pkg/metrics"
)

// Handler is a tool handler after the catch-all middleware: it cannot fail.
type Handler func(ctx context.Context, args Args) Result

// wrap is the single boundary every tool runs behind. A failure of any kind,
// including a panic, is logged once with the tool name and message and
// returned as a Result whose payload is the message text.
func (r *Registry) wrap(def Definition, next HandlerFunc) Handler {
	return func(ctx context.Context, args Args) Result {
		start := time.Now()
		ctx, span := r.startToolSpan(ctx, def.Name)
		defer span.End()

		payload, err := invoke(ctx, next, args)
		elapsed := time.Since(start)

		failed := err != nil
		if failed {
			payload = err.Error()
			logctx.LoggerWithContext(r.log, ctx).Error(err, def.FailureMessage,
				"errorClass", cosmos.Classify(err))
			tracing.RecordError(span, err)
		} else {
			tracing.SetSuccess(span)
		}
		tracing.AddToolResult(span, failed, elapsed.Milliseconds())

		r.metrics.RecordToolCall(metrics.ToolCallMetrics{
			ToolName:        def.Name,
			DurationSeconds: elapsed.Seconds(),
			Success:         !failed,
		})

		return Result{Payload: payload, Failed: failed}
	}
}

func invoke(ctx context.Context, h HandlerFunc, args Args) (payload string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("internal error: %v", p)
		}
	}()
	return h(ctx, args)
}

func (r *Registry) startToolSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if r.tracer == nil {
		return ctx, trace.SpanFromContext(context.Background())
	}
	return r.tracer.StartToolSpan(ctx, name)
}
