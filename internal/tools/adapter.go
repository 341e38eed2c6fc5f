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

// Package tools implements the Cosmos DB query tools and the dispatcher that
// routes named tool invocations to them.
package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-logr/logr"
	"go.opentelemetry.io/otel/trace"

	"github.com/altairalabs/cosmosdb-mcp/internal/cosmos"
	"github.com/altairalabs/cosmosdb-mcp/internal/tracing"
	"github.com/altairalabs/cosmosdb-mcp/pkg/logctx"
	"github.com/altairalabs/cosmosdb-mcp/pkg/metrics"
)

// listSeparator joins database and container ids.
const listSeparator = ", "

// ErrNoDocuments is returned by schema inference on an empty container.
var ErrNoDocuments = errors.New("container has no documents")

// documentsPayload is the response of get_document_by_field and get_sample_documents.
type documentsPayload struct {
	Result []string `json:"result"`
	Query  string   `json:"query"`
}

// countPayload is the response of get_count_of_documents.
type countPayload struct {
	Result int64  `json:"result"`
	Query  string `json:"query"`
}

// schemaPayload is the response of get_collection_schema.
type schemaPayload struct {
	Schema map[string]string `json:"schema"`
}

// Adapter runs the read-only tool operations against a Store.
// It holds no per-call state and is safe for concurrent use.
type Adapter struct {
	store   cosmos.Store
	metrics metrics.Recorder
	tracer  *tracing.Provider
	log     logr.Logger
}

// NewAdapter creates an Adapter over store. A nil recorder or tracer
// disables the respective instrumentation.
func NewAdapter(store cosmos.Store, recorder metrics.Recorder, tracer *tracing.Provider, log logr.Logger) *Adapter {
	if recorder == nil {
		recorder = metrics.NoOpToolMetrics{}
	}
	return &Adapter{
		store:   store,
		metrics: recorder,
		tracer:  tracer,
		log:     log.WithName("adapter"),
	}
}

// ListDatabases returns the ids of all databases joined by ", ".
func (a *Adapter) ListDatabases(ctx context.Context) (string, error) {
	ids, _, err := collect(ctx, a.store.Databases(), a.observer(ctx))
	if err != nil {
		return "", err
	}
	return strings.Join(ids, listSeparator), nil
}

// ListContainers returns the ids of all containers in database joined by ", ".
func (a *Adapter) ListContainers(ctx context.Context, database string) (string, error) {
	pager, err := a.store.Containers(database)
	if err != nil {
		return "", err
	}
	ids, _, err := collect(ctx, pager, a.observer(ctx))
	if err != nil {
		return "", err
	}
	return strings.Join(ids, listSeparator), nil
}

// GetDocumentsByField returns every document whose field equals value,
// projected to fields ("*" for all).
func (a *Adapter) GetDocumentsByField(ctx context.Context, database, container, field, value, fields string) (string, error) {
	query := DocumentsByFieldQuery(field, value, fields)
	return a.queryDocuments(ctx, database, container, query)
}

// GetSampleDocuments returns up to count documents from container.
func (a *Adapter) GetSampleDocuments(ctx context.Context, database, container string, count int) (string, error) {
	return a.queryDocuments(ctx, database, container, SampleQuery(count))
}

// CountDocuments returns the number of documents in container.
// Only the first page is read: the aggregate yields a single row.
func (a *Adapter) CountDocuments(ctx context.Context, database, container string) (string, error) {
	ctx, span := a.startQuerySpan(ctx, database, container, CountQuery)
	defer span.End()

	pager, err := a.store.Query(database, container, CountQuery)
	if err != nil {
		tracing.RecordError(span, err)
		return "", err
	}

	var count int64
	if pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			tracing.RecordError(span, err)
			return "", err
		}
		a.observer(ctx)(len(page))
		tracing.AddPageStats(span, 1, len(page))
		if len(page) > 0 {
			if err := json.Unmarshal(page[0], &count); err != nil {
				return "", fmt.Errorf("unexpected count result %s: %w", page[0], err)
			}
		}
	}

	return encodePayload(countPayload{Result: count, Query: CountQuery})
}

// GetCollectionSchema infers a field-to-type map from one sample document.
func (a *Adapter) GetCollectionSchema(ctx context.Context, database, container string) (string, error) {
	ctx, span := a.startQuerySpan(ctx, database, container, SchemaSampleQuery)
	defer span.End()

	pager, err := a.store.Query(database, container, SchemaSampleQuery)
	if err != nil {
		tracing.RecordError(span, err)
		return "", err
	}

	schema := map[string]string{}
	if pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			tracing.RecordError(span, err)
			return "", err
		}
		a.observer(ctx)(len(page))
		tracing.AddPageStats(span, 1, len(page))
		if len(page) == 0 {
			return "", ErrNoDocuments
		}
		schema, err = InferSchema(page[0])
		if err != nil {
			return "", err
		}
	}

	return encodePayload(schemaPayload{Schema: schema})
}

func (a *Adapter) queryDocuments(ctx context.Context, database, container, query string) (string, error) {
	ctx, span := a.startQuerySpan(ctx, database, container, query)
	defer span.End()

	pager, err := a.store.Query(database, container, query)
	if err != nil {
		tracing.RecordError(span, err)
		return "", err
	}
	items, stats, err := collect(ctx, pager, a.observer(ctx))
	tracing.AddPageStats(span, stats.pages, stats.items)
	if err != nil {
		tracing.RecordError(span, err)
		return "", err
	}

	result := make([]string, 0, len(items))
	for _, item := range items {
		result = append(result, string(item))
	}
	a.log.V(1).Info("query complete", "query", query, "pages", stats.pages, "items", stats.items)

	return encodePayload(documentsPayload{Result: result, Query: query})
}

func (a *Adapter) startQuerySpan(ctx context.Context, database, container, query string) (context.Context, trace.Span) {
	if a.tracer == nil {
		// Non-recording span; ending it leaves any parent span untouched.
		return ctx, trace.SpanFromContext(context.Background())
	}
	return a.tracer.StartQuerySpan(ctx, database, container, query)
}

// observer returns a page callback that feeds the metrics recorder.
func (a *Adapter) observer(ctx context.Context) func(items int) {
	tool := logctx.Tool(ctx)
	return func(items int) {
		a.metrics.RecordPage(tool, items)
	}
}

// encodePayload renders v as compact JSON without HTML escaping.
func encodePayload(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("failed to encode response: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
