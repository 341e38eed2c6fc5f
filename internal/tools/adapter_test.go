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
	"encoding/json"
	"testing"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/altairalabs/cosmosdb-mcp/internal/cosmos"
	"github.com/altairalabs/cosmosdb-mcp/pkg/logctx"
	"github.com/altairalabs/cosmosdb-mcp/pkg/metrics"
)

func newTestAdapter(t *testing.T) *Adapter {
	t.Helper()
	return NewAdapter(newTestStore(t), nil, nil, logr.Discard())
}

func TestAdapter_ListDatabases(t *testing.T) {
	got, err := newTestAdapter(t).ListDatabases(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "catalog, orders", got)
}

func TestAdapter_ListDatabases_AllPages(t *testing.T) {
	a := NewAdapter(&pagedStore{}, nil, nil, logr.Discard())
	got, err := a.ListDatabases(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a, b, c", got)
}

func TestAdapter_ListContainers(t *testing.T) {
	got, err := newTestAdapter(t).ListContainers(context.Background(), "catalog")
	require.NoError(t, err)
	assert.Equal(t, "products, empty", got)

	a := NewAdapter(&pagedStore{}, nil, nil, logr.Discard())
	got, err = a.ListContainers(context.Background(), "any")
	require.NoError(t, err)
	assert.Equal(t, "x, y, z", got)
}

func TestAdapter_ListContainers_UnknownDatabase(t *testing.T) {
	_, err := newTestAdapter(t).ListContainers(context.Background(), "missing")
	assert.ErrorIs(t, err, cosmos.ErrNotFound)
}

func TestAdapter_GetDocumentsByField(t *testing.T) {
	got, err := newTestAdapter(t).GetDocumentsByField(context.Background(), "catalog", "products", "name", "widget", AllFields)
	require.NoError(t, err)

	payload := decodePayload(t, got)
	assert.ElementsMatch(t, []string{"result", "query"}, keys(payload))
	assert.Equal(t, "SELECT * FROM c WHERE c.name = 'widget'", payload["query"])

	result := payload["result"].([]any)
	require.Len(t, result, 2)
	for _, item := range result {
		// Each document is carried as a JSON string.
		var doc map[string]any
		require.NoError(t, json.Unmarshal([]byte(item.(string)), &doc))
		assert.Equal(t, "widget", doc["name"])
	}
}

func TestAdapter_GetDocumentsByField_Projection(t *testing.T) {
	got, err := newTestAdapter(t).GetDocumentsByField(context.Background(), "catalog", "products", "name", "gadget", "id,price")
	require.NoError(t, err)

	payload := decodePayload(t, got)
	assert.Equal(t, "SELECT c.id,c.price FROM c WHERE c.name = 'gadget'", payload["query"])
	assert.Equal(t, []any{`{"id":"2","price":12}`}, payload["result"])
}

func TestAdapter_GetDocumentsByField_NoMatch(t *testing.T) {
	got, err := newTestAdapter(t).GetDocumentsByField(context.Background(), "catalog", "products", "name", "nothing", AllFields)
	require.NoError(t, err)
	assert.Equal(t, `{"result":[],"query":"SELECT * FROM c WHERE c.name = 'nothing'"}`, got)
}

func TestAdapter_CountDocuments(t *testing.T) {
	a := newTestAdapter(t)

	got, err := a.CountDocuments(context.Background(), "catalog", "products")
	require.NoError(t, err)
	assert.Equal(t, `{"result":3,"query":"SELECT VALUE COUNT(1) FROM c"}`, got)

	got, err = a.CountDocuments(context.Background(), "catalog", "empty")
	require.NoError(t, err)
	assert.Equal(t, `{"result":0,"query":"SELECT VALUE COUNT(1) FROM c"}`, got)
}

func TestAdapter_CountDocuments_NoPages(t *testing.T) {
	a := NewAdapter(&pagedStore{}, nil, nil, logr.Discard())
	got, err := a.CountDocuments(context.Background(), "db", "c")
	require.NoError(t, err)
	assert.Equal(t, `{"result":0,"query":"SELECT VALUE COUNT(1) FROM c"}`, got)
}

func TestAdapter_CountDocuments_FirstPageOnly(t *testing.T) {
	store := &pagedStore{pages: [][]json.RawMessage{
		{json.RawMessage(`7`)},
		{json.RawMessage(`100`)},
	}}
	got, err := NewAdapter(store, nil, nil, logr.Discard()).CountDocuments(context.Background(), "db", "c")
	require.NoError(t, err)
	assert.Equal(t, `{"result":7,"query":"SELECT VALUE COUNT(1) FROM c"}`, got)
	assert.Equal(t, []string{CountQuery}, store.queries)
}

func TestAdapter_CountDocuments_UnexpectedResult(t *testing.T) {
	store := &pagedStore{pages: [][]json.RawMessage{{json.RawMessage(`{"n":1}`)}}}
	_, err := NewAdapter(store, nil, nil, logr.Discard()).CountDocuments(context.Background(), "db", "c")
	assert.ErrorContains(t, err, "unexpected count result")
}

func TestAdapter_GetCollectionSchema(t *testing.T) {
	got, err := newTestAdapter(t).GetCollectionSchema(context.Background(), "catalog", "products")
	require.NoError(t, err)

	payload := decodePayload(t, got)
	assert.Equal(t, []string{"schema"}, keys(payload))
	assert.Equal(t, map[string]any{
		"id":           TypeString,
		"name":         TypeString,
		"price":        TypeFloat,
		"stock":        TypeInteger,
		"active":       TypeBoolean,
		"tags":         TypeArray,
		"dims":         TypeObject,
		"discontinued": TypeNull,
	}, payload["schema"])
}

func TestAdapter_GetCollectionSchema_EmptyContainer(t *testing.T) {
	_, err := newTestAdapter(t).GetCollectionSchema(context.Background(), "catalog", "empty")
	assert.ErrorIs(t, err, ErrNoDocuments)
}

func TestAdapter_GetCollectionSchema_UsesSampleQuery(t *testing.T) {
	store := &pagedStore{pages: [][]json.RawMessage{{json.RawMessage(`{"id":"1","_ts":1}`)}}}
	got, err := NewAdapter(store, nil, nil, logr.Discard()).GetCollectionSchema(context.Background(), "db", "c")
	require.NoError(t, err)
	assert.Equal(t, `{"schema":{"id":"String"}}`, got)
	assert.Equal(t, []string{SchemaSampleQuery}, store.queries)
}

func TestAdapter_GetSampleDocuments(t *testing.T) {
	got, err := newTestAdapter(t).GetSampleDocuments(context.Background(), "catalog", "products", 2)
	require.NoError(t, err)

	payload := decodePayload(t, got)
	assert.ElementsMatch(t, []string{"result", "query"}, keys(payload))
	assert.Equal(t, "SELECT TOP 2 * FROM c", payload["query"])
	assert.Len(t, payload["result"], 2)
}

func TestAdapter_GetSampleDocuments_ConcatenatesPages(t *testing.T) {
	store := &pagedStore{pages: [][]json.RawMessage{
		{json.RawMessage(`{"id":"1"}`), json.RawMessage(`{"id":"2"}`)},
		{},
		{json.RawMessage(`{"id":"3"}`), json.RawMessage(`{"id":"4"}`), json.RawMessage(`{"id":"5"}`)},
	}}
	got, err := NewAdapter(store, nil, nil, logr.Discard()).GetSampleDocuments(context.Background(), "db", "c", 10)
	require.NoError(t, err)

	payload := decodePayload(t, got)
	assert.Equal(t, []any{`{"id":"1"}`, `{"id":"2"}`, `{"id":"3"}`, `{"id":"4"}`, `{"id":"5"}`}, payload["result"])
	assert.Equal(t, []string{"SELECT TOP 10 * FROM c"}, store.queries)
}

func TestAdapter_PayloadIsNotHTMLEscaped(t *testing.T) {
	got, err := newTestAdapter(t).GetDocumentsByField(context.Background(), "catalog", "products", "name", "<b>&", AllFields)
	require.NoError(t, err)
	assert.Contains(t, got, "c.name = '<b>&'")
}

func TestAdapter_UpstreamFailures(t *testing.T) {
	a := NewAdapter(failingStore{err: errUpstream}, nil, nil, logr.Discard())
	ctx := context.Background()

	_, err := a.ListDatabases(ctx)
	assert.ErrorIs(t, err, errUpstream)
	_, err = a.ListContainers(ctx, "db")
	assert.ErrorIs(t, err, errUpstream)
	_, err = a.GetDocumentsByField(ctx, "db", "c", "f", "v", AllFields)
	assert.ErrorIs(t, err, errUpstream)
	_, err = a.CountDocuments(ctx, "db", "c")
	assert.ErrorIs(t, err, errUpstream)
	_, err = a.GetCollectionSchema(ctx, "db", "c")
	assert.ErrorIs(t, err, errUpstream)
	_, err = a.GetSampleDocuments(ctx, "db", "c", 5)
	assert.ErrorIs(t, err, errUpstream)
}

func TestAdapter_RecordsPageMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewToolMetrics(metrics.ToolMetricsConfig{Account: "test", Registerer: reg})
	a := NewAdapter(newTestStore(t), m, nil, logr.Discard())

	ctx := logctx.WithTool(context.Background(), ToolGetSampleDocuments)
	_, err := a.GetSampleDocuments(ctx, "catalog", "products", 5)
	require.NoError(t, err)

	// Three documents at two per page.
	assert.Equal(t, float64(2), testutil.ToFloat64(m.QueryPagesTotal.WithLabelValues(ToolGetSampleDocuments)))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.QueryItemsTotal.WithLabelValues(ToolGetSampleDocuments)))
}

func TestAdapter_Idempotent(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()

	first, err := a.GetCollectionSchema(ctx, "catalog", "products")
	require.NoError(t, err)
	second, err := a.GetCollectionSchema(ctx, "catalog", "products")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
