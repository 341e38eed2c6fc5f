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
	"errors"
	"testing"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/altairalabs/cosmosdb-mcp/internal/cosmos"
)

const testFixture = `
pageSize: 2
databases:
  - id: catalog
    containers:
      - id: products
        documents:
          - id: "1"
            name: widget
            price: 9.5
            stock: 12
            active: true
            tags: [a, b]
            dims: {w: 1, h: 2}
            discontinued: null
            _rid: "abc=="
            _self: "dbs/abc/colls/def/docs/1/"
            _etag: "\"0000\""
            _attachments: "attachments/"
            _ts: 1700000000
          - {id: "2", name: gadget, price: 12}
          - {id: "3", name: widget, price: 3}
      - id: empty
  - id: orders
    containers:
      - id: lines
`

func newTestStore(t *testing.T) *cosmos.MemoryStore {
	t.Helper()
	s, err := cosmos.ParseMemoryStore([]byte(testFixture))
	require.NoError(t, err)
	return s
}

// newObservedLogger returns a logger whose entries can be inspected.
func newObservedLogger() (logr.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zapr.NewLogger(zap.New(core)), logs
}

func decodePayload(t *testing.T, payload string) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(payload), &m), "payload: %s", payload)
	return m
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

// failingStore fails every operation with err.
type failingStore struct {
	err error
}

func (s failingStore) Databases() cosmos.Pager[string] {
	return &failingPager[string]{err: s.err}
}

func (s failingStore) Containers(string) (cosmos.Pager[string], error) {
	return nil, s.err
}

func (s failingStore) Query(string, string, string) (cosmos.Pager[json.RawMessage], error) {
	return &failingPager[json.RawMessage]{err: s.err}, nil
}

func (s failingStore) Close() error { return nil }

// failingPager reports one more page and fails to read it.
type failingPager[T any] struct {
	err error
}

func (p *failingPager[T]) More() bool { return true }

func (p *failingPager[T]) NextPage(context.Context) ([]T, error) {
	return nil, p.err
}

// pagedStore serves fixed pages for every query and records the query text.
type pagedStore struct {
	pages   [][]json.RawMessage
	queries []string
}

func (s *pagedStore) Databases() cosmos.Pager[string] {
	return cosmos.NewStaticPager([]string{"a", "b"}, []string{"c"})
}

func (s *pagedStore) Containers(string) (cosmos.Pager[string], error) {
	return cosmos.NewStaticPager([]string{"x"}, []string{}, []string{"y", "z"}), nil
}

func (s *pagedStore) Query(_, _, query string) (cosmos.Pager[json.RawMessage], error) {
	s.queries = append(s.queries, query)
	return cosmos.NewStaticPager(s.pages...), nil
}

func (s *pagedStore) Close() error { return nil }

var errUpstream = errors.New("Response status code does not indicate success: ServiceUnavailable (503)")
