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

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMetrics(t *testing.T) (*ToolMetrics, *prometheus.Registry) {
	t.Helper()
	// Use a custom registry to avoid conflicts with global registry
	reg := prometheus.NewRegistry()
	m := NewToolMetrics(ToolMetricsConfig{Account: "test-account", Registerer: reg})
	require.NotNil(t, m)
	return m, reg
}

func TestNewToolMetrics(t *testing.T) {
	m, _ := newTestMetrics(t)

	assert.NotNil(t, m.ToolCallsTotal)
	assert.NotNil(t, m.ToolCallDuration)
	assert.NotNil(t, m.QueryPagesTotal)
	assert.NotNil(t, m.QueryItemsTotal)
}

func TestRecordToolCall(t *testing.T) {
	m, reg := newTestMetrics(t)

	m.RecordToolCall(ToolCallMetrics{ToolName: "get_databases", DurationSeconds: 0.2, Success: true})
	m.RecordToolCall(ToolCallMetrics{ToolName: "get_databases", DurationSeconds: 0.1, Success: false})
	m.RecordToolCall(ToolCallMetrics{ToolName: "get_databases", DurationSeconds: 0.1, Success: false})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ToolCallsTotal.WithLabelValues("get_databases", StatusSuccess)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ToolCallsTotal.WithLabelValues("get_databases", StatusError)))

	count, err := testutil.GatherAndCount(reg, "cosmosdb_mcp_tool_call_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRecordPage(t *testing.T) {
	m, _ := newTestMetrics(t)

	m.RecordPage("get_sample_documents", 3)
	m.RecordPage("get_sample_documents", 2)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.QueryPagesTotal.WithLabelValues("get_sample_documents")))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.QueryItemsTotal.WithLabelValues("get_sample_documents")))
}

func TestNewToolMetrics_CustomBuckets(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewToolMetrics(ToolMetricsConfig{
		Registerer:          reg,
		ToolDurationBuckets: []float64{1, 2},
	})
	m.RecordToolCall(ToolCallMetrics{ToolName: "t", DurationSeconds: 1.5, Success: true})

	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != "cosmosdb_mcp_tool_call_duration_seconds" {
			continue
		}
		h := mf.GetMetric()[0].GetHistogram()
		assert.Len(t, h.GetBucket(), 2)
		return
	}
	t.Fatal("duration histogram not gathered")
}

func TestNoOpToolMetrics(t *testing.T) {
	var r Recorder = NoOpToolMetrics{}
	r.RecordToolCall(ToolCallMetrics{ToolName: "x"})
	r.RecordPage("x", 10)
}
