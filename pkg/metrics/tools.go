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

// Package metrics provides Prometheus metrics for the cosmosdb-mcp tool server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Status label constants for metrics.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// ToolMetrics holds Prometheus metrics for tool invocations and the
// Cosmos DB queries they run.
type ToolMetrics struct {
	// ToolCallsTotal is the total number of tool calls.
	ToolCallsTotal *prometheus.CounterVec
	// ToolCallDuration is the histogram of tool call durations.
	ToolCallDuration *prometheus.HistogramVec
	// QueryPagesTotal is the total number of result pages read from Cosmos DB.
	QueryPagesTotal *prometheus.CounterVec
	// QueryItemsTotal is the total number of items read from Cosmos DB.
	QueryItemsTotal *prometheus.CounterVec
}

// ToolMetricsConfig configures the tool metrics.
type ToolMetricsConfig struct {
	// Account is attached to every series as a constant label.
	Account string
	// ToolDurationBuckets for tool call duration histogram.
	// If nil, defaults to DefaultToolDurationBuckets.
	ToolDurationBuckets []float64
	// Registerer receives the collectors. Defaults to prometheus.DefaultRegisterer.
	Registerer prometheus.Registerer
}

// DefaultToolDurationBuckets are the default histogram buckets for tool call durations.
// A tool call is one or more Cosmos DB round trips.
var DefaultToolDurationBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}

// NewToolMetrics creates and registers all Prometheus metrics for tool calls.
func NewToolMetrics(cfg ToolMetricsConfig) *ToolMetrics {
	labels := prometheus.Labels{
		"account": cfg.Account,
	}

	buckets := cfg.ToolDurationBuckets
	if buckets == nil {
		buckets = DefaultToolDurationBuckets
	}

	reg := cfg.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &ToolMetrics{
		ToolCallsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "cosmosdb_mcp_tool_calls_total",
			Help:        "Total number of tool calls",
			ConstLabels: labels,
		}, []string{"tool", "status"}),

		ToolCallDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "cosmosdb_mcp_tool_call_duration_seconds",
			Help:        "Tool call duration in seconds",
			ConstLabels: labels,
			Buckets:     buckets,
		}, []string{"tool"}),

		QueryPagesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "cosmosdb_mcp_query_pages_total",
			Help:        "Total number of result pages read from Cosmos DB",
			ConstLabels: labels,
		}, []string{"tool"}),

		QueryItemsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "cosmosdb_mcp_query_items_total",
			Help:        "Total number of items read from Cosmos DB",
			ConstLabels: labels,
		}, []string{"tool"}),
	}
}

// ToolCallMetrics contains the metrics for a single tool call.
type ToolCallMetrics struct {
	ToolName        string
	DurationSeconds float64
	Success         bool
}

// RecordToolCall records metrics for a tool call.
func (m *ToolMetrics) RecordToolCall(tc ToolCallMetrics) {
	status := StatusSuccess
	if !tc.Success {
		status = StatusError
	}

	m.ToolCallsTotal.WithLabelValues(tc.ToolName, status).Inc()
	m.ToolCallDuration.WithLabelValues(tc.ToolName).Observe(tc.DurationSeconds)
}

// RecordPage records one page read with the given number of items.
func (m *ToolMetrics) RecordPage(toolName string, items int) {
	m.QueryPagesTotal.WithLabelValues(toolName).Inc()
	m.QueryItemsTotal.WithLabelValues(toolName).Add(float64(items))
}

// Recorder is the interface for recording tool metrics.
// This allows for no-op implementations when metrics are disabled.
type Recorder interface {
	RecordToolCall(tc ToolCallMetrics)
	RecordPage(toolName string, items int)
}

// NoOpToolMetrics is a no-op implementation for when metrics are disabled.
type NoOpToolMetrics struct{}

// RecordToolCall is a no-op implementation for disabled metrics.
func (NoOpToolMetrics) RecordToolCall(_ ToolCallMetrics) {}

// RecordPage is a no-op implementation for disabled metrics.
func (NoOpToolMetrics) RecordPage(_ string, _ int) {}
