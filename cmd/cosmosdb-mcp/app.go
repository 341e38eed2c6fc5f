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
	"fmt"
	"net/url"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/altairalabs/cosmosdb-mcp/internal/config"
	"github.com/altairalabs/cosmosdb-mcp/internal/cosmos"
	"github.com/altairalabs/cosmosdb-mcp/internal/tools"
	"github.com/altairalabs/cosmosdb-mcp/internal/tracing"
	"github.com/altairalabs/cosmosdb-mcp/pkg/logging"
	"github.com/altairalabs/cosmosdb-mcp/pkg/metrics"
)

// mockAccount labels metrics when serving fixture data.
const mockAccount = "mock"

// app holds everything a command needs to run tools.
type app struct {
	cfg      *config.Config
	log      logr.Logger
	store    cosmos.Store
	gatherer *prometheus.Registry
	metrics  *metrics.ToolMetrics
	tracer   *tracing.Provider
	registry *tools.Registry

	cleanup []func()
}

// newApp builds the logger, store, instrumentation and tool registry.
// The caller must call close.
func newApp(ctx context.Context, cfg *config.Config) (_ *app, err error) {
	a := &app{cfg: cfg}
	defer func() {
		if err != nil {
			a.close()
		}
	}()

	log, syncLog, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	a.log = log
	a.cleanup = append(a.cleanup, syncLog)

	a.store, err = openStore(cfg, log)
	if err != nil {
		return nil, err
	}
	a.cleanup = append(a.cleanup, func() {
		if err := a.store.Close(); err != nil {
			log.Error(err, "failed to close store")
		}
	})

	a.gatherer = prometheus.NewRegistry()
	a.gatherer.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a.metrics = metrics.NewToolMetrics(metrics.ToolMetricsConfig{
		Account:    accountLabel(cfg),
		Registerer: a.gatherer,
	})

	a.tracer, err = tracing.NewProvider(ctx, tracing.Config{
		Enabled:        cfg.TracingEnabled,
		Endpoint:       cfg.TracingEndpoint,
		ServiceVersion: version,
		SampleRate:     cfg.TracingSampleRate,
		Insecure:       cfg.TracingInsecure,
	})
	if err != nil {
		return nil, fmt.Errorf("creating tracing provider: %w", err)
	}
	a.cleanup = append(a.cleanup, func() {
		if err := a.tracer.Shutdown(context.Background()); err != nil {
			log.Error(err, "failed to shutdown tracing provider")
		}
	})
	if cfg.TracingEnabled {
		log.Info("tracing enabled", "endpoint", cfg.TracingEndpoint, "sampleRate", cfg.TracingSampleRate)
	}

	adapter := tools.NewAdapter(a.store, a.metrics, a.tracer, log)
	a.registry = tools.NewQueryRegistry(adapter,
		tools.WithLogger(log),
		tools.WithMetrics(a.metrics),
		tools.WithTracer(a.tracer),
	)
	return a, nil
}

// close releases resources in reverse order of creation.
func (a *app) close() {
	for i := len(a.cleanup) - 1; i >= 0; i-- {
		a.cleanup[i]()
	}
	a.cleanup = nil
}

// openStore selects the fixture or Azure store, then adds the circuit
// breaker and query throttling.
func openStore(cfg *config.Config, log logr.Logger) (cosmos.Store, error) {
	var store cosmos.Store
	if cfg.MockMode() {
		mem, err := cosmos.LoadMemoryStore(cfg.MockDataPath)
		if err != nil {
			return nil, err
		}
		log.Info("serving fixture data", "path", cfg.MockDataPath)
		store = mem
	} else {
		az, err := cosmos.NewAzureStore(cosmos.AzureConfig{
			Endpoint:   cfg.AccountEndpoint,
			AccountKey: cfg.AccountKey,
		}, log)
		if err != nil {
			return nil, err
		}
		store = az
	}

	if cfg.BreakerFailures > 0 {
		log.Info("circuit breaker enabled", "failures", cfg.BreakerFailures, "cooldown", cfg.BreakerCooldown.String())
	}
	store = cosmos.NewBreakerStore(store, uint32(cfg.BreakerFailures), cfg.BreakerCooldown, log)

	if cfg.QueryRate > 0 {
		log.Info("query rate limit enabled", "pagesPerSecond", cfg.QueryRate, "burst", cfg.QueryBurst)
	}
	return cosmos.NewRateLimitedStore(store, cfg.QueryRate, cfg.QueryBurst), nil
}

// accountLabel derives the metrics account label from the endpoint host.
func accountLabel(cfg *config.Config) string {
	if cfg.MockMode() {
		return mockAccount
	}
	u, err := url.Parse(cfg.AccountEndpoint)
	if err != nil || u.Hostname() == "" {
		return cfg.AccountEndpoint
	}
	return u.Hostname()
}
