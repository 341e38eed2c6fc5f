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

package server

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/altairalabs/cosmosdb-mcp/internal/httputil"
	"github.com/altairalabs/cosmosdb-mcp/internal/tools"
)

// ReadyFunc reports whether the server can take traffic.
type ReadyFunc func(ctx context.Context) error

// OpsConfig configures the operations HTTP server.
type OpsConfig struct {
	Addr string
	// Gatherer is served on /metrics. Defaults to the global registry.
	Gatherer prometheus.Gatherer
	// Ready backs /readyz. Nil always reports ready.
	Ready ReadyFunc
	// Tools is the catalogue served on /tools.
	Tools []tools.Definition
}

type toolInfo struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Params      []paramInfo `json:"params"`
}

type paramInfo struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required"`
	Default     any    `json:"default,omitempty"`
}

// NewOpsServer creates the HTTP server for health, readiness, metrics and
// the tool catalogue.
func NewOpsServer(cfg OpsConfig) *http.Server {
	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	catalogue := describeTools(cfg.Tools)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteText(w, http.StatusOK, "ok")
	})
	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if cfg.Ready != nil {
			if err := cfg.Ready(r.Context()); err != nil {
				httputil.WriteText(w, http.StatusServiceUnavailable, err.Error())
				return
			}
		}
		httputil.WriteText(w, http.StatusOK, "ok")
	})
	mux.HandleFunc("GET /tools", func(w http.ResponseWriter, _ *http.Request) {
		_ = httputil.WriteJSON(w, http.StatusOK, catalogue)
	})
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func describeTools(defs []tools.Definition) []toolInfo {
	out := make([]toolInfo, 0, len(defs))
	for _, def := range defs {
		info := toolInfo{
			Name:        def.Name,
			Description: def.Description,
			Params:      make([]paramInfo, 0, len(def.Params)),
		}
		for _, p := range def.Params {
			info.Params = append(info.Params, paramInfo{
				Name:        p.Name,
				Type:        string(p.Type),
				Description: p.Description,
				Required:    p.Required,
				Default:     p.Default,
			})
		}
		out = append(out, info)
	}
	return out
}
