// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package metrics exposes the coordinator's prometheus registry over HTTP.
package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// StartMetricsServer serves the returned registry on /metrics in a
// background goroutine.
func StartMetricsServer(logger *zap.Logger, port uint16) *prometheus.Registry {
	registry := prometheus.NewRegistry()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	go func() {
		addr := fmt.Sprintf(":%d", port)
		logger.Info("Starting metrics server", zap.String("addr", addr))
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error("Metrics server exited", zap.Error(err))
		}
	}()
	return registry
}
