// Copyright 2026 European Digital Reading Lab. All rights reserved.
// Use of this source code is governed by a BSD-style license
// specified in the Github project LICENSE file.

// Package metrics provides observability for the ingestion endpoint.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcomes of an ingestion request.
const (
	OutcomeStored           = "stored"
	OutcomeParseError       = "parse_error"
	OutcomeStoreError       = "store_error"
	OutcomeMethodNotAllowed = "method_not_allowed"
)

// Metrics tracks ingestion outcomes and storage latency.
// Each instance owns its registry, so that several servers (or tests) can coexist.
type Metrics struct {
	registry       *prometheus.Registry
	EventsReceived *prometheus.CounterVec
	StoreDuration  prometheus.Histogram
}

// New creates a new Metrics instance with all ingestion metrics registered.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		EventsReceived: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cnanalytics_events_received_total",
			Help: "Total number of analytics events received, by outcome",
		}, []string{"outcome"}),
		StoreDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "cnanalytics_store_duration_seconds",
			Help:    "Duration of analytics event inserts",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementReceived records an ingestion request with its outcome.
func (m *Metrics) IncrementReceived(outcome string) {
	m.EventsReceived.WithLabelValues(outcome).Inc()
}

// ObserveStore records the duration of an insert.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveStore(start time.Time) {
	m.StoreDuration.Observe(time.Since(start).Seconds())
}

// Handler exposes the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
