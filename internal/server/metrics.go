// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the chat endpoint.
type Metrics struct {
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge
	RepliesTotal     *prometheus.CounterVec
	RateLimitedTotal prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "davut_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"route", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "davut_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		RequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "davut_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
		),
		RepliesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "davut_replies_total",
				Help: "Chat replies by reply mode and result",
			},
			[]string{"mode", "result"},
		),
		RateLimitedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "davut_rate_limited_total",
				Help: "Requests rejected by the per-client rate limiter",
			},
		),
	}
}

// RecordRequest records a finished request.
func (m *Metrics) RecordRequest(route, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(route, status).Inc()
	m.RequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordReply counts a replier outcome.
func (m *Metrics) RecordReply(mode string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	m.RepliesTotal.WithLabelValues(mode, result).Inc()
}
