/*
Copyright (C) 2026 Drerries Community

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package telemetry provides Prometheus metrics and OpenTelemetry tracing.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// APIRequestsTotal counts HTTP requests by method, endpoint and status.
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wantedboard_api_requests_total",
			Help: "Total number of API requests.",
		},
		[]string{"method", "endpoint", "status"},
	)

	// APIRequestDuration observes request latency.
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wantedboard_api_request_duration_seconds",
			Help:    "API request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status"},
	)

	// APIActiveConnections gauges in-flight requests.
	APIActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "wantedboard_api_active_connections",
			Help: "Number of in-flight API requests.",
		},
	)

	// VoiceSessionsOpened counts sessions recorded by the ingest endpoints.
	VoiceSessionsOpened = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wantedboard_voice_sessions_opened_total",
			Help: "Total voice sessions opened.",
		},
	)

	// VoiceSessionsClosed counts session close operations.
	VoiceSessionsClosed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wantedboard_voice_sessions_closed_total",
			Help: "Total voice sessions closed.",
		},
	)

	// StatsRecomputes counts statistics snapshot recomputations.
	StatsRecomputes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wantedboard_stats_recomputes_total",
			Help: "Total voice statistics recomputations.",
		},
	)

	// EventsStreamClients gauges connected websocket clients.
	EventsStreamClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "wantedboard_events_stream_clients",
			Help: "Connected event stream websocket clients.",
		},
	)
)

// Handler exposes the Prometheus metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
