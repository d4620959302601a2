// binwatch - Smart Bin Inventory Live-State Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/binwatch

// Package metrics holds the Prometheus collectors for binwatch.
//
// Collectors are registered on the default registry through promauto and
// exposed by the view server at /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Channel state values reported by ChannelState.
const (
	ChannelStateDisconnected = 0
	ChannelStateConnecting   = 1
	ChannelStateConnected    = 2
	ChannelStateDisposed     = 3
)

var (
	// Push Channel Metrics
	ChannelState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "binwatch_channel_state",
			Help: "Push channel state (0=disconnected, 1=connecting, 2=connected, 3=disposed)",
		},
	)

	ChannelConnects = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "binwatch_channel_connects_total",
			Help: "Total number of push channel connections established",
		},
	)

	ChannelReconnectsScheduled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "binwatch_channel_reconnects_scheduled_total",
			Help: "Total number of reconnect attempts scheduled after a close or failed dial",
		},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of local viewer WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
	)

	WSMessagesReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_received_total",
			Help: "Total number of WebSocket messages received",
		},
	)

	WSErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_errors_total",
			Help: "Total number of WebSocket errors",
		},
		[]string{"error_type"}, // "dial", "read", "write", "keepalive"
	)

	// Push Frame Metrics
	PushFrames = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "binwatch_push_frames_total",
			Help: "Total number of push frames dispatched by type",
		},
		[]string{"type"},
	)

	PushFramesDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "binwatch_push_frames_dropped_total",
			Help: "Total number of push frames discarded",
		},
		[]string{"reason"}, // "malformed", "invalid_payload", "unknown_type", "duplicate", "acknowledged"
	)

	// Backend REST Metrics
	BackendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "binwatch_backend_requests_total",
			Help: "Total number of backend REST requests",
		},
		[]string{"endpoint", "result"}, // result: "success", "failure", "rejected"
	)

	BackendRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "binwatch_backend_request_duration_seconds",
			Help:    "Duration of backend REST requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// Store Metrics
	StoreBins = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "binwatch_store_bins",
			Help: "Current number of bins held locally",
		},
	)

	StoreActiveAlerts = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "binwatch_store_active_alerts",
			Help: "Current number of active alerts held locally",
		},
	)

	Resyncs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "binwatch_resyncs_total",
			Help: "Total number of full-state refreshes by trigger",
		},
		[]string{"trigger"}, // "initial", "connect", "poll", "bin_config", "alert_config"
	)

	SummaryRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "binwatch_summary_refreshes_total",
			Help: "Total number of summary refreshes triggered by bin updates",
		},
		[]string{"result"}, // "success", "failure", "skipped"
	)

	Highlights = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "binwatch_highlights_total",
			Help: "Total number of bin highlights triggered",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// View Server Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of view server requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of view server requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of in-flight view server requests",
		},
	)
)

// RecordBackendRequest records one backend REST call.
func RecordBackendRequest(endpoint string, duration time.Duration, err error) {
	BackendRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
	result := "success"
	if err != nil {
		result = "failure"
	}
	BackendRequests.WithLabelValues(endpoint, result).Inc()
}

// RecordBackendRejected records a call refused before reaching the network.
func RecordBackendRejected(endpoint string) {
	BackendRequests.WithLabelValues(endpoint, "rejected").Inc()
}

// RecordPushFrame records a dispatched push frame.
func RecordPushFrame(frameType string) {
	WSMessagesReceived.Inc()
	PushFrames.WithLabelValues(frameType).Inc()
}

// RecordDroppedFrame records a discarded push frame.
func RecordDroppedFrame(reason string) {
	WSMessagesReceived.Inc()
	PushFramesDropped.WithLabelValues(reason).Inc()
}

// RecordResync records a full-state refresh.
func RecordResync(trigger string) {
	Resyncs.WithLabelValues(trigger).Inc()
}

// RecordAPIRequest records a view server request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active view server requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
