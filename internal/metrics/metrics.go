// UniFi Video MQTT Bridge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/unifi-video-mqtt

// Package metrics provides Prometheus instrumentation for the bridge.
//
// Metrics are exposed on the ops endpoint in Prometheus text format:
//
//	curl http://localhost:9811/metrics
//
// Poll metrics:
//   - bridge_poll_duration_seconds: tick duration (histogram)
//     Labels: poller (attribute, motion)
//   - bridge_poll_errors_total: abandoned ticks (counter)
//     Labels: poller
//   - bridge_poll_skipped_total: ticks skipped because the previous
//     tick was still running (counter)
//     Labels: poller
//
// Publish metrics:
//   - bridge_publishes_total: retained state publishes (counter)
//     Labels: kind (motion, record_mode)
//   - bridge_publish_errors_total: failed publishes (counter)
//     Labels: kind
//
// Command metrics:
//   - bridge_commands_total: inbound command results (counter)
//     Labels: result (applied, dropped, failed)
//
// NVR client metrics:
//   - nvr_request_duration_seconds: API call latency (histogram)
//     Labels: operation (list_cameras, list_recordings, set_record_mode)
//   - nvr_request_errors_total: failed API calls (counter)
//     Labels: operation
//
// Circuit breaker metrics:
//   - circuit_breaker_state: 0=closed, 1=open, 2=half-open (gauge)
//     Labels: name
//   - circuit_breaker_transitions_total: state transitions (counter)
//     Labels: name, from, to
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PollDuration tracks how long each reconciliation tick takes.
	PollDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bridge_poll_duration_seconds",
			Help:    "Duration of reconciliation poll ticks in seconds",
			Buckets: []float64{.01, .05, .1, .5, 1, 5, 10, 30},
		},
		[]string{"poller"},
	)

	// PollErrors counts ticks abandoned due to fetch failures.
	PollErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_poll_errors_total",
			Help: "Total poll ticks abandoned due to errors",
		},
		[]string{"poller"},
	)

	// PollSkipped counts ticks skipped under the skip-if-busy overlap policy.
	PollSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_poll_skipped_total",
			Help: "Total poll ticks skipped because the previous tick was still running",
		},
		[]string{"poller"},
	)

	// Publishes counts retained state publishes by topic kind.
	Publishes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_publishes_total",
			Help: "Total retained state publishes",
		},
		[]string{"kind"},
	)

	// PublishErrors counts failed publishes by topic kind.
	PublishErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_publish_errors_total",
			Help: "Total failed state publishes",
		},
		[]string{"kind"},
	)

	// Commands counts inbound command dispositions.
	Commands = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_commands_total",
			Help: "Total inbound commands by result",
		},
		[]string{"result"},
	)

	// NVRRequestDuration tracks NVR API call latency per operation.
	NVRRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nvr_request_duration_seconds",
			Help:    "Duration of NVR API requests in seconds",
			Buckets: []float64{.01, .05, .1, .5, 1, 5, 10},
		},
		[]string{"operation"},
	)

	// NVRRequestErrors counts failed NVR API calls per operation.
	NVRRequestErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nvr_request_errors_total",
			Help: "Total failed NVR API requests",
		},
		[]string{"operation"},
	)

	// CircuitBreakerState reports the current breaker state:
	// 0=closed, 1=open, 2=half-open.
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
		},
		[]string{"name"},
	)

	// CircuitBreakerTransitions counts breaker state transitions.
	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Total circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)
)

// Command result label values.
const (
	CommandApplied = "applied"
	CommandDropped = "dropped"
	CommandFailed  = "failed"
)

// Publish kind label values.
const (
	KindMotion     = "motion"
	KindRecordMode = "record_mode"
)
