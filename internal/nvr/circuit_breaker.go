// UniFi Video MQTT Bridge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/unifi-video-mqtt

package nvr

import (
	"context"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/unifi-video-mqtt/internal/logging"
	"github.com/tomtom215/unifi-video-mqtt/internal/metrics"
	"github.com/tomtom215/unifi-video-mqtt/internal/models"
)

// CircuitBreakerClient wraps an API implementation with a circuit
// breaker so a dead or slow NVR does not pile up doomed requests from
// both pollers and the dispatcher. While the circuit is open, calls
// fail fast and the pollers abandon their ticks as they would for any
// other fetch failure.
type CircuitBreakerClient struct {
	inner API
	cb    *gobreaker.CircuitBreaker[interface{}]
	name  string
}

// Ensure CircuitBreakerClient implements API.
var _ API = (*CircuitBreakerClient)(nil)

// NewCircuitBreakerClient wraps the given client with a breaker.
// Configuration:
//   - max 3 concurrent requests in half-open state
//   - 1 minute measurement window
//   - 2 minute timeout before attempting recovery
//   - opens after 60% failure rate with minimum 10 requests
func NewCircuitBreakerClient(inner API) *CircuitBreakerClient {
	const cbName = "unifi-video-api"

	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0) // 0 = closed

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6
			if shouldTrip {
				logging.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("[circuit-breaker] Opening circuit to NVR")
			}
			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)
			logging.Info().Str("from", fromStr).Str("to", toStr).Msg("[circuit-breaker] State transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})

	return &CircuitBreakerClient{inner: inner, cb: cb, name: cbName}
}

// ListCameras enumerates cameras through the breaker.
func (c *CircuitBreakerClient) ListCameras(ctx context.Context) ([]models.Camera, error) {
	result, err := c.cb.Execute(func() (interface{}, error) {
		return c.inner.ListCameras(ctx)
	})
	if err != nil {
		return nil, err
	}
	return result.([]models.Camera), nil
}

// ListRecordings fetches recordings through the breaker.
func (c *CircuitBreakerClient) ListRecordings(ctx context.Context, from, to time.Time, cameraIDs []string, eventTypes []string) ([]models.Recording, error) {
	result, err := c.cb.Execute(func() (interface{}, error) {
		return c.inner.ListRecordings(ctx, from, to, cameraIDs, eventTypes)
	})
	if err != nil {
		return nil, err
	}
	return result.([]models.Recording), nil
}

// SetRecordMode applies a record mode change through the breaker.
func (c *CircuitBreakerClient) SetRecordMode(ctx context.Context, cameraID string, mode models.RecordMode) error {
	_, err := c.cb.Execute(func() (interface{}, error) {
		return nil, c.inner.SetRecordMode(ctx, cameraID, mode)
	})
	return err
}

// stateToString converts a gobreaker state to a label value.
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateOpen:
		return "open"
	case gobreaker.StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// stateToFloat converts a gobreaker state to a gauge value.
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateOpen:
		return 1
	case gobreaker.StateHalfOpen:
		return 2
	default:
		return 0
	}
}
