// binwatch - Smart Bin Inventory Live-State Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/binwatch

package client

import (
	"errors"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker/v2"

	"github.com/tomtom215/binwatch/internal/config"
	"github.com/tomtom215/binwatch/internal/logging"
	"github.com/tomtom215/binwatch/internal/metrics"
)

// newBreaker creates the circuit breaker guarding every backend call.
//
// Configuration:
//   - MaxRequests: probes allowed while half-open
//   - Interval: window after which closed-state counts reset
//   - Timeout: time spent open before probing
//   - ReadyToTrip: FailureThreshold consecutive failures
//
// Only transport errors and 5xx responses are failures; a 404 for an unknown
// alert says nothing about backend health.
func newBreaker(cfg *config.BackendConfig) *gobreaker.CircuitBreaker[*resty.Response] {
	threshold := cfg.BreakerFailureThreshold
	if threshold == 0 {
		threshold = 5
	}

	settings := gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: cfg.BreakerMaxRequests,
		Interval:    cfg.BreakerInterval,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(breakerName).Set(float64(counts.ConsecutiveFailures))
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logging.Info().
				Str("name", name).
				Str("from", stateToString(from)).
				Str("to", stateToString(to)).
				Msg("[CIRCUIT BREAKER] State changed")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, stateToString(from), stateToString(to)).Inc()
			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !isBackendUnavailable(err)
		},
	}

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)
	return gobreaker.NewCircuitBreaker[*resty.Response](settings)
}

// execute runs fn through the breaker and records the outcome.
func (c *Client) execute(fn func() (*resty.Response, error)) (*resty.Response, error) {
	resp, err := c.breaker.Execute(fn)

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "rejected").Inc()
	case err != nil && isBackendUnavailable(err):
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "failure").Inc()
	default:
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "success").Inc()
	}

	return resp, err
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
