// binwatch - Smart Bin Inventory Live-State Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/binwatch

// Package client is the REST client for the inventory backend.
//
// Every call goes through the same pipeline:
//
//	rate limiter -> circuit breaker -> resty (timeout, retries) -> envelope check
//
// The backend wraps successful responses as {success, data, message?, error?}
// and failed ones as {error} or {detail}. Both are turned into *APIError so
// callers can use errors.As, and errors.Is(err, ErrRequestFailed) matches any
// backend-reported failure.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/binwatch/internal/config"
	"github.com/tomtom215/binwatch/internal/logging"
	"github.com/tomtom215/binwatch/internal/metrics"
	"github.com/tomtom215/binwatch/internal/models"
)

// defaultErrorMessage is used when a failed response carries neither error nor detail.
const defaultErrorMessage = "Request failed"

// breakerName labels the breaker in logs and metrics.
const breakerName = "inventory-backend"

var (
	// ErrRequestFailed is matched by every *APIError.
	ErrRequestFailed = errors.New("backend request failed")

	// ErrCircuitOpen is returned while the breaker rejects calls.
	ErrCircuitOpen = errors.New("backend circuit breaker open")
)

// APIError is a failure reported by the backend, either a non-2xx status or
// a 2xx envelope with success=false.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
}

// Unwrap lets errors.Is(err, ErrRequestFailed) match.
func (e *APIError) Unwrap() error {
	return ErrRequestFailed
}

// Client talks to the backend REST API.
type Client struct {
	http    *resty.Client
	rootURL string
	apiURL  string
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[*resty.Response]
}

// New builds a client from the backend configuration.
func New(cfg *config.BackendConfig) *Client {
	rootURL := strings.TrimRight(cfg.URL, "/")

	httpClient := resty.New().
		SetBaseURL(cfg.APIBaseURL()).
		SetTimeout(cfg.RequestTimeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(250 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetJSONMarshaler(json.Marshal).
		SetJSONUnmarshaler(json.Unmarshal)

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	return &Client{
		http:    httpClient,
		rootURL: rootURL,
		apiURL:  cfg.APIBaseURL(),
		limiter: rate.NewLimiter(limit, cfg.Burst),
		breaker: newBreaker(cfg),
	}
}

// BreakerState returns "closed", "half-open" or "open".
func (c *Client) BreakerState() string {
	return stateToString(c.breaker.State())
}

// do runs one request through the limiter and the breaker. send receives a
// request already bound to ctx and must issue it.
func (c *Client) do(ctx context.Context, endpoint string, send func(*resty.Request) (*resty.Response, error)) (*resty.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		metrics.RecordBackendRejected(endpoint)
		return nil, fmt.Errorf("%s: rate limiter: %w", endpoint, err)
	}

	req := c.http.R().SetContext(ctx)
	if id := logging.CorrelationIDFromContext(ctx); id != "" {
		req.SetHeader("X-Request-ID", id)
	}

	start := time.Now()
	resp, err := c.execute(func() (*resty.Response, error) {
		resp, err := send(req)
		if err != nil {
			return nil, err
		}
		if !resp.IsSuccess() {
			return resp, &APIError{StatusCode: resp.StatusCode(), Message: errorMessage(resp.Body())}
		}
		return resp, nil
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		metrics.RecordBackendRejected(endpoint)
		return nil, fmt.Errorf("%s: %w", endpoint, ErrCircuitOpen)
	}
	metrics.RecordBackendRequest(endpoint, time.Since(start), err)
	if err != nil {
		logging.Ctx(ctx).Debug().Err(err).Str("endpoint", endpoint).Msg("Backend request failed")
		return nil, fmt.Errorf("%s: %w", endpoint, err)
	}
	return resp, nil
}

// call issues a request whose body is the success envelope and decodes data
// into out. out may be nil when only success matters.
func (c *Client) call(ctx context.Context, endpoint string, out interface{}, send func(*resty.Request) (*resty.Response, error)) (*models.APIResponse, error) {
	resp, err := c.do(ctx, endpoint, send)
	if err != nil {
		return nil, err
	}

	var env models.APIResponse
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return nil, fmt.Errorf("%s: failed to decode response: %w", endpoint, err)
	}
	if !env.Success {
		msg := env.Error
		if msg == "" {
			msg = env.Message
		}
		if msg == "" {
			msg = defaultErrorMessage
		}
		return nil, fmt.Errorf("%s: %w", endpoint, &APIError{StatusCode: resp.StatusCode(), Message: msg})
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, fmt.Errorf("%s: failed to decode data: %w", endpoint, err)
		}
	}
	return &env, nil
}

// action issues a request answered with {success, message}.
func (c *Client) action(ctx context.Context, endpoint string, send func(*resty.Request) (*resty.Response, error)) (*models.ActionResult, error) {
	env, err := c.call(ctx, endpoint, nil, send)
	if err != nil {
		return nil, err
	}
	return &models.ActionResult{Success: env.Success, Message: env.Message}, nil
}

// errorMessage extracts the backend's error string from a failed response.
// detail may be a string or, for request validation failures, a list.
func errorMessage(body []byte) string {
	var eb models.ErrorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return defaultErrorMessage
	}
	if eb.Error != "" {
		return eb.Error
	}
	if len(eb.Detail) == 0 || string(eb.Detail) == "null" {
		return defaultErrorMessage
	}
	var detail string
	if err := json.Unmarshal(eb.Detail, &detail); err == nil {
		if detail == "" {
			return defaultErrorMessage
		}
		return detail
	}
	return string(eb.Detail)
}

// Health checks the backend's /health endpoint, which sits outside the API
// prefix and is not enveloped.
func (c *Client) Health(ctx context.Context) (*models.HealthStatus, error) {
	resp, err := c.do(ctx, "health", func(r *resty.Request) (*resty.Response, error) {
		return r.Get(c.rootURL + "/health")
	})
	if err != nil {
		return nil, err
	}

	var status models.HealthStatus
	if err := json.Unmarshal(resp.Body(), &status); err != nil {
		return nil, fmt.Errorf("health: failed to decode response: %w", err)
	}
	return &status, nil
}

// isBackendUnavailable reports whether err should count against the breaker.
// Client errors (4xx) mean the backend is up and answering.
func isBackendUnavailable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= http.StatusInternalServerError
	}
	return !errors.Is(err, context.Canceled)
}
