// binwatch - Smart Bin Inventory Live-State Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/binwatch

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/tomtom215/binwatch/internal/config"
	"github.com/tomtom215/binwatch/internal/logging"
)

// corsMaxAge is the preflight cache lifetime in seconds.
const corsMaxAge = 300

// ChiMiddleware builds the CORS and rate limit middleware from the view
// server configuration.
type ChiMiddleware struct {
	cfg  config.ServerConfig
	cors func(http.Handler) http.Handler
}

// NewChiMiddleware creates the middleware factory. An empty origin list
// means no cross-origin browser access.
func NewChiMiddleware(cfg config.ServerConfig) *ChiMiddleware {
	return &ChiMiddleware{
		cfg: cfg,
		cors: cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
			AllowedHeaders:   []string{"Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           corsMaxAge,
		}),
	}
}

// CORS returns the go-chi/cors handler.
func (m *ChiMiddleware) CORS() func(http.Handler) http.Handler {
	return m.cors
}

// RateLimit limits requests per client IP, or passes everything through
// when rate limiting is disabled.
func (m *ChiMiddleware) RateLimit() func(http.Handler) http.Handler {
	if m.cfg.RateLimitDisabled || m.cfg.RateLimitReqs <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	window := m.cfg.RateLimitWindow
	if window <= 0 {
		window = time.Minute
	}

	return httprate.Limit(
		m.cfg.RateLimitReqs,
		window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			logging.Ctx(r.Context()).Warn().Str("path", r.URL.Path).Msg("Rate limit exceeded")
			w.Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
			respondError(w, r, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests", nil)
		}),
	)
}

// originAllowed reports whether a browser origin may open a viewer socket.
// A missing Origin (non-browser client) is accepted; "*" allows every origin.
func (m *ChiMiddleware) originAllowed(origin string) bool {
	if origin == "" {
		return true
	}
	for _, allowed := range m.cfg.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}
