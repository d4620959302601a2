// binwatch - Smart Bin Inventory Live-State Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/binwatch

/*
Package middleware provides the view server's request instrumentation.

Both middlewares have the chi signature func(http.Handler) http.Handler:

  - RequestID: accepts or generates an X-Request-ID and puts it, along with
    a new correlation ID, into the logging context
  - PrometheusMetrics: api_requests_total, api_request_duration_seconds and
    api_active_requests, labelled by chi route pattern

Typical wiring:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Route("/api/v1", func(r chi.Router) {
	    r.Use(middleware.PrometheusMetrics)
	    r.Get("/bins", h.ListBins)
	})

PrometheusMetrics reads the route pattern after the handler runs, so it must
be mounted inside the router (r.Use), not wrapped around it.
*/
package middleware
