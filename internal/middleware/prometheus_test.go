// binwatch - Smart Bin Inventory Live-State Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/binwatch

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/binwatch/internal/metrics"
)

func newInstrumentedRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(PrometheusMetrics)
	r.Get("/api/v1/bins/{id}", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "id") == "missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte("{}"))
	})
	r.Post("/api/v1/fail", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.WriteHeader(http.StatusOK)
	})
	return r
}

func requestCount(method, endpoint, status string) float64 {
	return testutil.ToFloat64(metrics.APIRequestsTotal.WithLabelValues(method, endpoint, status))
}

func TestPrometheusMetrics(t *testing.T) {
	router := newInstrumentedRouter()

	tests := []struct {
		name     string
		method   string
		path     string
		endpoint string
		status   int
	}{
		{"success uses route pattern", http.MethodGet, "/api/v1/bins/BIN-A1", "/api/v1/bins/{id}", http.StatusOK},
		{"handler status recorded", http.MethodGet, "/api/v1/bins/missing", "/api/v1/bins/{id}", http.StatusNotFound},
		{"first status wins", http.MethodPost, "/api/v1/fail", "/api/v1/fail", http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code := strconv.Itoa(tt.status)
			before := requestCount(tt.method, tt.endpoint, code)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			if got := requestCount(tt.method, tt.endpoint, code) - before; got != 1 {
				t.Errorf("api_requests_total delta = %v, want 1", got)
			}
		})
	}
}

func TestPrometheusMetrics_UnmatchedRoute(t *testing.T) {
	router := newInstrumentedRouter()
	before := requestCount(http.MethodGet, unmatchedEndpoint, "404")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope/BIN-A1", nil))

	if got := requestCount(http.MethodGet, unmatchedEndpoint, "404") - before; got != 1 {
		t.Errorf("unmatched delta = %v, want 1", got)
	}
}

func TestPrometheusMetrics_ActiveRequestsSettle(t *testing.T) {
	router := newInstrumentedRouter()
	before := testutil.ToFloat64(metrics.APIActiveRequests)

	var during float64
	inner := chi.NewRouter()
	inner.Use(PrometheusMetrics)
	inner.Get("/in-flight", func(w http.ResponseWriter, r *http.Request) {
		during = testutil.ToFloat64(metrics.APIActiveRequests)
	})

	inner.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/in-flight", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/bins/x", nil))

	if during != before+1 {
		t.Errorf("in-flight during request = %v, want %v", during, before+1)
	}
	if got := testutil.ToFloat64(metrics.APIActiveRequests); got != before {
		t.Errorf("in-flight after requests = %v, want %v", got, before)
	}
}
