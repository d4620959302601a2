// binwatch - Smart Bin Inventory Live-State Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/binwatch

package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/binwatch/internal/config"
	"github.com/tomtom215/binwatch/internal/logging"
	"github.com/tomtom215/binwatch/internal/models"
	"github.com/tomtom215/binwatch/internal/validation"
)

func testBackendConfig(url string) *config.BackendConfig {
	return &config.BackendConfig{
		URL:                     url,
		APIPrefix:               "/api",
		WSPath:                  "/ws",
		RequestTimeout:          2 * time.Second,
		RetryCount:              0,
		BreakerMaxRequests:      1,
		BreakerInterval:         time.Minute,
		BreakerTimeout:          time.Minute,
		BreakerFailureThreshold: 2,
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(testBackendConfig(server.URL))
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestListBins(t *testing.T) {
	var gotRequestID string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/bins", r.URL.Path)
		gotRequestID = r.Header.Get("X-Request-ID")
		writeJSON(w, http.StatusOK, `{"success":true,"data":[
			{"bin_id":"BIN-A1","row":1,"position":1,"current_quantity":3,"max_capacity":50,"status":"critical","fill_percentage":6.0},
			{"bin_id":"BIN-A2","row":1,"position":2,"current_quantity":40,"max_capacity":50,"status":"normal"}
		]}`)
	})

	ctx := logging.ContextWithCorrelationID(context.Background(), "abcd1234")
	bins, err := c.ListBins(ctx)
	require.NoError(t, err)
	require.Len(t, bins, 2)
	assert.Equal(t, "BIN-A1", bins[0].BinID)
	assert.Equal(t, 3, bins[0].CurrentQuantity)
	assert.Equal(t, models.BinStatusCritical, bins[0].Status)
	assert.Equal(t, "abcd1234", gotRequestID)
}

func TestGetSummary(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/bins/summary", r.URL.Path)
		writeJSON(w, http.StatusOK, `{"success":true,"data":{"total_bins":12,"critical_count":1,"alerts_active":2}}`)
	})

	summary, err := c.GetSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12, summary.TotalBins)
	assert.Equal(t, 1, summary.CriticalCount)
	assert.Equal(t, 2, summary.AlertsActive)
}

func TestGetBin_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/bins/BIN-Z9", r.URL.Path)
		writeJSON(w, http.StatusNotFound, `{"detail":"Bin BIN-Z9 not found"}`)
	})

	_, err := c.GetBin(context.Background(), "BIN-Z9")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "Bin BIN-Z9 not found", apiErr.Message)
	assert.True(t, errors.Is(err, ErrRequestFailed))
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"error field", `{"error":"Database unavailable"}`, "Database unavailable"},
		{"error wins over detail", `{"error":"first","detail":"second"}`, "first"},
		{"detail string", `{"detail":"Alert not found"}`, "Alert not found"},
		{"detail list", `{"detail":[{"loc":["body","max_capacity"],"msg":"must be > 0"}]}`, `[{"loc":["body","max_capacity"],"msg":"must be > 0"}]`},
		{"detail null", `{"detail":null}`, defaultErrorMessage},
		{"empty object", `{}`, defaultErrorMessage},
		{"not json", `Bad Gateway`, defaultErrorMessage},
		{"empty body", ``, defaultErrorMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errorMessage([]byte(tt.body)))
		})
	}
}

func TestCall_SuccessFalse(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"error", `{"success":false,"error":"Bin locked"}`, "Bin locked"},
		{"message", `{"success":false,"message":"Nothing to do"}`, "Nothing to do"},
		{"neither", `{"success":false}`, defaultErrorMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, tt.body)
			})

			_, err := c.ListActiveAlerts(context.Background())
			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr), "got %v", err)
			assert.Equal(t, http.StatusOK, apiErr.StatusCode)
			assert.Equal(t, tt.want, apiErr.Message)
		})
	}
}

func TestAcknowledgeAlert(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/alerts/42/acknowledge", r.URL.Path)

		var body models.AcknowledgeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "user", body.AcknowledgedBy)

		writeJSON(w, http.StatusOK, `{"success":true,"message":"Alert 42 acknowledged"}`)
	})

	result, err := c.AcknowledgeAlert(context.Background(), 42, "")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "Alert 42 acknowledged", result.Message)
}

func TestAcknowledgeAllAlerts(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/alerts/acknowledge-all", r.URL.Path)

		var body models.AcknowledgeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "night-shift", body.AcknowledgedBy)

		writeJSON(w, http.StatusOK, `{"success":true,"message":"3 alerts acknowledged"}`)
	})

	result, err := c.AcknowledgeAllAlerts(context.Background(), "night-shift")
	require.NoError(t, err)
	assert.Equal(t, "3 alerts acknowledged", result.Message)
}

func TestUpdateBinConfig(t *testing.T) {
	var raw map[string]interface{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/bins/BIN-A1/config", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		writeJSON(w, http.StatusOK, `{"success":true,"data":{"id":7,"bin_id":"BIN-A1","min_threshold":0,"max_capacity":60}}`)
	})

	zero, capacity := 0, 60
	cfg, err := c.UpdateBinConfig(context.Background(), "BIN-A1", &models.BinConfigUpdate{
		MinThreshold: &zero,
		MaxCapacity:  &capacity,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), cfg.ID)
	assert.Equal(t, 60, cfg.MaxCapacity)

	assert.Len(t, raw, 2)
	assert.Contains(t, raw, "min_threshold")
	assert.Contains(t, raw, "max_capacity")
}

func TestUpdateBinConfig_InvalidNotSent(t *testing.T) {
	var requests atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		writeJSON(w, http.StatusOK, `{"success":true}`)
	})

	zero := 0
	_, err := c.UpdateBinConfig(context.Background(), "BIN-A1", &models.BinConfigUpdate{MaxCapacity: &zero})
	require.Error(t, err)

	var verr *validation.RequestValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "max_capacity", verr.Errors()[0].Field())
	assert.Equal(t, int32(0), requests.Load())
}

func TestUpdateAlertConfiguration(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/alerts/configurations/BIN-A1/low_stock", r.URL.Path)
		writeJSON(w, http.StatusOK, `{"success":true,"message":"Alert configuration updated"}`)
	})

	threshold := 10
	result, err := c.UpdateAlertConfiguration(context.Background(), "BIN-A1", models.AlertTypeLowStock,
		&models.AlertConfigUpdate{ThresholdValue: &threshold})
	require.NoError(t, err)
	assert.Equal(t, "Alert configuration updated", result.Message)

	negative := -5
	_, err = c.UpdateAlertConfiguration(context.Background(), "BIN-A1", models.AlertTypeLowStock,
		&models.AlertConfigUpdate{ThresholdValue: &negative})
	assert.Error(t, err)
}

func TestListAlertConfigurations(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/alerts/configurations", r.URL.Path)
		assert.Equal(t, "BIN-B2", r.URL.Query().Get("bin_id"))
		writeJSON(w, http.StatusOK, `{"success":true,"data":[{"id":1,"bin_id":"BIN-B2","alert_type":"low_stock","threshold_value":10,"is_enabled":true}]}`)
	})

	configs, err := c.ListAlertConfigurations(context.Background(), "BIN-B2")
	require.NoError(t, err)
	require.Len(t, configs, 1)
	assert.True(t, configs[0].IsEnabled)
}

func TestListAlertHistory(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "1", q.Get("page"))
		assert.Equal(t, "50", q.Get("limit"))
		assert.False(t, q.Has("bin_id"))
		writeJSON(w, http.StatusOK, `{"success":true,"data":[{"id":9,"bin_id":"BIN-A1","alert_type":"empty","is_acknowledged":true,"acknowledged_by":"user"}],
			"pagination":{"page":1,"limit":50,"total":1,"total_pages":1}}`)
	})

	page, err := c.ListAlertHistory(context.Background(), models.AlertHistoryQuery{})
	require.NoError(t, err)
	require.Len(t, page.Alerts, 1)
	require.NotNil(t, page.Alerts[0].AcknowledgedBy)
	assert.Equal(t, "user", *page.Alerts[0].AcknowledgedBy)
	assert.Equal(t, 1, page.Pagination.TotalPages)
}

func TestGetBinHistory(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/bins/BIN-A1/history", r.URL.Path)
		assert.Equal(t, "2026-10-01", r.URL.Query().Get("start_date"))
		assert.False(t, r.URL.Query().Has("end_date"))
		writeJSON(w, http.StatusOK, `{"success":true,"data":[{"timestamp":"2026-10-01T08:00:00","quantity":12,"weight_grams":240.5}]}`)
	})

	points, err := c.GetBinHistory(context.Background(), "BIN-A1", models.DateRange{StartDate: "2026-10-01"})
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, "2026-10-01T08:00:00", points[0].Timestamp)
}

func TestAnalytics(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/analytics/trends":
			writeJSON(w, http.StatusOK, `{"success":true,"data":[{"bin_id":"BIN-A1","data":[]}]}`)
		case "/api/analytics/consumption":
			writeJSON(w, http.StatusOK, `{"success":true,"data":[{"bin_id":"BIN-A1","daily_average":4.5,"trend":"decreasing"}]}`)
		case "/api/analytics/comparison":
			writeJSON(w, http.StatusOK, `{"success":true,"data":[{"bin_id":"BIN-A1","fill_percentage":6}]}`)
		case "/api/analytics/status-distribution":
			writeJSON(w, http.StatusOK, `{"success":true,"data":{"distribution":[{"status":"critical","count":1,"color":"#ef4444"}],"total":1}}`)
		case "/api/bins/BIN-A1/consumption":
			writeJSON(w, http.StatusOK, `{"success":true,"data":{"bin_id":"BIN-A1","weekly_average":30}}`)
		default:
			writeJSON(w, http.StatusNotFound, `{"detail":"Not Found"}`)
		}
	})
	ctx := context.Background()

	trends, err := c.GetTrends(ctx, models.DateRange{})
	require.NoError(t, err)
	assert.Len(t, trends, 1)

	rates, err := c.GetConsumptionRates(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.TrendDecreasing, rates[0].Trend)

	rows, err := c.GetComparison(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6.0, rows[0].FillPercentage)

	dist, err := c.GetStatusDistribution(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, dist.Total)

	rate, err := c.GetBinConsumption(ctx, "BIN-A1")
	require.NoError(t, err)
	assert.Equal(t, 30.0, rate.WeeklyAverage)
}

func TestHealth(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		writeJSON(w, http.StatusOK, `{"status":"healthy","websocket_clients":3}`)
	})

	status, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, 3, status.WebsocketClients)
}

func TestCircuitBreaker_OpensOnServerErrors(t *testing.T) {
	var requests atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		writeJSON(w, http.StatusInternalServerError, `{"error":"boom"}`)
	})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := c.ListBins(ctx)
		require.Error(t, err)
		assert.False(t, errors.Is(err, ErrCircuitOpen))
	}
	assert.Equal(t, "open", c.BreakerState())

	_, err := c.ListBins(ctx)
	assert.True(t, errors.Is(err, ErrCircuitOpen))
	assert.Equal(t, int32(2), requests.Load())
}

func TestCircuitBreaker_IgnoresClientErrors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, `{"detail":"Alert not found"}`)
	})

	for i := 0; i < 5; i++ {
		_, err := c.AcknowledgeAlert(context.Background(), 7, "user")
		require.Error(t, err)
	}
	assert.Equal(t, "closed", c.BreakerState())
}

func TestRateLimiter_CanceledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":true,"data":[]}`)
	}))
	defer server.Close()

	cfg := testBackendConfig(server.URL)
	cfg.RequestsPerSecond = 0.001
	cfg.Burst = 1
	c := New(cfg)

	_, err := c.ListBins(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = c.ListBins(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limiter")
}

func TestExportURLs(t *testing.T) {
	c := New(testBackendConfig("http://backend:8000/"))

	assert.Equal(t, "http://backend:8000/api/export/inventory", c.ExportInventoryURL())
	assert.Equal(t, "http://backend:8000/api/export/report", c.ExportReportURL())
	assert.Equal(t,
		"http://backend:8000/api/export/history?bin_ids=BIN-A1%2CBIN-A2&end_date=2026-10-19&start_date=2026-10-01",
		c.ExportHistoryURL("2026-10-01", "2026-10-19", []string{"BIN-A1", "BIN-A2"}))
	assert.Equal(t,
		"http://backend:8000/api/export/history?end_date=2026-10-19&start_date=2026-10-01",
		c.ExportHistoryURL("2026-10-01", "2026-10-19", nil))
	assert.Equal(t,
		"http://backend:8000/api/export/alerts?include_acknowledged=false",
		c.ExportAlertsURL("", "", false))
	assert.Equal(t,
		"http://backend:8000/api/export/alerts?include_acknowledged=true&start_date=2026-10-01",
		c.ExportAlertsURL("2026-10-01", "", true))
}
