// binwatch - Smart Bin Inventory Live-State Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/binwatch

package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/binwatch/internal/models"
)

// maxHistoryLimit bounds the page size forwarded to the backend.
const maxHistoryLimit = 500

// Catalog is the read-only part of the backend REST catalog that is not
// mirrored in the live stores. *client.Client implements it.
type Catalog interface {
	GetBin(ctx context.Context, binID string) (*models.Bin, error)
	GetBinHistory(ctx context.Context, binID string, dr models.DateRange) ([]models.HistoricalDataPoint, error)
	GetBinConsumption(ctx context.Context, binID string) (*models.ConsumptionRate, error)
	ListAlertHistory(ctx context.Context, q models.AlertHistoryQuery) (*models.AlertHistoryPage, error)
	ListAlertConfigurations(ctx context.Context, binID string) ([]models.AlertConfiguration, error)

	GetTrends(ctx context.Context, dr models.DateRange) ([]models.BinTrend, error)
	GetConsumptionRates(ctx context.Context) ([]models.ConsumptionRate, error)
	GetComparison(ctx context.Context) ([]models.BinComparison, error)
	GetStatusDistribution(ctx context.Context) (*models.StatusDistribution, error)

	ExportInventoryURL() string
	ExportHistoryURL(startDate, endDate string, binIDs []string) string
	ExportAlertsURL(startDate, endDate string, includeAcknowledged bool) string
	ExportReportURL() string
}

// ExportLink is the body of GET /api/v1/export/{kind}.
type ExportLink struct {
	Kind string `json:"kind"`
	URL  string `json:"url"`
}

// requireCatalog writes 503 and returns false when no backend catalog is wired.
func (h *Handler) requireCatalog(w http.ResponseWriter, r *http.Request) bool {
	if h.catalog == nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Inventory backend catalog unavailable", nil)
		return false
	}
	return true
}

func dateRangeFromQuery(r *http.Request) models.DateRange {
	q := r.URL.Query()
	return models.DateRange{StartDate: q.Get("start_date"), EndDate: q.Get("end_date")}
}

// GetBinHistory returns a bin's quantity history for start_date..end_date.
func (h *Handler) GetBinHistory(w http.ResponseWriter, r *http.Request) {
	if !h.requireCatalog(w, r) {
		return
	}
	points, err := h.catalog.GetBinHistory(r.Context(), chi.URLParam(r, "id"), dateRangeFromQuery(r))
	if err != nil {
		respondActionError(w, r, "get_bin_history", err)
		return
	}
	respondSuccess(w, r, points)
}

// GetBinConsumption returns a bin's consumption rate.
func (h *Handler) GetBinConsumption(w http.ResponseWriter, r *http.Request) {
	if !h.requireCatalog(w, r) {
		return
	}
	rate, err := h.catalog.GetBinConsumption(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondActionError(w, r, "get_bin_consumption", err)
		return
	}
	respondSuccess(w, r, rate)
}

// ListAlertHistory returns one page of alert history.
//
// Query: page (default 1), limit (default 50, max 500), bin_id.
func (h *Handler) ListAlertHistory(w http.ResponseWriter, r *http.Request) {
	if !h.requireCatalog(w, r) {
		return
	}

	q := r.URL.Query()
	page, ok := positiveQueryInt(q.Get("page"))
	if !ok {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "page must be a positive integer", nil)
		return
	}
	limit, ok := positiveQueryInt(q.Get("limit"))
	if !ok || limit > maxHistoryLimit {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "limit must be between 1 and 500", nil)
		return
	}

	result, err := h.catalog.ListAlertHistory(r.Context(), models.AlertHistoryQuery{
		Page:  page,
		Limit: limit,
		BinID: q.Get("bin_id"),
	})
	if err != nil {
		respondActionError(w, r, "list_alert_history", err)
		return
	}
	respondSuccess(w, r, result)
}

// ListAlertConfigurations returns alert thresholds, optionally for one bin.
func (h *Handler) ListAlertConfigurations(w http.ResponseWriter, r *http.Request) {
	if !h.requireCatalog(w, r) {
		return
	}
	configs, err := h.catalog.ListAlertConfigurations(r.Context(), r.URL.Query().Get("bin_id"))
	if err != nil {
		respondActionError(w, r, "list_alert_configurations", err)
		return
	}
	respondSuccess(w, r, configs)
}

// GetTrends returns per-bin quantity trends.
func (h *Handler) GetTrends(w http.ResponseWriter, r *http.Request) {
	if !h.requireCatalog(w, r) {
		return
	}
	trends, err := h.catalog.GetTrends(r.Context(), dateRangeFromQuery(r))
	if err != nil {
		respondActionError(w, r, "get_trends", err)
		return
	}
	respondSuccess(w, r, trends)
}

// GetConsumptionRates returns consumption rates for every bin.
func (h *Handler) GetConsumptionRates(w http.ResponseWriter, r *http.Request) {
	if !h.requireCatalog(w, r) {
		return
	}
	rates, err := h.catalog.GetConsumptionRates(r.Context())
	if err != nil {
		respondActionError(w, r, "get_consumption_rates", err)
		return
	}
	respondSuccess(w, r, rates)
}

// GetComparison returns the cross-bin comparison rows.
func (h *Handler) GetComparison(w http.ResponseWriter, r *http.Request) {
	if !h.requireCatalog(w, r) {
		return
	}
	rows, err := h.catalog.GetComparison(r.Context())
	if err != nil {
		respondActionError(w, r, "get_comparison", err)
		return
	}
	respondSuccess(w, r, rows)
}

// GetStatusDistribution returns the bin count per status.
func (h *Handler) GetStatusDistribution(w http.ResponseWriter, r *http.Request) {
	if !h.requireCatalog(w, r) {
		return
	}
	dist, err := h.catalog.GetStatusDistribution(r.Context())
	if err != nil {
		respondActionError(w, r, "get_status_distribution", err)
		return
	}
	respondSuccess(w, r, dist)
}

// ExportURL returns the backend download URL for an export kind:
// inventory, history, alerts or report.
func (h *Handler) ExportURL(w http.ResponseWriter, r *http.Request) {
	if !h.requireCatalog(w, r) {
		return
	}

	q := r.URL.Query()
	kind := chi.URLParam(r, "kind")

	var link string
	switch kind {
	case "inventory":
		link = h.catalog.ExportInventoryURL()
	case "history":
		start, end := q.Get("start_date"), q.Get("end_date")
		if start == "" || end == "" {
			respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "start_date and end_date are required", nil)
			return
		}
		link = h.catalog.ExportHistoryURL(start, end, splitIDs(q.Get("bin_ids")))
	case "alerts":
		includeAcked := true
		if v := q.Get("include_acknowledged"); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "include_acknowledged must be a boolean", nil)
				return
			}
			includeAcked = b
		}
		link = h.catalog.ExportAlertsURL(q.Get("start_date"), q.Get("end_date"), includeAcked)
	case "report":
		link = h.catalog.ExportReportURL()
	default:
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Unknown export: "+sanitizeLogValue(kind), nil)
		return
	}

	respondSuccess(w, r, ExportLink{Kind: kind, URL: link})
}

// positiveQueryInt parses an optional positive integer; "" yields 0.
func positiveQueryInt(s string) (int, bool) {
	if s == "" {
		return 0, true
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func splitIDs(s string) []string {
	if s == "" {
		return nil
	}
	var ids []string
	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
