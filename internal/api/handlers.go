// binwatch - Smart Bin Inventory Live-State Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/binwatch

package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/binwatch/internal/channel"
	"github.com/tomtom215/binwatch/internal/models"
	"github.com/tomtom215/binwatch/internal/reconcile"
	"github.com/tomtom215/binwatch/internal/validation"
	ws "github.com/tomtom215/binwatch/internal/websocket"
)

// maxBodyBytes caps configuration update bodies.
const maxBodyBytes = 64 << 10

// StateController is the part of the reconcile controller the view server
// exposes. *reconcile.Controller implements it.
type StateController interface {
	Snapshot() reconcile.Snapshot
	Bins() []models.Bin
	Bin(binID string) (models.Bin, bool)
	Summary() *models.InventorySummary
	Alerts() []models.Alert
	ConnectionState() channel.State
	IsConnected() bool

	Acknowledge(ctx context.Context, id int64) error
	AcknowledgeAll(ctx context.Context) error
	UpdateBinConfig(ctx context.Context, binID string, update *models.BinConfigUpdate) (*models.BinConfiguration, error)
	UpdateAlertConfig(ctx context.Context, binID, alertType string, update *models.AlertConfigUpdate) (*models.ActionResult, error)
	DismissErrors()
	Reconnect()
}

// Handler serves the view API.
type Handler struct {
	ctrl      StateController
	catalog   Catalog
	hub       *ws.Hub
	mw        *ChiMiddleware
	startTime time.Time
}

// NewHandler creates a Handler. catalog and hub may be nil, in which case
// the catalog routes and /ws answer 503.
func NewHandler(ctrl StateController, catalog Catalog, hub *ws.Hub, mw *ChiMiddleware) *Handler {
	return &Handler{ctrl: ctrl, catalog: catalog, hub: hub, mw: mw, startTime: time.Now()}
}

// HealthResponse is the body of GET /api/v1/health.
type HealthResponse struct {
	Status           string  `json:"status"`
	Connected        bool    `json:"connected"`
	ConnectionState  string  `json:"connection_state"`
	WebsocketClients int     `json:"websocket_clients"`
	Uptime           float64 `json:"uptime_seconds"`
}

// Health reports "healthy" while the push channel is connected and
// "degraded" otherwise. It always answers 200 so the dashboard can render
// the degraded state.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	state := h.ctrl.ConnectionState()
	connected := state == channel.StateConnected

	status := "healthy"
	if !connected {
		status = "degraded"
	}

	clients := 0
	if h.hub != nil {
		clients = h.hub.GetClientCount()
	}

	respondSuccess(w, r, HealthResponse{
		Status:           status,
		Connected:        connected,
		ConnectionState:  state.String(),
		WebsocketClients: clients,
		Uptime:           time.Since(h.startTime).Seconds(),
	})
}

// State returns the full reconciled snapshot.
func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, h.ctrl.Snapshot())
}

// ListBins returns bins in display order.
func (h *Handler) ListBins(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, h.ctrl.Bins())
}

// GetBin returns one bin from the live store. A bin the store does not hold
// yet (first load pending) is fetched from the backend when a catalog is
// wired.
func (h *Handler) GetBin(w http.ResponseWriter, r *http.Request) {
	binID := chi.URLParam(r, "id")
	if bin, ok := h.ctrl.Bin(binID); ok {
		respondSuccess(w, r, bin)
		return
	}
	if h.catalog == nil {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Bin not found: "+binID, nil)
		return
	}

	bin, err := h.catalog.GetBin(r.Context(), binID)
	if err != nil {
		respondActionError(w, r, "get_bin", err)
		return
	}
	respondSuccess(w, r, bin)
}

// Summary returns the inventory summary, 503 until the first fetch lands.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	summary := h.ctrl.Summary()
	if summary == nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Inventory summary not loaded yet", nil)
		return
	}
	respondSuccess(w, r, summary)
}

// ListAlerts returns active alerts, newest first.
func (h *Handler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, h.ctrl.Alerts())
}

// AcknowledgeAlert acknowledges one active alert.
func (h *Handler) AcknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Alert id must be a positive integer", nil)
		return
	}

	if err := h.ctrl.Acknowledge(r.Context(), id); err != nil {
		respondActionError(w, r, "acknowledge", err)
		return
	}
	respondSuccess(w, r, map[string]int64{"acknowledged": id})
}

// AcknowledgeAll acknowledges every active alert.
func (h *Handler) AcknowledgeAll(w http.ResponseWriter, r *http.Request) {
	if err := h.ctrl.AcknowledgeAll(r.Context()); err != nil {
		respondActionError(w, r, "acknowledge_all", err)
		return
	}
	respondSuccess(w, r, map[string]int{"active_alerts": len(h.ctrl.Alerts())})
}

// UpdateBinConfig applies a partial bin configuration update.
func (h *Handler) UpdateBinConfig(w http.ResponseWriter, r *http.Request) {
	var update models.BinConfigUpdate
	if !h.decodeAndValidate(w, r, &update) {
		return
	}
	if update.IsEmpty() {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Update contains no fields", nil)
		return
	}

	cfg, err := h.ctrl.UpdateBinConfig(r.Context(), chi.URLParam(r, "id"), &update)
	if err != nil {
		respondActionError(w, r, "update_bin_config", err)
		return
	}
	respondSuccess(w, r, cfg)
}

// UpdateAlertConfig applies a partial alert configuration update.
func (h *Handler) UpdateAlertConfig(w http.ResponseWriter, r *http.Request) {
	var update models.AlertConfigUpdate
	if !h.decodeAndValidate(w, r, &update) {
		return
	}
	if update.ThresholdValue == nil && update.IsEnabled == nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Update contains no fields", nil)
		return
	}

	result, err := h.ctrl.UpdateAlertConfig(r.Context(), chi.URLParam(r, "bin"), chi.URLParam(r, "type"), &update)
	if err != nil {
		respondActionError(w, r, "update_alert_config", err)
		return
	}
	respondSuccess(w, r, result)
}

// DismissErrors clears both stores' last error.
func (h *Handler) DismissErrors(w http.ResponseWriter, r *http.Request) {
	h.ctrl.DismissErrors()
	respondSuccess(w, r, map[string]bool{"dismissed": true})
}

// Reconnect forces the push channel to reconnect.
func (h *Handler) Reconnect(w http.ResponseWriter, r *http.Request) {
	h.ctrl.Reconnect()
	respondSuccess(w, r, map[string]string{"connection_state": h.ctrl.ConnectionState().String()})
}

// decodeAndValidate reads a JSON body into dst and validates it, writing the
// error response itself when it returns false.
func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, r, http.StatusRequestEntityTooLarge, ErrCodeBadRequest, "Request body too large", nil)
			return false
		}
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Failed to read request body", nil)
		return false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON body", nil)
		return false
	}
	if verr := validation.ValidateStruct(dst); verr != nil {
		respondValidationError(w, r, verr)
		return false
	}
	return true
}
