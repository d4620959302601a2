// binwatch - Smart Bin Inventory Live-State Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/binwatch

package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/binwatch/internal/logging"
	ws "github.com/tomtom215/binwatch/internal/websocket"
)

const viewerHandshakeTimeout = 10 * time.Second

func (h *Handler) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: viewerHandshakeTimeout,
	}
}

func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if h.mw.originAllowed(origin) {
		return true
	}
	logging.Warn().Str("origin", sanitizeLogValue(origin)).Msg("Viewer connection rejected from unauthorized origin")
	return false
}

// WebSocket upgrades a dashboard viewer and registers it with the hub.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Viewer hub unavailable", nil)
		return
	}

	select {
	case <-h.hub.Done():
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Viewer hub stopped", nil)
		return
	default:
	}

	upgrader := h.upgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Viewer upgrade failed")
		return
	}

	client := ws.NewClient(h.hub, conn)
	if !h.hub.RegisterClient(r.Context(), client) {
		// Hub stopped between the check above and the upgrade.
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(time.Second))
		_ = conn.Close()
		return
	}
	client.Start()
}

// sanitizeLogValue strips control characters and bounds length.
func sanitizeLogValue(s string) string {
	const maxLen = 200
	s = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
	if len(s) > maxLen {
		s = s[:maxLen]
	}
	return s
}
