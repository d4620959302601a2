// binwatch - Smart Bin Inventory Live-State Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/binwatch

package models

import (
	"github.com/goccy/go-json"
)

// Push frame types sent by the backend.
const (
	MessageTypeBinUpdate  = "bin_update"
	MessageTypeAlert      = "alert"
	MessageTypeConnection = "connection"
	MessageTypeHeartbeat  = "heartbeat"
	MessageTypeError      = "error"

	// MessageTypePing is the only frame the client sends.
	MessageTypePing = "ping"
)

// Envelope is the push channel frame. Payload is decoded according to Type
// and never inspected before the type is known.
type Envelope struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp string          `json:"timestamp,omitempty"`
}

// ConnectionPayload is the backend's greeting on a new push session.
type ConnectionPayload struct {
	Message string `json:"message"`
}

// HeartbeatPayload answers a client ping.
type HeartbeatPayload struct {
	Status string `json:"status"`
}

// ErrorPayload is sent by the backend when it rejects something on the
// push channel.
type ErrorPayload struct {
	Message string `json:"message"`
}

// PingFrame is the keepalive frame written by the client.
var PingFrame = []byte(`{"type":"ping"}`)
