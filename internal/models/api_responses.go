// binwatch - Smart Bin Inventory Live-State Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/binwatch

package models

import (
	"github.com/goccy/go-json"
)

// APIResponse is the backend's success envelope:
//
//	{"success": true, "data": [...]}
//	{"success": true, "message": "Alert 42 acknowledged"}
//	{"success": false, "error": "Alert not found"}
//
// Data is left raw so the client can decode it into the endpoint's type
// after checking Success.
type APIResponse struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data,omitempty"`
	Message    string          `json:"message,omitempty"`
	Error      string          `json:"error,omitempty"`
	Pagination *Pagination     `json:"pagination,omitempty"`
}

// ErrorBody is the body of a non-2xx response. FastAPI validation and
// HTTPException responses use detail, handlers use error.
type ErrorBody struct {
	Error  string          `json:"error"`
	Detail json.RawMessage `json:"detail"`
}

// Pagination describes one page of a paginated list.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// HealthStatus is the backend /health body.
type HealthStatus struct {
	Status           string `json:"status"`
	WebsocketClients int    `json:"websocket_clients"`
}

// ActionResult is returned by acknowledge and configuration endpoints.
type ActionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
