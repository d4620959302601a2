// binwatch - Smart Bin Inventory Live-State Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/binwatch

/*
Package api is the local view server: a small chi HTTP API over the
reconciled dashboard state plus a /ws endpoint that streams changes to
dashboard viewers through the websocket hub.

Live reads (bins, summary, alerts, state, health) are served from the
in-memory stores and never touch the backend. Writes (acknowledge,
configuration updates) pass through the reconcile controller to the backend
client. Catalog reads the stores do not mirror (bin history and consumption,
alert history and configurations, analytics, export links) are forwarded to
the backend through a Catalog, normally *client.Client; without one they
answer 503.

Responses share one envelope:

	{"success": true, "data": ..., "meta": {"request_id": "...", "timestamp": "..."}}
	{"success": false, "error": {"code": "VALIDATION_ERROR", "message": "...", "details": {...}}}

Middleware order: request ID, real IP, panic recovery, CORS; API routes add
per-IP rate limiting (go-chi/httprate), Prometheus instrumentation and gzip.
*/
package api
