// binwatch - Smart Bin Inventory Live-State Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/binwatch

/*
Command binwatch keeps a live, reconciled copy of a smart-bin inventory
backend (bins, inventory summary, active alerts) and serves it to warehouse
dashboards.

It holds one push channel to the backend's /ws endpoint, applies bin_update
and alert frames as they arrive, and re-fetches everything over REST on
every (re)connect and on two independent poll timers, so the local view
converges even when pushes are missed.

# Process layout

	binwatch
	├── sync-layer
	│   ├── viewer-hub            fans state changes out to dashboards
	│   └── reconcile-controller  push channel, stores, pollers, highlight
	└── api-layer
	    └── view-server           chi HTTP API + /ws + /metrics

# Configuration

Defaults, then an optional YAML file (CONFIG_PATH, config.yaml or
/etc/binwatch/config.yaml), then mapped environment variables:

	BINWATCH_BACKEND_URL=http://inventory:8000
	BINWATCH_ACKNOWLEDGED_BY=dock-3
	HTTP_PORT=8090
	CORS_ORIGINS=http://dashboard.local
	LOG_LEVEL=debug

# Signals

SIGINT and SIGTERM cancel the supervisor tree. The view server drains, the
controller disposes the push channel and waits for in-flight refreshes, and
services that miss the shutdown timeout are reported before exit.
*/
package main
