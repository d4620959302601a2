// binwatch - Smart Bin Inventory Live-State Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/binwatch

/*
Package websocket relays live inventory state to local viewers.

binwatch holds one connection to the backend push channel. Local dashboards
connect to binwatch instead and receive the reconciled view: pushed records
as they are applied, plus change notifications after each full refresh. The
relay uses the backend's envelope, so a viewer written for the backend can
read it unchanged.

Key Components:

  - Hub: owns the viewer set and fans out broadcasts in connection order
  - Client: one viewer connection with a read pump and a write pump
  - Message: the {type, payload, timestamp} envelope

Message Types:

  - bin_update: a pushed Bin record after it was applied to the store
  - alert: a pushed Alert after it was prepended
  - alerts_changed: the active alert set changed ({active_count})
  - inventory_refreshed: bins or summary were replaced ({total_bins, summary})
  - highlight: the highlighted bin changed ({bin_id}, "" when cleared)
  - connection_state: backend channel state ({state, connected})
  - heartbeat: answer to a viewer {"type":"ping"}

Usage:

	hub := websocket.NewHub()
	go hub.RunWithContext(ctx)

	conn, _ := upgrader.Upgrade(w, r, nil)
	client := websocket.NewClient(hub, conn)
	if hub.RegisterClient(r.Context(), client) {
		client.Start()
	}

	hub.BroadcastHighlight("BIN-A1")

Broadcasts never block the caller. A full hub queue drops the event; a viewer
whose own queue is full is disconnected and can reconnect to resync through
GET /api/v1/state.
*/
package websocket
