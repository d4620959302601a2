// binwatch - Smart Bin Inventory Live-State Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/binwatch

package reconcile

import (
	"github.com/tomtom215/binwatch/internal/channel"
	"github.com/tomtom215/binwatch/internal/models"
)

// Snapshot is a point-in-time copy of everything a dashboard renders.
// Its parts are read one after another, not atomically; a push landing
// between reads shows up in the next snapshot.
type Snapshot struct {
	Bins        []models.Bin             `json:"bins"`
	Summary     *models.InventorySummary `json:"summary"`
	Alerts      []models.Alert           `json:"alerts"`
	Highlighted string                   `json:"highlighted_bin"`
	Connection  string                   `json:"connection_state"`
	Connected   bool                     `json:"connected"`

	InventoryLoading bool   `json:"inventory_loading"`
	AlertsLoading    bool   `json:"alerts_loading"`
	InventoryError   string `json:"inventory_error,omitempty"`
	AlertsError      string `json:"alerts_error,omitempty"`
}

// Snapshot returns the current reconciled view. Bins are in display order
// and alerts newest first.
func (c *Controller) Snapshot() Snapshot {
	state := c.channel.State()
	return Snapshot{
		Bins:             c.inventory.Bins(),
		Summary:          c.inventory.Summary(),
		Alerts:           c.alerts.Alerts(),
		Highlighted:      c.highlighter.Current(),
		Connection:       state.String(),
		Connected:        state == channel.StateConnected,
		InventoryLoading: c.inventory.Loading(),
		AlertsLoading:    c.alerts.Loading(),
		InventoryError:   c.inventory.Err(),
		AlertsError:      c.alerts.Err(),
	}
}
