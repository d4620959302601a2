// binwatch - Smart Bin Inventory Live-State Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/binwatch

// Package store holds the local copies of backend state.
//
// InventoryStore keeps one record per bin plus the aggregate summary.
// AlertStore keeps the active (unacknowledged) alerts, newest first. Both are
// safe for concurrent use, mutate only through their own methods and hand out
// copies. Fetch failures are retained as a dismissible error string and never
// clear what is already held.
package store

import (
	"errors"
	"sync"
)

// ErrAlertNotActive is returned when acknowledging an id that is not in the
// active collection.
var ErrAlertNotActive = errors.New("alert is not active")

// Change names what part of a store changed.
type Change string

const (
	ChangeBins    Change = "bins"
	ChangeSummary Change = "summary"
	ChangeAlerts  Change = "alerts"
)

// ChangeFunc is called after a store mutation, outside the store's lock.
type ChangeFunc func(Change)

// fetchState is the loading flag and retained fetch error shared by both stores.
type fetchState struct {
	stateMu sync.RWMutex
	loading bool
	err     string
}

// Loading reports whether the first full fetch has not completed yet.
func (f *fetchState) Loading() bool {
	f.stateMu.RLock()
	defer f.stateMu.RUnlock()
	return f.loading
}

// Err returns the last fetch error, or "" when there is none.
func (f *fetchState) Err() string {
	f.stateMu.RLock()
	defer f.stateMu.RUnlock()
	return f.err
}

// DismissError clears the retained fetch error.
func (f *fetchState) DismissError() {
	f.stateMu.Lock()
	f.err = ""
	f.stateMu.Unlock()
}

func (f *fetchState) begin() {
	f.stateMu.Lock()
	f.err = ""
	f.stateMu.Unlock()
}

func (f *fetchState) finish(err error) {
	f.stateMu.Lock()
	f.loading = false
	if err != nil {
		f.err = err.Error()
	}
	f.stateMu.Unlock()
}
