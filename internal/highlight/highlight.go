// binwatch - Smart Bin Inventory Live-State Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/binwatch

// Package highlight tracks the single "recently updated" bin.
//
// Each Trigger replaces the highlighted bin and restarts the clear timer. A
// timer only clears the highlight it was started for, so an older timer that
// fires late can never un-highlight a newer bin.
package highlight

import (
	"sync"
	"time"

	"github.com/tomtom215/binwatch/internal/metrics"
)

// DefaultDuration is how long a bin stays highlighted.
const DefaultDuration = 1500 * time.Millisecond

// Highlighter holds at most one highlighted bin id.
type Highlighter struct {
	duration time.Duration
	onChange func(binID string)

	mu         sync.Mutex
	current    string
	generation uint64
	timer      *time.Timer
	stopped    bool
}

// New creates a Highlighter. onChange, if set, receives the new highlighted
// id ("" when cleared); it runs with the Highlighter locked and must not call
// back into it.
func New(duration time.Duration, onChange func(binID string)) *Highlighter {
	if duration <= 0 {
		duration = DefaultDuration
	}
	return &Highlighter{duration: duration, onChange: onChange}
}

// Trigger highlights binID until the duration elapses or another Trigger
// replaces it.
func (h *Highlighter) Trigger(binID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.stopped {
		return
	}
	if h.timer != nil {
		h.timer.Stop()
	}

	h.generation++
	gen := h.generation
	h.current = binID
	h.timer = time.AfterFunc(h.duration, func() { h.clear(gen) })

	metrics.Highlights.Inc()
	if h.onChange != nil {
		h.onChange(binID)
	}
}

func (h *Highlighter) clear(gen uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.stopped || gen != h.generation {
		return
	}
	h.current = ""
	h.timer = nil
	if h.onChange != nil {
		h.onChange("")
	}
}

// Current returns the highlighted bin id, or "".
func (h *Highlighter) Current() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

// Stop cancels the pending clear and ignores later triggers.
func (h *Highlighter) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.stopped = true
	if h.timer != nil {
		h.timer.Stop()
		h.timer = nil
	}
	h.current = ""
}
