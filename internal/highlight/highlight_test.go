// binwatch - Smart Bin Inventory Live-State Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/binwatch

package highlight

import (
	"sync"
	"testing"
	"time"
)

func checkCurrent(t *testing.T, h *Highlighter, want string) {
	t.Helper()
	if got := h.Current(); got != want {
		t.Errorf("Current() = %q, want %q", got, want)
	}
}

func TestHighlighter_TriggerAndExpire(t *testing.T) {
	h := New(40*time.Millisecond, nil)
	defer h.Stop()

	checkCurrent(t, h, "")
	h.Trigger("BIN-A1")
	checkCurrent(t, h, "BIN-A1")

	time.Sleep(80 * time.Millisecond)
	checkCurrent(t, h, "")
}

func TestHighlighter_NewerTargetSurvivesOlderTimer(t *testing.T) {
	h := New(60*time.Millisecond, nil)
	defer h.Stop()

	h.Trigger("BIN-X")
	time.Sleep(30 * time.Millisecond)
	h.Trigger("BIN-Y")

	// X's timer would have fired at 60ms; Y's fires at 90ms.
	time.Sleep(45 * time.Millisecond)
	checkCurrent(t, h, "BIN-Y")

	time.Sleep(60 * time.Millisecond)
	checkCurrent(t, h, "")
}

func TestHighlighter_StaleClearIgnored(t *testing.T) {
	h := New(time.Hour, nil)
	defer h.Stop()

	h.Trigger("BIN-X")
	h.mu.Lock()
	staleGen := h.generation
	h.mu.Unlock()

	h.Trigger("BIN-Y")
	h.clear(staleGen)

	checkCurrent(t, h, "BIN-Y")
}

func TestHighlighter_OnChange(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	h := New(30*time.Millisecond, func(id string) {
		mu.Lock()
		seen = append(seen, id)
		mu.Unlock()
	})
	defer h.Stop()

	h.Trigger("BIN-A1")
	time.Sleep(70 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 2 || seen[0] != "BIN-A1" || seen[1] != "" {
		t.Errorf("onChange saw %q, want [BIN-A1 \"\"]", seen)
	}
}

func TestHighlighter_Stop(t *testing.T) {
	calls := 0
	h := New(30*time.Millisecond, func(string) { calls++ })

	h.Trigger("BIN-A1")
	h.Stop()
	checkCurrent(t, h, "")

	h.Trigger("BIN-B1")
	checkCurrent(t, h, "")

	time.Sleep(60 * time.Millisecond)
	h.mu.Lock()
	defer h.mu.Unlock()
	if calls != 1 {
		t.Errorf("onChange called %d times, want 1 (the trigger before Stop)", calls)
	}
}

func TestHighlighter_DefaultDuration(t *testing.T) {
	h := New(0, nil)
	if h.duration != DefaultDuration {
		t.Errorf("duration = %v, want %v", h.duration, DefaultDuration)
	}
}
