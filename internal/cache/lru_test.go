// binwatch - Smart Bin Inventory Live-State Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/binwatch

package cache

import (
	"sync"
	"testing"
	"time"
)

// fakeClock is advanced manually so TTL tests never sleep.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

// size reads the entry count, expired entries included.
func size[K comparable](c *LRU[K]) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func TestLRU_BasicOperations(t *testing.T) {
	c := NewLRU[int64](3, time.Minute)

	c.Add(1)
	c.Add(2)
	c.Add(3)

	for _, k := range []int64{1, 2, 3} {
		if !c.Contains(k) {
			t.Errorf("expected to contain %d", k)
		}
	}
	if c.Contains(4) {
		t.Error("4 was never added")
	}
	if size(c) != 3 {
		t.Errorf("expected size 3, got %d", size(c))
	}

	c.Add(2)
	if size(c) != 3 {
		t.Errorf("re-adding a key should not grow the set, size = %d", size(c))
	}
}

func TestLRU_Eviction(t *testing.T) {
	c := NewLRU[int64](3, time.Minute)

	c.Add(1)
	c.Add(2)
	c.Add(3)

	// Refresh 1 so 2 becomes least recently added
	c.Add(1)
	c.Add(4)

	if c.Contains(2) {
		t.Error("expected 2 to be evicted")
	}
	for _, k := range []int64{1, 3, 4} {
		if !c.Contains(k) {
			t.Errorf("expected %d to be present", k)
		}
	}
}

func TestLRU_ContainsDoesNotRefresh(t *testing.T) {
	c := NewLRU[int64](2, time.Minute)

	c.Add(1)
	c.Add(2)
	c.Contains(1)
	c.Add(3)

	if c.Contains(1) {
		t.Error("Contains must not protect 1 from eviction")
	}
	if !c.Contains(2) || !c.Contains(3) {
		t.Error("expected 2 and 3 to be present")
	}
}

func TestLRU_TTLExpiration(t *testing.T) {
	clock := newFakeClock()
	c := NewLRU[int64](10, 5*time.Minute, WithClock(clock.Now))

	c.Add(42)
	clock.Advance(4 * time.Minute)
	if !c.Contains(42) {
		t.Error("42 should still be live after 4m")
	}

	clock.Advance(2 * time.Minute)
	if c.Contains(42) {
		t.Error("42 should have expired after 6m")
	}
	if size(c) != 1 {
		t.Errorf("expired entry is only collected by CleanupExpired, size = %d", size(c))
	}
}

func TestLRU_AddRefreshesTTL(t *testing.T) {
	clock := newFakeClock()
	c := NewLRU[string](10, time.Minute, WithClock(clock.Now))

	c.Add("BIN-A1")
	clock.Advance(50 * time.Second)
	c.Add("BIN-A1")
	clock.Advance(50 * time.Second)

	if !c.Contains("BIN-A1") {
		t.Error("refreshed entry expired early")
	}
}

func TestLRU_CleanupExpired(t *testing.T) {
	clock := newFakeClock()
	c := NewLRU[int64](10, time.Minute, WithClock(clock.Now))

	c.Add(1)
	c.Add(2)
	clock.Advance(30 * time.Second)
	c.Add(3)
	clock.Advance(45 * time.Second)

	if removed := c.CleanupExpired(); removed != 2 {
		t.Errorf("CleanupExpired() = %d, want 2", removed)
	}
	if !c.Contains(3) {
		t.Error("3 should survive cleanup")
	}
	if size(c) != 1 {
		t.Errorf("size after cleanup = %d", size(c))
	}
}

func TestLRU_Defaults(t *testing.T) {
	c := NewLRU[int64](0, 0)
	if c.capacity != 1024 || c.ttl != 5*time.Minute {
		t.Errorf("defaults = %d, %v", c.capacity, c.ttl)
	}
}

func TestLRU_Concurrent(t *testing.T) {
	c := NewLRU[int64](100, time.Minute)
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(base int64) {
			defer wg.Done()
			for j := int64(0); j < 200; j++ {
				c.Add(base*1000 + j)
				c.Contains(base*1000 + j)
				c.CleanupExpired()
			}
		}(int64(i))
	}
	wg.Wait()

	if size(c) > 100 {
		t.Errorf("size = %d exceeds capacity", size(c))
	}
}
