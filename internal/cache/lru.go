// binwatch - Smart Bin Inventory Live-State Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/binwatch

// Package cache provides a bounded LRU key set with per-key TTL.
//
// The alert store uses it as a tombstone set: acknowledged alert IDs are
// remembered for a few minutes so that a late push re-delivery of the same
// alert is not resurrected into the active list.
package cache

import (
	"sync"
	"time"
)

type entry[K comparable] struct {
	key       K
	prev      *entry[K]
	next      *entry[K]
	expiresAt time.Time
}

// LRU is a thread-safe, size-bounded key set with per-key TTL.
//
// Add and Contains are O(1). When the set is full, the key added or
// refreshed least recently is evicted. Expired keys stop matching
// immediately and are collected by CleanupExpired.
//
// A doubly-linked list keeps recency order and a map gives O(1) lookup.
type LRU[K comparable] struct {
	mu sync.Mutex

	capacity int
	ttl      time.Duration
	now      func() time.Time

	items map[K]*entry[K]

	// head.next is the most recently added, tail.prev the least.
	head *entry[K]
	tail *entry[K]
}

// Option configures an LRU.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// NewLRU creates a set holding at most capacity keys, each living for ttl.
func NewLRU[K comparable](capacity int, ttl time.Duration, opts ...Option) *LRU[K] {
	if capacity <= 0 {
		capacity = 1024
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	c := &LRU[K]{
		capacity: capacity,
		ttl:      ttl,
		now:      o.now,
		items:    make(map[K]*entry[K], capacity),
		head:     &entry[K]{},
		tail:     &entry[K]{},
	}
	c.head.next = c.tail
	c.tail.prev = c.head
	return c
}

// Contains reports whether key is live without changing recency.
func (c *LRU[K]) Contains(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.items[key]; ok {
		return !c.now().After(e.expiresAt)
	}
	return false
}

// Add inserts key or refreshes its TTL and recency. The least recently
// added key is evicted when the set is full.
func (c *LRU[K]) Add(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.now().Add(c.ttl)

	if e, ok := c.items[key]; ok {
		e.expiresAt = expiresAt
		c.moveToFront(e)
		return
	}

	e := &entry[K]{key: key, expiresAt: expiresAt}
	c.addToFront(e)
	c.items[key] = e

	for len(c.items) > c.capacity {
		c.evictOldest()
	}
}

// CleanupExpired removes expired keys and returns how many were removed.
func (c *LRU[K]) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for e := c.tail.prev; e != c.head; {
		prev := e.prev
		if now.After(e.expiresAt) {
			c.removeEntry(e)
			removed++
		}
		e = prev
	}
	return removed
}

// Internal methods (must be called with lock held)

func (c *LRU[K]) addToFront(e *entry[K]) {
	e.prev = c.head
	e.next = c.head.next
	c.head.next.prev = e
	c.head.next = e
}

func (c *LRU[K]) moveToFront(e *entry[K]) {
	e.prev.next = e.next
	e.next.prev = e.prev
	c.addToFront(e)
}

func (c *LRU[K]) removeEntry(e *entry[K]) {
	e.prev.next = e.next
	e.next.prev = e.prev
	delete(c.items, e.key)
}

func (c *LRU[K]) evictOldest() {
	oldest := c.tail.prev
	if oldest == c.head {
		return
	}
	c.removeEntry(oldest)
}
