// binwatch - Smart Bin Inventory Live-State Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/binwatch

package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/binwatch/internal/logging"
	"github.com/tomtom215/binwatch/internal/metrics"
	"github.com/tomtom215/binwatch/internal/models"
)

// InventorySource fetches inventory from the backend.
type InventorySource interface {
	ListBins(ctx context.Context) ([]models.Bin, error)
	GetSummary(ctx context.Context) (*models.InventorySummary, error)
}

// InventoryStore is the local copy of every bin and the inventory summary.
type InventoryStore struct {
	src      InventorySource
	onChange ChangeFunc

	fetchState

	mu      sync.RWMutex
	bins    map[string]models.Bin
	summary *models.InventorySummary

	// Summary refreshes triggered by push updates run in the background,
	// at most one at a time. Updates arriving meanwhile set pending and
	// cause exactly one more refresh when the current one finishes.
	ctx        context.Context
	cancel     context.CancelFunc
	alive      atomic.Bool
	refreshMu  sync.Mutex
	refreshing bool
	pending    bool
	wg         sync.WaitGroup
}

// NewInventoryStore creates an empty store. onChange may be nil.
func NewInventoryStore(src InventorySource, onChange ChangeFunc) *InventoryStore {
	ctx, cancel := context.WithCancel(context.Background())
	s := &InventoryStore{
		src:        src,
		onChange:   onChange,
		fetchState: fetchState{loading: true},
		bins:       make(map[string]models.Bin),
		ctx:        ctx,
		cancel:     cancel,
	}
	s.alive.Store(true)
	return s
}

// Refresh fetches bins and summary concurrently and, when both succeed,
// replaces the local copy. On failure the error is retained and the held
// state is left as it was.
func (s *InventoryStore) Refresh(ctx context.Context) error {
	s.begin()

	var (
		bins    []models.Bin
		summary *models.InventorySummary
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		bins, err = s.src.ListBins(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		summary, err = s.src.GetSummary(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		err = fmt.Errorf("failed to fetch inventory: %w", err)
		s.finish(err)
		logging.Ctx(ctx).Warn().Err(err).Msg("[store] Inventory refresh failed")
		return err
	}

	s.ReplaceAll(bins)
	s.setSummary(summary)
	s.finish(nil)
	return nil
}

// ReplaceAll replaces the whole bin collection. Bins absent from records are
// dropped.
func (s *InventoryStore) ReplaceAll(records []models.Bin) {
	next := make(map[string]models.Bin, len(records))
	for i := range records {
		next[records[i].BinID] = records[i]
	}

	s.mu.Lock()
	s.bins = next
	s.mu.Unlock()

	metrics.StoreBins.Set(float64(len(next)))
	s.notify(ChangeBins)
}

// ApplyUpdate inserts or replaces one bin and schedules a background summary
// refresh.
func (s *InventoryStore) ApplyUpdate(bin models.Bin) {
	s.mu.Lock()
	s.bins[bin.BinID] = bin
	n := len(s.bins)
	s.mu.Unlock()

	metrics.StoreBins.Set(float64(n))
	s.refreshSummaryAsync()
}

// refreshSummaryAsync starts a summary fetch unless one is running, in which
// case it only marks another fetch as needed.
func (s *InventoryStore) refreshSummaryAsync() {
	if !s.alive.Load() {
		return
	}

	s.refreshMu.Lock()
	if s.refreshing {
		s.pending = true
		s.refreshMu.Unlock()
		return
	}
	s.refreshing = true
	s.wg.Add(1)
	s.refreshMu.Unlock()

	go s.summaryLoop()
}

func (s *InventoryStore) summaryLoop() {
	defer s.wg.Done()

	for {
		if !s.alive.Load() {
			s.endRefresh()
			return
		}

		summary, err := s.src.GetSummary(s.ctx)
		switch {
		case err != nil:
			metrics.SummaryRefreshes.WithLabelValues("failure").Inc()
			if s.alive.Load() {
				logging.Warn().Err(err).Msg("[store] Summary refresh failed")
			}
		case s.alive.Load():
			metrics.SummaryRefreshes.WithLabelValues("success").Inc()
			s.setSummary(summary)
		}

		s.refreshMu.Lock()
		if !s.pending {
			s.refreshing = false
			s.refreshMu.Unlock()
			return
		}
		s.pending = false
		s.refreshMu.Unlock()
	}
}

func (s *InventoryStore) endRefresh() {
	s.refreshMu.Lock()
	s.refreshing = false
	s.pending = false
	s.refreshMu.Unlock()
}

func (s *InventoryStore) setSummary(summary *models.InventorySummary) {
	if summary == nil {
		return
	}
	cp := *summary
	s.mu.Lock()
	s.summary = &cp
	s.mu.Unlock()
	s.notify(ChangeSummary)
}

// Close cancels in-flight summary refreshes and waits for them. Later
// ApplyUpdate calls still update bins but start no fetch.
func (s *InventoryStore) Close() {
	if !s.alive.CompareAndSwap(true, false) {
		return
	}
	s.cancel()
	s.wg.Wait()
}

// Bins returns all bins ordered by row, position, then bin_id.
func (s *InventoryStore) Bins() []models.Bin {
	s.mu.RLock()
	out := make([]models.Bin, 0, len(s.bins))
	for _, b := range s.bins {
		out = append(out, b)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return models.BinLess(out[i], out[j]) })
	return out
}

// Bin returns one bin.
func (s *InventoryStore) Bin(binID string) (models.Bin, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bins[binID]
	return b, ok
}

// Len returns the number of bins held.
func (s *InventoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.bins)
}

// Summary returns a copy of the summary, or nil before the first fetch.
func (s *InventoryStore) Summary() *models.InventorySummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.summary == nil {
		return nil
	}
	cp := *s.summary
	return &cp
}

func (s *InventoryStore) notify(c Change) {
	if s.onChange != nil && s.alive.Load() {
		s.onChange(c)
	}
}
