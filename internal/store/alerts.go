// binwatch - Smart Bin Inventory Live-State Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/binwatch

package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/binwatch/internal/cache"
	"github.com/tomtom215/binwatch/internal/logging"
	"github.com/tomtom215/binwatch/internal/metrics"
	"github.com/tomtom215/binwatch/internal/models"
)

// AlertSource fetches and acknowledges alerts on the backend.
type AlertSource interface {
	ListActiveAlerts(ctx context.Context) ([]models.Alert, error)
	AcknowledgeAlert(ctx context.Context, id int64, acknowledgedBy string) (*models.ActionResult, error)
	AcknowledgeAllAlerts(ctx context.Context, acknowledgedBy string) (*models.ActionResult, error)
}

// AlertStoreConfig configures an AlertStore.
type AlertStoreConfig struct {
	// AcknowledgedBy is sent with every acknowledge request.
	AcknowledgedBy string

	// Acknowledged ids are remembered this long so that a late push or an
	// in-flight poll cannot put them back.
	TombstoneTTL  time.Duration
	TombstoneSize int
}

// AlertStore is the local copy of active alerts, newest first.
type AlertStore struct {
	src            AlertSource
	acknowledgedBy string
	onChange       ChangeFunc

	fetchState

	mu     sync.RWMutex
	alerts []models.Alert

	tombstones *cache.LRU[int64]
}

// NewAlertStore creates an empty store. onChange may be nil.
func NewAlertStore(src AlertSource, cfg AlertStoreConfig, onChange ChangeFunc) *AlertStore {
	by := cfg.AcknowledgedBy
	if by == "" {
		by = "user"
	}
	return &AlertStore{
		src:            src,
		acknowledgedBy: by,
		onChange:       onChange,
		fetchState:     fetchState{loading: true},
		tombstones:     cache.NewLRU[int64](cfg.TombstoneSize, cfg.TombstoneTTL),
	}
}

// Refresh fetches the active alerts and replaces the collection. On failure
// the error is retained and the held alerts are left as they were.
func (s *AlertStore) Refresh(ctx context.Context) error {
	s.begin()

	alerts, err := s.src.ListActiveAlerts(ctx)
	if err != nil {
		err = fmt.Errorf("failed to fetch alerts: %w", err)
		s.finish(err)
		logging.Ctx(ctx).Warn().Err(err).Msg("[store] Alert refresh failed")
		return err
	}

	s.ReplaceAll(alerts)
	s.finish(nil)
	return nil
}

// ReplaceAll replaces the collection, keeping the given order. Acknowledged
// alerts, recently acknowledged ids and repeated ids are skipped.
func (s *AlertStore) ReplaceAll(alerts []models.Alert) {
	next := make([]models.Alert, 0, len(alerts))
	seen := make(map[int64]struct{}, len(alerts))
	for i := range alerts {
		a := alerts[i]
		if a.IsAcknowledged || s.tombstones.Contains(a.ID) {
			continue
		}
		if _, dup := seen[a.ID]; dup {
			continue
		}
		seen[a.ID] = struct{}{}
		next = append(next, a)
	}

	s.mu.Lock()
	s.alerts = next
	s.mu.Unlock()

	metrics.StoreActiveAlerts.Set(float64(len(next)))
	s.notify()
}

// Prepend inserts a pushed alert at the front and reports whether it was
// added. Alerts already held, already acknowledged or acknowledged here
// recently are dropped.
func (s *AlertStore) Prepend(alert models.Alert) bool {
	if alert.IsAcknowledged || s.tombstones.Contains(alert.ID) {
		return false
	}

	s.mu.Lock()
	for i := range s.alerts {
		if s.alerts[i].ID == alert.ID {
			s.mu.Unlock()
			return false
		}
	}
	next := make([]models.Alert, 0, len(s.alerts)+1)
	next = append(next, alert)
	next = append(next, s.alerts...)
	s.alerts = next
	n := len(next)
	s.mu.Unlock()

	metrics.StoreActiveAlerts.Set(float64(n))
	s.notify()
	return true
}

// Acknowledge acknowledges one active alert on the backend and removes it
// locally once the backend confirms. Unknown ids fail with ErrAlertNotActive
// without a request.
func (s *AlertStore) Acknowledge(ctx context.Context, id int64) error {
	if !s.has(id) {
		return fmt.Errorf("acknowledge alert %d: %w", id, ErrAlertNotActive)
	}

	if _, err := s.src.AcknowledgeAlert(ctx, id, s.acknowledgedBy); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Int64("alert_id", id).Msg("[store] Acknowledge failed")
		return fmt.Errorf("acknowledge alert %d: %w", id, err)
	}

	s.tombstones.Add(id)

	s.mu.Lock()
	next := make([]models.Alert, 0, len(s.alerts))
	for i := range s.alerts {
		if s.alerts[i].ID != id {
			next = append(next, s.alerts[i])
		}
	}
	s.alerts = next
	n := len(next)
	s.mu.Unlock()

	metrics.StoreActiveAlerts.Set(float64(n))
	logging.Ctx(ctx).Info().Int64("alert_id", id).Msg("[store] Alert acknowledged")
	s.notify()
	return nil
}

// AcknowledgeAll acknowledges every alert with one request and clears the
// collection once the backend confirms.
func (s *AlertStore) AcknowledgeAll(ctx context.Context) error {
	if _, err := s.src.AcknowledgeAllAlerts(ctx, s.acknowledgedBy); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("[store] Acknowledge all failed")
		return fmt.Errorf("acknowledge all alerts: %w", err)
	}

	s.mu.Lock()
	for i := range s.alerts {
		s.tombstones.Add(s.alerts[i].ID)
	}
	cleared := len(s.alerts)
	s.alerts = nil
	s.mu.Unlock()

	metrics.StoreActiveAlerts.Set(0)
	logging.Ctx(ctx).Info().Int("count", cleared).Msg("[store] All alerts acknowledged")
	s.notify()
	return nil
}

// Alerts returns a copy of the active alerts, newest first.
func (s *AlertStore) Alerts() []models.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Alert, len(s.alerts))
	copy(out, s.alerts)
	return out
}

// Len returns the number of active alerts.
func (s *AlertStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.alerts)
}

// CleanupTombstones drops expired acknowledgement records.
func (s *AlertStore) CleanupTombstones() int {
	return s.tombstones.CleanupExpired()
}

func (s *AlertStore) has(id int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.alerts {
		if s.alerts[i].ID == id {
			return true
		}
	}
	return false
}

func (s *AlertStore) notify() {
	if s.onChange != nil {
		s.onChange(ChangeAlerts)
	}
}
