// binwatch - Smart Bin Inventory Live-State Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/binwatch

package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/binwatch/internal/models"
)

// fakeAlerts is an AlertSource recording acknowledge calls.
type fakeAlerts struct {
	mu       sync.Mutex
	active   []models.Alert
	listErr  error
	ackErr   error
	ackCalls []int64
	ackBy    []string
	allCalls int
}

func (f *fakeAlerts) ListActiveAlerts(ctx context.Context) ([]models.Alert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]models.Alert(nil), f.active...), nil
}

func (f *fakeAlerts) AcknowledgeAlert(ctx context.Context, id int64, by string) (*models.ActionResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ackCalls = append(f.ackCalls, id)
	f.ackBy = append(f.ackBy, by)
	if f.ackErr != nil {
		return nil, f.ackErr
	}
	return &models.ActionResult{Success: true, Message: "acknowledged"}, nil
}

func (f *fakeAlerts) AcknowledgeAllAlerts(ctx context.Context, by string) (*models.ActionResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.allCalls++
	f.ackBy = append(f.ackBy, by)
	if f.ackErr != nil {
		return nil, f.ackErr
	}
	return &models.ActionResult{Success: true}, nil
}

func (f *fakeAlerts) acks() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64(nil), f.ackCalls...)
}

func alert(id int64, binID string) models.Alert {
	return models.Alert{ID: id, BinID: binID, AlertType: models.AlertTypeLowStock}
}

func alertIDs(alerts []models.Alert) []int64 {
	ids := make([]int64, len(alerts))
	for i := range alerts {
		ids[i] = alerts[i].ID
	}
	return ids
}

func newTestAlertStore(src AlertSource) *AlertStore {
	return NewAlertStore(src, AlertStoreConfig{
		AcknowledgedBy: "night-shift",
		TombstoneTTL:   time.Minute,
		TombstoneSize:  16,
	}, nil)
}

func TestAlertStore_PrependNewestFirst(t *testing.T) {
	s := newTestAlertStore(&fakeAlerts{})

	assert.True(t, s.Prepend(alert(1, "BIN-A1")))
	assert.True(t, s.Prepend(alert(2, "BIN-A2")))
	assert.True(t, s.Prepend(alert(3, "BIN-A1")))

	assert.Equal(t, []int64{3, 2, 1}, alertIDs(s.Alerts()))
}

func TestAlertStore_PrependDropsDuplicatesAndAcknowledged(t *testing.T) {
	s := newTestAlertStore(&fakeAlerts{})

	require.True(t, s.Prepend(alert(1, "BIN-A1")))
	assert.False(t, s.Prepend(alert(1, "BIN-A1")), "duplicate id")

	acked := alert(2, "BIN-A2")
	acked.IsAcknowledged = true
	assert.False(t, s.Prepend(acked), "already acknowledged")

	assert.Equal(t, 1, s.Len())
}

func TestAlertStore_AcknowledgeUnknownID(t *testing.T) {
	src := &fakeAlerts{}
	s := newTestAlertStore(src)
	s.ReplaceAll([]models.Alert{alert(1, "BIN-A1"), alert(2, "BIN-A2")})

	err := s.Acknowledge(context.Background(), 99)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAlertNotActive))
	assert.Equal(t, []int64{1, 2}, alertIDs(s.Alerts()), "collection unchanged")
	assert.Empty(t, src.acks(), "no request sent")
}

func TestAlertStore_AcknowledgeFailureKeepsAlert(t *testing.T) {
	backendErr := errors.New("backend returned 500: Database unavailable")
	src := &fakeAlerts{ackErr: backendErr}
	s := newTestAlertStore(src)
	s.ReplaceAll([]models.Alert{alert(42, "BIN-A1"), alert(41, "BIN-A2")})

	err := s.Acknowledge(context.Background(), 42)
	require.Error(t, err)
	assert.True(t, errors.Is(err, backendErr))
	assert.Equal(t, []int64{42, 41}, alertIDs(s.Alerts()), "alert 42 still present")
	assert.Equal(t, []int64{42}, src.acks())
}

func TestAlertStore_AcknowledgeSuccess(t *testing.T) {
	src := &fakeAlerts{}
	s := newTestAlertStore(src)
	s.ReplaceAll([]models.Alert{alert(42, "BIN-A1"), alert(41, "BIN-A2")})

	require.NoError(t, s.Acknowledge(context.Background(), 42))
	assert.Equal(t, []int64{41}, alertIDs(s.Alerts()))
	assert.Equal(t, []string{"night-shift"}, src.ackBy)

	// A late re-delivery or a poll that raced the acknowledge does not bring it back.
	assert.False(t, s.Prepend(alert(42, "BIN-A1")))
	s.ReplaceAll([]models.Alert{alert(42, "BIN-A1"), alert(41, "BIN-A2")})
	assert.Equal(t, []int64{41}, alertIDs(s.Alerts()))
}

func TestAlertStore_AcknowledgeAll(t *testing.T) {
	src := &fakeAlerts{}
	s := newTestAlertStore(src)
	s.ReplaceAll([]models.Alert{alert(3, "BIN-A1"), alert(2, "BIN-A2"), alert(1, "BIN-A3")})

	require.NoError(t, s.AcknowledgeAll(context.Background()))
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Alerts())
	assert.Equal(t, 1, src.allCalls)
	assert.False(t, s.Prepend(alert(2, "BIN-A2")))
}

func TestAlertStore_AcknowledgeAllFailure(t *testing.T) {
	src := &fakeAlerts{ackErr: errors.New("Request failed")}
	s := newTestAlertStore(src)
	s.ReplaceAll([]models.Alert{alert(2, "BIN-A2"), alert(1, "BIN-A1")})

	require.Error(t, s.AcknowledgeAll(context.Background()))
	assert.Equal(t, []int64{2, 1}, alertIDs(s.Alerts()))
}

func TestAlertStore_ReplaceAllFilters(t *testing.T) {
	var changes []Change
	s := NewAlertStore(&fakeAlerts{}, AlertStoreConfig{}, func(c Change) { changes = append(changes, c) })

	acked := alert(5, "BIN-A5")
	acked.IsAcknowledged = true
	s.ReplaceAll([]models.Alert{alert(7, "BIN-A1"), acked, alert(6, "BIN-A2"), alert(7, "BIN-A1")})

	assert.Equal(t, []int64{7, 6}, alertIDs(s.Alerts()))
	assert.Equal(t, []Change{ChangeAlerts}, changes)
}

func TestAlertStore_Refresh(t *testing.T) {
	src := &fakeAlerts{active: []models.Alert{alert(2, "BIN-A2"), alert(1, "BIN-A1")}}
	s := newTestAlertStore(src)

	assert.True(t, s.Loading())
	require.NoError(t, s.Refresh(context.Background()))
	assert.False(t, s.Loading())
	assert.Equal(t, []int64{2, 1}, alertIDs(s.Alerts()))

	src.mu.Lock()
	src.listErr = errors.New("connection refused")
	src.mu.Unlock()

	require.Error(t, s.Refresh(context.Background()))
	assert.Equal(t, 2, s.Len(), "stale alerts preserved")
	assert.Contains(t, s.Err(), "connection refused")

	s.DismissError()
	assert.Empty(t, s.Err())
}

func TestAlertStore_DefaultAcknowledgedBy(t *testing.T) {
	src := &fakeAlerts{}
	s := NewAlertStore(src, AlertStoreConfig{}, nil)
	s.Prepend(alert(1, "BIN-A1"))

	require.NoError(t, s.Acknowledge(context.Background(), 1))
	assert.Equal(t, []string{"user"}, src.ackBy)
	assert.Equal(t, 0, s.CleanupTombstones())
}

func TestAlertStore_AlertsReturnsCopy(t *testing.T) {
	s := newTestAlertStore(&fakeAlerts{})
	s.Prepend(alert(1, "BIN-A1"))

	out := s.Alerts()
	out[0].BinID = "mutated"

	assert.Equal(t, "BIN-A1", s.Alerts()[0].BinID)
}
