// binwatch - Smart Bin Inventory Live-State Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/binwatch

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/binwatch/internal/reconcile"
)

var _ suture.Service = (*ControllerService)(nil)

type fakeLifecycle struct {
	startErr error
	starts   atomic.Int32
	stops    atomic.Int32
	started  chan struct{}
}

func newFakeLifecycle() *fakeLifecycle {
	return &fakeLifecycle{started: make(chan struct{}, 4)}
}

func (f *fakeLifecycle) Start(context.Context) error {
	f.starts.Add(1)
	f.started <- struct{}{}
	return f.startErr
}

func (f *fakeLifecycle) Stop() {
	f.stops.Add(1)
}

func TestControllerService_StartWaitStop(t *testing.T) {
	ctrl := newFakeLifecycle()
	svc := NewControllerService(ctrl)
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	<-ctrl.started
	if ctrl.stops.Load() != 0 {
		t.Fatal("Stop called before cancellation")
	}
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Serve did not return")
	}
	if ctrl.stops.Load() != 1 {
		t.Errorf("Stop calls = %d, want 1", ctrl.stops.Load())
	}
}

func TestControllerService_StartFailure(t *testing.T) {
	ctrl := newFakeLifecycle()
	ctrl.startErr = reconcile.ErrAlreadyRunning

	err := NewControllerService(ctrl).Serve(context.Background())
	if !errors.Is(err, reconcile.ErrAlreadyRunning) {
		t.Errorf("err = %v", err)
	}
	if ctrl.stops.Load() != 0 {
		t.Error("Stop called after failed Start")
	}
}

func TestControllerService_StoppedControllerNotRestarted(t *testing.T) {
	ctrl := newFakeLifecycle()
	ctrl.startErr = reconcile.ErrStopped

	err := NewControllerService(ctrl).Serve(context.Background())
	if !errors.Is(err, suture.ErrDoNotRestart) {
		t.Errorf("err = %v, want ErrDoNotRestart", err)
	}
}

func TestControllerService_Name(t *testing.T) {
	if got := NewControllerService(newFakeLifecycle()).String(); got != "reconcile-controller" {
		t.Errorf("String() = %q", got)
	}
}
