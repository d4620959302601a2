// binwatch - Smart Bin Inventory Live-State Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/binwatch

package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/binwatch/internal/logging"
	"github.com/tomtom215/binwatch/internal/reconcile"
)

// Lifecycle is the Start/Stop pair of *reconcile.Controller.
type Lifecycle interface {
	Start(ctx context.Context) error
	Stop()
}

// ControllerService runs the reconcile controller under suture:
// Start, wait for cancellation, Stop.
//
// Stop is final for a controller, so once it has run the service asks
// suture not to restart it.
type ControllerService struct {
	ctrl Lifecycle
	name string
}

// NewControllerService wraps ctrl.
func NewControllerService(ctrl Lifecycle) *ControllerService {
	return &ControllerService{ctrl: ctrl, name: "reconcile-controller"}
}

// Serve implements suture.Service.
func (s *ControllerService) Serve(ctx context.Context) error {
	if err := s.ctrl.Start(ctx); err != nil {
		if errors.Is(err, reconcile.ErrStopped) {
			logging.Warn().Str("service", s.name).Msg("Controller already stopped, not restarting")
			return suture.ErrDoNotRestart
		}
		return fmt.Errorf("controller start failed: %w", err)
	}

	<-ctx.Done()

	// Stop blocks until the channel, pollers and in-flight resyncs are done.
	s.ctrl.Stop()
	return ctx.Err()
}

// String implements fmt.Stringer for suture's logs.
func (s *ControllerService) String() string {
	return s.name
}
