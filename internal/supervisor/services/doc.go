// binwatch - Smart Bin Inventory Live-State Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/binwatch

/*
Package services adapts binwatch components to suture's Serve(ctx) error
contract.

  - ControllerService: reconcile.Controller Start / wait / Stop. A stopped
    controller cannot be started again, so ErrStopped maps to
    suture.ErrDoNotRestart.
  - WebSocketHubService: websocket.Hub.RunWithContext, which already has the
    right shape.
  - HTTPServerService: *http.Server ListenAndServe / Shutdown with a bounded
    drain.

Each service implements fmt.Stringer so suture's event log names it.
*/
package services
