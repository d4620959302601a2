// binwatch - Smart Bin Inventory Live-State Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/binwatch

/*
Package supervisor runs binwatch's long-lived services under a suture v4
supervisor tree.

	binwatch
	├── sync-layer
	│   ├── viewer-hub            (services.WebSocketHubService)
	│   └── reconcile-controller  (services.ControllerService)
	└── api-layer
	    └── view-server           (services.HTTPServerService)

The two layers count failures independently: a view server that cannot
bind its port backs off without disturbing the push channel, and the hub
keeps fanning out updates while the API restarts.

Supervisor events (service failure, backoff, resume) are logged through
sutureslog into the zerolog-backed slog handler from internal/logging.

Usage:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(),
	    supervisor.TreeConfigFrom(cfg.Supervisor))
	tree.AddSyncService(services.NewWebSocketHubService(hub))
	tree.AddSyncService(services.NewControllerService(ctrl))
	tree.AddAPIService(services.NewHTTPServerService(srv, addr, timeout))
	errCh := tree.ServeBackground(ctx)
*/
package supervisor
