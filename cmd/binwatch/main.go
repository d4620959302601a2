// binwatch - Smart Bin Inventory Live-State Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/binwatch

package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/binwatch/internal/api"
	"github.com/tomtom215/binwatch/internal/client"
	"github.com/tomtom215/binwatch/internal/config"
	"github.com/tomtom215/binwatch/internal/logging"
	"github.com/tomtom215/binwatch/internal/reconcile"
	"github.com/tomtom215/binwatch/internal/supervisor"
	"github.com/tomtom215/binwatch/internal/supervisor/services"
	"github.com/tomtom215/binwatch/internal/websocket"
)

// healthProbeTimeout bounds the startup backend probe.
const healthProbeTimeout = 5 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	logging.Info().
		Str("backend", cfg.Backend.URL).
		Bool("view_server", cfg.Server.Enabled).
		Msg("Starting binwatch")

	backend := client.New(&cfg.Backend)
	probeBackend(backend)

	hub := websocket.NewHub()

	ctrl, err := reconcile.New(cfg, backend, hub)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create reconcile controller")
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfigFrom(cfg.Supervisor))
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	// The hub must be running before the controller starts broadcasting.
	tree.AddSyncService(services.NewWebSocketHubService(hub))
	tree.AddSyncService(services.NewControllerService(ctrl))

	if cfg.Server.Enabled {
		srv := api.NewServer(cfg.Server, ctrl, backend, hub)
		tree.AddAPIService(services.NewHTTPServerService(srv.NewHTTPServer(), cfg.Server.Addr(), cfg.Supervisor.ShutdownTimeout))
	} else {
		logging.Info().Msg("View server disabled; running headless")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		// A second signal gets the default behavior and kills the process.
		signal.Stop(sigCh)
		cancel()
	}()

	errCh := tree.ServeBackground(ctx)

	err = supervisor.WaitForExit(ctx, errCh, func() {
		logging.Info().Msg("Shutting down")
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("binwatch stopped")
}

// probeBackend logs whether the backend answers /health. Failure is not
// fatal: the controller keeps polling and reconnecting until it does.
func probeBackend(c *client.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), healthProbeTimeout)
	defer cancel()

	health, err := c.Health(ctx)
	if err != nil {
		logging.Warn().Err(err).Msg("Inventory backend not reachable yet")
		return
	}
	logging.Info().
		Str("status", health.Status).
		Int("backend_viewers", health.WebsocketClients).
		Msg("Inventory backend reachable")
}
