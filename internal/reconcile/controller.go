// binwatch - Smart Bin Inventory Live-State Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/binwatch

package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/binwatch/internal/channel"
	"github.com/tomtom215/binwatch/internal/config"
	"github.com/tomtom215/binwatch/internal/highlight"
	"github.com/tomtom215/binwatch/internal/logging"
	"github.com/tomtom215/binwatch/internal/metrics"
	"github.com/tomtom215/binwatch/internal/models"
	"github.com/tomtom215/binwatch/internal/router"
	"github.com/tomtom215/binwatch/internal/store"
)

const (
	defaultInventoryPollInterval = 30 * time.Second
	defaultAlertPollInterval     = 60 * time.Second
)

// Resync triggers, used as the binwatch_resyncs_total label.
const (
	TriggerInitial     = "initial"
	TriggerConnect     = "connect"
	TriggerPoll        = "poll"
	TriggerBinConfig   = "bin_config"
	TriggerAlertConfig = "alert_config"
)

var (
	// ErrAlreadyRunning is returned by Start on a running controller.
	ErrAlreadyRunning = errors.New("controller is already running")

	// ErrStopped is returned by Start after Stop.
	ErrStopped = errors.New("controller is stopped")
)

// Backend is the REST surface the controller needs.
type Backend interface {
	store.InventorySource
	store.AlertSource
	UpdateBinConfig(ctx context.Context, binID string, update *models.BinConfigUpdate) (*models.BinConfiguration, error)
	UpdateAlertConfiguration(ctx context.Context, binID, alertType string, update *models.AlertConfigUpdate) (*models.ActionResult, error)
}

// Notifier receives state changes for local viewers. *websocket.Hub
// implements it. Calls must not block.
type Notifier interface {
	BroadcastBinUpdate(bin models.Bin)
	BroadcastAlert(alert models.Alert)
	BroadcastAlertsChanged(activeCount int)
	BroadcastInventoryRefreshed(totalBins int, summary *models.InventorySummary)
	BroadcastHighlight(binID string)
	BroadcastConnectionState(state string, connected bool)
}

// Controller owns the push channel and both stores and keeps them in step
// with the backend: pushed frames are applied as they arrive, every
// (re)connect triggers one full refresh of each store, and pollers refresh
// on a fixed interval regardless of channel health.
type Controller struct {
	cfg      config.ReconcileConfig
	backend  Backend
	notifier Notifier

	inventory   *store.InventoryStore
	alerts      *store.AlertStore
	channel     *channel.Channel
	router      *router.Router
	highlighter *highlight.Highlighter

	mu       sync.Mutex
	running  bool
	stopped  bool
	ctx      context.Context
	cancel   context.CancelFunc
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// New wires a controller for cfg. notifier may be nil. Nothing is fetched
// or dialed until Start.
func New(cfg *config.Config, backend Backend, notifier Notifier) (*Controller, error) {
	wsURL, err := cfg.Backend.WebSocketURL()
	if err != nil {
		return nil, fmt.Errorf("failed to derive push channel url: %w", err)
	}

	rc := cfg.Reconcile
	if rc.InventoryPollInterval <= 0 {
		rc.InventoryPollInterval = defaultInventoryPollInterval
	}
	if rc.AlertPollInterval <= 0 {
		rc.AlertPollInterval = defaultAlertPollInterval
	}

	c := &Controller{
		cfg:      rc,
		backend:  backend,
		notifier: notifier,
		router:   router.New(),
		stopChan: make(chan struct{}),
	}
	if c.notifier == nil {
		c.notifier = nopNotifier{}
	}

	c.inventory = store.NewInventoryStore(backend, c.onInventoryChange)
	c.alerts = store.NewAlertStore(backend, store.AlertStoreConfig{
		AcknowledgedBy: rc.AcknowledgedBy,
		TombstoneTTL:   rc.AckTombstoneTTL,
		TombstoneSize:  rc.AckTombstoneSize,
	}, c.onAlertsChange)
	c.highlighter = highlight.New(rc.HighlightDuration, c.notifier.BroadcastHighlight)
	c.channel = channel.New(wsURL, cfg.Channel, channel.Handlers{
		OnConnect:    c.onConnect,
		OnDisconnect: c.onDisconnect,
		OnMessage:    c.router.Dispatch,
	})

	return c, nil
}

// Start registers the frame handlers, opens the push channel, loads both
// stores and starts the fallback pollers. It returns without waiting for
// the initial load; the stores report Loading until it completes.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return ErrStopped
	}
	if c.running {
		c.mu.Unlock()
		return ErrAlreadyRunning
	}
	c.running = true
	c.ctx, c.cancel = context.WithCancel(ctx)
	runCtx := c.ctx
	c.wg.Add(3)
	c.mu.Unlock()

	logging.Info().
		Str("push_url", c.channel.URL()).
		Dur("inventory_poll", c.cfg.InventoryPollInterval).
		Dur("alert_poll", c.cfg.AlertPollInterval).
		Msg("Starting reconciliation controller")

	c.router.OnBinUpdate(c.handleBinUpdate)
	c.router.OnAlert(c.handleAlert)

	c.channel.Connect()

	go func() {
		defer c.wg.Done()
		if err := c.refreshAll(runCtx, TriggerInitial); err != nil {
			logging.Warn().Err(err).Msg("Initial load failed (pollers will retry)")
		}
	}()
	go c.pollLoop(runCtx, "inventory", c.cfg.InventoryPollInterval, c.pollInventory)
	go c.pollLoop(runCtx, "alerts", c.cfg.AlertPollInterval, c.pollAlerts)

	return nil
}

// Stop tears everything down once: the channel, pollers, in-flight resyncs,
// the highlight timer and in-flight summary refreshes. When it returns no
// timer or goroutine of the controller mutates state any more. Stop before
// Start is allowed; later calls are no-ops.
func (c *Controller) Stop() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.stopped = true
	c.running = false
	cancel := c.cancel
	c.mu.Unlock()

	logging.Info().Msg("Stopping reconciliation controller")

	// Dispose waits for the read loop, so no handler runs after this.
	c.channel.Dispose()

	if cancel != nil {
		cancel()
	}
	close(c.stopChan)
	c.wg.Wait()

	c.highlighter.Stop()
	c.inventory.Close()

	logging.Info().Msg("Reconciliation controller stopped")
}

func (c *Controller) handleBinUpdate(e router.BinUpdateEvent) {
	c.inventory.ApplyUpdate(e.Bin)
	c.highlighter.Trigger(e.Bin.BinID)
	c.notifier.BroadcastBinUpdate(e.Bin)
}

func (c *Controller) handleAlert(e router.AlertEvent) {
	if c.alerts.Prepend(e.Alert) {
		c.notifier.BroadcastAlert(e.Alert)
	}
}

// onConnect runs on the channel's read goroutine, so the resync is handed
// off to keep frames flowing.
func (c *Controller) onConnect() {
	c.notifier.BroadcastConnectionState(channel.StateConnected.String(), true)
	c.spawnResync(TriggerConnect)
}

func (c *Controller) onDisconnect() {
	c.notifier.BroadcastConnectionState(channel.StateDisconnected.String(), false)
}

// spawnResync refreshes both stores in a tracked goroutine unless the
// controller is stopping.
func (c *Controller) spawnResync(trigger string) {
	c.mu.Lock()
	if c.stopped || c.ctx == nil {
		c.mu.Unlock()
		return
	}
	ctx := c.ctx
	c.wg.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.wg.Done()
		if err := c.refreshAll(ctx, trigger); err != nil {
			logging.Warn().Err(err).Str("trigger", trigger).Msg("Resync failed")
		}
	}()
}

// refreshAll runs one full refresh of each store concurrently.
func (c *Controller) refreshAll(ctx context.Context, trigger string) error {
	ctx = logging.ContextWithNewCorrelationID(ctx)
	metrics.RecordResync(trigger)
	logging.Ctx(ctx).Debug().Str("trigger", trigger).Msg("Resync started")

	var g errgroup.Group
	g.Go(func() error { return c.inventory.Refresh(ctx) })
	g.Go(func() error { return c.alerts.Refresh(ctx) })
	return g.Wait()
}

// pollLoop calls poll every interval until ctx is canceled or Stop.
func (c *Controller) pollLoop(ctx context.Context, name string, interval time.Duration, poll func(context.Context)) {
	defer c.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.stopChan:
			return
		case <-ticker.C:
			pctx := logging.ContextWithNewCorrelationID(ctx)
			logging.Ctx(pctx).Debug().Str("poller", name).Msg("Poll tick")
			poll(pctx)
		}
	}
}

func (c *Controller) pollInventory(ctx context.Context) {
	metrics.RecordResync(TriggerPoll)
	_ = c.inventory.Refresh(ctx)
}

func (c *Controller) pollAlerts(ctx context.Context) {
	metrics.RecordResync(TriggerPoll)
	_ = c.alerts.Refresh(ctx)
	if n := c.alerts.CleanupTombstones(); n > 0 {
		logging.Ctx(ctx).Debug().Int("expired", n).Msg("Dropped expired acknowledgement records")
	}
}

func (c *Controller) onInventoryChange(store.Change) {
	c.notifier.BroadcastInventoryRefreshed(c.inventory.Len(), c.inventory.Summary())
}

func (c *Controller) onAlertsChange(store.Change) {
	c.notifier.BroadcastAlertsChanged(c.alerts.Len())
}

// checkNotStopped returns ErrStopped once Stop has run. Backend writes are
// refused from then on.
func (c *Controller) checkNotStopped() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return ErrStopped
	}
	return nil
}

// Acknowledge acknowledges one active alert. See store.AlertStore.Acknowledge.
func (c *Controller) Acknowledge(ctx context.Context, id int64) error {
	if err := c.checkNotStopped(); err != nil {
		return err
	}
	return c.alerts.Acknowledge(ctx, id)
}

// AcknowledgeAll acknowledges every active alert.
func (c *Controller) AcknowledgeAll(ctx context.Context) error {
	if err := c.checkNotStopped(); err != nil {
		return err
	}
	return c.alerts.AcknowledgeAll(ctx)
}

// UpdateBinConfig forwards a bin configuration change and, once the backend
// accepts it, refreshes both stores so thresholds and statuses agree.
func (c *Controller) UpdateBinConfig(ctx context.Context, binID string, update *models.BinConfigUpdate) (*models.BinConfiguration, error) {
	if err := c.checkNotStopped(); err != nil {
		return nil, err
	}
	cfg, err := c.backend.UpdateBinConfig(ctx, binID, update)
	if err != nil {
		return nil, err
	}
	c.spawnResync(TriggerBinConfig)
	return cfg, nil
}

// UpdateAlertConfig forwards an alert threshold change.
func (c *Controller) UpdateAlertConfig(ctx context.Context, binID, alertType string, update *models.AlertConfigUpdate) (*models.ActionResult, error) {
	if err := c.checkNotStopped(); err != nil {
		return nil, err
	}
	res, err := c.backend.UpdateAlertConfiguration(ctx, binID, alertType, update)
	if err != nil {
		return nil, err
	}
	c.spawnResync(TriggerAlertConfig)
	return res, nil
}

// Reconnect forces the push channel to drop and re-dial.
func (c *Controller) Reconnect() {
	c.channel.Reconnect()
}

// DismissErrors clears the retained fetch errors of both stores.
func (c *Controller) DismissErrors() {
	c.inventory.DismissError()
	c.alerts.DismissError()
}

// ConnectionState returns the push channel state.
func (c *Controller) ConnectionState() channel.State {
	return c.channel.State()
}

// IsConnected reports whether the push channel is open.
func (c *Controller) IsConnected() bool {
	return c.channel.IsConnected()
}

// Bins returns the inventory in display order.
func (c *Controller) Bins() []models.Bin {
	return c.inventory.Bins()
}

// Bin returns one bin and whether the store holds it.
func (c *Controller) Bin(binID string) (models.Bin, bool) {
	return c.inventory.Bin(binID)
}

// Summary returns the last fetched summary, nil before the first load.
func (c *Controller) Summary() *models.InventorySummary {
	return c.inventory.Summary()
}

// Alerts returns the active alerts, newest first.
func (c *Controller) Alerts() []models.Alert {
	return c.alerts.Alerts()
}

// Highlighted returns the recently updated bin id, or "".
func (c *Controller) Highlighted() string {
	return c.highlighter.Current()
}

type nopNotifier struct{}

func (nopNotifier) BroadcastBinUpdate(models.Bin) {}
func (nopNotifier) BroadcastAlert(models.Alert) {}
func (nopNotifier) BroadcastAlertsChanged(int) {}
func (nopNotifier) BroadcastInventoryRefreshed(int, *models.InventorySummary) {}
func (nopNotifier) BroadcastHighlight(string) {}
func (nopNotifier) BroadcastConnectionState(string, bool) {}
