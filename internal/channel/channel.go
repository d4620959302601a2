// binwatch - Smart Bin Inventory Live-State Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/binwatch

/*
Package channel implements the push connection to the inventory backend.

A Channel owns exactly one gorilla/websocket connection at a time. It dials,
reads frames, sends the keepalive ping and re-dials on a fixed interval after
every close, until Dispose is called.

Lifecycle:

	DISCONNECTED --Connect--> CONNECTING --dial ok--> CONNECTED
	     ^                        |                       |
	     +------ dial failed -----+<------- close --------+
	                  (reconnect timer re-runs Connect)

	any state --Dispose--> DISPOSED (absorbing)

Every callback and timer body checks the liveness flag first, so once Dispose
returns nothing fires again and no dial is attempted.
*/
package channel

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/binwatch/internal/config"
	"github.com/tomtom215/binwatch/internal/logging"
	"github.com/tomtom215/binwatch/internal/metrics"
	"github.com/tomtom215/binwatch/internal/models"
)

// ErrNotConnected is returned by Send when no connection is open.
var ErrNotConnected = errors.New("push channel not connected")

// State is the connection state of a Channel.
type State int32

const (
	StateDisconnected State = metrics.ChannelStateDisconnected
	StateConnecting   State = metrics.ChannelStateConnecting
	StateConnected    State = metrics.ChannelStateConnected
	StateDisposed     State = metrics.ChannelStateDisposed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateConnecting:
		return "CONNECTING"
	case StateConnected:
		return "CONNECTED"
	case StateDisposed:
		return "DISPOSED"
	default:
		return "UNKNOWN"
	}
}

// Handlers are the Channel's callbacks. All are optional.
//
// OnConnect and OnMessage run on the connection's read goroutine, so frames
// are delivered in arrival order and never before OnConnect returns.
type Handlers struct {
	OnConnect    func()
	OnDisconnect func()
	OnMessage    func(data []byte)
}

// Channel is a reconnecting push connection.
type Channel struct {
	url      string
	cfg      config.ChannelConfig
	dialer   *websocket.Dialer
	handlers Handlers

	// Liveness flag checked at the top of every asynchronous body.
	alive atomic.Bool

	// ctx is canceled by Dispose and aborts an in-flight dial.
	ctx    context.Context
	cancel context.CancelFunc

	mu             sync.Mutex
	state          State
	conn           *websocket.Conn
	stopKeepalive  chan struct{}
	reconnectTimer *time.Timer

	// gorilla allows one concurrent writer
	writeMu sync.Mutex

	wg sync.WaitGroup
}

// New creates a Channel for url. Nothing is dialed until Connect.
func New(url string, cfg config.ChannelConfig, handlers Handlers) *Channel {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Channel{
		url: url,
		cfg: cfg,
		dialer: &websocket.Dialer{
			Proxy:             http.ProxyFromEnvironment,
			HandshakeTimeout:  cfg.HandshakeTimeout,
			EnableCompression: true,
		},
		handlers: handlers,
		ctx:      ctx,
		cancel:   cancel,
		state:    StateDisconnected,
	}
	c.alive.Store(true)
	metrics.ChannelState.Set(float64(StateDisconnected))
	return c
}

// URL returns the push endpoint.
func (c *Channel) URL() string {
	return c.url
}

// State returns the current connection state.
func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsConnected reports whether a connection is open.
func (c *Channel) IsConnected() bool {
	return c.State() == StateConnected
}

// Connect starts a dial unless one is already open or in progress, or the
// channel is disposed. It returns immediately; OnConnect reports success.
func (c *Channel) Connect() {
	if !c.alive.Load() {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateDisconnected {
		return
	}
	if c.reconnectTimer != nil {
		c.reconnectTimer.Stop()
		c.reconnectTimer = nil
	}
	c.setStateLocked(StateConnecting)

	c.wg.Add(1)
	go c.run()
}

// run dials and, on success, becomes the connection's read loop.
func (c *Channel) run() {
	defer c.wg.Done()

	logging.Debug().Str("url", c.url).Msg("[binwatch-ws] Connecting")

	conn, resp, err := c.dialer.DialContext(c.ctx, c.url, nil)
	if resp != nil && resp.Body != nil {
		if cerr := resp.Body.Close(); cerr != nil {
			logging.Debug().Err(cerr).Msg("[binwatch-ws] Failed to close handshake response body")
		}
	}

	if !c.alive.Load() {
		if conn != nil {
			_ = conn.Close()
		}
		return
	}

	if err != nil {
		if resp != nil {
			err = fmt.Errorf("websocket dial failed (status %d): %w", resp.StatusCode, err)
		} else {
			err = fmt.Errorf("websocket dial failed: %w", err)
		}
		metrics.WSErrors.WithLabelValues("dial").Inc()

		c.mu.Lock()
		if c.state == StateDisposed {
			c.mu.Unlock()
			return
		}
		c.setStateLocked(StateDisconnected)
		c.scheduleReconnectLocked()
		c.mu.Unlock()

		logging.Warn().Err(err).Dur("retry_in", c.cfg.ReconnectInterval).Msg("[binwatch-ws] Connect failed")
		return
	}

	c.mu.Lock()
	if c.state == StateDisposed {
		c.mu.Unlock()
		_ = conn.Close()
		return
	}
	stop := make(chan struct{})
	c.conn = conn
	c.stopKeepalive = stop
	c.setStateLocked(StateConnected)
	c.wg.Add(1)
	go c.keepalive(conn, stop)
	c.mu.Unlock()

	metrics.ChannelConnects.Inc()
	logging.Info().Str("url", c.url).Msg("[binwatch-ws] Connected")

	if c.alive.Load() && c.handlers.OnConnect != nil {
		c.handlers.OnConnect()
	}

	c.listen(conn)
}

// listen reads frames until the connection fails or is closed.
func (c *Channel) listen(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.handleClose(conn, err)
			return
		}
		if !c.alive.Load() {
			return
		}
		if c.handlers.OnMessage != nil {
			c.handlers.OnMessage(data)
		}
	}
}

// handleClose tears down conn after a read failure and schedules the
// re-dial. Closes caused by Dispose produce no callback.
func (c *Channel) handleClose(conn *websocket.Conn, readErr error) {
	c.mu.Lock()
	if c.conn != conn {
		c.mu.Unlock()
		return
	}
	c.conn = nil
	if c.stopKeepalive != nil {
		close(c.stopKeepalive)
		c.stopKeepalive = nil
	}
	if c.state == StateDisposed {
		c.mu.Unlock()
		return
	}
	c.setStateLocked(StateDisconnected)
	c.scheduleReconnectLocked()
	c.mu.Unlock()

	_ = conn.Close()

	if websocket.IsCloseError(readErr, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		logging.Info().Msg("[binwatch-ws] Connection closed by backend")
	} else {
		metrics.WSErrors.WithLabelValues("read").Inc()
		logging.Warn().Err(readErr).Msg("[binwatch-ws] Connection lost")
	}

	if c.alive.Load() && c.handlers.OnDisconnect != nil {
		c.handlers.OnDisconnect()
	}
}

// scheduleReconnectLocked arms the fixed-interval re-dial. c.mu must be held.
func (c *Channel) scheduleReconnectLocked() {
	if c.reconnectTimer != nil {
		c.reconnectTimer.Stop()
	}
	c.reconnectTimer = time.AfterFunc(c.cfg.ReconnectInterval, func() {
		if !c.alive.Load() {
			return
		}
		c.mu.Lock()
		c.reconnectTimer = nil
		c.mu.Unlock()
		c.Connect()
	})
	metrics.ChannelReconnectsScheduled.Inc()
}

// keepalive writes a ping frame on every tick while conn is open. Nothing
// tracks the answer.
func (c *Channel) keepalive(conn *websocket.Conn, stop <-chan struct{}) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.cfg.KeepaliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			if !c.alive.Load() {
				return
			}
			if err := c.write(conn, models.PingFrame); err != nil {
				metrics.WSErrors.WithLabelValues("keepalive").Inc()
				logging.Warn().Err(err).Msg("[binwatch-ws] Keepalive failed")
			}
		}
	}
}

// Send writes one text frame on the open connection.
func (c *Channel) Send(data []byte) error {
	c.mu.Lock()
	conn := c.conn
	connected := c.state == StateConnected
	c.mu.Unlock()

	if !connected || conn == nil {
		return ErrNotConnected
	}
	if err := c.write(conn, data); err != nil {
		metrics.WSErrors.WithLabelValues("write").Inc()
		return fmt.Errorf("push channel send: %w", err)
	}
	return nil
}

func (c *Channel) write(conn *websocket.Conn, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.cfg.WriteTimeout > 0 {
		if err := conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout)); err != nil {
			return err
		}
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return err
	}
	metrics.WSMessagesSent.Inc()
	return nil
}

// Reconnect drops the current connection. The close path then schedules the
// usual re-dial. With no connection open it cancels any pending timer and
// dials immediately.
func (c *Channel) Reconnect() {
	if !c.alive.Load() {
		return
	}

	c.mu.Lock()
	if c.reconnectTimer != nil {
		c.reconnectTimer.Stop()
		c.reconnectTimer = nil
	}
	conn := c.conn
	state := c.state
	c.mu.Unlock()

	if conn != nil {
		logging.Info().Msg("[binwatch-ws] Forcing reconnect")
		_ = conn.Close()
		return
	}
	if state == StateDisconnected {
		c.Connect()
	}
}

// Dispose stops the keepalive, cancels any pending reconnect and in-flight
// dial, closes the connection and waits for the channel's goroutines. It is
// idempotent; the channel cannot be reused. It must not be called from a
// Handlers callback.
func (c *Channel) Dispose() {
	if !c.alive.CompareAndSwap(true, false) {
		return
	}

	c.mu.Lock()
	c.setStateLocked(StateDisposed)
	if c.reconnectTimer != nil {
		c.reconnectTimer.Stop()
		c.reconnectTimer = nil
	}
	if c.stopKeepalive != nil {
		close(c.stopKeepalive)
		c.stopKeepalive = nil
	}
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	c.cancel()

	if conn != nil {
		if err := conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		); err != nil {
			logging.Debug().Err(err).Msg("[binwatch-ws] Failed to send close message")
		}
		if err := conn.Close(); err != nil {
			logging.Debug().Err(err).Msg("[binwatch-ws] Failed to close connection")
		}
	}

	c.wg.Wait()
	logging.Info().Msg("[binwatch-ws] Channel disposed")
}

func (c *Channel) setStateLocked(s State) {
	c.state = s
	metrics.ChannelState.Set(float64(s))
}
