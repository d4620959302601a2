// binwatch - Smart Bin Inventory Live-State Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/binwatch

package websocket

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tomtom215/binwatch/internal/logging"
	"github.com/tomtom215/binwatch/internal/metrics"
	"github.com/tomtom215/binwatch/internal/models"
)

// ShutdownReason identifies why the hub is shutting down.
type ShutdownReason string

const (
	// ShutdownReasonContextCanceled is the normal graceful shutdown path (SIGTERM).
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"

	// ShutdownReasonContextDeadline may indicate a hung operation during shutdown.
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// Event types relayed to local viewers.
const (
	MessageTypeBinUpdate          = models.MessageTypeBinUpdate
	MessageTypeAlert              = models.MessageTypeAlert
	MessageTypeAlertsChanged      = "alerts_changed"
	MessageTypeInventoryRefreshed = "inventory_refreshed"
	MessageTypeHighlight          = "highlight"
	MessageTypeConnectionState    = "connection_state"
	MessageTypeHeartbeat          = models.MessageTypeHeartbeat
	MessageTypePing               = models.MessageTypePing
)

// broadcastBuffer is the hub's pending broadcast queue; clientBuffer is the
// per-viewer send queue. A viewer whose queue fills is dropped.
const (
	broadcastBuffer = 256
	clientBuffer    = 64
)

// Message uses the same envelope as the backend push channel.
type Message struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp string      `json:"timestamp,omitempty"`
}

func newMessage(messageType string, payload interface{}) Message {
	return Message{
		Type:      messageType,
		Payload:   payload,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	}
}

// AlertsChangedData is sent whenever the active alert set changes.
type AlertsChangedData struct {
	ActiveCount int `json:"active_count"`
}

// InventoryRefreshedData is sent after a full inventory replace or a
// summary refresh.
type InventoryRefreshedData struct {
	TotalBins int                      `json:"total_bins"`
	Summary   *models.InventorySummary `json:"summary,omitempty"`
}

// HighlightData carries the highlighted bin, "" once cleared.
type HighlightData struct {
	BinID string `json:"bin_id"`
}

// ConnectionStateData mirrors the backend channel state.
type ConnectionStateData struct {
	State     string `json:"state"`
	Connected bool   `json:"connected"`
}

// Hub maintains the set of active viewers and broadcasts messages to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Message
	Register   chan *Client
	Unregister chan *Client
	mu         sync.RWMutex

	// done is closed when RunWithContext returns.
	done     chan struct{}
	stopOnce sync.Once
}

// NewHub creates a new Hub. It does nothing until RunWithContext is called.
func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan Message, broadcastBuffer),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		done:       make(chan struct{}),
	}
}

// RegisterClient hands client to the running hub. It returns false, without
// registering, when ctx ends first or the hub has stopped; the caller then
// owns the connection.
func (h *Hub) RegisterClient(ctx context.Context, client *Client) bool {
	select {
	case h.Register <- client:
		return true
	case <-h.done:
		return false
	case <-ctx.Done():
		return false
	}
}

// unregister removes client unless the hub has already stopped, in which
// case shutdown has closed it.
func (h *Hub) unregister(client *Client) {
	select {
	case h.Unregister <- client:
	case <-h.done:
	}
}

// Done is closed once the hub has stopped.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// RunWithContext runs the hub until ctx is canceled, then closes every
// viewer and returns ctx.Err().
//
// Selection is prioritized: shutdown first, then viewer lifecycle, then
// broadcasts, so a viewer is always registered before it can miss a
// message queued after it connected.
func (h *Hub) RunWithContext(ctx context.Context) error {
	defer h.stopOnce.Do(func() { close(h.done) })

	for {
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		default:
		}

		select {
		case client := <-h.Register:
			h.addClient(client)
			continue
		case client := <-h.Unregister:
			h.removeClient(client)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		case client := <-h.Register:
			h.addClient(client)
		case client := <-h.Unregister:
			h.removeClient(client)
		case message := <-h.broadcast:
			h.broadcastToClients(message)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	n := len(h.clients)
	h.mu.Unlock()

	metrics.WSConnections.Set(float64(n))
	logging.Info().Uint64("client_id", client.id).Int("total_clients", n).Msg("viewer connected")
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		client.closeSend()
	}
	n := len(h.clients)
	h.mu.Unlock()

	metrics.WSConnections.Set(float64(n))
	logging.Info().Uint64("client_id", client.id).Int("total_clients", n).Msg("viewer disconnected")
}

// logGracefulShutdown closes all viewers and logs why. ctx.Err() is not
// logged as an error: cancellation is the expected path.
func (h *Hub) logGracefulShutdown(ctx context.Context) {
	clientCount := h.GetClientCount()
	h.closeAllClients()

	logging.Info().
		Str("component", "websocket-hub").
		Str("reason", string(getShutdownReason(ctx))).
		Int("clients_closed", clientCount).
		Msg("websocket hub stopped")
}

func getShutdownReason(ctx context.Context) ShutdownReason {
	switch ctx.Err() {
	case context.DeadlineExceeded:
		return ShutdownReasonContextDeadline
	default:
		return ShutdownReasonContextCanceled
	}
}

// sortedClientsLocked returns viewers in connection order. h.mu must be held.
func (h *Hub) sortedClientsLocked() []*Client {
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})
	return clients
}

// broadcastToClients delivers message to every viewer in connection order.
// Viewers whose send queue is full are dropped.
func (h *Hub) broadcastToClients(message Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var toRemove []*Client
	for _, client := range h.sortedClientsLocked() {
		if !client.trySend(message) {
			toRemove = append(toRemove, client)
		}
	}

	for _, client := range toRemove {
		client.closeSend()
		delete(h.clients, client)
		metrics.WSErrors.WithLabelValues("viewer_slow").Inc()
		logging.Warn().Uint64("client_id", client.id).Msg("viewer send queue full, dropping viewer")
	}
	if len(toRemove) > 0 {
		metrics.WSConnections.Set(float64(len(h.clients)))
	}
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, client := range h.sortedClientsLocked() {
		client.closeSend()
		delete(h.clients, client)
	}
	metrics.WSConnections.Set(0)
}

// GetClientCount returns the number of connected viewers.
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// BroadcastJSON queues an arbitrary event. It never blocks; when the queue
// is full the event is dropped and logged.
func (h *Hub) BroadcastJSON(messageType string, payload interface{}) {
	select {
	case h.broadcast <- newMessage(messageType, payload):
	default:
		metrics.WSErrors.WithLabelValues("broadcast_full").Inc()
		logging.Warn().Str("message_type", messageType).Msg("broadcast channel full, dropping message")
	}
}

// BroadcastBinUpdate relays a pushed bin record.
func (h *Hub) BroadcastBinUpdate(bin models.Bin) {
	h.BroadcastJSON(MessageTypeBinUpdate, bin)
}

// BroadcastAlert relays a newly prepended alert.
func (h *Hub) BroadcastAlert(alert models.Alert) {
	h.BroadcastJSON(MessageTypeAlert, alert)
}

// BroadcastAlertsChanged relays the new active alert count.
func (h *Hub) BroadcastAlertsChanged(activeCount int) {
	h.BroadcastJSON(MessageTypeAlertsChanged, AlertsChangedData{ActiveCount: activeCount})
}

// BroadcastInventoryRefreshed relays the bin count and summary after a refresh.
func (h *Hub) BroadcastInventoryRefreshed(totalBins int, summary *models.InventorySummary) {
	h.BroadcastJSON(MessageTypeInventoryRefreshed, InventoryRefreshedData{
		TotalBins: totalBins,
		Summary:   summary,
	})
}

// BroadcastHighlight relays the highlighted bin, "" once cleared.
func (h *Hub) BroadcastHighlight(binID string) {
	h.BroadcastJSON(MessageTypeHighlight, HighlightData{BinID: binID})
}

// BroadcastConnectionState relays the backend push channel state.
func (h *Hub) BroadcastConnectionState(state string, connected bool) {
	h.BroadcastJSON(MessageTypeConnectionState, ConnectionStateData{
		State:     state,
		Connected: connected,
	})
}
