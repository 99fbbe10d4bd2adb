package api

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/nerrad567/devmodel/internal/infrastructure/logging"
	"github.com/nerrad567/devmodel/internal/qdev"
)

// Event channels are named after the lifecycle event type.
const (
	EventChannelPrefix = "device."
	AllEventsChannel   = EventChannelPrefix + "*"

	// clientBufferSize is the number of outbound messages queued per client
	// before events for it are dropped.
	clientBufferSize = 256
)

// eventChannels holds every channel a client may subscribe to.
var eventChannels = func() map[string]bool {
	m := map[string]bool{AllEventsChannel: true}
	for _, t := range []qdev.EventType{
		qdev.EventCreated,
		qdev.EventInitialized,
		qdev.EventInitFailed,
		qdev.EventUnplugged,
		qdev.EventFreed,
		qdev.EventReset,
		qdev.EventMachineReady,
	} {
		m[channelFor(t)] = true
	}
	return m
}()

func channelFor(t qdev.EventType) string { return EventChannelPrefix + string(t) }

// Hub fans device tree lifecycle events out to WebSocket clients. It is a
// qdev.Observer; attach it with Model.AddObserver.
//
// The hub owns each client's send channel: it is closed only under the write
// lock, and every send happens under the read lock after a membership check.
type Hub struct {
	logger  *logging.Logger
	mu      sync.RWMutex
	clients map[*wsClient]struct{}
}

// NewHub creates an empty hub.
func NewHub(logger *logging.Logger) *Hub {
	return &Hub{
		logger:  logger,
		clients: make(map[*wsClient]struct{}),
	}
}

// Run blocks until ctx is cancelled, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
}

func (h *Hub) add(c *wsClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug("websocket client connected", "subject", c.subject, "clients", n)
}

// remove drops c and closes its send channel. Removing twice is harmless.
func (h *Hub) remove(c *wsClient) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()
	if ok {
		h.logger.Debug("websocket client disconnected", "subject", c.subject, "clients", n)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// DeviceEvent implements qdev.Observer. The event is encoded once and queued
// for every client subscribed to its channel or to AllEventsChannel.
func (h *Hub) DeviceEvent(ev qdev.Event) {
	channel := channelFor(ev.Type)
	data, err := json.Marshal(serverMessage{Type: msgEvent, Channel: channel, Event: &ev})
	if err != nil {
		h.logger.Error("encoding device event failed", "event", ev.Type, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if c.wants(channel) {
			h.enqueue(c, data)
		}
	}
}

// reply queues a direct answer to c if it is still connected.
func (h *Hub) reply(c *wsClient, msg serverMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("encoding websocket reply failed", "error", err)
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[c]; ok {
		h.enqueue(c, data)
	}
}

// enqueue must be called with h.mu held.
func (h *Hub) enqueue(c *wsClient, data []byte) {
	select {
	case c.send <- data:
	default:
		h.logger.Warn("websocket client too slow, message dropped", "subject", c.subject)
	}
}
