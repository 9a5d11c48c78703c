package realtime

import (
	"context"
	"time"

	"chatwire/internal/common/logger"
	"chatwire/internal/observability/metrics"
)

// Pusher is the narrow surface the message write path needs: best-effort
// directed delivery, no acknowledgment, no retry.
type Pusher interface {
	Push(receiverID string, eventType EventType, data any) bool
}

type Config struct {
	WriteWait   time.Duration
	PongWait    time.Duration
	PingPeriod  time.Duration
	MaxMsgSize  int64
	SendBufSize int
}

// Hub owns the worker's Registry and serializes connect/disconnect events
// through its run loop, so presence broadcasts go out in the order the
// triggering events were processed. The Registry is scoped to this process:
// a receiver connected to a sibling worker is invisible here and a push to
// it is dropped.
type Hub struct {
	registry   *Registry
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	cfg        Config
	log        *logger.Logger
}

func NewHub(log *logger.Logger, registry *Registry, cfg Config) *Hub {
	return &Hub{
		registry:   registry,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		cfg:        cfg,
		log:        log,
	}
}

// Register and Unregister must not block once the run loop has stopped:
// shutdown closes every send channel, which ends the read pumps, and each
// of those calls Unregister on its way out.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		client.closeSend()
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case client := <-h.register:
			h.handleRegister(client)

		case client := <-h.unregister:
			h.handleUnregister(client)
		}
	}
}

func (h *Hub) handleRegister(client *Client) {
	prev, evicted := h.registry.Bind(client)
	if evicted {
		// One live connection per user: close the replaced socket before the
		// new binding takes effect anywhere else.
		h.log.WithFields(nil, logger.Fields{
			"user_id": prev.userID,
			"action":  "ws_evict_existing",
		}).Info("websocket closing existing connection")
		prev.closeSend()
		metrics.WebSocketEvictionsTotal.Inc()
	} else {
		metrics.WebSocketConnectionsActive.Inc()
	}

	h.log.WithFields(nil, logger.Fields{
		"user_id": client.userID,
		"total":   h.registry.Len(),
		"action":  "ws_register",
	}).Info("websocket client registered")

	h.broadcastOnlineUsers()
}

func (h *Hub) handleUnregister(client *Client) {
	if !h.registry.Unbind(client) {
		// Already evicted by a reconnect; the replacement binding stands and
		// presence did not change.
		client.closeSend()
		return
	}

	client.closeSend()
	metrics.WebSocketConnectionsActive.Dec()

	h.log.WithFields(nil, logger.Fields{
		"user_id": client.userID,
		"total":   h.registry.Len(),
		"action":  "ws_unregister",
	}).Info("websocket client unregistered")

	h.broadcastOnlineUsers()
}

// broadcastOnlineUsers sends the full online-user snapshot to every
// connected client. No diffing: the payload always reflects the Registry at
// the moment of the triggering event.
func (h *Hub) broadcastOnlineUsers() {
	ids := h.registry.UserIDs()

	message, err := marshalEvent(EventOnlineUsers, ids)
	if err != nil {
		h.log.Errorf("failed to marshal onlineUsers event: %v", err)
		return
	}

	for _, client := range h.registry.Clients() {
		if !client.enqueue(message) {
			h.log.WithFields(nil, logger.Fields{
				"user_id": client.userID,
				"action":  "ws_broadcast_dropped",
			}).Warn("websocket broadcast dropped: send buffer full")
		}
	}

	metrics.WebSocketPresenceBroadcastsTotal.Inc()
}

// Push emits an event to the receiver's connection if one is bound on this
// worker, and silently drops otherwise. Absence here does not mean the user
// is offline: they may be connected to a sibling worker.
func (h *Hub) Push(receiverID string, eventType EventType, data any) bool {
	client, ok := h.registry.Lookup(receiverID)
	if !ok {
		metrics.WebSocketPushesTotal.WithLabelValues("dropped_offline").Inc()
		return false
	}

	message, err := marshalEvent(eventType, data)
	if err != nil {
		h.log.Errorf("failed to marshal %s event: %v", eventType, err)
		metrics.WebSocketPushesTotal.WithLabelValues("marshal_failed").Inc()
		return false
	}

	if !client.enqueue(message) {
		metrics.WebSocketPushesTotal.WithLabelValues("dropped_backpressure").Inc()
		return false
	}

	metrics.WebSocketPushesTotal.WithLabelValues("delivered").Inc()
	return true
}

func (h *Hub) IsUserOnline(userID string) bool {
	_, ok := h.registry.Lookup(userID)
	return ok
}

func (h *Hub) shutdown() {
	close(h.done)

	clients := h.registry.Clients()
	for _, client := range clients {
		h.registry.Unbind(client)
		client.closeSend()
	}

	h.log.WithFields(nil, logger.Fields{
		"clients": len(clients),
		"action":  "ws_hub_shutdown",
	}).Info("websocket hub shutdown completed")
}
