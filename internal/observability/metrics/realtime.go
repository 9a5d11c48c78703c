package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WebSocketConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chatwire_websocket_connections_active",
			Help: "Number of active WebSocket connections on this worker",
		},
	)

	WebSocketEvictionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chatwire_websocket_evictions_total",
			Help: "Total number of connections evicted by a reconnect for the same user",
		},
	)

	WebSocketPresenceBroadcastsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chatwire_websocket_presence_broadcasts_total",
			Help: "Total number of onlineUsers broadcasts",
		},
	)

	WebSocketPushesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatwire_websocket_pushes_total",
			Help: "Total number of directed event pushes by outcome",
		},
		[]string{"outcome"},
	)

	MessagesSentTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chatwire_messages_sent_total",
			Help: "Total number of messages persisted through the write path",
		},
	)
)
