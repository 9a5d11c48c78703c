package realtime

import (
	"net/http"

	gorillaWS "github.com/gorilla/websocket"

	"chatwire/internal/common/constants"
	commonerrors "chatwire/internal/common/errors"
	commonhttp "chatwire/internal/common/http"
	"chatwire/internal/common/logger"
)

type Handler struct {
	hub      *Hub
	log      *logger.Logger
	upgrader gorillaWS.Upgrader
}

func NewHandler(hub *Hub, log *logger.Logger) *Handler {
	return &Handler{
		hub: hub,
		log: log,
		upgrader: gorillaWS.Upgrader{
			ReadBufferSize:  constants.WebSocketReadBufferSize,
			WriteBufferSize: constants.WebSocketWriteBufferSize,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origin == "http://"+r.Host || origin == "https://"+r.Host
			},
		},
	}
}

// ServeHTTP performs the websocket handshake. The client identifies itself
// with the userId query parameter; a missing parameter is rejected before
// the upgrade so the client gets a plain HTTP error.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" || userID == "undefined" {
		commonhttp.HandleError(w, r, commonerrors.ErrUserIDRequired, h.log)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		h.log.Errorf("websocket upgrade failed for user %s: %v", userID, err)
		return
	}

	client := NewClient(h.hub, conn, userID, h.log)
	h.hub.Register(client)
	client.Start()
}
