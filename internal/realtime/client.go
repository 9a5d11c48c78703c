package realtime

import (
	"sync"
	"time"

	gorillaWS "github.com/gorilla/websocket"

	"chatwire/internal/common/logger"
)

type Client struct {
	hub       *Hub
	conn      *gorillaWS.Conn
	userID    string
	send      chan []byte
	log       *logger.Logger
	closeOnce sync.Once
}

func NewClient(hub *Hub, conn *gorillaWS.Conn, userID string, log *logger.Logger) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, hub.cfg.SendBufSize),
		log:    log,
	}
}

func (c *Client) UserID() string {
	return c.userID
}

func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}

// enqueue hands a frame to the write pump without blocking. A full buffer
// drops the frame for this client only: delivery is best-effort.
func (c *Client) enqueue(message []byte) bool {
	defer func() {
		// Losing the race with closeSend is a normal disconnect, not an error.
		recover()
	}()

	select {
	case c.send <- message:
		return true
	default:
		return false
	}
}

func (c *Client) closeSend() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}

// readPump discards inbound frames; clients only receive. It exists to keep
// read deadlines fresh via pongs and to detect disconnect.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(c.hub.cfg.PongWait))
	c.conn.SetReadLimit(c.hub.cfg.MaxMsgSize)
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.hub.cfg.PongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if gorillaWS.IsUnexpectedCloseError(err, gorillaWS.CloseGoingAway, gorillaWS.CloseAbnormalClosure) {
				c.log.Warnf("websocket read error user_id=%s: %v", c.userID, err)
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(c.hub.cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.hub.cfg.WriteWait))
			if !ok {
				c.conn.WriteMessage(gorillaWS.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(gorillaWS.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.hub.cfg.WriteWait))
			if err := c.conn.WriteMessage(gorillaWS.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
