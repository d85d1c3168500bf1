package websocket

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/yigit/placementhub/internal/pkg/notify"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10

	// subscribers never send data frames
	maxMessageSize = 512
)

// Client is one notification subscriber. The hub owns send and closes it
// when the client is removed.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID int64
	role   string
	logger zerolog.Logger
}

func (c *Client) audience() notify.Audience {
	return notify.Audience{UserID: c.userID, Role: c.role}
}

func (c *Client) extendReadDeadline(string) error {
	return c.conn.SetReadDeadline(time.Now().Add(pongWait))
}

// readPump discards inbound frames; it exists to service pongs and to notice
// the peer going away.
func (c *Client) readPump() {
	defer func() {
		c.hub.remove(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.extendReadDeadline("")
	c.conn.SetPongHandler(c.extendReadDeadline)

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			log := c.logger.Debug()
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log = c.logger.Warn()
			}
			log.Err(err).Int64("userID", c.userID).Msg("Notification stream closed")
			return
		}
	}
}

// writePump sends each queued notification as its own text frame and keeps
// the connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.logger.Debug().Err(err).Int64("userID", c.userID).Msg("Notification write failed")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// NewUpgrader accepts the configured origins. Requests without an Origin
// header, an empty list, or "*" are always accepted.
func NewUpgrader(allowedOrigins []string) websocket.Upgrader {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}
	_, wildcard := allowed["*"]
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || len(allowed) == 0 || wildcard {
				return true
			}
			_, ok := allowed[origin]
			return ok
		},
	}
}
