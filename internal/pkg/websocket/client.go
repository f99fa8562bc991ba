package websocket

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxAckSize     = 4 * 1024
	sendBufferSize = 256
)

// Origins are enforced by the CORS middleware and the JWT check before the upgrade.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Client is one open connection of a user. The hub owns send and closes it
// when the client is removed.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID int64
	logger zerolog.Logger
}

func newClient(hub *Hub, conn *websocket.Conn, userID int64, logger zerolog.Logger) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		userID: userID,
		logger: logger.With().Int64("userID", userID).Logger(),
	}
}

func (c *Client) remoteAddr() string {
	if c.conn == nil {
		return ""
	}
	return c.conn.RemoteAddr().String()
}

// readAcks reads read-acknowledgements until the connection drops, then
// unregisters the client. Anything but a well-formed ack is ignored.
func (c *Client) readAcks() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxAckSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var ack Message
		if err := c.conn.ReadJSON(&ack); err != nil {
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			switch {
			case errors.As(err, &syntaxErr), errors.As(err, &typeErr):
				c.logger.Warn().Err(err).Msg("Ignoring malformed client message")
				continue
			case websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure):
				c.logger.Warn().Err(err).Msg("Unexpected WebSocket close")
			default:
				c.logger.Debug().Err(err).Msg("WebSocket closed")
			}
			return
		}
		if ack.Type != MessageTypeRead {
			continue
		}

		// The connection's user, never the payload's
		ack.UserID = c.userID
		ack.Timestamp = time.Now()
		c.hub.notifyMessageListeners(&ack)
	}
}

// writeLoop sends queued frames and keeps the connection alive with pings
func (c *Client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.logger.Debug().Err(err).Msg("WebSocket write failed")
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
