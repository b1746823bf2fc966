package ws

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dkaymak/roomchat/internal/model"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096

	// Buffer size for outgoing messages
	sendBufferSize = 256
)

// Client is one websocket connection for an authenticated user. A client is
// bound to at most one room hub at a time.
type Client struct {
	conn        *websocket.Conn
	user        *model.User
	send        chan []byte
	done        chan struct{}
	connectedAt time.Time
	logger      *slog.Logger

	mu  sync.Mutex
	hub *Hub
}

// NewClient creates a new Client for an established connection
func NewClient(conn *websocket.Conn, user *model.User, logger *slog.Logger) *Client {
	return &Client{
		conn:        conn,
		user:        user,
		send:        make(chan []byte, sendBufferSize),
		done:        make(chan struct{}),
		connectedAt: time.Now(),
		logger:      logger.With(slog.String("user_id", string(user.ID))),
	}
}

// Hub returns the hub the client is currently bound to, or nil
func (c *Client) Hub() *Hub {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hub
}

// bind registers the client with a hub, unbinding from any previous one
func (c *Client) bind(hub *Hub) {
	c.mu.Lock()
	prev := c.hub
	c.hub = hub
	c.mu.Unlock()

	if prev != nil && prev != hub {
		prev.Unregister(c)
	}
	if hub != nil && prev != hub {
		hub.Register(c)
	}
}

// unbind detaches the client from its current hub
func (c *Client) unbind() {
	c.mu.Lock()
	prev := c.hub
	c.hub = nil
	c.mu.Unlock()

	if prev != nil {
		prev.Unregister(c)
	}
}

// sendEvent queues a server event on the client's outgoing buffer
func (c *Client) sendEvent(event ServerEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		c.logger.Error("failed to encode event", slog.Any("error", err))
		return
	}
	select {
	case c.send <- payload:
	default:
		c.logger.Warn("event dropped - client buffer full")
	}
}

// writePump pumps queued events to the websocket connection and keeps the
// connection alive with pings. One writePump goroutine per connection is the
// only writer on the connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case payload := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
