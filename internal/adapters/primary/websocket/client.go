package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/bedic/places-backend/internal/core/domain"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096

	// Outbound buffer per connection.
	sendBufferSize = 256
)

// Client is a middleman between the websocket connection and the hub.
// Identity and role are taken from the validated token at handshake and
// never change for the connection's lifetime.
type Client struct {
	hub    *Hub
	router *Router

	// The websocket connection. Nil in tests that only exercise routing.
	conn *websocket.Conn

	// Buffered channel of outbound events.
	Send chan domain.Event

	// ConnID uniquely identifies this connection.
	ConnID uuid.UUID

	// UserID is the authenticated owner of this connection.
	UserID uuid.UUID

	// Role is the authorization tag assigned at handshake.
	Role domain.Role

	// sendMu serializes enqueue against CloseSend so a broadcast holding a
	// stale member snapshot can never send on the closed channel.
	sendMu sync.Mutex
	closed bool

	// logger for this client
	logger *slog.Logger
}

// NewClient creates a new WebSocket client
func NewClient(hub *Hub, router *Router, conn *websocket.Conn, userID uuid.UUID, role domain.Role, logger *slog.Logger) *Client {
	connID := uuid.New()
	return &Client{
		hub:    hub,
		router: router,
		conn:   conn,
		Send:   make(chan domain.Event, sendBufferSize),
		ConnID: connID,
		UserID: userID,
		Role:   role,
		logger: logger.With("conn_id", connID.String(), "user_id", userID.String()),
	}
}

// IdentityGroup returns the name of this client's identity group.
func (c *Client) IdentityGroup() string {
	return domain.IdentityGroup(c.UserID.String())
}

// RoleGroup returns the name of this client's role group.
func (c *Client) RoleGroup() string {
	return domain.RoleGroup(c.Role)
}

// CloseSend closes the Send channel exactly once. Further enqueues become
// no-ops.
func (c *Client) CloseSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.Send)
}

// enqueue queues an event for delivery. Events are dropped when the client
// is already unregistered or its buffer is full.
func (c *Client) enqueue(event domain.Event) {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if c.closed {
		return
	}

	select {
	case c.Send <- event:
	default:
		c.logger.Warn("send buffer full, dropping event",
			"event_kind", event.Kind,
		)
	}
}

// ReadPump pumps messages from the websocket connection to the router.
// This method runs in its own goroutine.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error("failed to set read deadline", "error", err)
		return
	}

	c.conn.SetPongHandler(func(string) error {
		if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			c.logger.Error("failed to set read deadline in pong handler", "error", err)
		}
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.logger.Warn("websocket read error", "error", err)
			}
			break
		}

		c.handleIncomingMessage(message)
	}
}

// WritePump pumps messages from the hub to the websocket connection.
// This method runs in its own goroutine.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.Send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error("failed to set write deadline", "error", err)
				return
			}

			if !ok {
				// The hub closed the channel. Send close message.
				if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					c.logger.Debug("failed to send close message", "error", err)
				}
				return
			}

			if err := c.writeJSON(event); err != nil {
				c.logger.Error("failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error("failed to set write deadline for ping", "error", err)
				return
			}

			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Debug("failed to send ping", "error", err)
				return
			}
		}
	}
}

// writeJSON writes a JSON message to the websocket connection
func (c *Client) writeJSON(event domain.Event) error {
	w, err := c.conn.NextWriter(websocket.TextMessage)
	if err != nil {
		return err
	}

	if err := json.NewEncoder(w).Encode(event); err != nil {
		_ = w.Close()
		return err
	}

	return w.Close()
}

// --- Incoming Message Handling ---

// ClientMessage is the structure for messages sent from the client.
type ClientMessage struct {
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// handleIncomingMessage decodes a client frame and hands it to the router.
// Unknown kinds and malformed payloads produce a rejection event back to
// this connection only; nothing is broadcast.
func (c *Client) handleIncomingMessage(message []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		c.logger.Warn("failed to unmarshal client message", "error", err)
		c.router.rejectUnknown(c, "")
		return
	}

	if msg.Kind == string(domain.EventPing) {
		// Client-side keep-alive, respond with pong
		c.enqueue(domain.NewEvent(domain.EventPong, nil))
		return
	}

	kind, ok := domain.ParseEventKind(msg.Kind)
	if !ok {
		c.logger.Debug("received unknown event kind", "kind", msg.Kind)
		c.router.rejectUnknown(c, msg.Kind)
		return
	}

	c.router.DispatchFrom(c, kind, msg.Payload)
}
