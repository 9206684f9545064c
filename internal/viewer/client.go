package viewer

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
)

// MessageHandler handles one decoded server message. raw is the full JSON
// message for typed decoding.
type MessageHandler func(raw []byte) error

// Client connects to a viewer server and dispatches server messages to
// handlers registered per message type.
type Client struct {
	conn     *websocket.Conn
	mu       sync.Mutex
	handlers map[string]MessageHandler

	connected bool
	session   string
}

// NewClient creates a disconnected client.
func NewClient() *Client {
	return &Client{
		handlers: make(map[string]MessageHandler),
	}
}

// Connect dials a ws:// URL and waits for the hello message.
func (c *Client) Connect(ctx context.Context, url string) (HelloMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		return HelloMessage{}, fmt.Errorf("already connected")
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return HelloMessage{}, fmt.Errorf("connecting to %s: %w", url, err)
	}

	var hello HelloMessage
	if err := conn.ReadJSON(&hello); err != nil {
		conn.Close()
		return HelloMessage{}, fmt.Errorf("reading hello: %w", err)
	}
	if hello.Type != TypeHello || hello.ProtocolVersion != ProtocolVersion {
		conn.Close()
		return HelloMessage{}, fmt.Errorf("unexpected hello: type %q, protocol %d", hello.Type, hello.ProtocolVersion)
	}

	c.conn = conn
	c.connected = true
	c.session = hello.Session
	return hello, nil
}

// Disconnect closes the connection.
func (c *Client) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		_ = c.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
		c.conn.Close()
		c.conn = nil
	}
	c.connected = false
}

// IsConnected returns connection status.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Session returns the id the server assigned in its hello.
func (c *Client) Session() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// RegisterHandler registers a handler for a server message type.
// Register before calling Run.
func (c *Client) RegisterHandler(msgType string, handler MessageHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[msgType] = handler
}

// Send sends a client message.
func (c *Client) Send(msg ClientMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return fmt.Errorf("not connected")
	}
	return c.conn.WriteJSON(msg)
}

// SetCamera moves the session camera.
func (c *Client) SetCamera(x, y, z float64) error {
	return c.Send(ClientMessage{Type: TypeCamera, Position: &[3]float64{x, y, z}})
}

// Run reads server messages and dispatches them until ctx ends, the
// connection drops, or a handler returns an error.
func (c *Client) Run(ctx context.Context) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return fmt.Errorf("not connected")
	}

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		var env struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(raw, &env); err != nil {
			return fmt.Errorf("decoding server message: %w", err)
		}

		c.mu.Lock()
		h := c.handlers[env.Type]
		c.mu.Unlock()
		if h == nil {
			continue
		}
		if err := h(raw); err != nil {
			return err
		}
	}
}
