package preview

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"lautenbacher.net/fcleds/color"
	"lautenbacher.net/fcleds/driver"
)

const (
	MessageHello = "hello"
	MessageFrame = "frame"

	// sendBufferSize is the per-client outbound message buffer size.
	sendBufferSize = 16
	pingInterval   = 30 * time.Second
	pongWait       = 60 * time.Second
	writeWait      = 10 * time.Second
)

// Message is sent to websocket clients.
type Message struct {
	Type      string   `json:"type"`
	ID        string   `json:"id,omitempty"`
	Seq       uint64   `json:"seq,omitempty"`
	Timestamp string   `json:"timestamp,omitempty"`
	Leds      []string `json:"leds,omitempty"`
}

// FrameJSON is a frame with its LEDs as "#rrggbb".
type FrameJSON struct {
	Seq       uint64   `json:"seq"`
	Timestamp string   `json:"timestamp"`
	Leds      []string `json:"leds"`
}

func hexColor(c color.RGB) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func newFrameJSON(f *driver.Frame) FrameJSON {
	leds := make([]string, len(f.Leds))
	for i, led := range f.Leds {
		leds[i] = hexColor(led)
	}
	return FrameJSON{
		Seq:       f.Seq,
		Timestamp: f.Time.UTC().Format(time.RFC3339Nano),
		Leds:      leds,
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Hub broadcasts displayed frames to websocket clients. It is a
// driver.Sink.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*client
}

type client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]*client)}
}

// HandleFramesWS upgrades the request and registers the client.
func (h *Hub) HandleFramesWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Websocket upgrade failed", "error", err)
		return
	}
	c := &client{
		id:   uuid.NewString(),
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
	hello, _ := json.Marshal(Message{Type: MessageHello, ID: c.id})
	c.send <- hello
	h.register(c)

	go c.writePump()
	go c.readPump()
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()
	slog.Debug("Preview client connected", "id", c.id, "clients", h.ClientCount())
}

// unregister closes the send channel once, whoever comes first.
func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	_, existed := h.clients[c.id]
	delete(h.clients, c.id)
	h.mu.Unlock()

	if existed {
		close(c.send)
		slog.Debug("Preview client disconnected", "id", c.id, "clients", h.ClientCount())
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// DisplayFrame sends f to all clients. Clients that fall behind miss
// frames.
func (h *Hub) DisplayFrame(f *driver.Frame) {
	if h.ClientCount() == 0 {
		return
	}
	fj := newFrameJSON(f)
	data, err := json.Marshal(Message{Type: MessageFrame, Seq: fj.Seq, Timestamp: fj.Timestamp, Leds: fj.Leds})
	if err != nil {
		slog.Error("Failed to marshal frame", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		select {
		case c.send <- data:
		default:
		}
	}
}

// Close disconnects all clients.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		close(c.send)
		delete(h.clients, id)
	}
}

func (c *client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("Websocket read error", "id", c.id, "error", err)
			}
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
