package web

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/art2ascii/artview/internal/ports"
	"github.com/art2ascii/artview/pkg/log"
)

const (
	sendBuffer   = 4
	writeTimeout = 2 * time.Second
)

// client is one connected browser.
type client struct {
	conn *websocket.Conn
	send chan string
}

// Hub broadcasts frames to connected websocket clients and remembers the
// latest frame for clients that join mid-animation.
type Hub struct {
	logger log.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
	last    string
	closed  bool
}

// NewHub creates an empty Hub.
func NewHub(logger log.Logger) *Hub {
	return &Hub{
		logger:  log.OrNoop(logger),
		clients: make(map[*client]struct{}),
	}
}

// Render implements ports.DisplaySink. A client that cannot keep up is
// disconnected rather than slowing the animation.
func (h *Hub) Render(markup string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ports.ErrSinkClosed
	}
	h.last = markup
	for c := range h.clients {
		select {
		case c.send <- markup:
		default:
			h.logger.Warn("dropping slow websocket client",
				log.String("remote", c.conn.RemoteAddr().String()),
			)
			h.removeLocked(c)
		}
	}
	return nil
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Last returns the most recently rendered frame.
func (h *Hub) Last() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.last
}

// Close disconnects every client. Render returns ErrSinkClosed afterwards.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for c := range h.clients {
		h.removeLocked(c)
	}
}

// serve registers conn and pumps frames to it until it disconnects.
func (h *Hub) serve(conn *websocket.Conn) {
	c := &client{conn: conn, send: make(chan string, sendBuffer)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close()
		return
	}
	if h.last != "" {
		c.send <- h.last
	}
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	h.logger.Debug("websocket client connected", log.String("remote", conn.RemoteAddr().String()))

	go h.writePump(c)

	// The page never sends anything; reading only detects disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Debug("websocket read error", log.Err(err))
			}
			break
		}
	}

	h.mu.Lock()
	h.removeLocked(c)
	h.mu.Unlock()

	h.logger.Debug("websocket client disconnected", log.String("remote", conn.RemoteAddr().String()))
}

func (h *Hub) writePump(c *client) {
	defer c.conn.Close()

	for markup := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, []byte(markup)); err != nil {
			h.logger.Debug("websocket write failed", log.Err(err))
			return
		}
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
		time.Now().Add(writeTimeout))
}

// removeLocked unregisters c. Caller holds mu.
func (h *Hub) removeLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}
