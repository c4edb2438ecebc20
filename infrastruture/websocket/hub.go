package websocket

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/beka-birhanu/vinom-evolve/service/i"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	sendBuffer = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1 << 16,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// client is a middleman between the websocket connection and the hub.
type client struct {
	hub  *Hub
	conn *websocket.Conn

	// Buffered channel of outbound frames.
	send chan []byte
}

// readPump drains the connection so close frames are noticed. Viewers
// never send anything meaningful.
func (c *client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warning(fmt.Sprintf("viewer %s: %v", c.conn.RemoteAddr(), err))
			}
			return
		}
	}
}

// writePump is the only writer of the connection.
func (c *client) writePump() {
	defer c.conn.Close()
	for message := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			c.hub.logger.Warning(fmt.Sprintf("write to viewer %s failed, closing: %v", c.conn.RemoteAddr(), err))
			return
		}
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// Hub maintains the connected viewers and fans frames out to them.
type Hub struct {
	clients    map[*client]bool
	broadcast  chan []byte
	register   chan *client
	unregister chan *client
	done       chan struct{}
	count      atomic.Int64
	logger     i.Logger
}

// NewHub creates a Hub. Run must be started before viewers connect.
func NewHub(logger i.Logger) *Hub {
	return &Hub{
		broadcast:  make(chan []byte, 8),
		register:   make(chan *client),
		unregister: make(chan *client),
		clients:    make(map[*client]bool),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

var _ i.Broadcaster = (*Hub)(nil)

// Broadcast queues a frame for every viewer. The frame is dropped when the
// hub is behind.
func (h *Hub) Broadcast(message []byte) {
	select {
	case h.broadcast <- message:
	default:
	}
}

// Clients returns the number of connected viewers.
func (h *Hub) Clients() int {
	return int(h.count.Load())
}

// Run is the hub's message loop. It disconnects every viewer when ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			for c := range h.clients {
				h.remove(c)
			}
			return
		case c := <-h.register:
			h.clients[c] = true
			h.count.Add(1)
			h.logger.Info(fmt.Sprintf("viewer %s connected", c.conn.RemoteAddr()))
		case c := <-h.unregister:
			h.remove(c)
		case message := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- message:
				default:
					// A slow viewer skips frames instead of stalling the others.
				}
			}
		}
	}
}

func (h *Hub) remove(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	h.count.Add(-1)
	h.logger.Info(fmt.Sprintf("viewer %s disconnected", c.conn.RemoteAddr()))
}

// ServeWS upgrades the request to a websocket and registers the viewer.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error(fmt.Sprintf("websocket upgrade: %v", err))
		return
	}
	c := &client{hub: h, conn: conn, send: make(chan []byte, sendBuffer)}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}
