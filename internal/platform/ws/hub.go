// Package ws streams run frames and outcomes to browser clients as JSON
// over websockets.
package ws

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/logic-reflect/internal/puzzle"
	"github.com/vovakirdan/logic-reflect/internal/run"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	// Messages queued for the hub loop before new ones are dropped.
	broadcastBuffer = 256
)

// Message types.
const (
	TypeLevel  = "level"
	TypeFrame  = "frame"
	TypeResult = "result"
)

// LevelInfo is the static board a client draws frames on.
type LevelInfo struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Layout      []string            `json:"layout"`
	Teleporters []puzzle.Teleporter `json:"teleporters,omitempty"`
	ForceTiles  []puzzle.ForceTile  `json:"forceTiles,omitempty"`
	Tools       []puzzle.PlacedTool `json:"tools,omitempty"`
}

// Message is one websocket text frame.
type Message struct {
	Type   string      `json:"type"`
	Level  *LevelInfo  `json:"level,omitempty"`
	Frame  *run.Frame  `json:"frame,omitempty"`
	Result *run.Result `json:"result,omitempty"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client is one connected websocket peer.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

type envelope struct {
	kind string
	data []byte
}

// Hub fans run events out to every connected client. It implements
// run.Sink; Snapshot and Outcome never block.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan envelope
	register   chan *Client
	unregister chan *Client
	logger     *log.Logger

	// Closed when Run returns
	done chan struct{}
	// Client read and write goroutines
	pumps sync.WaitGroup

	// Closed when the first client registers
	connected chan struct{}
	anyClient bool

	// Replayed to clients that connect mid-run
	lastLevel []byte
	lastFrame []byte
}

var _ run.Sink = (*Hub)(nil)

// NewHub creates a hub. Call Run before serving clients.
func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan envelope, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger,
		connected:  make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// WaitForClient blocks until a client has connected or ctx is done.
func (h *Hub) WaitForClient(ctx context.Context) error {
	select {
	case <-h.connected:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run starts the hub's event loop and blocks until ctx is done. Run must
// be called at most once.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				h.unregisterClient(client)
			}
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case env := <-h.broadcast:
			switch env.kind {
			case TypeLevel:
				h.lastLevel = env.data
				h.lastFrame = nil
			case TypeFrame:
				h.lastFrame = env.data
			}
			h.broadcastMessage(env.data)
		}
	}
}

// ServeHTTP upgrades the request and attaches the peer to the hub.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, broadcastBuffer),
	}

	select {
	case h.register <- client:
	case <-r.Context().Done():
		conn.Close()
		return
	case <-h.done:
		conn.Close()
		return
	}

	h.pumps.Add(2)
	go client.writePump()
	go client.readPump()
}

// SetLevel announces the board of the run that follows.
func (h *Hub) SetLevel(level *puzzle.Level, tools []puzzle.PlacedTool) {
	h.publish(Message{Type: TypeLevel, Level: &LevelInfo{
		ID:          level.ID,
		Name:        level.Name,
		Layout:      level.Layout(),
		Teleporters: level.Teleporters,
		ForceTiles:  level.ForceTiles,
		Tools:       tools,
	}})
}

// Snapshot broadcasts a frame.
func (h *Hub) Snapshot(f run.Frame) {
	h.publish(Message{Type: TypeFrame, Frame: &f})
}

// Outcome broadcasts a terminal result.
func (h *Hub) Outcome(r run.Result) {
	h.publish(Message{Type: TypeResult, Result: &r})
}

func (h *Hub) publish(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to marshal websocket message", "type", msg.Type, "error", err)
		return
	}
	select {
	case h.broadcast <- envelope{kind: msg.Type, data: data}:
	default:
		h.logger.Warn("websocket broadcast queue full, dropping message", "type", msg.Type)
	}
}

func (h *Hub) registerClient(client *Client) {
	h.clients[client] = true
	if !h.anyClient {
		h.anyClient = true
		close(h.connected)
	}
	for _, data := range [][]byte{h.lastLevel, h.lastFrame} {
		if data != nil {
			client.send <- data
		}
	}
	h.logger.Debug("client registered", "remote", client.conn.RemoteAddr().String(), "clients", len(h.clients))
}

func (h *Hub) unregisterClient(client *Client) {
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
		h.logger.Debug("client unregistered", "clients", len(h.clients))
	}
}

func (h *Hub) broadcastMessage(data []byte) {
	for client := range h.clients {
		select {
		case client.send <- data:
		default:
			// Client's send channel is full, drop it
			h.unregisterClient(client)
		}
	}
}

// readPump only watches for the peer going away. Clients never send
// commands.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
		c.hub.pumps.Done()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("websocket error", "error", err)
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		c.hub.pumps.Done()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
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
