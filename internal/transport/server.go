package transport

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/hakari-tcg/hakari/internal/auth"
	"github.com/hakari-tcg/hakari/internal/data"
	"github.com/hakari-tcg/hakari/internal/task"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second

	sendBuffer = 256
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// FastPathFunc handles a time-critical frame on the read goroutine. It must
// not block.
type FastPathFunc func(c *Client, t MessageType, payload []byte)

// Client is one websocket connection.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Send queues a frame for delivery. Frames are dropped when the client's
// buffer is full, which only happens to connections that stopped reading.
func (c *Client) Send(t MessageType, payload []byte) {
	select {
	case c.send <- EncodeFrame(t, payload):
	default:
		c.hub.log.Warn("dropping frame, client buffer full", zap.Uint8("type", uint8(t)))
	}
}

// SendJSON marshals v and queues it as the payload of a t frame.
func (c *Client) SendJSON(t MessageType, v interface{}) {
	payload, err := json.Marshal(v)
	if err != nil {
		c.hub.log.Error("marshaling frame payload", zap.Error(err), zap.Uint8("type", uint8(t)))
		return
	}
	c.Send(t, payload)
}

// Hub owns the connection set and routes inbound frames: deferred types to
// the worker pool, time-critical types to the fast path.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	data     *data.Service
	authn    *auth.Authenticator
	tasks    *task.Manager
	fastPath FastPathFunc
	log      *zap.Logger
}

// NewHub builds the hub. fastPath may be nil, in which case time-critical
// frames are dropped with a debug log.
func NewHub(svc *data.Service, authn *auth.Authenticator, tasks *task.Manager, fastPath FastPathFunc, log *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		data:       svc,
		authn:      authn,
		tasks:      tasks,
		fastPath:   fastPath,
		log:        log,
	}
}

// Run processes connection lifecycle events until Stop is called. Call it
// in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			h.log.Info("client connected", zap.Int("total", total))

			client.SendJSON(TypeInitializeWorld, map[string]interface{}{
				"serverTime": time.Now().UTC(),
			})

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			total := len(h.clients)
			h.mu.Unlock()
			h.log.Info("client disconnected", zap.Int("total", total))
		}
	}
}

// Stop shuts the lifecycle loop down and releases every live client's
// send channel. Safe to call once.
func (h *Hub) Stop() {
	close(h.done)
}

// ClientCount returns the number of live connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and starts the connection pumps.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{hub: h, conn: conn, send: make(chan []byte, sendBuffer)}
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// dispatch routes one inbound frame.
func (h *Hub) dispatch(c *Client, frame []byte) {
	t, payload, err := DecodeFrame(frame)
	if err != nil {
		h.log.Debug("discarding malformed frame", zap.Error(err))
		return
	}

	if t.Deferred() {
		// Copy the payload: the read buffer is reused by the next frame.
		owned := make([]byte, len(payload))
		copy(owned, payload)
		h.tasks.Submit(&RequestTask{
			Type:    t,
			Payload: owned,
			Client:  c,
			Data:    h.data,
			Authn:   h.authn,
			Log:     h.log,
		}, task.Standard)
		return
	}

	if h.fastPath != nil {
		h.fastPath(c, t, payload)
		return
	}
	h.log.Debug("no fast path registered, dropping frame", zap.Uint8("type", uint8(t)))
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Debug("websocket read error", zap.Error(err))
			}
			break
		}
		c.hub.dispatch(c, frame)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
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
