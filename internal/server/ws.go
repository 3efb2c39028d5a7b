package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/mudra/internal/clock"
	"github.com/ayusman/mudra/internal/event"
)

// ClientBuffer is the number of queued messages per event stream client.
// Events published while a client's queue is full are dropped for that
// client.
const ClientBuffer = 64

const writeWait = 2 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// EventsHandler streams bus events to WebSocket clients as JSON envelopes.
// An optional "types" query parameter restricts the stream to a
// comma-separated list of event kinds.
type EventsHandler struct {
	bus    *event.Bus
	clock  clock.Clock
	logger *slog.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
}

type client struct {
	conn  *websocket.Conn
	send  chan []byte
	kinds map[event.Kind]bool
	once  sync.Once
	done  chan struct{}
}

func (c *client) stop() {
	c.once.Do(func() { close(c.done) })
}

// accepts reports whether the client asked for events of kind k.
func (c *client) accepts(k event.Kind) bool {
	return len(c.kinds) == 0 || c.kinds[k]
}

// NewEventsHandler creates an EventsHandler publishing from bus.
func NewEventsHandler(bus *event.Bus, clk clock.Clock, logger *slog.Logger) *EventsHandler {
	if clk == nil {
		clk = clock.Real{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &EventsHandler{
		bus:     bus,
		clock:   clk,
		logger:  logger,
		clients: make(map[*client]struct{}),
	}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	closed := h.closed
	h.mu.Unlock()
	if closed {
		http.Error(w, "Server shutting down", http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &client{
		conn:  conn,
		send:  make(chan []byte, ClientBuffer),
		kinds: parseKinds(r.URL.Query().Get("types")),
		done:  make(chan struct{}),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	unsubscribe := h.bus.Subscribe(func(e event.Event) { h.deliver(c, e) })
	h.logger.Debug("event client connected", "remote", r.RemoteAddr)

	go h.writeLoop(c)

	// Reads only detect disconnects; clients have nothing to send.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				c.stop()
				return
			}
		}
	}()

	<-c.done
	unsubscribe()

	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()

	conn.Close()
	h.logger.Debug("event client disconnected", "remote", r.RemoteAddr)
}

// deliver queues e for c without blocking the publisher.
func (h *EventsHandler) deliver(c *client, e event.Event) {
	if !c.accepts(e.Kind()) {
		return
	}
	msg, err := json.Marshal(event.Wrap(e, h.clock.Now()))
	if err != nil {
		h.logger.Warn("failed to encode event", "kind", e.Kind(), "error", err)
		return
	}
	select {
	case c.send <- msg:
	default:
		h.logger.Debug("event client queue full, dropping event", "kind", e.Kind())
	}
}

func (h *EventsHandler) writeLoop(c *client) {
	for {
		select {
		case <-c.done:
			c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.stop()
				return
			}
		}
	}
}

// Clients returns the number of connected clients.
func (h *EventsHandler) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects all clients and rejects new ones.
func (h *EventsHandler) Close() {
	h.mu.Lock()
	h.closed = true
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.stop()
	}
}

func parseKinds(raw string) map[event.Kind]bool {
	if raw == "" {
		return nil
	}
	kinds := make(map[event.Kind]bool)
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(strings.ToLower(k)); k != "" {
			kinds[event.Kind(k)] = true
		}
	}
	return kinds
}
