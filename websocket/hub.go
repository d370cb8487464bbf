package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

const sendBuffer = 32

// Conn is the subset of *websocket.Conn the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

type Client struct {
	UserID uuid.UUID
	conn   Conn
	send   chan []byte

	mu     sync.Mutex
	closed bool
}

func NewClient(userID uuid.UUID, conn Conn) *Client {
	return &Client{UserID: userID, conn: conn, send: make(chan []byte, sendBuffer)}
}

// WritePump forwards queued frames to the socket until the hub closes the
// client's queue or a write fails.
func (c *Client) WritePump() {
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			log.Printf("Error sending message to client %s: %v", c.UserID, err)
			c.conn.Close()
			return
		}
	}
}

// Send queues an event on this socket only, e.g. an error for a bad frame.
func (c *Client) Send(eventType string, data interface{}) bool {
	payload, err := encodeEvent(eventType, data)
	if err != nil {
		return false
	}
	return c.enqueue(payload)
}

func (c *Client) enqueue(payload []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func encodeEvent(eventType string, data interface{}) ([]byte, error) {
	payload, err := json.Marshal(Event{Type: eventType, Data: data})
	if err != nil {
		log.Printf("🔥 Failed to encode %s event: %v", eventType, err)
	}
	return payload, err
}

// Event is the envelope for every server-to-client frame.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Hub owns the user id -> sockets map. A user may have several sockets open
// (tabs, devices); they count as online while at least one is registered.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu      sync.RWMutex
	clients map[uuid.UUID]map[*Client]struct{}

	shared    PresenceStore
	heartbeat time.Duration
}

type HubOption func(*Hub)

// WithSharedPresence mirrors local presence into a store visible to other
// instances and refreshes it every heartbeat.
func WithSharedPresence(store PresenceStore, heartbeat time.Duration) HubOption {
	return func(h *Hub) {
		h.shared = store
		h.heartbeat = heartbeat
	}
}

func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[uuid.UUID]map[*Client]struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register returns false once the hub has stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) Run(ctx context.Context) {
	var tick <-chan time.Time
	if h.shared != nil && h.heartbeat > 0 {
		ticker := time.NewTicker(h.heartbeat)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.closeAll()
			return
		case client := <-h.register:
			log.Printf("Client registered: %s", client.UserID)
			h.add(ctx, client)
		case client := <-h.unregister:
			log.Printf("Client unregistered: %s", client.UserID)
			h.remove(ctx, client)
		case <-tick:
			h.refreshShared(ctx)
		}
	}
}

func (h *Hub) add(ctx context.Context, c *Client) {
	h.mu.Lock()
	set, ok := h.clients[c.UserID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.UserID] = set
	}
	set[c] = struct{}{}
	first := len(set) == 1
	h.mu.Unlock()

	if first && h.shared != nil {
		if err := h.shared.MarkOnline(ctx, c.UserID); err != nil {
			log.Printf("🔥 Failed to publish presence for %s: %v", c.UserID, err)
		}
	}
}

func (h *Hub) remove(ctx context.Context, c *Client) {
	h.mu.Lock()
	set, ok := h.clients[c.UserID]
	if !ok {
		h.mu.Unlock()
		return
	}
	if _, ok := set[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(set, c)
	c.close()
	last := len(set) == 0
	if last {
		delete(h.clients, c.UserID)
	}
	h.mu.Unlock()

	if last && h.shared != nil {
		if err := h.shared.MarkOffline(ctx, c.UserID); err != nil {
			log.Printf("🔥 Failed to clear presence for %s: %v", c.UserID, err)
		}
	}
}

func (h *Hub) refreshShared(ctx context.Context) {
	h.mu.RLock()
	ids := make([]uuid.UUID, 0, len(h.clients))
	for id := range h.clients {
		ids = append(ids, id)
	}
	h.mu.RUnlock()

	for _, id := range ids {
		if err := h.shared.MarkOnline(ctx, id); err != nil {
			log.Printf("🔥 Failed to refresh presence for %s: %v", id, err)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, set := range h.clients {
		for c := range set {
			c.close()
		}
		delete(h.clients, id)
	}
}

// IsOnline checks local sockets first, then the shared store if one is set.
func (h *Hub) IsOnline(ctx context.Context, userID uuid.UUID) bool {
	h.mu.RLock()
	_, local := h.clients[userID]
	h.mu.RUnlock()
	if local || h.shared == nil {
		return local
	}

	online, err := h.shared.IsOnline(ctx, userID)
	if err != nil {
		log.Printf("🔥 Failed to read presence for %s: %v", userID, err)
		return false
	}
	return online
}

// SendToUser queues an event on every socket of userID. Slow sockets drop
// frames instead of blocking the sender.
func (h *Hub) SendToUser(userID uuid.UUID, eventType string, data interface{}) {
	payload, err := encodeEvent(eventType, data)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[userID] {
		if !c.enqueue(payload) {
			log.Printf("Dropping %s event for slow client %s", eventType, userID)
		}
	}
}
