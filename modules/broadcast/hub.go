package broadcast

import (
	"context"
	"encoding/json"
	"slices"
	"sync"

	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/contrib/websocket"

	"github.com/example/realtime-chat-engine/modules/chat"
)

// DefaultSendBuffer is the number of frames queued per client before new
// frames are dropped.
const DefaultSendBuffer = 64

// Conn is the write side of a WebSocket connection.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// client is one registered connection. Only its writePump writes to conn.
type client struct {
	id   string
	conn Conn
	send chan []byte
	done chan struct{}
}

// Hub owns the outbound side of every connection: room topics and a
// buffered writer per client. Publish snapshots the subscribers of a room at
// call time and never blocks; a client whose buffer is full misses the frame.
type Hub struct {
	clients    map[string]*client         // clientID -> client
	rooms      map[string]map[string]bool // room -> set of clientIDs
	sendBuffer int
	logger     types.Logger
	done       chan struct{}
	mu         sync.RWMutex
}

var _ chat.Transport = (*Hub)(nil)

// NewHub creates a new Hub.
func NewHub(sendBuffer int, logger types.Logger) *Hub {
	if sendBuffer <= 0 {
		sendBuffer = DefaultSendBuffer
	}
	return &Hub{
		clients:    make(map[string]*client),
		rooms:      make(map[string]map[string]bool),
		sendBuffer: sendBuffer,
		logger:     logger,
		done:       make(chan struct{}),
	}
}

// Run blocks until ctx is cancelled, then closes every connection so their
// read loops end and unregister.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()
	h.logger.Info("Hub shutting down", "clients", h.ClientCount())
	h.closeAllClients()
	close(h.done)
}

// Wait blocks until the hub has stopped.
func (h *Hub) Wait() {
	<-h.done
}

func (h *Hub) closeAllClients() {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.clients {
		_ = c.conn.Close()
	}
}

// Register adds a connection and starts its writer.
func (h *Hub) Register(id string, conn Conn) {
	c := &client{
		id:   id,
		conn: conn,
		send: make(chan []byte, h.sendBuffer),
		done: make(chan struct{}),
	}

	h.mu.Lock()
	h.clients[id] = c
	h.mu.Unlock()

	go h.writePump(c)
	h.logger.Debug("Client registered", "client", id)
}

// Unregister removes a connection from every room, flushes its queue and
// waits for its writer to exit.
func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	c, ok := h.clients[id]
	if !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, id)
	for room, members := range h.rooms {
		delete(members, id)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	close(c.send)
	h.mu.Unlock()

	<-c.done
	h.logger.Debug("Client unregistered", "client", id)
}

func (h *Hub) writePump(c *client) {
	defer close(c.done)

	for data := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.logger.Error("Failed to send to client", "client", c.id, "error", err)
			// Keep consuming so a dead client stops filling its buffer.
			for range c.send {
			}
			return
		}
	}
}

// Subscribe adds a registered client to a room topic.
func (h *Hub) Subscribe(clientID, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[clientID]; !ok {
		return
	}
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[string]bool)
	}
	h.rooms[room][clientID] = true
}

// Unsubscribe removes a client from a room topic.
func (h *Hub) Unsubscribe(clientID, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if members, ok := h.rooms[room]; ok {
		delete(members, clientID)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

// Publish sends an event to every subscriber of room except the excluded ids.
func (h *Hub) Publish(room, event string, payload any, exclude ...string) {
	data, ok := h.encode(event, payload)
	if !ok {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for clientID := range h.rooms[room] {
		if slices.Contains(exclude, clientID) {
			continue
		}
		if c, ok := h.clients[clientID]; ok {
			h.enqueue(c, event, data)
		}
	}
}

// PublishAll sends an event to every registered client.
func (h *Hub) PublishAll(event string, payload any) {
	data, ok := h.encode(event, payload)
	if !ok {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.clients {
		h.enqueue(c, event, data)
	}
}

// Send delivers an event to one client.
func (h *Hub) Send(clientID, event string, payload any) {
	data, ok := h.encode(event, payload)
	if !ok {
		return
	}
	h.deliver(clientID, event, data)
}

// SendError delivers an error frame to one client.
func (h *Hub) SendError(clientID, reason string) {
	data, err := json.Marshal(chat.Frame{Type: chat.EventError, Error: reason})
	if err != nil {
		h.logger.Error("Failed to marshal error frame", "error", err)
		return
	}
	h.deliver(clientID, chat.EventError, data)
}

func (h *Hub) deliver(clientID, event string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if c, ok := h.clients[clientID]; ok {
		h.enqueue(c, event, data)
	}
}

// enqueue must be called with h.mu held.
func (h *Hub) enqueue(c *client, event string, data []byte) {
	select {
	case c.send <- data:
	default:
		h.logger.Warn("Dropping frame for slow client", "client", c.id, "event", event)
	}
}

func (h *Hub) encode(event string, payload any) ([]byte, bool) {
	raw, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("Failed to marshal payload", "event", event, "error", err)
		return nil, false
	}
	data, err := json.Marshal(chat.Frame{Type: event, Payload: raw})
	if err != nil {
		h.logger.Error("Failed to marshal frame", "event", event, "error", err)
		return nil, false
	}
	return data, true
}

// ClientCount returns the total number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// RoomClientCount returns the number of clients subscribed to a room.
func (h *Hub) RoomClientCount(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}
