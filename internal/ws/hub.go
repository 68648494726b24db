// Package ws streams verification session events to the kiosk UI.
package ws

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"

	"github.com/veridesk/facegate/internal/verify"
)

type Hub struct {
	clients    map[*Client]bool
	sessions   map[uuid.UUID]map[*Client]bool
	broadcast  chan verify.Event
	register   chan *Client
	unregister chan *Client
	mu         sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		sessions:   make(map[uuid.UUID]map[*Client]bool),
		broadcast:  make(chan verify.Event, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case event := <-h.broadcast:
			h.deliver(event)
		}
	}
}

// Publish queues a session event for delivery. Non-blocking; events are
// dropped when the queue is full rather than stalling the pipeline.
func (h *Hub) Publish(event verify.Event) {
	select {
	case h.broadcast <- event:
	default:
	}
}

// Notifier adapts the hub to the session event callback.
func (h *Hub) Notifier() verify.Notifier {
	return h.Publish
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = true

	if h.sessions[client.sessionID] == nil {
		h.sessions[client.sessionID] = make(map[*Client]bool)
	}
	h.sessions[client.sessionID][client] = true
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropClient(client)
}

// dropClient removes a client from both maps. Caller holds mu.
func (h *Hub) dropClient(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	delete(h.sessions[client.sessionID], client)
	if len(h.sessions[client.sessionID]) == 0 {
		delete(h.sessions, client.sessionID)
	}
	close(client.send)
}

// deliver sends an event to clients watching that session and to firehose
// clients subscribed with the nil session ID.
func (h *Hub) deliver(event verify.Event) {
	message, err := json.Marshal(event)
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.send(h.sessions[event.SessionID], message)
	if event.SessionID != uuid.Nil {
		h.send(h.sessions[uuid.Nil], message)
	}
}

// send pushes message to each client, dropping clients whose buffers are
// full. Caller holds mu.
func (h *Hub) send(clients map[*Client]bool, message []byte) {
	for client := range clients {
		select {
		case client.send <- message:
		default:
			h.dropClient(client)
		}
	}
}

// ConnectedClients returns how many clients watch the given session.
func (h *Hub) ConnectedClients(sessionID uuid.UUID) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions[sessionID])
}
