package ws

import (
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/pairpad/coordinator/internal/models"
)

// Hub tracks live connections and per-room subscription groups for this
// process. Room state itself lives in the shared store; the hub only knows
// which sockets are attached here and which rooms they listen to.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	groups  map[string]map[string]struct{} // roomID -> set of connection ids
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		groups:  make(map[string]map[string]struct{}),
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.ID] = c
}

// unregister drops the client and removes it from every group.
func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c.ID)
	for roomID, group := range h.groups {
		delete(group, c.ID)
		if len(group) == 0 {
			delete(h.groups, roomID)
		}
	}
}

// Subscribe attaches a connection to a room group.
func (h *Hub) Subscribe(connectionID, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	group, ok := h.groups[roomID]
	if !ok {
		group = make(map[string]struct{})
		h.groups[roomID] = group
	}
	group[connectionID] = struct{}{}
}

// Unsubscribe detaches a connection from a room group.
func (h *Hub) Unsubscribe(connectionID, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	group, ok := h.groups[roomID]
	if !ok {
		return
	}
	delete(group, connectionID)
	if len(group) == 0 {
		delete(h.groups, roomID)
	}
}

// SendToConnection delivers a message to a single connection. Unknown
// connection ids are dropped silently; the peer may be on another coordinator
// instance or already gone.
func (h *Hub) SendToConnection(connectionID string, msg models.ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		logrus.WithError(err).Error("Failed to marshal message")
		return
	}

	h.mu.RLock()
	client, ok := h.clients[connectionID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	client.enqueue(data)
}

// SendToRoom delivers a message to every connection subscribed to the room.
func (h *Hub) SendToRoom(roomID string, msg models.ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		logrus.WithError(err).Error("Failed to marshal message")
		return
	}

	h.mu.RLock()
	var targets []*Client
	for connectionID := range h.groups[roomID] {
		if client, ok := h.clients[connectionID]; ok {
			targets = append(targets, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range targets {
		client.enqueue(data)
	}
}
