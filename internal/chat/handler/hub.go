package handler

import (
	"log/slog"
	"sync"

	"skillnest/internal/chat/models"
)

// Hub owns the broadcast audiences: every connection, each user's
// connections, and the members of each conversation room. A connection is
// in at most one room.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	users   map[string]map[string]*Client
	rooms   map[string]map[string]*Client
	log     *slog.Logger
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		users:   make(map[string]map[string]*Client),
		rooms:   make(map[string]map[string]*Client),
		log:     log.With("component", "hub"),
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[c.ConnID] = c
	addMember(h.users, c.UserID, c)
	c.registered = true
}

// Unregister removes c from every audience and closes its send queue.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !c.registered {
		return
	}
	c.registered = false
	delete(h.clients, c.ConnID)
	removeMember(h.users, c.UserID, c)
	if c.room != "" {
		removeMember(h.rooms, c.room, c)
		c.room = ""
	}
	close(c.send)
}

// Join moves c into conversationID's room and returns the room it left.
func (h *Hub) Join(c *Client, conversationID string) (previous string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !c.registered {
		return ""
	}
	previous = c.room
	if previous == conversationID {
		return previous
	}
	if previous != "" {
		removeMember(h.rooms, previous, c)
	}
	addMember(h.rooms, conversationID, c)
	c.room = conversationID
	return previous
}

// Room is the conversation c last joined, "" if none.
func (h *Hub) Room(c *Client) string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return c.room
}

func (h *Hub) RoomSize(conversationID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[conversationID])
}

func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Send queues frame for one connection.
func (h *Hub) Send(c *Client, frame []byte) bool {
	h.mu.RLock()
	ok := h.enqueue(c, frame)
	h.mu.RUnlock()

	if !ok {
		h.evict([]*Client{c})
	}
	return ok
}

// Broadcast queues frame for every connection.
func (h *Hub) Broadcast(frame []byte) {
	h.mu.RLock()
	slow := h.fanOut(h.clients, frame, nil)
	h.mu.RUnlock()
	h.evict(slow)
}

// BroadcastRoom queues frame for the room's members, skipping except.
func (h *Hub) BroadcastRoom(conversationID string, frame []byte, except *Client) {
	h.mu.RLock()
	slow := h.fanOut(h.rooms[conversationID], frame, except)
	h.mu.RUnlock()
	h.evict(slow)
}

// SendToUser queues frame for every connection of userID.
func (h *Hub) SendToUser(userID string, frame []byte) {
	h.mu.RLock()
	slow := h.fanOut(h.users[userID], frame, nil)
	h.mu.RUnlock()
	h.evict(slow)
}

// CloseAll drops every connection, e.g. on shutdown. The gateway unregisters
// each one as its read loop exits.
func (h *Hub) CloseAll() {
	h.mu.RLock()
	all := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		all = append(all, c)
	}
	h.mu.RUnlock()

	for _, c := range all {
		c.Close()
	}
}

// OnPresenceChange announces a user's online/offline transition to everyone.
func (h *Hub) OnPresenceChange(userID string, online bool) {
	frame, err := models.EncodeFrame(models.EventPresenceUpdate, models.PresenceUpdate{UserID: userID, Online: online})
	if err != nil {
		h.log.Error("encode presence update", "user_id", userID, "error", err)
		return
	}
	h.Broadcast(frame)
}

func (h *Hub) fanOut(audience map[string]*Client, frame []byte, except *Client) []*Client {
	var slow []*Client
	for _, c := range audience {
		if c == except {
			continue
		}
		if !h.enqueue(c, frame) {
			slow = append(slow, c)
		}
	}
	return slow
}

// enqueue must run with h.mu held. A full queue reports false.
func (h *Hub) enqueue(c *Client, frame []byte) bool {
	if !c.registered {
		return true
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

func (h *Hub) evict(slow []*Client) {
	for _, c := range slow {
		h.log.Warn("closing slow connection", "conn_id", c.ConnID, "user_id", c.UserID)
		c.Close()
	}
}

func addMember(index map[string]map[string]*Client, key string, c *Client) {
	members, ok := index[key]
	if !ok {
		members = make(map[string]*Client)
		index[key] = members
	}
	members[c.ConnID] = c
}

func removeMember(index map[string]map[string]*Client, key string, c *Client) {
	members, ok := index[key]
	if !ok {
		return
	}
	delete(members, c.ConnID)
	if len(members) == 0 {
		delete(index, key)
	}
}
