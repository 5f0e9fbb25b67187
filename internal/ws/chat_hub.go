package ws

import (
	"encoding/json"
	"sync"
)

// Client represents a single WebSocket connection with member context.
type Client struct {
	MemberID uint
	Send     chan []byte
	room     *ChatRoom
	mu       sync.Mutex
	closed   bool
}

func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.Send)
	if c.room != nil {
		c.room.Leave(c)
	}
}

// ChatRoom is one room per member pair.
type ChatRoom struct {
	RoomID  uint
	mu      sync.RWMutex
	clients map[*Client]struct{}
}

func NewChatRoom(roomID uint) *ChatRoom {
	return &ChatRoom{
		RoomID:  roomID,
		clients: make(map[*Client]struct{}),
	}
}

func (r *ChatRoom) Join(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.room = r
	r.clients[c] = struct{}{}
}

func (r *ChatRoom) Leave(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clients, c)
}

func (r *ChatRoom) ClientCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// HasMember reports whether any live connection in the room belongs to the
// member. Used to decide whether the peer needs a notification instead of an
// in-room broadcast.
func (r *ChatRoom) HasMember(memberID uint) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for c := range r.clients {
		if c.MemberID == memberID {
			return true
		}
	}
	return false
}

// Broadcast sends the payload to everyone in the room except from. Snapshot
// under the read lock, send outside it; a full Send buffer drops the message
// for that client rather than blocking the room.
func (r *ChatRoom) Broadcast(from *Client, payload interface{}) {
	data, _ := json.Marshal(payload)
	r.mu.RLock()
	clients := make([]*Client, 0, len(r.clients))
	for c := range r.clients {
		if c != from {
			clients = append(clients, c)
		}
	}
	r.mu.RUnlock()
	for _, c := range clients {
		select {
		case c.Send <- data:
		default:
		}
	}
}

// ChatHub holds all chat rooms by room ID.
type ChatHub struct {
	mu    sync.RWMutex
	rooms map[uint]*ChatRoom
}

func NewChatHub() *ChatHub {
	return &ChatHub{rooms: make(map[uint]*ChatRoom)}
}

func (h *ChatHub) GetOrCreateRoom(roomID uint) *ChatRoom {
	h.mu.Lock()
	defer h.mu.Unlock()
	if r, ok := h.rooms[roomID]; ok {
		return r
	}
	r := NewChatRoom(roomID)
	h.rooms[roomID] = r
	return r
}

func (h *ChatHub) GetRoom(roomID uint) *ChatRoom {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.rooms[roomID]
}

func (h *ChatHub) RemoveRoom(roomID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.rooms, roomID)
}
