package ws

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"

	"github.com/comanda-pos/api/internal/enum"
	"github.com/comanda-pos/api/internal/notify"
)

// Event represents a WebSocket message to be broadcast
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

const EventNotification = "notification.created"

// roleEvent routes an event to one role room, optionally to one user in it.
type roleEvent struct {
	Role  enum.Role
	User  string
	Event Event
}

// Observer is told when clients join or leave a room.
type Observer interface {
	ClientConnected(role string)
	ClientDisconnected(role string)
}

// Hub maintains the set of active clients and pushes notifications to them
type Hub struct {
	// Registered clients by role
	rooms map[enum.Role]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan *roleEvent
	done       chan struct{}

	// Mutex for thread-safe room access
	mu sync.RWMutex

	observer Observer
	logger   *slog.Logger
}

func NewHub(observer Observer, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Hub{
		rooms:      make(map[enum.Role]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *roleEvent, 256),
		done:       make(chan struct{}),
		observer:   observer,
		logger:     logger,
	}
}

// Run processes registrations and broadcasts until ctx is cancelled.
// Call it in its own goroutine.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			close(h.done)
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.rooms[client.role] == nil {
				h.rooms[client.role] = make(map[*Client]bool)
			}
			h.rooms[client.role][client] = true
			h.mu.Unlock()
			h.observe(client.role, true)

		case client := <-h.unregister:
			h.mu.Lock()
			removed := h.removeLocked(client)
			h.mu.Unlock()
			if removed {
				h.observe(client.role, false)
			}

		case ev := <-h.broadcast:
			message, err := json.Marshal(ev.Event)
			if err != nil {
				h.logger.Error("marshal ws event", "error", err)
				continue
			}

			var dropped []*Client
			h.mu.Lock()
			for client := range h.rooms[ev.Role] {
				if ev.User != "" && client.user != ev.User {
					continue
				}
				select {
				case client.send <- message:
				default:
					// Client's send buffer is full, close and unregister
					h.removeLocked(client)
					dropped = append(dropped, client)
				}
			}
			h.mu.Unlock()
			for _, c := range dropped {
				h.logger.Warn("dropping slow ws client", "role", c.role, "user", c.user)
				h.observe(c.role, false)
			}
		}
	}
}

// removeLocked deletes client from its room and closes its send channel.
func (h *Hub) removeLocked(client *Client) bool {
	clients, ok := h.rooms[client.role]
	if !ok || !clients[client] {
		return false
	}
	delete(clients, client)
	close(client.send)
	// Clean up empty rooms
	if len(clients) == 0 {
		delete(h.rooms, client.role)
	}
	return true
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for role, clients := range h.rooms {
		for client := range clients {
			close(client.send)
			h.observe(role, false)
		}
		delete(h.rooms, role)
	}
}

func (h *Hub) observe(role enum.Role, joined bool) {
	if h.observer == nil {
		return
	}
	if joined {
		h.observer.ClientConnected(string(role))
	} else {
		h.observer.ClientDisconnected(string(role))
	}
}

// BroadcastToRole sends an event to every client in role's room, or only to
// user's connections when user is not empty.
func (h *Hub) BroadcastToRole(role enum.Role, user string, event Event) {
	select {
	case h.broadcast <- &roleEvent{Role: role, User: user, Event: event}:
	case <-h.done:
	}
}

func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// PublishNotification is a notify.Listener pushing each notification to its
// target room.
func (h *Hub) PublishNotification(n notify.Notification) {
	payload, err := json.Marshal(n)
	if err != nil {
		h.logger.Error("marshal notification", "id", n.ID, "error", err)
		return
	}
	h.BroadcastToRole(n.ToRole, n.ToUser, Event{Type: EventNotification, Payload: payload})
}
