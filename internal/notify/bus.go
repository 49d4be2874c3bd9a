// Package notify routes floor notifications between roles.
//
// The Bus is an append-only log addressed by role and, optionally, by user.
// Notifications are never removed; reading one only records the reader.
package notify

import (
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/comanda-pos/api/internal/enum"
	"github.com/google/uuid"
)

var ErrNotFound = errors.New("notification not found")

// Notification is a message addressed to every user of ToRole, or only to
// ToUser when it is set.
type Notification struct {
	ID          uuid.UUID             `json:"id"`
	Type        enum.NotificationType `json:"type"`
	Title       string                `json:"title"`
	Message     string                `json:"message"`
	Priority    enum.Priority         `json:"priority"`
	FromRole    enum.Role             `json:"from_role"`
	FromUser    string                `json:"from_user"`
	ToRole      enum.Role             `json:"to_role"`
	ToUser      string                `json:"to_user,omitempty"`
	TableNumber string                `json:"table_number,omitempty"`
	OrderID     string                `json:"order_id,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
	ReadBy      []string              `json:"read_by"`
}

// VisibleTo reports whether the notification is addressed to user acting as role.
func (n Notification) VisibleTo(role enum.Role, user string) bool {
	return n.ToRole == role && (n.ToUser == "" || n.ToUser == user)
}

// ReadByUser reports whether user has marked the notification read.
func (n Notification) ReadByUser(user string) bool {
	for _, u := range n.ReadBy {
		if u == user {
			return true
		}
	}
	return false
}

// Listener is called after each publish, outside the bus lock.
type Listener func(Notification)

type record struct {
	n      Notification
	readBy map[string]struct{}
}

func (r *record) snapshot() Notification {
	n := r.n
	n.ReadBy = make([]string, 0, len(r.readBy))
	for u := range r.readBy {
		n.ReadBy = append(n.ReadBy, u)
	}
	sort.Strings(n.ReadBy)
	return n
}

func (r *record) visibleTo(role enum.Role, user string) bool {
	return r.n.VisibleTo(role, user)
}

func (r *record) unreadBy(user string) bool {
	_, ok := r.readBy[user]
	return !ok
}

// Bus holds every notification published since process start.
type Bus struct {
	mu        sync.RWMutex
	log       []*record // insertion order
	byID      map[uuid.UUID]*record
	listeners []Listener
	now       func() time.Time
	logger    *slog.Logger
}

// NewBus creates an empty bus. now defaults to time.Now.
func NewBus(now func() time.Time, logger *slog.Logger) *Bus {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Bus{
		byID:   make(map[uuid.UUID]*record),
		now:    now,
		logger: logger,
	}
}

// Subscribe registers l for every subsequent publish.
func (b *Bus) Subscribe(l Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, l)
}

// Publish stores n and returns the stored copy. Missing ID, CreatedAt and
// Priority are filled in. Roles are not validated here.
func (b *Bus) Publish(n Notification) Notification {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = b.now()
	}
	if n.Priority == "" {
		n.Priority = enum.PriorityNormal
	}

	rec := &record{n: n, readBy: make(map[string]struct{})}
	for _, u := range n.ReadBy {
		rec.readBy[u] = struct{}{}
	}

	b.mu.Lock()
	b.log = append(b.log, rec)
	b.byID[n.ID] = rec
	stored := rec.snapshot()
	listeners := make([]Listener, len(b.listeners))
	copy(listeners, b.listeners)
	b.mu.Unlock()

	b.logger.Debug("notification published",
		"id", stored.ID,
		"type", stored.Type,
		"to_role", stored.ToRole,
		"to_user", stored.ToUser,
	)

	for _, l := range listeners {
		l(stored)
	}
	return stored
}

// UnreadCountFor counts notifications visible to (role, user) that user has not read.
func (b *Bus) UnreadCountFor(role enum.Role, user string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	count := 0
	for _, rec := range b.log {
		if rec.visibleTo(role, user) && rec.unreadBy(user) {
			count++
		}
	}
	return count
}

// MarkRead records user as a reader of the notification. It reports whether
// the call changed anything; repeating it is a no-op.
func (b *Bus) MarkRead(id uuid.UUID, user string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	rec, ok := b.byID[id]
	if !ok {
		return false, ErrNotFound
	}
	if !rec.unreadBy(user) {
		return false, nil
	}
	rec.readBy[user] = struct{}{}
	return true, nil
}

// MarkAllRead marks every notification visible to (role, user) as read and
// returns how many were newly marked.
func (b *Bus) MarkAllRead(role enum.Role, user string) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	changed := 0
	for _, rec := range b.log {
		if rec.visibleTo(role, user) && rec.unreadBy(user) {
			rec.readBy[user] = struct{}{}
			changed++
		}
	}
	return changed
}

// ListFor returns the notifications visible to (role, user), newest first.
func (b *Bus) ListFor(role enum.Role, user string, unreadOnly bool) []Notification {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := []Notification{}
	for i := len(b.log) - 1; i >= 0; i-- {
		rec := b.log[i]
		if !rec.visibleTo(role, user) {
			continue
		}
		if unreadOnly && !rec.unreadBy(user) {
			continue
		}
		out = append(out, rec.snapshot())
	}
	return out
}

// All returns the whole log, newest first.
func (b *Bus) All() []Notification {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]Notification, 0, len(b.log))
	for i := len(b.log) - 1; i >= 0; i-- {
		out = append(out, b.log[i].snapshot())
	}
	return out
}

func (b *Bus) Get(id uuid.UUID) (Notification, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	rec, ok := b.byID[id]
	if !ok {
		return Notification{}, ErrNotFound
	}
	return rec.snapshot(), nil
}

func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.log)
}

// Close drops all listeners. The log itself stays readable.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = nil
}
