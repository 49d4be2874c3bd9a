package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/comanda-pos/api/internal/enum"
	"github.com/comanda-pos/api/internal/notify"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// NotificationBus defines the bus methods needed by notification handlers.
// Satisfied by *notify.Bus; narrow interface for testability.
type NotificationBus interface {
	Publish(n notify.Notification) notify.Notification
	UnreadCountFor(role enum.Role, user string) int
	MarkRead(id uuid.UUID, user string) (bool, error)
	MarkAllRead(role enum.Role, user string) int
	ListFor(role enum.Role, user string, unreadOnly bool) []notify.Notification
}

// NotificationHandler handles notification endpoints.
type NotificationHandler struct {
	bus     NotificationBus
	metrics Recorder
}

func NewNotificationHandler(bus NotificationBus, metrics Recorder) *NotificationHandler {
	return &NotificationHandler{bus: bus, metrics: recorderOrNop(metrics)}
}

// RegisterRoutes registers notification endpoints on the given Chi router.
// Expected to be mounted at /notifications
func (h *NotificationHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Publish)
	r.Get("/unread-count", h.UnreadCount)
	r.Post("/read-all", h.MarkAllRead)
	r.Post("/{id}/read", h.MarkRead)
}

// --- Request / Response types ---

type publishRequest struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Message     string `json:"message"`
	Priority    string `json:"priority"`
	ToRole      string `json:"to_role"`
	ToUser      string `json:"to_user"`
	TableNumber string `json:"table_number"`
	OrderID     string `json:"order_id"`
}

type unreadCountResponse struct {
	Role   enum.Role `json:"role"`
	User   string    `json:"user"`
	Unread int       `json:"unread"`
}

// --- Handlers ---

// List handles GET /notifications?unread=true.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	role, user, ok := identity(w, r)
	if !ok {
		return
	}
	unreadOnly := r.URL.Query().Get("unread") == "true"
	writeJSON(w, http.StatusOK, h.bus.ListFor(role, user, unreadOnly))
}

// UnreadCount handles GET /notifications/unread-count.
func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	role, user, ok := identity(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, unreadCountResponse{
		Role:   role,
		User:   user,
		Unread: h.bus.UnreadCountFor(role, user),
	})
}

// Publish handles POST /notifications. The sender is the caller.
func (h *NotificationHandler) Publish(w http.ResponseWriter, r *http.Request) {
	role, user, ok := identity(w, r)
	if !ok {
		return
	}

	var req publishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	n, err := req.toNotification()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	n.FromRole = role
	n.FromUser = user

	writeJSON(w, http.StatusCreated, h.bus.Publish(n))
}

// MarkRead handles POST /notifications/{id}/read.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	role, user, ok := identity(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid notification ID")
		return
	}

	changed, err := h.bus.MarkRead(id, user)
	if err != nil {
		if errors.Is(err, notify.ErrNotFound) {
			writeError(w, http.StatusNotFound, "notification not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if changed {
		h.metrics.NotificationsRead(1)
	}

	writeJSON(w, http.StatusOK, unreadCountResponse{
		Role:   role,
		User:   user,
		Unread: h.bus.UnreadCountFor(role, user),
	})
}

// MarkAllRead handles POST /notifications/read-all.
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	role, user, ok := identity(w, r)
	if !ok {
		return
	}

	changed := h.bus.MarkAllRead(role, user)
	h.metrics.NotificationsRead(changed)

	writeJSON(w, http.StatusOK, map[string]int{"marked": changed})
}

// --- Helpers ---

func (req publishRequest) toNotification() (notify.Notification, error) {
	toRole, err := enum.ParseRole(req.ToRole)
	if err != nil {
		return notify.Notification{}, errors.New("invalid to_role")
	}
	kind := enum.NotificationType(req.Type)
	if !kind.Valid() {
		return notify.Notification{}, errors.New("invalid type")
	}
	priority := enum.Priority(req.Priority)
	if priority == "" {
		priority = enum.PriorityNormal
	}
	if !priority.Valid() {
		return notify.Notification{}, errors.New("invalid priority")
	}
	if strings.TrimSpace(req.Title) == "" && strings.TrimSpace(req.Message) == "" {
		return notify.Notification{}, errors.New("title or message is required")
	}

	return notify.Notification{
		Type:        kind,
		Title:       strings.TrimSpace(req.Title),
		Message:     strings.TrimSpace(req.Message),
		Priority:    priority,
		ToRole:      toRole,
		ToUser:      strings.TrimSpace(req.ToUser),
		TableNumber: strings.TrimSpace(req.TableNumber),
		OrderID:     strings.TrimSpace(req.OrderID),
	}, nil
}
