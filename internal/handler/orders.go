package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/comanda-pos/api/internal/enum"
	"github.com/comanda-pos/api/internal/notify"
	"github.com/go-chi/chi/v5"
)

// NotifyGate is satisfied by *notify.Sender.
type NotifyGate interface {
	Begin(key string) error
	Finish(key string) error
	Abort(key string) error
	State(key string) notify.SendState
}

// OrderNotifyHandler lets the kitchen tell the floor an order is ready. The
// gate keeps repeated presses from publishing duplicates.
type OrderNotifyHandler struct {
	gate NotifyGate
	bus  Publisher
}

func NewOrderNotifyHandler(gate NotifyGate, bus Publisher) *OrderNotifyHandler {
	return &OrderNotifyHandler{gate: gate, bus: bus}
}

// RegisterRoutes registers endpoints on the given Chi router.
// Expected to be mounted at /orders
func (h *OrderNotifyHandler) RegisterRoutes(r chi.Router) {
	r.Get("/{oid}/notify", h.State)
	r.Post("/{oid}/notify", h.Notify)
}

type notifyOrderRequest struct {
	TableNumber string `json:"table_number"`
	ToRole      string `json:"to_role"`
	ToUser      string `json:"to_user"`
	Message     string `json:"message"`
}

type notifyStateResponse struct {
	OrderID      string               `json:"order_id"`
	State        notify.SendState     `json:"state"`
	Notification *notify.Notification `json:"notification,omitempty"`
}

// State handles GET /orders/{oid}/notify.
func (h *OrderNotifyHandler) State(w http.ResponseWriter, r *http.Request) {
	oid := chi.URLParam(r, "oid")
	writeJSON(w, http.StatusOK, notifyStateResponse{OrderID: oid, State: h.gate.State(oid)})
}

// Notify handles POST /orders/{oid}/notify.
func (h *OrderNotifyHandler) Notify(w http.ResponseWriter, r *http.Request) {
	role, user, ok := identity(w, r)
	if !ok {
		return
	}
	oid := strings.TrimSpace(chi.URLParam(r, "oid"))

	var req notifyOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	toRole := enum.RoleWaiter
	if req.ToRole != "" {
		parsed, err := enum.ParseRole(req.ToRole)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid to_role")
			return
		}
		toRole = parsed
	}

	if err := h.gate.Begin(oid); err != nil {
		if errors.Is(err, notify.ErrBusy) {
			writeJSON(w, http.StatusConflict, notifyStateResponse{OrderID: oid, State: h.gate.State(oid)})
			return
		}
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	// The caller left before anything was sent.
	if r.Context().Err() != nil {
		_ = h.gate.Abort(oid)
		return
	}

	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		msg = fmt.Sprintf("La orden %s está lista", oid)
		if req.TableNumber != "" {
			msg = fmt.Sprintf("La orden %s de la mesa %s está lista", oid, req.TableNumber)
		}
	}

	n := h.bus.Publish(notify.Notification{
		Type:        enum.NotificationReady,
		Title:       "Orden lista",
		Message:     msg,
		Priority:    enum.PriorityHigh,
		FromRole:    role,
		FromUser:    user,
		ToRole:      toRole,
		ToUser:      strings.TrimSpace(req.ToUser),
		TableNumber: strings.TrimSpace(req.TableNumber),
		OrderID:     oid,
	})
	_ = h.gate.Finish(oid)

	writeJSON(w, http.StatusCreated, notifyStateResponse{
		OrderID:      oid,
		State:        h.gate.State(oid),
		Notification: &n,
	})
}
