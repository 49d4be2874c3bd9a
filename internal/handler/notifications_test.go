package handler_test

import (
	"net/http"
	"testing"

	"github.com/comanda-pos/api/internal/enum"
	"github.com/comanda-pos/api/internal/handler"
	"github.com/comanda-pos/api/internal/logger"
	"github.com/comanda-pos/api/internal/notify"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func setupNotificationRouter() (*chi.Mux, *notify.Bus, *countingRecorder) {
	bus := notify.NewBus(fixedClock, logger.Discard())
	rec := &countingRecorder{}
	h := handler.NewNotificationHandler(bus, rec)
	r := protectedRouter(func(r chi.Router) {
		r.Route("/notifications", h.RegisterRoutes)
	})
	return r, bus, rec
}

func TestNotificationPublish_Success(t *testing.T) {
	router, bus, _ := setupNotificationRouter()

	rr := doAuthRequest(t, router, http.MethodPost, "/notifications", map[string]string{
		"type":         "call_waiter",
		"title":        "Llamado",
		"message":      "Mesa 3 llama al mesero",
		"to_role":      "mesero",
		"table_number": "3",
	}, enum.RoleCaptain, "rosa")
	assertStatus(t, rr, http.StatusCreated)

	resp := decodeMap(t, rr)
	if resp["from_role"] != "capitan" || resp["from_user"] != "rosa" {
		t.Errorf("sender: got %v/%v, want capitan/rosa", resp["from_role"], resp["from_user"])
	}
	if resp["priority"] != "normal" {
		t.Errorf("priority: got %v, want normal", resp["priority"])
	}
	if bus.Len() != 1 {
		t.Errorf("bus length: got %d, want 1", bus.Len())
	}
}

func TestNotificationPublish_Validation(t *testing.T) {
	router, bus, _ := setupNotificationRouter()

	tests := []struct {
		name string
		body map[string]string
	}{
		{"unknown role", map[string]string{"type": "alert", "title": "x", "to_role": "gerente"}},
		{"unknown type", map[string]string{"type": "party", "title": "x", "to_role": "admin"}},
		{"bad priority", map[string]string{"type": "alert", "title": "x", "to_role": "admin", "priority": "urgent"}},
		{"no text", map[string]string{"type": "alert", "to_role": "admin"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doAuthRequest(t, router, http.MethodPost, "/notifications", tt.body, enum.RoleAdmin, "root")
			assertStatus(t, rr, http.StatusBadRequest)
		})
	}
	if bus.Len() != 0 {
		t.Errorf("rejected requests must not publish, bus has %d", bus.Len())
	}
}

func TestNotificationList_VisibleOnly(t *testing.T) {
	router, bus, _ := setupNotificationRouter()

	bus.Publish(notify.Notification{Type: enum.NotificationReady, Title: "a", ToRole: enum.RoleWaiter})
	bus.Publish(notify.Notification{Type: enum.NotificationReady, Title: "b", ToRole: enum.RoleWaiter, ToUser: "ana"})
	bus.Publish(notify.Notification{Type: enum.NotificationReady, Title: "c", ToRole: enum.RoleWaiter, ToUser: "luis"})
	bus.Publish(notify.Notification{Type: enum.NotificationNewOrder, Title: "d", ToRole: enum.RoleKitchen})

	rr := doAuthRequest(t, router, http.MethodGet, "/notifications", nil, enum.RoleWaiter, "ana")
	assertStatus(t, rr, http.StatusOK)

	list := decodeList(t, rr)
	if len(list) != 2 {
		t.Fatalf("list length: got %d, want 2", len(list))
	}
	// most recent first
	if list[0]["title"] != "b" || list[1]["title"] != "a" {
		t.Errorf("order: got %v, %v; want b, a", list[0]["title"], list[1]["title"])
	}
}

func TestNotificationMarkRead(t *testing.T) {
	router, bus, rec := setupNotificationRouter()

	n := bus.Publish(notify.Notification{Type: enum.NotificationBillRequest, Title: "cuenta", ToRole: enum.RoleCashier})
	bus.Publish(notify.Notification{Type: enum.NotificationBillRequest, Title: "cuenta 2", ToRole: enum.RoleCashier})

	rr := doAuthRequest(t, router, http.MethodGet, "/notifications/unread-count", nil, enum.RoleCashier, "eva")
	assertStatus(t, rr, http.StatusOK)
	if got := decodeMap(t, rr)["unread"]; got != float64(2) {
		t.Fatalf("unread before: got %v, want 2", got)
	}

	rr = doAuthRequest(t, router, http.MethodPost, "/notifications/"+n.ID.String()+"/read", nil, enum.RoleCashier, "eva")
	assertStatus(t, rr, http.StatusOK)
	if got := decodeMap(t, rr)["unread"]; got != float64(1) {
		t.Errorf("unread after: got %v, want 1", got)
	}

	// idempotent
	rr = doAuthRequest(t, router, http.MethodPost, "/notifications/"+n.ID.String()+"/read", nil, enum.RoleCashier, "eva")
	assertStatus(t, rr, http.StatusOK)
	if rec.read != 1 {
		t.Errorf("read metric: got %d, want 1", rec.read)
	}

	// another cashier still sees it unread
	rr = doAuthRequest(t, router, http.MethodGet, "/notifications/unread-count", nil, enum.RoleCashier, "omar")
	if got := decodeMap(t, rr)["unread"]; got != float64(2) {
		t.Errorf("unread for other user: got %v, want 2", got)
	}
}

func TestNotificationMarkRead_Errors(t *testing.T) {
	router, _, _ := setupNotificationRouter()

	rr := doAuthRequest(t, router, http.MethodPost, "/notifications/not-a-uuid/read", nil, enum.RoleCashier, "eva")
	assertStatus(t, rr, http.StatusBadRequest)

	rr = doAuthRequest(t, router, http.MethodPost, "/notifications/"+uuid.NewString()+"/read", nil, enum.RoleCashier, "eva")
	assertStatus(t, rr, http.StatusNotFound)
}

func TestNotificationMarkAllRead(t *testing.T) {
	router, bus, rec := setupNotificationRouter()

	for i := 0; i < 3; i++ {
		bus.Publish(notify.Notification{Type: enum.NotificationNewOrder, Title: "orden", ToRole: enum.RoleKitchen})
	}
	bus.Publish(notify.Notification{Type: enum.NotificationAlert, Title: "otro", ToRole: enum.RoleAdmin})

	rr := doAuthRequest(t, router, http.MethodPost, "/notifications/read-all", nil, enum.RoleKitchen, "chef")
	assertStatus(t, rr, http.StatusOK)
	if got := decodeMap(t, rr)["marked"]; got != float64(3) {
		t.Errorf("marked: got %v, want 3", got)
	}
	if rec.read != 3 {
		t.Errorf("read metric: got %d, want 3", rec.read)
	}
	if got := bus.UnreadCountFor(enum.RoleAdmin, "root"); got != 1 {
		t.Errorf("admin unread: got %d, want 1", got)
	}
}

func TestNotificationRequiresToken(t *testing.T) {
	router, _, _ := setupNotificationRouter()

	rr := doAuthRequest(t, router, http.MethodGet, "/notifications", nil, "", "")
	assertStatus(t, rr, http.StatusUnauthorized)
}
