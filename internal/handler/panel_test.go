package handler_test

import (
	"net/http"
	"testing"

	"github.com/comanda-pos/api/internal/cart"
	"github.com/comanda-pos/api/internal/enum"
	"github.com/comanda-pos/api/internal/handler"
	"github.com/comanda-pos/api/internal/logger"
	"github.com/comanda-pos/api/internal/notify"
	"github.com/comanda-pos/api/internal/panel"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

func setupPanelRouter() (*chi.Mux, *notify.Bus, *cart.Aggregator) {
	bus := notify.NewBus(fixedClock, logger.Discard())
	carts := cart.NewAggregator(bus, fixedClock, logger.Discard())
	h := handler.NewPanelHandler(panel.NewRegistry(bus, carts))
	return protectedRouter(h.RegisterRoutes), bus, carts
}

func TestPanel_DispatchesOnRole(t *testing.T) {
	router, bus, carts := setupPanelRouter()

	_, err := carts.AddItem("3", cart.Item{
		Product:  cart.Product{ID: "flan", Name: "Flan", UnitPrice: decimal.RequireFromString("55")},
		Quantity: 2,
	})
	if err != nil {
		t.Fatalf("add item: %v", err)
	}
	bus.Publish(notify.Notification{Type: enum.NotificationBillRequest, Title: "cuenta", ToRole: enum.RoleCashier})
	bus.Publish(notify.Notification{Type: enum.NotificationAlert, Title: "alerta", ToRole: enum.RoleCashier})

	rr := doAuthRequest(t, router, http.MethodGet, "/panel", nil, enum.RoleWaiter, "ana")
	assertStatus(t, rr, http.StatusOK)
	resp := decodeMap(t, rr)
	tables, _ := resp["tables"].([]interface{})
	if len(tables) != 1 {
		t.Fatalf("waiter tables: got %d, want 1", len(tables))
	}

	rr = doAuthRequest(t, router, http.MethodGet, "/panel", nil, enum.RoleCashier, "eva")
	assertStatus(t, rr, http.StatusOK)
	resp = decodeMap(t, rr)
	list, _ := resp["notifications"].([]interface{})
	if len(list) != 1 {
		t.Errorf("cashier notifications: got %d, want 1 bill request", len(list))
	}
	if resp["unread"] != float64(2) {
		t.Errorf("cashier unread: got %v, want 2", resp["unread"])
	}

	rr = doAuthRequest(t, router, http.MethodGet, "/panel", nil, enum.RoleAdmin, "root")
	assertStatus(t, rr, http.StatusOK)
	resp = decodeMap(t, rr)
	byRole, _ := resp["unread_by_role"].(map[string]interface{})
	if byRole["cajero"] != float64(2) {
		t.Errorf("admin unread for cajero: got %v, want 2", byRole["cajero"])
	}
}
