package handler_test

import (
	"net/http"
	"testing"

	"github.com/comanda-pos/api/internal/enum"
	"github.com/comanda-pos/api/internal/handler"
	"github.com/comanda-pos/api/internal/menu"
	"github.com/go-chi/chi/v5"
)

func setupMenuRouter(t *testing.T) *chi.Mux {
	t.Helper()
	catalog, err := menu.NewCatalog(menu.DefaultProducts())
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	h := handler.NewMenuHandler(catalog)
	return protectedRouter(func(r chi.Router) {
		r.Route("/menu", h.RegisterRoutes)
	})
}

func TestMenuList(t *testing.T) {
	router := setupMenuRouter(t)

	rr := doAuthRequest(t, router, http.MethodGet, "/menu", nil, enum.RoleWaiter, "ana")
	assertStatus(t, rr, http.StatusOK)
	if got := len(decodeList(t, rr)); got != len(menu.DefaultProducts()) {
		t.Errorf("products: got %d, want %d", got, len(menu.DefaultProducts()))
	}

	rr = doAuthRequest(t, router, http.MethodGet, "/menu?category=bebidas", nil, enum.RoleWaiter, "ana")
	assertStatus(t, rr, http.StatusOK)
	list := decodeList(t, rr)
	if len(list) != 3 {
		t.Fatalf("bebidas: got %d, want 3", len(list))
	}
	for _, p := range list {
		if p["category"] != "bebidas" {
			t.Errorf("category: got %v", p["category"])
		}
	}
}

func TestMenuSearch(t *testing.T) {
	router := setupMenuRouter(t)

	rr := doAuthRequest(t, router, http.MethodGet, "/menu/search?q=agua+grande", nil, enum.RoleWaiter, "ana")
	assertStatus(t, rr, http.StatusOK)
	resp := decodeMap(t, rr)
	if resp["status"] != "matched" {
		t.Fatalf("status: got %v, want matched", resp["status"])
	}
	product, _ := resp["product"].(map[string]interface{})
	if product["id"] != "agua-jamaica-grande" {
		t.Errorf("product: got %v", product["id"])
	}

	rr = doAuthRequest(t, router, http.MethodGet, "/menu/search?q=tacos", nil, enum.RoleWaiter, "ana")
	assertStatus(t, rr, http.StatusOK)
	if got := decodeMap(t, rr)["status"]; got != "ambiguous" {
		t.Errorf("status: got %v, want ambiguous", got)
	}

	rr = doAuthRequest(t, router, http.MethodGet, "/menu/search", nil, enum.RoleWaiter, "ana")
	assertStatus(t, rr, http.StatusBadRequest)
}
