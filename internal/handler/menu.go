package handler

import (
	"net/http"
	"strings"

	"github.com/comanda-pos/api/internal/menu"
	"github.com/go-chi/chi/v5"
)

// MenuSource is satisfied by *menu.Catalog.
type MenuSource interface {
	List(category string) []menu.Product
	Categories() []string
	Search(text string) menu.MatchResult
}

type MenuHandler struct {
	catalog MenuSource
}

func NewMenuHandler(catalog MenuSource) *MenuHandler {
	return &MenuHandler{catalog: catalog}
}

// RegisterRoutes registers menu endpoints. Expected to be mounted at /menu
func (h *MenuHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/categories", h.Categories)
	r.Get("/search", h.Search)
}

// List handles GET /menu?category=.
func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.List(r.URL.Query().Get("category")))
}

func (h *MenuHandler) Categories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.Categories())
}

// Search handles GET /menu/search?q=.
func (h *MenuHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}
	writeJSON(w, http.StatusOK, h.catalog.Search(q))
}
