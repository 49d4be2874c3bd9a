package handler

import (
	"errors"
	"net/http"

	"github.com/comanda-pos/api/internal/panel"
	"github.com/go-chi/chi/v5"
)

// PanelBuilder is satisfied by *panel.Registry.
type PanelBuilder interface {
	Build(id panel.Identity) (panel.View, error)
}

type PanelHandler struct {
	panels PanelBuilder
}

func NewPanelHandler(panels PanelBuilder) *PanelHandler {
	return &PanelHandler{panels: panels}
}

func (h *PanelHandler) RegisterRoutes(r chi.Router) {
	r.Get("/panel", h.Get)
}

// Get handles GET /panel: the caller's role decides which view is built.
func (h *PanelHandler) Get(w http.ResponseWriter, r *http.Request) {
	role, user, ok := identity(w, r)
	if !ok {
		return
	}

	view, err := h.panels.Build(panel.Identity{Role: role, User: user})
	if err != nil {
		if errors.Is(err, panel.ErrNoPanel) {
			writeError(w, http.StatusNotFound, "no panel for role")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, view)
}
