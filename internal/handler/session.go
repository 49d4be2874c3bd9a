package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/comanda-pos/api/internal/auth"
	"github.com/comanda-pos/api/internal/enum"
	"github.com/go-chi/chi/v5"
)

// SessionHandler issues identity tokens. It trusts the name and role it is
// given; there is no credential check.
type SessionHandler struct {
	jwtSecret string
	ttl       time.Duration
	logger    *slog.Logger
}

func NewSessionHandler(jwtSecret string, ttl time.Duration, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{jwtSecret: jwtSecret, ttl: ttl, logger: logger}
}

func (h *SessionHandler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/session", h.Create)
}

type sessionRequest struct {
	UserName string `json:"user_name"`
	Role     string `json:"role"`
}

type sessionResponse struct {
	AccessToken string    `json:"access_token"`
	UserName    string    `json:"user_name"`
	Role        enum.Role `json:"role"`
	ExpiresIn   int64     `json:"expires_in"`
}

// Create handles POST /auth/session.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	name := strings.TrimSpace(req.UserName)
	if name == "" {
		writeError(w, http.StatusBadRequest, "user_name is required")
		return
	}
	role, err := enum.ParseRole(req.Role)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid role")
		return
	}

	token, err := auth.GenerateToken(h.jwtSecret, name, string(role), h.ttl)
	if err != nil {
		h.logger.Error("generate token", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("session started", "user", name, "role", role)
	writeJSON(w, http.StatusCreated, sessionResponse{
		AccessToken: token,
		UserName:    name,
		Role:        role,
		ExpiresIn:   int64(h.ttl.Seconds()),
	})
}
