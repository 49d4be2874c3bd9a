package router

import (
	"log/slog"
	"net/http"

	"github.com/comanda-pos/api/internal/cart"
	"github.com/comanda-pos/api/internal/config"
	"github.com/comanda-pos/api/internal/handler"
	"github.com/comanda-pos/api/internal/menu"
	"github.com/comanda-pos/api/internal/metrics"
	mw "github.com/comanda-pos/api/internal/middleware"
	"github.com/comanda-pos/api/internal/notify"
	"github.com/comanda-pos/api/internal/panel"
	"github.com/comanda-pos/api/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Deps are the long-lived services the routes are built on.
type Deps struct {
	Bus     *notify.Bus
	Sender  *notify.Sender
	Carts   *cart.Aggregator
	Catalog *menu.Catalog
	Panels  *panel.Registry
	Hub     *ws.Hub
	Metrics *metrics.Collector
	Logger  *slog.Logger
}

// New creates a Chi router with all application routes wired up.
// Everything except health, metrics, session issuing and the WebSocket
// upgrade requires a bearer token.
func New(cfg *config.Config, d Deps) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})
	r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())

	sessionHandler := handler.NewSessionHandler(cfg.JWTSecret, cfg.TokenTTL, d.Logger)
	sessionHandler.RegisterRoutes(r)

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(d.Hub, cfg.JWTSecret, w, r)
	})

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		notificationHandler := handler.NewNotificationHandler(d.Bus, d.Metrics)
		r.Route("/notifications", notificationHandler.RegisterRoutes)

		tableHandler := handler.NewTableHandler(d.Carts, d.Catalog, d.Bus, d.Metrics, d.Logger)
		r.Route("/tables", tableHandler.RegisterRoutes)

		orderHandler := handler.NewOrderNotifyHandler(d.Sender, d.Bus)
		r.Route("/orders", orderHandler.RegisterRoutes)

		cashHandler := handler.NewCashHandler(d.Metrics)
		r.Route("/cash", cashHandler.RegisterRoutes)

		menuHandler := handler.NewMenuHandler(d.Catalog)
		r.Route("/menu", menuHandler.RegisterRoutes)

		panelHandler := handler.NewPanelHandler(d.Panels)
		panelHandler.RegisterRoutes(r)
	})

	d.Logger.Info("router initialized")
	return r
}
