package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/comanda-pos/api/internal/cart"
	"github.com/comanda-pos/api/internal/enum"
	"github.com/comanda-pos/api/internal/menu"
	"github.com/comanda-pos/api/internal/notify"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartService defines the aggregator methods needed by table handlers.
// Satisfied by *cart.Aggregator.
type CartService interface {
	AddItem(table string, item cart.Item) (cart.Item, error)
	RemoveItem(table string, itemID uuid.UUID) bool
	UpdateQuantity(table string, itemID uuid.UUID, qty int) (cart.Item, error)
	Clear(table string)
	Items(table string) []cart.Item
	Total(table string) decimal.Decimal
	Tables() []string
	Submit(table string, fromRole enum.Role, fromUser string) (*cart.Submission, error)
}

// ProductSource resolves menu products. Satisfied by *menu.Catalog.
type ProductSource interface {
	Orderable(id string) (menu.Product, error)
}

// Publisher is satisfied by *notify.Bus.
type Publisher interface {
	Publish(n notify.Notification) notify.Notification
}

// TableHandler handles the per-table order endpoints used by waiters.
type TableHandler struct {
	carts    CartService
	products ProductSource
	bus      Publisher
	metrics  Recorder
	logger   *slog.Logger
}

func NewTableHandler(carts CartService, products ProductSource, bus Publisher, metrics Recorder, logger *slog.Logger) *TableHandler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &TableHandler{
		carts:    carts,
		products: products,
		bus:      bus,
		metrics:  recorderOrNop(metrics),
		logger:   logger,
	}
}

// RegisterRoutes registers table endpoints on the given Chi router.
// Expected to be mounted at /tables
func (h *TableHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.ListTables)
	r.Route("/{tid}", func(r chi.Router) {
		r.Get("/cart", h.GetCart)
		r.Delete("/cart", h.ClearCart)
		r.Post("/cart/items", h.AddItem)
		r.Patch("/cart/items/{itemID}", h.UpdateItem)
		r.Delete("/cart/items/{itemID}", h.RemoveItem)
		r.Post("/cart/submit", h.Submit)
		r.Post("/bill-request", h.RequestBill)
	})
}

// --- Request / Response types ---

type addItemRequest struct {
	ProductID      string   `json:"product_id"`
	Quantity       int      `json:"quantity"`
	Customizations []string `json:"customizations"`
	Notes          string   `json:"notes"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

type billRequest struct {
	Notes string `json:"notes"`
}

type cartResponse struct {
	Table string          `json:"table"`
	Items []cart.Item     `json:"items"`
	Total decimal.Decimal `json:"total"`
}

type tableSummary struct {
	Table string          `json:"table"`
	Lines int             `json:"lines"`
	Total decimal.Decimal `json:"total"`
}

// --- Handlers ---

// ListTables handles GET /tables: tables with an open order.
func (h *TableHandler) ListTables(w http.ResponseWriter, r *http.Request) {
	resp := []tableSummary{}
	for _, t := range h.carts.Tables() {
		resp = append(resp, tableSummary{
			Table: t,
			Lines: len(h.carts.Items(t)),
			Total: h.carts.Total(t),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetCart handles GET /tables/{tid}/cart.
func (h *TableHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "tid")
	writeJSON(w, http.StatusOK, h.cartResponse(table))
}

// AddItem handles POST /tables/{tid}/cart/items.
func (h *TableHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "tid")

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ProductID == "" {
		writeError(w, http.StatusBadRequest, "product_id is required")
		return
	}

	product, err := h.products.Orderable(req.ProductID)
	if err != nil {
		switch {
		case errors.Is(err, menu.ErrProductNotFound):
			writeError(w, http.StatusNotFound, "product not found")
		case errors.Is(err, menu.ErrUnavailable):
			writeError(w, http.StatusConflict, "product is not available")
		default:
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	item, err := h.carts.AddItem(table, cart.Item{
		Product: cart.Product{
			ID:        product.ID,
			Name:      product.Name,
			UnitPrice: product.Price,
		},
		Quantity:       req.Quantity,
		Customizations: cleanStrings(req.Customizations),
		Notes:          strings.TrimSpace(req.Notes),
	})
	if err != nil {
		writeCartError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, item)
}

// UpdateItem handles PATCH /tables/{tid}/cart/items/{itemID}.
func (h *TableHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "tid")
	itemID, err := uuid.Parse(chi.URLParam(r, "itemID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item ID")
		return
	}

	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.carts.UpdateQuantity(table, itemID, req.Quantity)
	if err != nil {
		writeCartError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// RemoveItem handles DELETE /tables/{tid}/cart/items/{itemID}.
// Removing an item that is not there succeeds.
func (h *TableHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "tid")
	itemID, err := uuid.Parse(chi.URLParam(r, "itemID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item ID")
		return
	}

	h.carts.RemoveItem(table, itemID)
	writeJSON(w, http.StatusOK, h.cartResponse(table))
}

// ClearCart handles DELETE /tables/{tid}/cart.
func (h *TableHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.carts.Clear(chi.URLParam(r, "tid"))
	w.WriteHeader(http.StatusNoContent)
}

// Submit handles POST /tables/{tid}/cart/submit.
func (h *TableHandler) Submit(w http.ResponseWriter, r *http.Request) {
	role, user, ok := identity(w, r)
	if !ok {
		return
	}

	sub, err := h.carts.Submit(chi.URLParam(r, "tid"), role, user)
	if err != nil {
		if errors.Is(err, cart.ErrEmptyOrder) {
			h.metrics.OrderRejected()
		}
		writeCartError(w, err)
		return
	}

	h.metrics.OrderSubmitted()
	writeJSON(w, http.StatusCreated, sub)
}

// RequestBill handles POST /tables/{tid}/bill-request: asks the cashier for
// the table's bill.
func (h *TableHandler) RequestBill(w http.ResponseWriter, r *http.Request) {
	role, user, ok := identity(w, r)
	if !ok {
		return
	}
	table := strings.TrimSpace(chi.URLParam(r, "tid"))

	var req billRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	msg := fmt.Sprintf("Mesa %s solicita la cuenta", table)
	if notes := strings.TrimSpace(req.Notes); notes != "" {
		msg += ": " + notes
	}

	n := h.bus.Publish(notify.Notification{
		Type:        enum.NotificationBillRequest,
		Title:       "Solicitud de cuenta",
		Message:     msg,
		Priority:    enum.PriorityNormal,
		FromRole:    role,
		FromUser:    user,
		ToRole:      enum.RoleCashier,
		TableNumber: table,
	})
	h.logger.Info("bill requested", "table", table, "from_user", user)

	writeJSON(w, http.StatusCreated, n)
}

// --- Helpers ---

func (h *TableHandler) cartResponse(table string) cartResponse {
	return cartResponse{
		Table: table,
		Items: h.carts.Items(table),
		Total: h.carts.Total(table),
	}
}

func writeCartError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, cart.ErrEmptyOrder):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, cart.ErrInvalidQuantity), errors.Is(err, cart.ErrInvalidTable):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, cart.ErrItemNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func cleanStrings(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
