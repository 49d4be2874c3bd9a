package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/comanda-pos/api/internal/cash"
	"github.com/comanda-pos/api/internal/enum"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// CashHandler exposes the register calculators to the cashier screens.
type CashHandler struct {
	metrics Recorder
}

func NewCashHandler(metrics Recorder) *CashHandler {
	return &CashHandler{metrics: recorderOrNop(metrics)}
}

// RegisterRoutes registers cash endpoints on the given Chi router.
// Expected to be mounted at /cash
func (h *CashHandler) RegisterRoutes(r chi.Router) {
	r.Get("/denominations", h.Denominations)
	r.Post("/count", h.Count)
	r.Post("/tip-payment", h.TipPayment)
}

// --- Request / Response types ---

type countRequest struct {
	Method        string            `json:"method"`
	ExpectedTotal string            `json:"expected_total"`
	TotalCounted  string            `json:"total_counted"`
	Breakdown     map[string]string `json:"breakdown"`
}

type countResponse struct {
	cash.CashCount
	Status string `json:"status"`
}

type tipPaymentRequest struct {
	CashReceived string `json:"cash_received"`
	Tip          string `json:"tip"`
	TipPercent   string `json:"tip_percent"`
	AmountDue    string `json:"amount_due"`
}

// --- Handlers ---

// Denominations handles GET /cash/denominations.
func (h *CashHandler) Denominations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, cash.Denominations())
}

// Count handles POST /cash/count.
func (h *CashHandler) Count(w http.ResponseWriter, r *http.Request) {
	var req countRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	expected, err := cash.ParseAmount(req.ExpectedTotal)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid expected_total")
		return
	}

	result, err := cash.Reconcile(cash.CountInput{
		Method:        enum.CountMethod(req.Method),
		ExpectedTotal: expected,
		TotalCounted:  req.TotalCounted,
		Breakdown:     req.Breakdown,
	})
	if err != nil {
		switch {
		case errors.Is(err, cash.ErrInvalidMethod):
			writeError(w, http.StatusBadRequest, "invalid method")
		case errors.Is(err, cash.ErrInvalidAmount):
			writeError(w, http.StatusBadRequest, "invalid total_counted")
		default:
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	h.metrics.CashCounted(string(result.Method))
	writeJSON(w, http.StatusOK, countResponse{CashCount: result, Status: result.Status()})
}

// TipPayment handles POST /cash/tip-payment. Insufficient cash is reported
// in the body, not as an error status.
func (h *CashHandler) TipPayment(w http.ResponseWriter, r *http.Request) {
	var req tipPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	received, err := cash.ParseAmount(req.CashReceived)
	if err != nil || received.IsNegative() {
		writeError(w, http.StatusBadRequest, "invalid cash_received")
		return
	}
	due, err := cash.ParseAmount(req.AmountDue)
	if err != nil || due.IsNegative() {
		writeError(w, http.StatusBadRequest, "invalid amount_due")
		return
	}

	tip := decimal.Zero
	switch {
	case req.TipPercent != "":
		pct, err := cash.ParseAmount(req.TipPercent)
		if err != nil || pct.IsNegative() {
			writeError(w, http.StatusBadRequest, "invalid tip_percent")
			return
		}
		tip = cash.TipFromPercent(due, pct)
	default:
		tip, err = cash.ParseAmount(req.Tip)
		if err != nil || tip.IsNegative() {
			writeError(w, http.StatusBadRequest, "invalid tip")
			return
		}
	}

	writeJSON(w, http.StatusOK, cash.CashWithTip(received, tip, due))
}
