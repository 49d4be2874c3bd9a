package handler

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/comanda-pos/api/internal/enum"
	"github.com/comanda-pos/api/internal/middleware"
)

// Recorder receives domain events for metrics. Satisfied by *metrics.Collector.
type Recorder interface {
	NotificationsRead(n int)
	OrderSubmitted()
	OrderRejected()
	CashCounted(method string)
}

type nopRecorder struct{}

func (nopRecorder) NotificationsRead(int) {}
func (nopRecorder) OrderSubmitted()       {}
func (nopRecorder) OrderRejected()        {}
func (nopRecorder) CashCounted(string)    {}

func recorderOrNop(r Recorder) Recorder {
	if r == nil {
		return nopRecorder{}
	}
	return r
}

// identity returns the caller's role and user name from the token claims.
// It writes a 401 and returns ok=false when the request is not authenticated.
func identity(w http.ResponseWriter, r *http.Request) (enum.Role, string, bool) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return "", "", false
	}
	return enum.Role(claims.Role), claims.UserName, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR: failed to encode JSON response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
