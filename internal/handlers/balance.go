package handlers

import (
	"net/http"
	"strconv"

	"github.com/Silexemple/satoshi-casino21/internal/auth"
	"github.com/Silexemple/satoshi-casino21/internal/ledger"
	"github.com/go-chi/chi/v5"
)

type BalanceHandler struct {
	ledger *ledger.GormLedger
}

func NewBalanceHandler(l *ledger.GormLedger) *BalanceHandler {
	return &BalanceHandler{ledger: l}
}

// Routes returns the balance routes. All of them require authentication.
func (h *BalanceHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.GetBalance)
	r.Get("/history", h.GetHistory)
	return r
}

// GetBalance handles GET /api/v1/balance
func (h *BalanceHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	playerID, ok := auth.GetPlayerIDFromContext(r.Context())
	if !ok {
		writeErrorResponse(w, http.StatusUnauthorized, "Player not authenticated")
		return
	}

	balance, err := h.ledger.GetBalance(r.Context(), playerID)
	if err != nil {
		writeGameError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]int64{"balance": balance})
}

// GetHistory handles GET /api/v1/balance/history
func (h *BalanceHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	playerID, ok := auth.GetPlayerIDFromContext(r.Context())
	if !ok {
		writeErrorResponse(w, http.StatusUnauthorized, "Player not authenticated")
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 && parsed <= 200 {
			limit = parsed
		}
	}
	offset := 0
	if v := r.URL.Query().Get("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	entries, err := h.ledger.History(r.Context(), playerID, limit, offset)
	if err != nil {
		writeGameError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"transactions": entries,
		"limit":        limit,
		"offset":       offset,
	})
}
