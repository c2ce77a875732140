package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Silexemple/satoshi-casino21/internal/blackjack"
	"github.com/Silexemple/satoshi-casino21/internal/ledger"
	"github.com/Silexemple/satoshi-casino21/internal/services"
)

func writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
	}
}

func writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	writeJSONResponse(w, statusCode, map[string]string{"error": message})
}

// writeGameError maps service and rule errors onto HTTP responses. Rule
// rejections carry their machine-readable reason so clients can react.
func writeGameError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrTableBusy):
		writeErrorResponse(w, http.StatusTooManyRequests, "Table is busy, please retry")
	case errors.Is(err, services.ErrTableNotFound):
		writeErrorResponse(w, http.StatusNotFound, "Table not found")
	case errors.Is(err, ledger.ErrPlayerNotFound):
		writeErrorResponse(w, http.StatusNotFound, "Player not found")
	case errors.Is(err, ledger.ErrInsufficientFunds):
		writeJSONResponse(w, http.StatusBadRequest, map[string]string{
			"error":  "Insufficient funds",
			"reason": string(blackjack.ReasonInsufficientFunds),
		})
	default:
		if re, ok := blackjack.AsRuleError(err); ok {
			writeJSONResponse(w, http.StatusBadRequest, map[string]string{
				"error":  re.Message,
				"reason": string(re.Reason),
			})
			return
		}
		slog.Error("Unhandled game error", "error", err)
		writeErrorResponse(w, http.StatusInternalServerError, "Internal server error")
	}
}
