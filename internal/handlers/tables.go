package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Silexemple/satoshi-casino21/internal/auth"
	"github.com/Silexemple/satoshi-casino21/internal/blackjack"
	"github.com/Silexemple/satoshi-casino21/internal/services"
	"github.com/go-chi/chi/v5"
)

type TableHandler struct {
	tableService *services.TableService
}

func NewTableHandler(tableService *services.TableService) *TableHandler {
	return &TableHandler{tableService: tableService}
}

// Routes returns the table routes. All of them require authentication.
func (h *TableHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListTables)
	r.Get("/{tableID}", h.GetTable)
	r.Post("/{tableID}/join", h.Join)
	r.Post("/{tableID}/leave", h.Leave)
	r.Post("/{tableID}/bet", h.PlaceBet)
	r.Post("/{tableID}/action", h.Act)
	return r
}

type joinRequest struct {
	Seat int `json:"seat"`
}

type betRequest struct {
	Amount int64 `json:"amount"`
}

type actionRequest struct {
	Action string `json:"action"`
	Amount int64  `json:"amount,omitempty"`
	Accept bool   `json:"accept,omitempty"`
}

// ListTables handles GET /api/v1/tables
func (h *TableHandler) ListTables(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.tableService.ListTables(r.Context())
	if err != nil {
		writeGameError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]interface{}{"tables": summaries})
}

// GetTable handles GET /api/v1/tables/{tableID}
func (h *TableHandler) GetTable(w http.ResponseWriter, r *http.Request) {
	playerID, ok := auth.GetPlayerIDFromContext(r.Context())
	if !ok {
		writeErrorResponse(w, http.StatusUnauthorized, "Player not authenticated")
		return
	}

	view, err := h.tableService.GetTable(r.Context(), chi.URLParam(r, "tableID"), playerID)
	if err != nil {
		writeGameError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, view)
}

// Join handles POST /api/v1/tables/{tableID}/join
func (h *TableHandler) Join(w http.ResponseWriter, r *http.Request) {
	playerID, ok := auth.GetPlayerIDFromContext(r.Context())
	if !ok {
		writeErrorResponse(w, http.StatusUnauthorized, "Player not authenticated")
		return
	}
	username, _ := auth.GetUsernameFromContext(r.Context())

	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	view, err := h.tableService.Join(r.Context(), chi.URLParam(r, "tableID"), playerID, username, req.Seat)
	if err != nil {
		writeGameError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, view)
}

// Leave handles POST /api/v1/tables/{tableID}/leave
func (h *TableHandler) Leave(w http.ResponseWriter, r *http.Request) {
	playerID, ok := auth.GetPlayerIDFromContext(r.Context())
	if !ok {
		writeErrorResponse(w, http.StatusUnauthorized, "Player not authenticated")
		return
	}

	view, err := h.tableService.Leave(r.Context(), chi.URLParam(r, "tableID"), playerID)
	if err != nil {
		writeGameError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, view)
}

// PlaceBet handles POST /api/v1/tables/{tableID}/bet
func (h *TableHandler) PlaceBet(w http.ResponseWriter, r *http.Request) {
	playerID, ok := auth.GetPlayerIDFromContext(r.Context())
	if !ok {
		writeErrorResponse(w, http.StatusUnauthorized, "Player not authenticated")
		return
	}

	var req betRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	view, err := h.tableService.Act(r.Context(), chi.URLParam(r, "tableID"), playerID, blackjack.Bet{Amount: req.Amount})
	if err != nil {
		writeGameError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, view)
}

// Act handles POST /api/v1/tables/{tableID}/action
func (h *TableHandler) Act(w http.ResponseWriter, r *http.Request) {
	playerID, ok := auth.GetPlayerIDFromContext(r.Context())
	if !ok {
		writeErrorResponse(w, http.StatusUnauthorized, "Player not authenticated")
		return
	}

	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	action, err := blackjack.ParseAction(req.Action, req.Amount, req.Accept)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	view, err := h.tableService.Act(r.Context(), chi.URLParam(r, "tableID"), playerID, action)
	if err != nil {
		writeGameError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, view)
}
