package http

import (
	"net/http"
	"strconv"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
	applog "fintrack/internal/log"
)

// handleListTransactions re-fetches the canonical list from the backend
// and returns it. The edit_reset flag tells clients that the refresh
// discarded an in-progress edit session.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	reset, err := s.ledger.Refresh(r.Context())
	if err != nil {
		s.structured.LogError(r.Context(), "Failed to refresh transactions", err,
			applog.ComponentLedger, applog.OpRefresh, applog.NewFields())
		writeError(w, r, err)
		return
	}

	txs := s.ledger.Transactions()
	writeJSON(w, http.StatusOK, map[string]any{
		"transactions": toTransactionList(txs),
		"count":        len(txs),
		"edit_reset":   reset,
	})
}

type createRequest struct {
	Name     string `json:"name"`
	Amount   any    `json:"amount"`
	Date     string `json:"date"`
	Category string `json:"category"`
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "malformed request body")
		return
	}

	tx, err := s.ledger.Create(r.Context(), ledger.Input{
		Name:     sanitizeInput(req.Name),
		Amount:   req.Amount,
		Date:     req.Date,
		Category: sanitizeInput(req.Category),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.structured.LogTransactionCreated(r.Context(), tx.ID, tx.Name, tx.Amount.String(), tx.Category)

	s.invalidateAnalytics()
	writeJSON(w, http.StatusCreated, toTransactionJSON(tx))
}

type updateRequest struct {
	Name     *string `json:"name"`
	Amount   any     `json:"amount"`
	Date     *string `json:"date"`
	Category *string `json:"category"`
}

// handleUpdateTransaction funnels a partial update through the edit
// machine as one serialized pass: begin a session, merge the overrides,
// commit. The canonical entry changes only after the backend confirms.
func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req updateRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "malformed request body")
		return
	}

	draft, err := req.draft()
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.ledger.ApplyEdit(r.Context(), id, draft); err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateAnalytics()

	for _, tx := range s.ledger.Transactions() {
		if tx.ID == id {
			writeJSON(w, http.StatusOK, toTransactionJSON(tx))
			return
		}
	}
	// Confirmed by the backend but gone locally: a concurrent refresh or
	// remove won the race.
	writeJSON(w, http.StatusOK, map[string]any{"id": id})
}

// draft converts the request's present fields into edit overrides.
func (req updateRequest) draft() (ledger.Draft, error) {
	var d ledger.Draft

	if req.Name != nil {
		name := sanitizeInput(*req.Name)
		d.Name = &name
	}
	if req.Amount != nil {
		amount, err := core.ParseAmount(req.Amount)
		if err != nil {
			return ledger.Draft{}, err
		}
		d.Amount = &amount
	}
	if req.Date != nil {
		date, err := core.ParseDate(*req.Date)
		if err != nil {
			return ledger.Draft{}, err
		}
		d.Date = &date
	}
	if req.Category != nil {
		category := sanitizeInput(*req.Category)
		d.Category = &category
	}

	return d, nil
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := s.ledger.Remove(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateAnalytics()
	w.WriteHeader(http.StatusNoContent)
}

// parseIntParam parses a query parameter, falling back on bad input.
func parseIntParam(v string, fallback int) int {
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
