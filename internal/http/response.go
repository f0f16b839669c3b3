package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"fintrack/internal/backend"
	"fintrack/internal/core"
	"fintrack/internal/ledger"
	applog "fintrack/internal/log"
)

// transactionJSON is the wire shape of a transaction.
type transactionJSON struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Amount   string `json:"amount"`
	Date     string `json:"date"`
	Category string `json:"category"`
}

func toTransactionJSON(tx core.Transaction) transactionJSON {
	return transactionJSON{
		ID:       tx.ID,
		Name:     tx.Name,
		Amount:   tx.Amount.String(),
		Date:     tx.Date.Format(time.RFC3339),
		Category: tx.Category,
	}
}

func toTransactionList(txs []core.Transaction) []transactionJSON {
	out := make([]transactionJSON, len(txs))
	for i, tx := range txs {
		out[i] = toTransactionJSON(tx)
	}
	return out
}

type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

// writeJSON serializes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			slog.Error("Failed to encode response", "error", err)
		}
	}
}

// writeError maps domain errors onto status codes and a stable error kind.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var status int
	var kind string

	switch {
	case errors.Is(err, core.ErrValidation):
		status, kind = http.StatusUnprocessableEntity, "validation"
	case errors.Is(err, backend.ErrNotFound):
		status, kind = http.StatusNotFound, "not_found"
	case errors.Is(err, ledger.ErrNoActiveEdit), errors.Is(err, ledger.ErrSaveInProgress):
		status, kind = http.StatusConflict, "conflict"
	case backend.IsTransport(err):
		status, kind = http.StatusBadGateway, "transport"
	default:
		status, kind = http.StatusInternalServerError, "internal"
	}

	if status >= 500 {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			"method", r.Method, "url", r.URL.Path, "kind", kind, "error", err)
	}

	writeJSON(w, status, errorResponse{Error: errorBody{Kind: kind, Message: err.Error()}})
}

// writeBadRequest reports a malformed request body or parameter.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: errorBody{Kind: "bad_request", Message: message}})
}
