package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"fintrack/internal/core"
	"fintrack/internal/storage"

	"github.com/go-chi/chi/v5"
)

// createTransactionRequest mirrors the JSON creation payload. Amount is a
// json.Number so decimal values reach the validator without a float round
// trip.
type createTransactionRequest struct {
	Type     string      `json:"type"`
	Category string      `json:"category"`
	Amount   json.Number `json:"amount"`
	Note     string      `json:"note"`
	Date     string      `json:"date"`
}

type updateTransactionRequest struct {
	Type     *string      `json:"type"`
	Category *string      `json:"category"`
	Amount   *json.Number `json:"amount"`
	Note     *string      `json:"note"`
	Date     *string      `json:"date"`
}

type transactionListResponse struct {
	Transactions []core.Transaction `json:"transactions"`
	Count        int                `json:"count"`
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	filter, err := parseListFilter(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	txs, err := s.ledger.List(r.Context(), ownerFromContext(r.Context()), filter)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	writeJSON(w, http.StatusOK, transactionListResponse{Transactions: txs, Count: len(txs)})
}

// parseListFilter normalizes the type/startDate/endDate query params into a
// storage filter. Unknown kinds and malformed dates are rejected outright
// rather than silently ignored.
func parseListFilter(r *http.Request) (storage.TransactionFilter, error) {
	var filter storage.TransactionFilter
	q := r.URL.Query()

	if raw := q.Get("type"); raw != "" {
		kind := core.Kind(raw)
		if !kind.IsValid() {
			return storage.TransactionFilter{}, core.ErrInvalidKind
		}
		filter.Kind = &kind
	}
	if raw := q.Get("startDate"); raw != "" {
		from, err := core.ParseDate(raw)
		if err != nil {
			return storage.TransactionFilter{}, err
		}
		filter.From = &from
	}
	if raw := q.Get("endDate"); raw != "" {
		to, err := core.ParseDate(raw)
		if err != nil {
			return storage.TransactionFilter{}, err
		}
		filter.To = &to
	}
	return filter, nil
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tx, err := s.ledger.Create(r.Context(), ownerFromContext(r.Context()), core.TransactionInput{
		Kind:     req.Type,
		Category: req.Category,
		Amount:   req.Amount.String(),
		Note:     req.Note,
		Date:     req.Date,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "Transaction not found")
		return
	}

	var req updateTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	upd := core.TransactionUpdate{
		Kind:     req.Type,
		Category: req.Category,
		Note:     req.Note,
		Date:     req.Date,
	}
	if req.Amount != nil {
		amount := req.Amount.String()
		upd.Amount = &amount
	}

	tx, err := s.ledger.Update(r.Context(), ownerFromContext(r.Context()), id, upd)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "Transaction not found")
		return
	}

	if err := s.ledger.Delete(r.Context(), ownerFromContext(r.Context()), id); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
