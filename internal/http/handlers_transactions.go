package http

import (
	"log/slog"
	"net/http"
	"strings"

	"quantofalta/internal/core"
	"quantofalta/internal/services"
)

type createTransactionRequest struct {
	Name     string `json:"name"`
	Amount   string `json:"amount"`
	Type     string `json:"type"`
	Date     string `json:"date"`
	Category string `json:"category"`
	Paid     bool   `json:"paid"`
	Force    bool   `json:"force"`
}

type createTransactionResponse struct {
	Transaction *core.Transaction `json:"transaction,omitempty"`
	Duplicate   bool              `json:"duplicate,omitempty"`
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}
	date, err := core.ParseDate(strings.TrimSpace(req.Date))
	if err != nil {
		writeError(w, err)
		return
	}

	in := services.TransactionInput{
		Name:     sanitizeInput(req.Name),
		Amount:   amount,
		Type:     core.TransactionType(strings.ToLower(strings.TrimSpace(req.Type))),
		Date:     date,
		Category: sanitizeInput(req.Category),
		Paid:     req.Paid,
	}

	tx, duplicate, err := s.service.AddTransaction(r.Context(), in, req.Force)
	if err != nil {
		slog.ErrorContext(r.Context(), "Transaction create error", "error", err, "name", in.Name)
		writeError(w, err)
		return
	}
	if duplicate {
		// Advisory only. The client may retry with force=true.
		writeJSON(w, http.StatusConflict, createTransactionResponse{Duplicate: true})
		return
	}

	s.invalidateOverviews()
	writeJSON(w, http.StatusCreated, createTransactionResponse{Transaction: &tx})
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	year, month, err := parseYearMonth(r)
	if err != nil {
		writeError(w, err)
		return
	}
	txs := s.service.MonthTransactions(year, month)
	if txs == nil {
		txs = []core.Transaction{}
	}
	writeJSON(w, http.StatusOK, txs)
}

func (s *Server) handlePayTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.service.MarkPaid(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	s.invalidateOverviews()
	writeJSON(w, http.StatusOK, nil)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.service.DeleteTransaction(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	s.invalidateOverviews()
	writeJSON(w, http.StatusNoContent, nil)
}
