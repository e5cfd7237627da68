package http

import (
	"errors"
	"net/http"

	"bilancio/internal/budget"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)

	txs, err := s.txService.List(r.Context(), uid)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}
	writeJSON(w, http.StatusOK, newTransactionViews(txs))
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)

	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	tx, err := req.toTransaction("")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := s.txService.Create(r.Context(), uid, tx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create transaction")
		return
	}

	s.invalidateUser(uid)
	writeJSON(w, http.StatusCreated, newTransactionView(created))
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)

	tx, err := s.txService.Get(r.Context(), uid, r.PathValue("id"))
	if errors.Is(err, budget.ErrNotFound) {
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load transaction")
		return
	}
	writeJSON(w, http.StatusOK, newTransactionView(tx))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)

	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	tx, err := req.toTransaction(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	err = s.txService.Update(r.Context(), uid, tx)
	if errors.Is(err, budget.ErrNotFound) {
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update transaction")
		return
	}

	s.invalidateUser(uid)
	writeJSON(w, http.StatusOK, newTransactionView(tx))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)

	err := s.txService.Delete(r.Context(), uid, r.PathValue("id"))
	if errors.Is(err, budget.ErrNotFound) {
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete transaction")
		return
	}

	s.invalidateUser(uid)
	w.WriteHeader(http.StatusNoContent)
}
