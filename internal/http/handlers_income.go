package http

import (
	"errors"
	"net/http"

	"bilancio/internal/budget"
)

func (s *Server) handleGetIncomeConfig(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)

	cfg, err := s.store.GetIncomeConfig(r.Context(), uid)
	if errors.Is(err, budget.ErrNotFound) {
		writeError(w, http.StatusNotFound, "income config not set")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load income config")
		return
	}
	writeJSON(w, http.StatusOK, newIncomeConfigView(cfg))
}

func (s *Server) handlePutIncomeConfig(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)

	var req incomeConfigRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	cfg, err := req.toIncomeConfig()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.store.PutIncomeConfig(r.Context(), uid, cfg); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save income config")
		return
	}

	s.invalidateUser(uid)
	writeJSON(w, http.StatusOK, newIncomeConfigView(cfg))
}
