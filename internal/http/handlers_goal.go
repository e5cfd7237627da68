package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"bilancio/internal/budget"
	"bilancio/internal/core"
	"bilancio/internal/finance"
)

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)

	goals, err := s.store.ListGoals(r.Context(), uid)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list goals")
		return
	}
	views := make([]goalView, len(goals))
	for i, g := range goals {
		views[i] = newGoalView(g)
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)

	var req goalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	goal, err := req.toGoal("")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := s.store.CreateGoal(r.Context(), uid, goal)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create goal")
		return
	}

	s.invalidateUser(uid)
	writeJSON(w, http.StatusCreated, newGoalView(created))
}

func (s *Server) handleGetGoal(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)

	goal, err := s.store.GetGoal(r.Context(), uid, r.PathValue("id"))
	if errors.Is(err, budget.ErrNotFound) {
		writeError(w, http.StatusNotFound, "goal not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load goal")
		return
	}
	writeJSON(w, http.StatusOK, newGoalView(goal))
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)

	var req goalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	goal, err := req.toGoal(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	err = s.store.UpdateGoal(r.Context(), uid, goal)
	if errors.Is(err, budget.ErrNotFound) {
		writeError(w, http.StatusNotFound, "goal not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update goal")
		return
	}

	s.invalidateUser(uid)
	writeJSON(w, http.StatusOK, newGoalView(goal))
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)

	err := s.store.DeleteGoal(r.Context(), uid, r.PathValue("id"))
	if errors.Is(err, budget.ErrNotFound) {
		writeError(w, http.StatusNotFound, "goal not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete goal")
		return
	}

	s.invalidateUser(uid)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGoalTimeline(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)

	goal, err := s.store.GetGoal(r.Context(), uid, r.PathValue("id"))
	if errors.Is(err, budget.ErrNotFound) {
		writeError(w, http.StatusNotFound, "goal not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load goal")
		return
	}

	growth := 0.0
	if raw := r.URL.Query().Get("growthRate"); raw != "" {
		growth, err = strconv.ParseFloat(raw, 64)
		if err != nil || growth < 0 || growth > 1 {
			writeError(w, http.StatusBadRequest, "growthRate must be a fraction between 0 and 1")
			return
		}
	}

	cfg, txs, _, err := s.loadUserData(r, uid)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load financial data")
		return
	}

	today := s.now()
	buckets := finance.CalculateBuckets(finance.CalculateMonthlyIncome(cfg, today))
	timeline := finance.EstimateGoalTimeline(goal, buckets, recurringCommitments(txs, today), growth)

	writeJSON(w, http.StatusOK, timelineView{
		Months:              timeline.Months,
		MonthlyContribution: timeline.MonthlyContribution,
		Achievable:          timeline.Achievable,
	})
}

// recurringCommitments sums what recurring templates already claim from the
// wants and savings buckets in the given month. One-off spending is not a
// commitment; only entries that will repeat reduce future goal contributions.
func recurringCommitments(txs []core.Transaction, month time.Time) finance.MonthlyCommitments {
	var out finance.MonthlyCommitments
	for _, tx := range finance.ExpensesForMonth(txs, month) {
		if !tx.IsRecurring {
			continue
		}
		switch tx.Category {
		case core.CategoryWant:
			out.Wants += tx.Amount
		case core.CategorySaving:
			out.Savings += tx.Amount
		}
	}
	return out
}
