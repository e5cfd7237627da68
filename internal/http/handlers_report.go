package http

import (
	"errors"
	"net/http"
	"time"

	"bilancio/internal/budget"
	"bilancio/internal/core"
	"bilancio/internal/finance"
)

const (
	defaultSolvencyHorizon = 6
	maxSolvencyHorizon     = 24
)

// loadUserData fetches everything the read-model calculations need in one
// place. A missing income config is not an error here: the engine treats the
// zero config as zero income.
func (s *Server) loadUserData(r *http.Request, uid string) (core.IncomeConfig, []core.Transaction, []core.FinancialGoal, error) {
	ctx := r.Context()
	cfg, err := s.store.GetIncomeConfig(ctx, uid)
	if err != nil && !errors.Is(err, budget.ErrNotFound) {
		return core.IncomeConfig{}, nil, nil, err
	}
	txs, err := s.store.ListTransactions(ctx, uid)
	if err != nil {
		return core.IncomeConfig{}, nil, nil, err
	}
	goals, err := s.store.ListGoals(ctx, uid)
	if err != nil {
		return core.IncomeConfig{}, nil, nil, err
	}
	return cfg, txs, goals, nil
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)

	if cached, ok := s.overviewCache.Get(uid); ok {
		writeJSON(w, http.StatusOK, newOverviewView(cached))
		return
	}

	cfg, txs, goals, err := s.loadUserData(r, uid)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load financial data")
		return
	}

	overview := finance.CalculateFinanceOverview(cfg, txs, goals, s.now())
	s.overviewCache.Set(uid, overview)
	writeJSON(w, http.StatusOK, newOverviewView(overview))
}

func (s *Server) handleMonthExpenses(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	month, err := monthParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid month, expected YYYY-MM")
		return
	}

	key := monthCacheKey(uid, month)
	if cached, ok := s.expensesCache.Get(key); ok {
		writeJSON(w, http.StatusOK, newTransactionViews(cached))
		return
	}

	txs, err := s.store.ListTransactions(r.Context(), uid)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load transactions")
		return
	}

	expenses := finance.ExpensesForMonth(txs, month)
	s.expensesCache.Set(key, expenses)
	writeJSON(w, http.StatusOK, newTransactionViews(expenses))
}

func (s *Server) handleMonthIncome(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	month, err := monthParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid month, expected YYYY-MM")
		return
	}

	key := monthCacheKey(uid, month)
	if cached, ok := s.incomeCache.Get(key); ok {
		writeJSON(w, http.StatusOK, newIncomeDetailsView(cached))
		return
	}

	cfg, txs, _, err := s.loadUserData(r, uid)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load financial data")
		return
	}

	details := finance.CalculateMonthlyIncomeDetails(cfg, txs, month)
	s.incomeCache.Set(key, details)
	writeJSON(w, http.StatusOK, newIncomeDetailsView(details))
}

func (s *Server) handleSolvency(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	horizon, err := horizonParam(r, defaultSolvencyHorizon, maxSolvencyHorizon)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cfg, txs, goals, err := s.loadUserData(r, uid)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load financial data")
		return
	}

	report := finance.CheckProjectedSolvency(cfg, txs, goals, horizon, s.now())
	writeJSON(w, http.StatusOK, newSolvencyView(report, horizon))
}

func (s *Server) handleAllowance(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)

	cfg, txs, _, err := s.loadUserData(r, uid)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load financial data")
		return
	}

	today := s.now()
	details := finance.CalculateMonthlyIncomeDetails(cfg, txs, today)
	spent := wantSpendForMonth(txs, today)
	remaining := details.Buckets.Wants - spent

	writeJSON(w, http.StatusOK, allowanceView{
		Month:          core.MonthKey(today),
		DailyAllowance: finance.CalculateDailyAllowance(remaining, today),
		RemainingWants: remaining,
		RemainingDays:  core.DaysInMonth(today.Year(), today.Month()) - today.Day() + 1,
	})
}

func wantSpendForMonth(txs []core.Transaction, month time.Time) float64 {
	var total float64
	for _, tx := range finance.ExpensesForMonth(txs, month) {
		if tx.Category == core.CategoryWant {
			total += tx.Amount
		}
	}
	return total
}
