// This file implements parsing and validation of JSON request bodies and
// path/query parameters shared by the handlers.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"bilancio/internal/core"
)

const maxBodySize = 1 << 20 // 1 MiB

// decodeJSON reads the request body into v.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodySize))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// userID extracts the caller identity from the X-User-ID header.
func userID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("X-User-ID"))
}

// requireUser rejects requests without an identity header.
func (s *Server) requireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if userID(r) == "" {
			writeError(w, http.StatusUnauthorized, "missing X-User-ID header")
			return
		}
		next(w, r)
	}
}

// monthParam parses the {month} path segment as "YYYY-MM".
func monthParam(r *http.Request) (time.Time, error) {
	return core.ParseMonthKey(r.PathValue("month"))
}

// horizonParam parses ?horizon=N with a default and cap.
func horizonParam(r *http.Request, def, max int) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get("horizon"))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid horizon %q", v)
	}
	if n > max {
		n = max
	}
	return n, nil
}

// amountField accepts either a JSON number or a decimal string with dot or
// comma separator ("12.34", "12,34").
type amountField struct {
	value float64
	set   bool
}

func (a *amountField) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := core.ParseAmount(s)
		if err != nil {
			return err
		}
		a.value = v
		a.set = true
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	a.value = f
	a.set = true
	return nil
}

type transactionRequest struct {
	Amount            amountField    `json:"amount"`
	Category          string         `json:"category"`
	Date              string         `json:"date"`
	Description       string         `json:"description"`
	IsRecurring       bool           `json:"isRecurring"`
	RecurringEndDate  string         `json:"recurringEndDate"`
	RecurringSourceID string         `json:"recurringSourceId"`
	Metadata          map[string]any `json:"metadata"`
}

func (req transactionRequest) toTransaction(id string) (core.Transaction, error) {
	if !req.Amount.set {
		return core.Transaction{}, errors.New("missing amount")
	}

	date, err := core.ParseDate(req.Date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("invalid date %q: %w", req.Date, err)
	}

	tx := core.Transaction{
		ID:                id,
		Amount:            req.Amount.value,
		Category:          core.Category(strings.TrimSpace(req.Category)),
		Date:              date,
		Description:       strings.TrimSpace(req.Description),
		IsRecurring:       req.IsRecurring,
		RecurringSourceID: strings.TrimSpace(req.RecurringSourceID),
		Metadata:          req.Metadata,
	}

	if v := strings.TrimSpace(req.RecurringEndDate); v != "" {
		end, err := core.ParseDate(v)
		if err != nil {
			return core.Transaction{}, fmt.Errorf("invalid recurring end date %q: %w", v, err)
		}
		tx.RecurringEndDate = end
	}

	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}

type incomeConfigRequest struct {
	Mode         string             `json:"mode"`
	Amount       amountField        `json:"amount"`
	HourlyRate   amountField        `json:"hourlyRate"`
	HoursPerWeek float64            `json:"hoursPerWeek"`
	Tax          amountField        `json:"tax"`
	PaymentDelay bool               `json:"paymentDelay"`
	Adjustments  map[string]float64 `json:"adjustments"`
}

func (req incomeConfigRequest) toIncomeConfig() (core.IncomeConfig, error) {
	cfg := core.IncomeConfig{Mode: core.IncomeMode(strings.TrimSpace(req.Mode))}

	switch cfg.Mode {
	case core.IncomeFixed, core.IncomeManual:
		if !req.Amount.set {
			return core.IncomeConfig{}, errors.New("missing amount")
		}
		cfg.Fixed = &core.FixedIncome{Amount: req.Amount.value}
	case core.IncomeHourly:
		cfg.Hourly = &core.HourlyIncome{
			HourlyRate:   req.HourlyRate.value,
			HoursPerWeek: req.HoursPerWeek,
			Tax:          req.Tax.value,
			PaymentDelay: req.PaymentDelay,
			Adjustments:  req.Adjustments,
		}
	}

	if err := cfg.Validate(); err != nil {
		return core.IncomeConfig{}, err
	}
	return cfg, nil
}

type goalRequest struct {
	Name           string         `json:"name"`
	TargetAmount   amountField    `json:"targetAmount"`
	CurrentAmount  amountField    `json:"currentAmount"`
	Type           string         `json:"type"`
	TargetDate     string         `json:"targetDate"`
	SavingStrategy string         `json:"savingStrategy"`
	Metadata       map[string]any `json:"metadata"`
}

func (req goalRequest) toGoal(id string) (core.FinancialGoal, error) {
	goal := core.FinancialGoal{
		ID:             id,
		Name:           strings.TrimSpace(req.Name),
		TargetAmount:   req.TargetAmount.value,
		CurrentAmount:  req.CurrentAmount.value,
		Type:           core.GoalType(strings.TrimSpace(req.Type)),
		SavingStrategy: core.SavingStrategy(strings.TrimSpace(req.SavingStrategy)),
		Metadata:       req.Metadata,
	}

	if v := strings.TrimSpace(req.TargetDate); v != "" {
		date, err := core.ParseDate(v)
		if err != nil {
			return core.FinancialGoal{}, fmt.Errorf("invalid target date %q: %w", v, err)
		}
		goal.TargetDate = date
	}

	if err := goal.Validate(); err != nil {
		return core.FinancialGoal{}, err
	}
	return goal, nil
}
