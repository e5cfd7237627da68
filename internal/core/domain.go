package core

import (
	"errors"
	"strings"
	"time"
)

const (
	CategoryNeed   Category = "need"
	CategoryWant   Category = "want"
	CategorySaving Category = "saving"
	CategoryIncome Category = "income"
)

const (
	IncomeFixed  IncomeMode = "fixed"
	IncomeManual IncomeMode = "manual"
	IncomeHourly IncomeMode = "hourly"
)

const (
	GoalShortTerm GoalType = "short-term"
	GoalLongTerm  GoalType = "long-term"
	GoalReserve   GoalType = "reserve"
)

const (
	StrategyRecurringWants SavingStrategy = "recurring-wants"
	StrategyLowerSavings   SavingStrategy = "lower-savings"
	StrategyManual         SavingStrategy = "manual"
)

type (
	Category       string
	IncomeMode     string
	GoalType       string
	SavingStrategy string

	// Transaction is a single ledger entry. Entries with IsRecurring set act
	// as templates: their Date anchors the day-of-month and the first eligible
	// projection month, and future months derive virtual instances at read
	// time without ever duplicating the stored row.
	Transaction struct {
		ID                string
		Amount            float64
		Category          Category
		Date              time.Time
		Description       string
		IsRecurring       bool
		RecurringEndDate  time.Time // zero value means no end date
		RecurringSourceID string    // links a one-off override to its template
		Metadata          map[string]any
	}

	// FixedIncome is the payload for fixed and manual modes. The amount is the
	// literal net monthly income.
	FixedIncome struct {
		Amount float64
	}

	// HourlyIncome is the payload for hourly mode. Adjustments maps a
	// "YYYY-MM" month key to a free-days count subtracted from that month's
	// billable days; unknown keys default to 0.
	HourlyIncome struct {
		HourlyRate   float64
		HoursPerWeek float64
		Tax          float64
		PaymentDelay bool
		Adjustments  map[string]float64
	}

	// IncomeConfig is a tagged union discriminated by Mode. Exactly one
	// payload is active at a time; Validate enforces it at the construction
	// boundary so consumers never check for mixed state.
	IncomeConfig struct {
		Mode   IncomeMode
		Fixed  *FixedIncome
		Hourly *HourlyIncome
	}

	FinancialGoal struct {
		ID             string
		Name           string
		TargetAmount   float64
		CurrentAmount  float64
		Type           GoalType
		TargetDate     time.Time // zero value means no target date
		SavingStrategy SavingStrategy
		Metadata       map[string]any
	}
)

var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidCategory   = errors.New("invalid category")
	ErrInvalidDate       = errors.New("invalid date")
	ErrEmptyDescription  = errors.New("empty description")
	ErrInvalidIncomeMode = errors.New("invalid income mode")
	ErrMixedIncomeConfig = errors.New("income config must carry exactly one mode payload")
	ErrInvalidHours      = errors.New("hours per week out of range")
	ErrEmptyGoalName     = errors.New("empty goal name")
	ErrInvalidGoalType   = errors.New("invalid goal type")
	ErrInvalidGoalTarget = errors.New("invalid goal target amount")
)

func (c Category) Valid() bool {
	switch c {
	case CategoryNeed, CategoryWant, CategorySaving, CategoryIncome:
		return true
	default:
		return false
	}
}

func (t Transaction) Validate() error {
	if t.Amount < 0 {
		return ErrInvalidAmount
	}
	if !t.Category.Valid() {
		return ErrInvalidCategory
	}
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if !t.RecurringEndDate.IsZero() && t.RecurringEndDate.Before(t.Date) {
		return errors.New("recurring end date before start date")
	}
	return nil
}

func (c IncomeConfig) Validate() error {
	switch c.Mode {
	case IncomeFixed, IncomeManual:
		if c.Fixed == nil || c.Hourly != nil {
			return ErrMixedIncomeConfig
		}
		if c.Fixed.Amount < 0 {
			return ErrInvalidAmount
		}
	case IncomeHourly:
		if c.Hourly == nil || c.Fixed != nil {
			return ErrMixedIncomeConfig
		}
		h := c.Hourly
		if h.HourlyRate < 0 || h.Tax < 0 {
			return ErrInvalidAmount
		}
		if h.HoursPerWeek < 0 || h.HoursPerWeek > 168 {
			return ErrInvalidHours
		}
		for key, days := range h.Adjustments {
			if _, err := ParseMonthKey(key); err != nil {
				return errors.New("invalid adjustment month key: " + key)
			}
			if days < 0 {
				return errors.New("negative free days for " + key)
			}
		}
	default:
		return ErrInvalidIncomeMode
	}
	return nil
}

func (g FinancialGoal) Validate() error {
	if len(strings.TrimSpace(g.Name)) == 0 {
		return ErrEmptyGoalName
	}
	switch g.Type {
	case GoalShortTerm, GoalLongTerm, GoalReserve:
	default:
		return ErrInvalidGoalType
	}
	if g.TargetAmount <= 0 {
		return ErrInvalidGoalTarget
	}
	if g.CurrentAmount < 0 {
		return ErrInvalidAmount
	}
	switch g.SavingStrategy {
	case "", StrategyRecurringWants, StrategyLowerSavings, StrategyManual:
	default:
		return errors.New("invalid saving strategy")
	}
	return nil
}

// Remaining returns the amount still missing to reach the goal target,
// floored at zero for over-funded goals.
func (g FinancialGoal) Remaining() float64 {
	if g.CurrentAmount >= g.TargetAmount {
		return 0
	}
	return g.TargetAmount - g.CurrentAmount
}
