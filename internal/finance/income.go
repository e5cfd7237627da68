// Package finance implements the budgeting engine: income normalization,
// 50/30/20 bucket allocation, recurring-transaction projection and solvency
// forecasting. Every function is pure and deterministic given its inputs; the
// caller supplies the clock where "the current month" matters.
package finance

import (
	"math"
	"time"

	"bilancio/internal/core"
)

// CalculateMonthlyIncome normalizes an income config into a net monthly
// amount for the target month. Fixed and manual modes are month-independent.
// Hourly mode counts billable days in the effective month: with PaymentDelay
// the income for month M is the work of M-1 (invoicing lag), so both the
// working-day count and the free-day lookup shift back one month.
func CalculateMonthlyIncome(cfg core.IncomeConfig, target time.Time) float64 {
	switch cfg.Mode {
	case core.IncomeFixed, core.IncomeManual:
		if cfg.Fixed == nil {
			return 0
		}
		return cfg.Fixed.Amount
	case core.IncomeHourly:
		if cfg.Hourly == nil {
			return 0
		}
		return hourlyMonthlyIncome(cfg.Hourly, target)
	default:
		return 0
	}
}

func hourlyMonthlyIncome(h *core.HourlyIncome, target time.Time) float64 {
	// Man-day rate assumes a five-day work week.
	manDayRate := h.HourlyRate * h.HoursPerWeek / 5

	effective := core.MonthStart(target)
	if h.PaymentDelay {
		effective = core.ShiftMonth(target, -1)
	}

	workingDays := float64(WorkingDays(effective.Year(), effective.Month()))
	freeDays := h.Adjustments[core.MonthKey(effective)]

	gross := (workingDays - freeDays) * manDayRate
	net := gross - h.Tax
	return math.Max(0, net)
}

// WorkingDays counts the Monday–Friday days of a calendar month.
func WorkingDays(year int, month time.Month) int {
	count := 0
	for day := 1; day <= core.DaysInMonth(year, month); day++ {
		switch time.Date(year, month, day, 0, 0, 0, 0, time.Local).Weekday() {
		case time.Saturday, time.Sunday:
		default:
			count++
		}
	}
	return count
}
