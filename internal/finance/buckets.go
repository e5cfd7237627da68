package finance

import (
	"math"
	"time"

	"bilancio/internal/core"
)

// Bucket ratios of the 50/30/20 rule.
const (
	NeedsRatio   = 0.5
	WantsRatio   = 0.3
	SavingsRatio = 0.2
)

// CalculateBuckets splits a net monthly income into needs/wants/savings.
// No rounding: callers format for display, the engine keeps full precision.
func CalculateBuckets(netIncome float64) core.BudgetBuckets {
	return core.BudgetBuckets{
		Needs:   netIncome * NeedsRatio,
		Wants:   netIncome * WantsRatio,
		Savings: netIncome * SavingsRatio,
	}
}

// CalculateSafeToSpend returns the allocation left after spend and goal
// reservations, floored at zero.
func CalculateSafeToSpend(allocated, spent, reserved float64) float64 {
	return math.Max(0, allocated-spent-reserved)
}

// CalculateFinanceOverview builds the all-time aggregate view. Base income is
// computed for the month of now; every income-category transaction is added
// on top regardless of its date, and spend per bucket sums all transactions
// ever logged. This running-total semantic is deliberate and distinct from
// the month-scoped views used by the monthly breakdown and the solvency
// forecast.
//
// ReservedForGoals is always zero here: goals only reduce a bucket once they
// are materialized as a recurring saving transaction. Intentional
// simplification, not a bug.
func CalculateFinanceOverview(cfg core.IncomeConfig, txs []core.Transaction, goals []core.FinancialGoal, now time.Time) core.FinanceOverview {
	total := CalculateMonthlyIncome(cfg, now)

	spent := map[core.Category]float64{}
	for _, tx := range txs {
		if tx.Category == core.CategoryIncome {
			total += tx.Amount
			continue
		}
		spent[tx.Category] += tx.Amount
	}

	buckets := CalculateBuckets(total)
	return core.FinanceOverview{
		TotalIncome: total,
		Needs:       bucketStatus(buckets.Needs, spent[core.CategoryNeed]),
		Wants:       bucketStatus(buckets.Wants, spent[core.CategoryWant]),
		Savings:     bucketStatus(buckets.Savings, spent[core.CategorySaving]),
	}
}

func bucketStatus(allocated, spent float64) core.BucketStatus {
	const reserved = 0
	return core.BucketStatus{
		Allocated:        allocated,
		Spent:            spent,
		Remaining:        allocated - spent,
		ReservedForGoals: reserved,
		SafeToSpend:      CalculateSafeToSpend(allocated, spent, reserved),
	}
}
