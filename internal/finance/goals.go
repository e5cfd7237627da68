package finance

import (
	"math"
	"time"

	"bilancio/internal/core"
)

// MonthlyCommitments are the recurring amounts already committed per bucket,
// used to compute what is left for a goal contribution.
type MonthlyCommitments struct {
	Wants   float64
	Savings float64
}

// Growth simulation stops after a century; a goal not reached by then is
// treated as unachievable.
const maxTimelineMonths = 1200

// EstimateGoalTimeline estimates how many months funding a goal takes out of
// its bucket. Short-term goals draw on wants, long-term and reserve goals on
// savings. A non-positive contribution makes the goal unachievable instead of
// dividing by zero. A positive assetGrowthRate (annual) compounds the already
// saved amount monthly while contributions accumulate.
func EstimateGoalTimeline(goal core.FinancialGoal, buckets core.BudgetBuckets, existing MonthlyCommitments, assetGrowthRate float64) core.GoalTimeline {
	var contribution float64
	switch goal.Type {
	case core.GoalShortTerm:
		contribution = buckets.Wants - existing.Wants
	default:
		contribution = buckets.Savings - existing.Savings
	}

	if contribution <= 0 {
		return core.GoalTimeline{Achievable: false, MonthlyContribution: 0}
	}

	remaining := goal.Remaining()
	if remaining == 0 {
		return core.GoalTimeline{Months: 0, MonthlyContribution: contribution, Achievable: true}
	}

	if assetGrowthRate <= 0 {
		return core.GoalTimeline{
			Months:              int(math.Ceil(remaining / contribution)),
			MonthlyContribution: contribution,
			Achievable:          true,
		}
	}

	monthlyRate := assetGrowthRate / 12
	balance := goal.CurrentAmount
	for month := 1; month <= maxTimelineMonths; month++ {
		balance = balance*(1+monthlyRate) + contribution
		if balance >= goal.TargetAmount {
			return core.GoalTimeline{Months: month, MonthlyContribution: contribution, Achievable: true}
		}
	}
	return core.GoalTimeline{Achievable: false, MonthlyContribution: contribution}
}

// CalculateDailyAllowance divides the remaining wants budget by the days left
// in the month, today included. The divisor is at least 1 by construction.
func CalculateDailyAllowance(remainingWants float64, today time.Time) float64 {
	remainingDays := core.DaysInMonth(today.Year(), today.Month()) - today.Day() + 1
	return remainingWants / float64(remainingDays)
}

// SavingTransactionDescription is the naming convention linking a recurring
// saving transaction to its goal.
func SavingTransactionDescription(goal core.FinancialGoal) string {
	return "Saving for " + goal.Name
}
