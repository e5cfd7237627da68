package core

import "time"

// BudgetBuckets is the 50/30/20 split of a net monthly income. Derived, never
// stored.
type BudgetBuckets struct {
	Needs   float64
	Wants   float64
	Savings float64
}

// Add returns the component-wise sum of two bucket sets.
func (b BudgetBuckets) Add(o BudgetBuckets) BudgetBuckets {
	return BudgetBuckets{
		Needs:   b.Needs + o.Needs,
		Wants:   b.Wants + o.Wants,
		Savings: b.Savings + o.Savings,
	}
}

// BucketStatus describes one bucket inside an overview computation.
type BucketStatus struct {
	Allocated        float64
	Spent            float64
	Remaining        float64
	ReservedForGoals float64
	SafeToSpend      float64
}

// FinanceOverview is the all-time aggregate view: current-month base income
// plus every one-off income ever logged, against all-time spend per bucket.
type FinanceOverview struct {
	TotalIncome float64
	Needs       BucketStatus
	Wants       BucketStatus
	Savings     BucketStatus
}

// ExtraIncomeAllocation records how one income transaction was split across
// buckets, for per-source attribution in the monthly breakdown.
type ExtraIncomeAllocation struct {
	Description  string
	Contribution BudgetBuckets
}

// MonthlyIncomeDetails is the month-scoped income breakdown.
type MonthlyIncomeDetails struct {
	Buckets     BudgetBuckets
	BaseBuckets BudgetBuckets
	ExtraIncome []ExtraIncomeAllocation
}

// SolvencyReport is the result of the forward-looking affordability check.
// FailingMonths are month starts in chronological order.
type SolvencyReport struct {
	HasAlert          bool
	FirstFailingMonth time.Time // zero when no month fails
	FailingMonths     []time.Time
}

// GoalTimeline estimates how long a goal takes to fund out of its bucket.
// Achievable is false when the available monthly contribution is zero or
// negative; Months is meaningless in that case.
type GoalTimeline struct {
	Months              int
	MonthlyContribution float64
	Achievable          bool
}
