package finance

import (
	"time"

	"bilancio/internal/core"
)

// CheckProjectedSolvency walks the next horizon months starting at the month
// of from and flags every month whose projected recurring needs exceed the
// needs allocation. Income and spend are month-scoped on purpose: the hourly
// mode's per-month adjustments and payment delay make the allocation vary
// month to month, and committed recurring needs are what the user cannot
// avoid regardless of discretionary spending not yet logged.
//
// Goals are accepted for contract parity with the overview but do not reserve
// amounts here; see CalculateFinanceOverview.
func CheckProjectedSolvency(cfg core.IncomeConfig, txs []core.Transaction, goals []core.FinancialGoal, horizonMonths int, from time.Time) core.SolvencyReport {
	var report core.SolvencyReport
	for i := 0; i < horizonMonths; i++ {
		month := core.ShiftMonth(from, i)

		buckets := CalculateBuckets(CalculateMonthlyIncome(cfg, month))

		var needSpend float64
		for _, tx := range ExpensesForMonth(txs, month) {
			if tx.Category == core.CategoryNeed {
				needSpend += tx.Amount
			}
		}

		if buckets.Needs-needSpend < 0 {
			report.FailingMonths = append(report.FailingMonths, month)
		}
	}
	if len(report.FailingMonths) > 0 {
		report.HasAlert = true
		report.FirstFailingMonth = report.FailingMonths[0]
	}
	return report
}
