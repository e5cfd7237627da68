package finance

import (
	"time"

	"bilancio/internal/core"
)

// CalculateMonthlyIncomeDetails breaks the target month's income down per
// source. The base income forms BaseBuckets; every income transaction dated
// inside the month contributes its own 50/30/20 split as one allocation
// entry, so the caller can show why each bucket limit is what it is.
func CalculateMonthlyIncomeDetails(cfg core.IncomeConfig, txs []core.Transaction, target time.Time) core.MonthlyIncomeDetails {
	base := CalculateBuckets(CalculateMonthlyIncome(cfg, target))

	details := core.MonthlyIncomeDetails{
		BaseBuckets: base,
		Buckets:     base,
	}
	for _, tx := range txs {
		if tx.Category != core.CategoryIncome || !core.SameMonth(tx.Date, target) {
			continue
		}
		contribution := CalculateBuckets(tx.Amount)
		details.ExtraIncome = append(details.ExtraIncome, core.ExtraIncomeAllocation{
			Description:  tx.Description,
			Contribution: contribution,
		})
		details.Buckets = details.Buckets.Add(contribution)
	}
	return details
}
