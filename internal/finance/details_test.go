package finance

import (
	"math"
	"testing"
	"time"

	"bilancio/internal/core"
)

func TestCalculateMonthlyIncomeDetails(t *testing.T) {
	cfg := core.IncomeConfig{Mode: core.IncomeFixed, Fixed: &core.FixedIncome{Amount: 30000}}
	txs := []core.Transaction{
		{ID: "i1", Amount: 1000, Category: core.CategoryIncome, Date: day(2024, 6, 5), Description: "Side gig"},
		{ID: "i2", Amount: 500, Category: core.CategoryIncome, Date: day(2024, 6, 20), Description: "Refund"},
		// Outside the month or not income: ignored by the breakdown.
		{ID: "i3", Amount: 2000, Category: core.CategoryIncome, Date: day(2024, 5, 1), Description: "Old bonus"},
		{ID: "e1", Amount: 700, Category: core.CategoryNeed, Date: day(2024, 6, 2), Description: "Rent"},
	}

	got := CalculateMonthlyIncomeDetails(cfg, txs, month(2024, time.June))

	wantBase := core.BudgetBuckets{Needs: 15000, Wants: 9000, Savings: 6000}
	if got.BaseBuckets != wantBase {
		t.Errorf("BaseBuckets = %+v, want %+v", got.BaseBuckets, wantBase)
	}

	if len(got.ExtraIncome) != 2 {
		t.Fatalf("ExtraIncome has %d entries, want 2", len(got.ExtraIncome))
	}
	first := got.ExtraIncome[0]
	if first.Description != "Side gig" {
		t.Errorf("allocation description = %q, want Side gig", first.Description)
	}
	wantContribution := core.BudgetBuckets{Needs: 500, Wants: 300, Savings: 200}
	if first.Contribution != wantContribution {
		t.Errorf("allocation contribution = %+v, want %+v", first.Contribution, wantContribution)
	}

	// buckets = base + sum of allocations, per component.
	wantTotal := core.BudgetBuckets{Needs: 15750, Wants: 9450, Savings: 6300}
	if diff := math.Abs(got.Buckets.Needs-wantTotal.Needs) +
		math.Abs(got.Buckets.Wants-wantTotal.Wants) +
		math.Abs(got.Buckets.Savings-wantTotal.Savings); diff > 1e-9 {
		t.Errorf("Buckets = %+v, want %+v", got.Buckets, wantTotal)
	}
}

func TestCalculateMonthlyIncomeDetailsNoExtras(t *testing.T) {
	cfg := core.IncomeConfig{Mode: core.IncomeManual, Fixed: &core.FixedIncome{Amount: 2000}}
	got := CalculateMonthlyIncomeDetails(cfg, nil, month(2024, time.June))

	if got.Buckets != got.BaseBuckets {
		t.Errorf("Buckets = %+v, want equal to BaseBuckets %+v", got.Buckets, got.BaseBuckets)
	}
	if len(got.ExtraIncome) != 0 {
		t.Errorf("ExtraIncome has %d entries, want 0", len(got.ExtraIncome))
	}
}
