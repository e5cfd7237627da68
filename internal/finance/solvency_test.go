package finance

import (
	"testing"
	"time"

	"bilancio/internal/core"
)

func fixedIncome(amount float64) core.IncomeConfig {
	return core.IncomeConfig{Mode: core.IncomeFixed, Fixed: &core.FixedIncome{Amount: amount}}
}

func TestCheckProjectedSolvencyHealthy(t *testing.T) {
	cfg := fixedIncome(3000) // needs bucket 1500
	txs := []core.Transaction{
		{ID: "rent", Amount: 900, Category: core.CategoryNeed, Date: day(2024, 1, 1), Description: "Rent", IsRecurring: true},
	}

	got := CheckProjectedSolvency(cfg, txs, nil, 6, month(2024, time.March))
	if got.HasAlert {
		t.Fatalf("HasAlert = true, want false: %+v", got)
	}
	if len(got.FailingMonths) != 0 || !got.FirstFailingMonth.IsZero() {
		t.Errorf("healthy report carries failing months: %+v", got)
	}
}

func TestCheckProjectedSolvencyFailsEveryMonth(t *testing.T) {
	cfg := fixedIncome(1000) // needs bucket 500
	txs := []core.Transaction{
		{ID: "rent", Amount: 900, Category: core.CategoryNeed, Date: day(2024, 1, 1), Description: "Rent", IsRecurring: true},
	}

	got := CheckProjectedSolvency(cfg, txs, nil, 4, month(2024, time.March))
	if !got.HasAlert {
		t.Fatal("HasAlert = false, want true")
	}
	if len(got.FailingMonths) != 4 {
		t.Fatalf("got %d failing months, want 4", len(got.FailingMonths))
	}
	if !got.FirstFailingMonth.Equal(month(2024, time.March)) {
		t.Errorf("FirstFailingMonth = %v, want 2024-03", got.FirstFailingMonth)
	}
	for i := 1; i < len(got.FailingMonths); i++ {
		if !got.FailingMonths[i-1].Before(got.FailingMonths[i]) {
			t.Errorf("failing months out of order: %v", got.FailingMonths)
		}
	}
}

// Hourly mode with per-month adjustments: the needs allocation varies month
// to month, so the same recurring commitment can clear one month and sink the
// next. The forecast must use month-specific income, not the current month's.
func TestCheckProjectedSolvencyMonthSpecificIncome(t *testing.T) {
	cfg := core.IncomeConfig{Mode: core.IncomeHourly, Hourly: &core.HourlyIncome{
		HourlyRate:   200,
		HoursPerWeek: 40,
		// 15 free days in April 2024: (22-15)*1600 = 11200, needs 5600.
		Adjustments: map[string]float64{"2024-04": 15},
	}}
	txs := []core.Transaction{
		{ID: "rent", Amount: 9000, Category: core.CategoryNeed, Date: day(2024, 1, 1), Description: "Rent", IsRecurring: true},
	}

	got := CheckProjectedSolvency(cfg, txs, nil, 3, month(2024, time.March))
	if !got.HasAlert {
		t.Fatal("HasAlert = false, want true for the adjusted month")
	}
	if len(got.FailingMonths) != 1 || !got.FailingMonths[0].Equal(month(2024, time.April)) {
		t.Errorf("FailingMonths = %v, want exactly April 2024", got.FailingMonths)
	}
}

// Month-scoped spend: a one-off need logged in a single month only affects
// that month, unlike the all-time overview aggregation.
func TestCheckProjectedSolvencyMonthScopedSpend(t *testing.T) {
	cfg := fixedIncome(2000) // needs 1000
	txs := []core.Transaction{
		{ID: "repair", Amount: 1500, Category: core.CategoryNeed, Date: day(2024, 4, 12), Description: "Car repair"},
	}

	got := CheckProjectedSolvency(cfg, txs, nil, 6, month(2024, time.March))
	if len(got.FailingMonths) != 1 || !got.FailingMonths[0].Equal(month(2024, time.April)) {
		t.Errorf("FailingMonths = %v, want exactly April 2024", got.FailingMonths)
	}
}

// Raising a recurring need's amount can only add failing months, never remove
// any.
func TestCheckProjectedSolvencyMonotonic(t *testing.T) {
	cfg := fixedIncome(3000)
	from := month(2024, time.January)
	template := core.Transaction{
		ID: "rent", Category: core.CategoryNeed, Date: day(2023, 6, 1),
		Description: "Rent", IsRecurring: true,
	}

	previous := -1
	for _, amount := range []float64{100, 800, 1400, 1500, 1501, 4000} {
		tmpl := template
		tmpl.Amount = amount
		report := CheckProjectedSolvency(cfg, []core.Transaction{tmpl}, nil, 12, from)
		if len(report.FailingMonths) < previous {
			t.Fatalf("amount %v produced %d failing months, previous amount produced %d",
				amount, len(report.FailingMonths), previous)
		}
		previous = len(report.FailingMonths)
	}
}

func TestCheckProjectedSolvencyWantsDoNotFail(t *testing.T) {
	cfg := fixedIncome(1000) // wants bucket 300
	txs := []core.Transaction{
		{ID: "hobby", Amount: 5000, Category: core.CategoryWant, Date: day(2024, 1, 1), Description: "Hobby", IsRecurring: true},
	}
	got := CheckProjectedSolvency(cfg, txs, nil, 6, month(2024, time.March))
	if got.HasAlert {
		t.Errorf("HasAlert = true, want false: only needs overruns flag a month")
	}
}

func TestCheckProjectedSolvencyZeroHorizon(t *testing.T) {
	got := CheckProjectedSolvency(fixedIncome(0), nil, nil, 0, month(2024, time.March))
	if got.HasAlert || len(got.FailingMonths) != 0 {
		t.Errorf("zero horizon report = %+v, want empty", got)
	}
}
