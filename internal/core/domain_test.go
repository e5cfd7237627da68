package core

import (
	"testing"
	"time"
)

func validTransaction() Transaction {
	return Transaction{
		ID:          "tx-1",
		Amount:      42.50,
		Category:    CategoryNeed,
		Date:        time.Date(2024, 3, 15, 0, 0, 0, 0, time.Local),
		Description: "Rent",
	}
}

func TestTransactionValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Transaction)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Transaction) {}},
		{name: "negative amount", mutate: func(tx *Transaction) { tx.Amount = -1 }, wantErr: true},
		{name: "zero amount allowed", mutate: func(tx *Transaction) { tx.Amount = 0 }},
		{name: "unknown category", mutate: func(tx *Transaction) { tx.Category = "misc" }, wantErr: true},
		{name: "income category", mutate: func(tx *Transaction) { tx.Category = CategoryIncome }},
		{name: "zero date", mutate: func(tx *Transaction) { tx.Date = time.Time{} }, wantErr: true},
		{name: "blank description", mutate: func(tx *Transaction) { tx.Description = "   " }, wantErr: true},
		{
			name: "end date before anchor",
			mutate: func(tx *Transaction) {
				tx.IsRecurring = true
				tx.RecurringEndDate = tx.Date.AddDate(0, -1, 0)
			},
			wantErr: true,
		},
		{
			name: "end date after anchor",
			mutate: func(tx *Transaction) {
				tx.IsRecurring = true
				tx.RecurringEndDate = tx.Date.AddDate(0, 6, 0)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := validTransaction()
			tt.mutate(&tx)
			err := tx.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestIncomeConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     IncomeConfig
		wantErr bool
	}{
		{
			name: "fixed",
			cfg:  IncomeConfig{Mode: IncomeFixed, Fixed: &FixedIncome{Amount: 30000}},
		},
		{
			name: "manual",
			cfg:  IncomeConfig{Mode: IncomeManual, Fixed: &FixedIncome{Amount: 1500}},
		},
		{
			name: "hourly",
			cfg: IncomeConfig{Mode: IncomeHourly, Hourly: &HourlyIncome{
				HourlyRate:   200,
				HoursPerWeek: 40,
				Tax:          5000,
				Adjustments:  map[string]float64{"2024-07": 5},
			}},
		},
		{
			name:    "fixed without payload",
			cfg:     IncomeConfig{Mode: IncomeFixed},
			wantErr: true,
		},
		{
			name: "both payloads set",
			cfg: IncomeConfig{
				Mode:   IncomeFixed,
				Fixed:  &FixedIncome{Amount: 100},
				Hourly: &HourlyIncome{},
			},
			wantErr: true,
		},
		{
			name:    "unknown mode",
			cfg:     IncomeConfig{Mode: "salary", Fixed: &FixedIncome{Amount: 100}},
			wantErr: true,
		},
		{
			name:    "negative fixed amount",
			cfg:     IncomeConfig{Mode: IncomeFixed, Fixed: &FixedIncome{Amount: -1}},
			wantErr: true,
		},
		{
			name: "hours out of range",
			cfg: IncomeConfig{Mode: IncomeHourly, Hourly: &HourlyIncome{
				HourlyRate:   10,
				HoursPerWeek: 169,
			}},
			wantErr: true,
		},
		{
			name: "bad adjustment key",
			cfg: IncomeConfig{Mode: IncomeHourly, Hourly: &HourlyIncome{
				HourlyRate:   10,
				HoursPerWeek: 40,
				Adjustments:  map[string]float64{"July 2024": 2},
			}},
			wantErr: true,
		},
		{
			name: "negative free days",
			cfg: IncomeConfig{Mode: IncomeHourly, Hourly: &HourlyIncome{
				HourlyRate:   10,
				HoursPerWeek: 40,
				Adjustments:  map[string]float64{"2024-07": -1},
			}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFinancialGoalValidate(t *testing.T) {
	valid := FinancialGoal{ID: "g-1", Name: "Vacation", TargetAmount: 20000, Type: GoalShortTerm}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}

	bad := valid
	bad.Type = "someday"
	if err := bad.Validate(); err == nil {
		t.Error("Validate() expected error for unknown goal type")
	}

	bad = valid
	bad.TargetAmount = 0
	if err := bad.Validate(); err == nil {
		t.Error("Validate() expected error for zero target")
	}
}

func TestGoalRemaining(t *testing.T) {
	g := FinancialGoal{TargetAmount: 1000, CurrentAmount: 250}
	if got := g.Remaining(); got != 750 {
		t.Errorf("Remaining() = %v, want 750", got)
	}
	g.CurrentAmount = 1200
	if got := g.Remaining(); got != 0 {
		t.Errorf("Remaining() overfunded = %v, want 0", got)
	}
}
