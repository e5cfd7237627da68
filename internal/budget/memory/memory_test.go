package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"bilancio/internal/budget"
	"bilancio/internal/core"
)

func sampleTransaction() core.Transaction {
	return core.Transaction{
		Amount:      12.50,
		Category:    core.CategoryWant,
		Date:        time.Date(2024, 5, 3, 0, 0, 0, 0, time.Local),
		Description: "Coffee",
	}
}

func TestTransactionLifecycle(t *testing.T) {
	ctx := context.Background()
	s := New()

	created, err := s.CreateTransaction(ctx, "alice", sampleTransaction())
	if err != nil {
		t.Fatalf("CreateTransaction error: %v", err)
	}
	if created.ID == "" {
		t.Fatal("CreateTransaction did not assign an id")
	}

	got, err := s.GetTransaction(ctx, "alice", created.ID)
	if err != nil || got.Description != "Coffee" {
		t.Fatalf("GetTransaction = %+v, %v", got, err)
	}

	got.Amount = 15
	if err := s.UpdateTransaction(ctx, "alice", got); err != nil {
		t.Fatalf("UpdateTransaction error: %v", err)
	}
	updated, _ := s.GetTransaction(ctx, "alice", created.ID)
	if updated.Amount != 15 {
		t.Errorf("amount after update = %v, want 15", updated.Amount)
	}

	if err := s.DeleteTransaction(ctx, "alice", created.ID); err != nil {
		t.Fatalf("DeleteTransaction error: %v", err)
	}
	if _, err := s.GetTransaction(ctx, "alice", created.ID); !errors.Is(err, budget.ErrNotFound) {
		t.Errorf("GetTransaction after delete error = %v, want ErrNotFound", err)
	}
}

func TestListTransactionsKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := New()
	for _, desc := range []string{"first", "second", "third"} {
		tx := sampleTransaction()
		tx.Description = desc
		if _, err := s.CreateTransaction(ctx, "alice", tx); err != nil {
			t.Fatalf("CreateTransaction(%s) error: %v", desc, err)
		}
	}

	list, err := s.ListTransactions(ctx, "alice")
	if err != nil {
		t.Fatalf("ListTransactions error: %v", err)
	}
	if len(list) != 3 || list[0].Description != "first" || list[2].Description != "third" {
		t.Errorf("ListTransactions order wrong: %+v", list)
	}
}

func TestUsersAreIsolated(t *testing.T) {
	ctx := context.Background()
	s := New()
	created, _ := s.CreateTransaction(ctx, "alice", sampleTransaction())

	if _, err := s.GetTransaction(ctx, "bob", created.ID); !errors.Is(err, budget.ErrNotFound) {
		t.Errorf("bob sees alice's transaction: err = %v", err)
	}
	list, _ := s.ListTransactions(ctx, "bob")
	if len(list) != 0 {
		t.Errorf("bob's list has %d entries, want 0", len(list))
	}
}

func TestIncomeConfigReplacedWholesale(t *testing.T) {
	ctx := context.Background()
	s := New()

	if _, err := s.GetIncomeConfig(ctx, "alice"); !errors.Is(err, budget.ErrNotFound) {
		t.Fatalf("GetIncomeConfig before put error = %v, want ErrNotFound", err)
	}

	fixed := core.IncomeConfig{Mode: core.IncomeFixed, Fixed: &core.FixedIncome{Amount: 30000}}
	if err := s.PutIncomeConfig(ctx, "alice", fixed); err != nil {
		t.Fatalf("PutIncomeConfig error: %v", err)
	}

	hourly := core.IncomeConfig{Mode: core.IncomeHourly, Hourly: &core.HourlyIncome{HourlyRate: 200, HoursPerWeek: 40}}
	if err := s.PutIncomeConfig(ctx, "alice", hourly); err != nil {
		t.Fatalf("PutIncomeConfig replace error: %v", err)
	}

	got, err := s.GetIncomeConfig(ctx, "alice")
	if err != nil {
		t.Fatalf("GetIncomeConfig error: %v", err)
	}
	if got.Mode != core.IncomeHourly || got.Fixed != nil {
		t.Errorf("config after replace = %+v, want hourly only", got)
	}
}

func TestInvalidEntitiesRejected(t *testing.T) {
	ctx := context.Background()
	s := New()

	bad := sampleTransaction()
	bad.Category = "misc"
	if _, err := s.CreateTransaction(ctx, "alice", bad); err == nil {
		t.Error("CreateTransaction accepted an invalid category")
	}

	if err := s.PutIncomeConfig(ctx, "alice", core.IncomeConfig{Mode: "salary"}); err == nil {
		t.Error("PutIncomeConfig accepted an invalid mode")
	}

	if _, err := s.CreateGoal(ctx, "alice", core.FinancialGoal{Name: "", TargetAmount: 10, Type: core.GoalShortTerm}); err == nil {
		t.Error("CreateGoal accepted an empty name")
	}
}

func TestGoalLifecycleAndListUsers(t *testing.T) {
	ctx := context.Background()
	s := New()

	g, err := s.CreateGoal(ctx, "alice", core.FinancialGoal{Name: "Trip", TargetAmount: 2000, Type: core.GoalShortTerm})
	if err != nil {
		t.Fatalf("CreateGoal error: %v", err)
	}
	g.CurrentAmount = 500
	if err := s.UpdateGoal(ctx, "alice", g); err != nil {
		t.Fatalf("UpdateGoal error: %v", err)
	}
	if err := s.PutIncomeConfig(ctx, "bob", core.IncomeConfig{Mode: core.IncomeFixed, Fixed: &core.FixedIncome{Amount: 100}}); err != nil {
		t.Fatalf("PutIncomeConfig error: %v", err)
	}

	users, err := s.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers error: %v", err)
	}
	if len(users) != 2 || users[0] != "alice" || users[1] != "bob" {
		t.Errorf("ListUsers = %v, want [alice bob]", users)
	}
}
