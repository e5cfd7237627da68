// Package budget defines the ports between the calculation engine and the
// persistence backends. The engine itself never touches a store; handlers and
// services read through these interfaces and hand plain data to the engine.
package budget

import (
	"context"
	"errors"

	"bilancio/internal/core"
)

var ErrNotFound = errors.New("not found")

type (
	// TransactionStore persists the per-user ledger. Recurring templates live
	// in the same table as one-off entries; virtual instances are never
	// stored.
	TransactionStore interface {
		CreateTransaction(ctx context.Context, userID string, tx core.Transaction) (core.Transaction, error)
		GetTransaction(ctx context.Context, userID, id string) (core.Transaction, error)
		ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error)
		UpdateTransaction(ctx context.Context, userID string, tx core.Transaction) error
		DeleteTransaction(ctx context.Context, userID, id string) error
	}

	// IncomeConfigStore holds one income config per user, replaced wholesale
	// on edit.
	IncomeConfigStore interface {
		GetIncomeConfig(ctx context.Context, userID string) (core.IncomeConfig, error)
		PutIncomeConfig(ctx context.Context, userID string, cfg core.IncomeConfig) error
	}

	GoalStore interface {
		CreateGoal(ctx context.Context, userID string, g core.FinancialGoal) (core.FinancialGoal, error)
		GetGoal(ctx context.Context, userID, id string) (core.FinancialGoal, error)
		ListGoals(ctx context.Context, userID string) ([]core.FinancialGoal, error)
		UpdateGoal(ctx context.Context, userID string, g core.FinancialGoal) error
		DeleteGoal(ctx context.Context, userID, id string) error
	}

	// Store is the unified backend surface the factory hands out. ListUsers
	// lets the solvency worker scan every profile.
	Store interface {
		TransactionStore
		IncomeConfigStore
		GoalStore
		ListUsers(ctx context.Context) ([]string, error)
	}
)
