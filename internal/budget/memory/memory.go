// Package memory is the in-process backend: the default for development and
// the fixture for handler tests. All maps are guarded by one mutex; the
// amounts involved make contention irrelevant.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"bilancio/internal/budget"
	"bilancio/internal/core"
)

type userData struct {
	txs     map[string]core.Transaction
	txOrder []string
	goals   map[string]core.FinancialGoal
	goalIDs []string
	income  *core.IncomeConfig
}

type Store struct {
	mu    sync.Mutex
	users map[string]*userData
}

func New() *Store {
	return &Store{users: make(map[string]*userData)}
}

func (s *Store) user(id string) *userData {
	u, ok := s.users[id]
	if !ok {
		u = &userData{
			txs:   make(map[string]core.Transaction),
			goals: make(map[string]core.FinancialGoal),
		}
		s.users[id] = u
	}
	return u
}

func (s *Store) CreateTransaction(_ context.Context, userID string, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	u := s.user(userID)
	if _, exists := u.txs[tx.ID]; !exists {
		u.txOrder = append(u.txOrder, tx.ID)
	}
	u.txs[tx.ID] = tx
	return tx, nil
}

func (s *Store) GetTransaction(_ context.Context, userID, id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.user(userID).txs[id]
	if !ok {
		return core.Transaction{}, budget.ErrNotFound
	}
	return tx, nil
}

func (s *Store) ListTransactions(_ context.Context, userID string) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.user(userID)
	out := make([]core.Transaction, 0, len(u.txOrder))
	for _, id := range u.txOrder {
		out = append(out, u.txs[id])
	}
	return out, nil
}

func (s *Store) UpdateTransaction(_ context.Context, userID string, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.user(userID)
	if _, ok := u.txs[tx.ID]; !ok {
		return budget.ErrNotFound
	}
	u.txs[tx.ID] = tx
	return nil
}

func (s *Store) DeleteTransaction(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.user(userID)
	if _, ok := u.txs[id]; !ok {
		return budget.ErrNotFound
	}
	delete(u.txs, id)
	for i, other := range u.txOrder {
		if other == id {
			u.txOrder = append(u.txOrder[:i], u.txOrder[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Store) GetIncomeConfig(_ context.Context, userID string) (core.IncomeConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.user(userID)
	if u.income == nil {
		return core.IncomeConfig{}, budget.ErrNotFound
	}
	return *u.income, nil
}

func (s *Store) PutIncomeConfig(_ context.Context, userID string, cfg core.IncomeConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user(userID).income = &cfg
	return nil
}

func (s *Store) CreateGoal(_ context.Context, userID string, g core.FinancialGoal) (core.FinancialGoal, error) {
	if err := g.Validate(); err != nil {
		return core.FinancialGoal{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	u := s.user(userID)
	if _, exists := u.goals[g.ID]; !exists {
		u.goalIDs = append(u.goalIDs, g.ID)
	}
	u.goals[g.ID] = g
	return g, nil
}

func (s *Store) GetGoal(_ context.Context, userID, id string) (core.FinancialGoal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.user(userID).goals[id]
	if !ok {
		return core.FinancialGoal{}, budget.ErrNotFound
	}
	return g, nil
}

func (s *Store) ListGoals(_ context.Context, userID string) ([]core.FinancialGoal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.user(userID)
	out := make([]core.FinancialGoal, 0, len(u.goalIDs))
	for _, id := range u.goalIDs {
		out = append(out, u.goals[id])
	}
	return out, nil
}

func (s *Store) UpdateGoal(_ context.Context, userID string, g core.FinancialGoal) error {
	if err := g.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.user(userID)
	if _, ok := u.goals[g.ID]; !ok {
		return budget.ErrNotFound
	}
	u.goals[g.ID] = g
	return nil
}

func (s *Store) DeleteGoal(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.user(userID)
	if _, ok := u.goals[id]; !ok {
		return budget.ErrNotFound
	}
	delete(u.goals, id)
	for i, other := range u.goalIDs {
		if other == id {
			u.goalIDs = append(u.goalIDs[:i], u.goalIDs[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.users))
	for id := range s.users {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}
