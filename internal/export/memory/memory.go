// Package memory provides an in-memory export sink for tests and local runs.
package memory

import (
	"context"
	"fmt"
	"sync"

	"bilancio/internal/core"
)

type Row struct {
	UserID      string
	Transaction core.Transaction
}

type Sink struct {
	mu   sync.Mutex
	rows []Row
}

func New() *Sink {
	return &Sink{}
}

// Append stores the transaction and returns a synthetic row reference.
func (s *Sink) Append(_ context.Context, userID string, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, Row{UserID: userID, Transaction: tx})
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

// Rows returns a copy of everything appended so far.
func (s *Sink) Rows() []Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Row(nil), s.rows...)
}
