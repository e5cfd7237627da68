// Package services provides business logic and orchestration services.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"bilancio/internal/budget"
	"bilancio/internal/core"
	"bilancio/internal/log"
)

// SyncPublisher publishes transaction sync messages for the export worker.
type SyncPublisher interface {
	PublishTransactionSync(ctx context.Context, userID, transactionID string) error
}

// TransactionService orchestrates transaction writes across the store and AMQP
type TransactionService struct {
	store     budget.Store
	publisher SyncPublisher
}

func NewTransactionService(store budget.Store, publisher SyncPublisher) *TransactionService {
	return &TransactionService{
		store:     store,
		publisher: publisher,
	}
}

// Create saves a transaction and publishes a sync message
func (s *TransactionService) Create(ctx context.Context, userID string, tx core.Transaction) (core.Transaction, error) {
	// Save to the store first (fast, reliable)
	saved, err := s.store.CreateTransaction(ctx, userID, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	// Publish async sync message (non-blocking)
	if err := s.publishSyncMessage(ctx, userID, saved.ID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			log.FieldTransactionID, saved.ID, log.FieldError, err)
		// Don't fail the request - transaction is saved locally
	}

	return saved, nil
}

// Update replaces a transaction and publishes a sync message
func (s *TransactionService) Update(ctx context.Context, userID string, tx core.Transaction) error {
	if err := s.store.UpdateTransaction(ctx, userID, tx); err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}

	if err := s.publishSyncMessage(ctx, userID, tx.ID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			log.FieldTransactionID, tx.ID, log.FieldError, err)
	}

	return nil
}

// Delete removes a transaction
func (s *TransactionService) Delete(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteTransaction(ctx, userID, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return nil
}

// Get returns a single transaction
func (s *TransactionService) Get(ctx context.Context, userID, id string) (core.Transaction, error) {
	return s.store.GetTransaction(ctx, userID, id)
}

// List returns all transactions for a user
func (s *TransactionService) List(ctx context.Context, userID string) ([]core.Transaction, error) {
	return s.store.ListTransactions(ctx, userID)
}

func (s *TransactionService) publishSyncMessage(ctx context.Context, userID, id string) error {
	if s.publisher == nil {
		slog.WarnContext(ctx, "Sync publisher not available, skipping sync message")
		return nil
	}

	return s.publisher.PublishTransactionSync(ctx, userID, id)
}
