package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"bilancio/internal/amqp"
	"bilancio/internal/budget"
	"bilancio/internal/export"
	"bilancio/internal/log"
)

// SyncWorker mirrors transactions from the store to the export sink. It
// remembers what it already exported, so reconcile sweeps only push rows
// that were missed.
type SyncWorker struct {
	store     budget.Store
	sink      export.Appender
	batchSize int

	mu       sync.Mutex
	exported map[string]struct{}
}

func NewSyncWorker(store budget.Store, sink export.Appender, batchSize int) *SyncWorker {
	return &SyncWorker{
		store:     store,
		sink:      sink,
		batchSize: batchSize,
		exported:  make(map[string]struct{}),
	}
}

func (w *SyncWorker) markExported(userID, txID string) {
	w.mu.Lock()
	w.exported[userID+"|"+txID] = struct{}{}
	w.mu.Unlock()
}

func (w *SyncWorker) alreadyExported(userID, txID string) bool {
	w.mu.Lock()
	_, ok := w.exported[userID+"|"+txID]
	w.mu.Unlock()
	return ok
}

// HandleSyncMessage processes a single transaction sync message from AMQP
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.TransactionSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		log.FieldUserID, msg.UserID,
		log.FieldTransactionID, msg.TransactionID)

	tx, err := w.store.GetTransaction(ctx, msg.UserID, msg.TransactionID)
	if err != nil {
		if errors.Is(err, budget.ErrNotFound) {
			// Deleted between publish and consume. Nothing to mirror.
			slog.WarnContext(ctx, "Transaction no longer exists, skipping",
				log.FieldUserID, msg.UserID,
				log.FieldTransactionID, msg.TransactionID)
			return nil
		}
		return fmt.Errorf("get transaction from store: %w", err)
	}

	if w.alreadyExported(msg.UserID, tx.ID) {
		return nil
	}

	ref, err := w.sink.Append(ctx, msg.UserID, tx)
	if err != nil {
		return fmt.Errorf("append to export sink: %w", err)
	}
	w.markExported(msg.UserID, tx.ID)

	slog.InfoContext(ctx, "Successfully exported transaction",
		log.FieldUserID, msg.UserID,
		log.FieldTransactionID, msg.TransactionID,
		log.FieldSheetsRef, ref)

	return nil
}

// ExportUser mirrors every stored transaction of one user to the sink.
// Used as a backup mechanism in case AMQP messages are lost.
func (w *SyncWorker) ExportUser(ctx context.Context, userID string) (int, error) {
	txs, err := w.store.ListTransactions(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("list transactions: %w", err)
	}

	exported := 0
	for _, tx := range txs {
		if w.alreadyExported(userID, tx.ID) {
			continue
		}
		if _, err := w.sink.Append(ctx, userID, tx); err != nil {
			slog.ErrorContext(ctx, "Failed to export transaction",
				log.FieldUserID, userID,
				log.FieldTransactionID, tx.ID,
				log.FieldError, err)
			continue
		}
		w.markExported(userID, tx.ID)
		exported++

		if w.batchSize > 0 && exported%w.batchSize == 0 {
			if err := ctx.Err(); err != nil {
				return exported, err
			}
		}
	}

	slog.InfoContext(ctx, "User export completed",
		log.FieldUserID, userID,
		"total", len(txs),
		"exported", exported)

	return exported, nil
}

// StartupExportCheck mirrors all users once at worker startup.
// Useful to recover from missed AMQP messages or worker downtime.
func (w *SyncWorker) StartupExportCheck(ctx context.Context) error {
	users, err := w.store.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("list users for startup check: %w", err)
	}

	if len(users) == 0 {
		slog.InfoContext(ctx, "No users found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Running startup export", "users", len(users))

	for _, userID := range users {
		if _, err := w.ExportUser(ctx, userID); err != nil {
			slog.ErrorContext(ctx, "Startup export failed for user",
				log.FieldUserID, userID, log.FieldError, err)
		}
	}

	return nil
}
