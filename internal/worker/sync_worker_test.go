package worker

import (
	"context"
	"testing"
	"time"

	"bilancio/internal/amqp"
	"bilancio/internal/budget/memory"
	"bilancio/internal/core"
	exportmem "bilancio/internal/export/memory"
)

func storedTransaction(t *testing.T, store *memory.Store, userID, description string) core.Transaction {
	t.Helper()
	tx := core.Transaction{
		Amount:      25,
		Category:    core.CategoryWant,
		Date:        time.Date(2024, time.April, 5, 0, 0, 0, 0, time.Local),
		Description: description,
	}
	saved, err := store.CreateTransaction(context.Background(), userID, tx)
	if err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}
	return saved
}

func TestSyncWorker_HandleSyncMessage(t *testing.T) {
	store := memory.New()
	sink := exportmem.New()
	w := NewSyncWorker(store, sink, 10)
	ctx := context.Background()

	saved := storedTransaction(t, store, "user-1", "Concert ticket")

	msg := amqp.NewTransactionSyncMessage("user-1", saved.ID)
	if err := w.HandleSyncMessage(ctx, msg); err != nil {
		t.Fatalf("HandleSyncMessage() error = %v", err)
	}

	rows := sink.Rows()
	if len(rows) != 1 {
		t.Fatalf("sink rows = %d, want 1", len(rows))
	}
	if rows[0].Transaction.Description != "Concert ticket" {
		t.Errorf("exported Description = %v, want Concert ticket", rows[0].Transaction.Description)
	}
}

func TestSyncWorker_HandleSyncMessageMissingTransaction(t *testing.T) {
	store := memory.New()
	sink := exportmem.New()
	w := NewSyncWorker(store, sink, 10)

	msg := amqp.NewTransactionSyncMessage("user-1", "gone")
	if err := w.HandleSyncMessage(context.Background(), msg); err != nil {
		t.Fatalf("HandleSyncMessage() for a deleted transaction error = %v, want nil", err)
	}
	if len(sink.Rows()) != 0 {
		t.Error("nothing should be exported for a missing transaction")
	}
}

func TestSyncWorker_StartupExportCheck(t *testing.T) {
	store := memory.New()
	sink := exportmem.New()
	w := NewSyncWorker(store, sink, 2)
	ctx := context.Background()

	storedTransaction(t, store, "alice", "Rent")
	storedTransaction(t, store, "alice", "Gym")
	storedTransaction(t, store, "bob", "Books")

	// ListUsers only sees users with transactions or an income config.
	if err := w.StartupExportCheck(ctx); err != nil {
		t.Fatalf("StartupExportCheck() error = %v", err)
	}

	if got := len(sink.Rows()); got != 3 {
		t.Errorf("sink rows = %d, want 3", got)
	}
}

func TestSyncWorker_ExportIsIdempotent(t *testing.T) {
	store := memory.New()
	sink := exportmem.New()
	w := NewSyncWorker(store, sink, 10)
	ctx := context.Background()

	saved := storedTransaction(t, store, "alice", "Rent")

	msg := amqp.NewTransactionSyncMessage("alice", saved.ID)
	if err := w.HandleSyncMessage(ctx, msg); err != nil {
		t.Fatalf("HandleSyncMessage() error = %v", err)
	}

	// A reconcile sweep after the live message must not duplicate the row.
	if err := w.StartupExportCheck(ctx); err != nil {
		t.Fatalf("StartupExportCheck() error = %v", err)
	}
	if err := w.HandleSyncMessage(ctx, msg); err != nil {
		t.Fatalf("HandleSyncMessage() retry error = %v", err)
	}

	if got := len(sink.Rows()); got != 1 {
		t.Errorf("sink rows = %d, want 1", got)
	}
}
