package services

import (
	"context"
	"testing"
	"time"

	"bilancio/internal/amqp"
	"bilancio/internal/budget/memory"
	"bilancio/internal/core"
)

type fakeAlertPublisher struct {
	alerts []*amqp.SolvencyAlertMessage
}

func (f *fakeAlertPublisher) PublishSolvencyAlert(_ context.Context, msg *amqp.SolvencyAlertMessage) error {
	f.alerts = append(f.alerts, msg)
	return nil
}

type fakeMailer struct {
	enabled bool
	sent    []string
}

func (f *fakeMailer) Enabled() bool { return f.enabled }

func (f *fakeMailer) SendSolvencyAlert(to, userID, firstFailingMonth string, _ []string, _ int) error {
	f.sent = append(f.sent, userID+"@"+firstFailingMonth)
	return nil
}

func seedUser(t *testing.T, store interface {
	PutIncomeConfig(ctx context.Context, userID string, cfg core.IncomeConfig) error
	CreateTransaction(ctx context.Context, userID string, tx core.Transaction) (core.Transaction, error)
}, userID string, income float64, rentAmount float64) {
	t.Helper()
	ctx := context.Background()

	cfg := core.IncomeConfig{
		Mode:  core.IncomeFixed,
		Fixed: &core.FixedIncome{Amount: income},
	}
	if err := store.PutIncomeConfig(ctx, userID, cfg); err != nil {
		t.Fatalf("PutIncomeConfig(%s) error = %v", userID, err)
	}

	rent := core.Transaction{
		Amount:      rentAmount,
		Category:    core.CategoryNeed,
		Date:        time.Date(2024, time.January, 1, 0, 0, 0, 0, time.Local),
		Description: "Rent",
		IsRecurring: true,
	}
	if _, err := store.CreateTransaction(ctx, userID, rent); err != nil {
		t.Fatalf("CreateTransaction(%s) error = %v", userID, err)
	}
}

func TestSolvencyService_RunOnce(t *testing.T) {
	store := memory.New()
	publisher := &fakeAlertPublisher{}
	mailer := &fakeMailer{enabled: true}

	// healthy: needs allocation 1500, rent 800
	seedUser(t, store, "healthy", 3000, 800)
	// broke: needs allocation 500, rent 800
	seedUser(t, store, "broke", 1000, 800)

	svc := NewSolvencyService(store, publisher, mailer, "owner@example.com", 3)

	from := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.Local)
	alerts, err := svc.RunOnce(context.Background(), from)
	if err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}

	if alerts != 1 {
		t.Fatalf("RunOnce() alerts = %d, want 1", alerts)
	}
	if len(publisher.alerts) != 1 {
		t.Fatalf("published alerts = %d, want 1", len(publisher.alerts))
	}

	msg := publisher.alerts[0]
	if msg.UserID != "broke" {
		t.Errorf("alert UserID = %v, want broke", msg.UserID)
	}
	if msg.FirstFailingMonth != "2024-03" {
		t.Errorf("alert FirstFailingMonth = %v, want 2024-03", msg.FirstFailingMonth)
	}
	if len(msg.FailingMonths) != 3 {
		t.Errorf("alert FailingMonths = %v, want every month in the horizon", msg.FailingMonths)
	}
	if msg.HorizonMonths != 3 {
		t.Errorf("alert HorizonMonths = %v, want 3", msg.HorizonMonths)
	}

	if len(mailer.sent) != 1 || mailer.sent[0] != "broke@2024-03" {
		t.Errorf("mailer.sent = %v, want [broke@2024-03]", mailer.sent)
	}
}

func TestSolvencyService_RunOnceMailerDisabled(t *testing.T) {
	store := memory.New()
	publisher := &fakeAlertPublisher{}
	mailer := &fakeMailer{enabled: false}

	seedUser(t, store, "broke", 1000, 800)

	svc := NewSolvencyService(store, publisher, mailer, "owner@example.com", 3)

	from := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.Local)
	if _, err := svc.RunOnce(context.Background(), from); err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}

	if len(publisher.alerts) != 1 {
		t.Errorf("published alerts = %d, want 1", len(publisher.alerts))
	}
	if len(mailer.sent) != 0 {
		t.Errorf("mailer.sent = %v, want none when disabled", mailer.sent)
	}
}

func TestSolvencyService_CheckUserWithoutIncomeConfig(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	tx := core.Transaction{
		Amount:      100,
		Category:    core.CategoryNeed,
		Date:        time.Date(2024, time.January, 1, 0, 0, 0, 0, time.Local),
		Description: "Rent",
		IsRecurring: true,
	}
	if _, err := store.CreateTransaction(ctx, "no-config", tx); err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}

	svc := NewSolvencyService(store, nil, nil, "", 6)

	report, err := svc.CheckUser(ctx, "no-config", time.Date(2024, time.March, 1, 0, 0, 0, 0, time.Local))
	if err != nil {
		t.Fatalf("CheckUser() error = %v", err)
	}
	if report.HasAlert {
		t.Error("CheckUser() without income config should not alert")
	}
}
