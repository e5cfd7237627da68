package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"bilancio/internal/amqp"
	"bilancio/internal/budget"
	"bilancio/internal/core"
	"bilancio/internal/finance"
	"bilancio/internal/log"
)

// AlertPublisher publishes solvency alert messages.
type AlertPublisher interface {
	PublishSolvencyAlert(ctx context.Context, msg *amqp.SolvencyAlertMessage) error
}

// AlertMailer sends solvency alert emails.
type AlertMailer interface {
	Enabled() bool
	SendSolvencyAlert(to, userID, firstFailingMonth string, failingMonths []string, horizonMonths int) error
}

// SolvencyService runs the projected solvency forecast for every known user
// and raises alerts for months where the needs allocation would not cover
// projected need spending.
type SolvencyService struct {
	store         budget.Store
	publisher     AlertPublisher
	mailer        AlertMailer
	alertEmail    string
	horizonMonths int
}

func NewSolvencyService(store budget.Store, publisher AlertPublisher, mailer AlertMailer, alertEmail string, horizonMonths int) *SolvencyService {
	return &SolvencyService{
		store:         store,
		publisher:     publisher,
		mailer:        mailer,
		alertEmail:    alertEmail,
		horizonMonths: horizonMonths,
	}
}

// CheckUser runs the forecast for a single user starting from the given month.
func (s *SolvencyService) CheckUser(ctx context.Context, userID string, from time.Time) (core.SolvencyReport, error) {
	cfg, err := s.store.GetIncomeConfig(ctx, userID)
	if err != nil {
		if errors.Is(err, budget.ErrNotFound) {
			// Without an income configuration every allocation is zero,
			// so there is nothing meaningful to forecast.
			return core.SolvencyReport{}, nil
		}
		return core.SolvencyReport{}, fmt.Errorf("load income config: %w", err)
	}

	txs, err := s.store.ListTransactions(ctx, userID)
	if err != nil {
		return core.SolvencyReport{}, fmt.Errorf("list transactions: %w", err)
	}

	goals, err := s.store.ListGoals(ctx, userID)
	if err != nil {
		return core.SolvencyReport{}, fmt.Errorf("list goals: %w", err)
	}

	return finance.CheckProjectedSolvency(cfg, txs, goals, s.horizonMonths, from), nil
}

// RunOnce scans all users, forecasts each one and raises alerts where needed.
// Returns the number of users with at least one failing month.
func (s *SolvencyService) RunOnce(ctx context.Context, now time.Time) (int, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return 0, fmt.Errorf("list users: %w", err)
	}

	slog.InfoContext(ctx, "Running solvency scan",
		"users", len(users),
		log.FieldHorizon, s.horizonMonths)

	alerts := 0
	for _, userID := range users {
		report, err := s.CheckUser(ctx, userID, now)
		if err != nil {
			slog.ErrorContext(ctx, "Solvency check failed",
				log.FieldUserID, userID, log.FieldError, err)
			continue
		}

		if !report.HasAlert {
			continue
		}

		alerts++
		s.raiseAlert(ctx, userID, report)
	}

	return alerts, nil
}

func (s *SolvencyService) raiseAlert(ctx context.Context, userID string, report core.SolvencyReport) {
	failing := make([]string, len(report.FailingMonths))
	for i, m := range report.FailingMonths {
		failing[i] = core.MonthKey(m)
	}
	first := core.MonthKey(report.FirstFailingMonth)

	slog.WarnContext(ctx, "Projected solvency alert",
		log.FieldUserID, userID,
		"first_failing_month", first,
		"failing_months", len(failing))

	if s.publisher != nil {
		msg := amqp.NewSolvencyAlertMessage(userID, first, failing, s.horizonMonths)
		if err := s.publisher.PublishSolvencyAlert(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "Failed to publish solvency alert",
				log.FieldUserID, userID, log.FieldError, err)
		}
	}

	if s.mailer != nil && s.mailer.Enabled() && s.alertEmail != "" {
		if err := s.mailer.SendSolvencyAlert(s.alertEmail, userID, first, failing, s.horizonMonths); err != nil {
			slog.ErrorContext(ctx, "Failed to send solvency alert email",
				log.FieldUserID, userID, log.FieldError, err)
		}
	}
}
