// Package postgres implements budget.Store on PostgreSQL for deployments
// that outgrow the single-file SQLite backend. Same contract, $n
// placeholders.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"bilancio/internal/budget"
	"bilancio/internal/core"
)

const schema = `
CREATE TABLE IF NOT EXISTS transactions (
    id                  TEXT PRIMARY KEY,
    user_id             TEXT NOT NULL,
    amount              DOUBLE PRECISION NOT NULL,
    category            TEXT NOT NULL,
    date                TEXT NOT NULL,
    description         TEXT NOT NULL,
    is_recurring        BOOLEAN NOT NULL DEFAULT FALSE,
    recurring_end_date  TEXT,
    recurring_source_id TEXT,
    metadata            JSONB,
    created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_transactions_user ON transactions (user_id);

CREATE TABLE IF NOT EXISTS income_configs (
    user_id        TEXT PRIMARY KEY,
    mode           TEXT NOT NULL,
    amount         DOUBLE PRECISION,
    hourly_rate    DOUBLE PRECISION,
    hours_per_week DOUBLE PRECISION,
    tax            DOUBLE PRECISION,
    payment_delay  BOOLEAN,
    adjustments    JSONB,
    updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS goals (
    id              TEXT PRIMARY KEY,
    user_id         TEXT NOT NULL,
    name            TEXT NOT NULL,
    target_amount   DOUBLE PRECISION NOT NULL,
    current_amount  DOUBLE PRECISION NOT NULL DEFAULT 0,
    type            TEXT NOT NULL,
    target_date     TEXT,
    saving_strategy TEXT,
    metadata        JSONB,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_goals_user ON goals (user_id);
`

type Repository struct {
	db *sql.DB
}

func NewRepository(databaseURL string) (*Repository, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) CreateTransaction(ctx context.Context, userID string, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	metadata, err := encodeMetadata(tx.Metadata)
	if err != nil {
		return core.Transaction{}, err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO transactions (id, user_id, amount, category, date, description, is_recurring, recurring_end_date, recurring_source_id, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		tx.ID, userID, tx.Amount, string(tx.Category), core.FormatDate(tx.Date), tx.Description,
		tx.IsRecurring, nullableDate(tx.RecurringEndDate), nullableString(tx.RecurringSourceID), metadata)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	return tx, nil
}

func (r *Repository) GetTransaction(ctx context.Context, userID, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, amount, category, date, description, is_recurring, recurring_end_date, recurring_source_id, metadata
		FROM transactions WHERE user_id = $1 AND id = $2`, userID, id)
	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, budget.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return tx, nil
}

func (r *Repository) ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, amount, category, date, description, is_recurring, recurring_end_date, recurring_source_id, metadata
		FROM transactions WHERE user_id = $1 ORDER BY date, created_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

func (r *Repository) UpdateTransaction(ctx context.Context, userID string, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	metadata, err := encodeMetadata(tx.Metadata)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions
		SET amount = $1, category = $2, date = $3, description = $4, is_recurring = $5, recurring_end_date = $6, recurring_source_id = $7, metadata = $8
		WHERE user_id = $9 AND id = $10`,
		tx.Amount, string(tx.Category), core.FormatDate(tx.Date), tx.Description,
		tx.IsRecurring, nullableDate(tx.RecurringEndDate), nullableString(tx.RecurringSourceID), metadata,
		userID, tx.ID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return requireRow(res)
}

func (r *Repository) DeleteTransaction(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return requireRow(res)
}

func (r *Repository) GetIncomeConfig(ctx context.Context, userID string) (core.IncomeConfig, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT mode, amount, hourly_rate, hours_per_week, tax, payment_delay, adjustments
		FROM income_configs WHERE user_id = $1`, userID)

	var (
		mode        string
		amount      sql.NullFloat64
		rate        sql.NullFloat64
		hours       sql.NullFloat64
		tax         sql.NullFloat64
		delay       sql.NullBool
		adjustments []byte
	)
	err := row.Scan(&mode, &amount, &rate, &hours, &tax, &delay, &adjustments)
	if errors.Is(err, sql.ErrNoRows) {
		return core.IncomeConfig{}, budget.ErrNotFound
	}
	if err != nil {
		return core.IncomeConfig{}, fmt.Errorf("get income config: %w", err)
	}

	cfg := core.IncomeConfig{Mode: core.IncomeMode(mode)}
	switch cfg.Mode {
	case core.IncomeFixed, core.IncomeManual:
		cfg.Fixed = &core.FixedIncome{Amount: amount.Float64}
	case core.IncomeHourly:
		h := &core.HourlyIncome{
			HourlyRate:   rate.Float64,
			HoursPerWeek: hours.Float64,
			Tax:          tax.Float64,
			PaymentDelay: delay.Bool,
		}
		if len(adjustments) > 0 {
			if err := json.Unmarshal(adjustments, &h.Adjustments); err != nil {
				return core.IncomeConfig{}, fmt.Errorf("decode adjustments: %w", err)
			}
		}
		cfg.Hourly = h
	}
	return cfg, nil
}

func (r *Repository) PutIncomeConfig(ctx context.Context, userID string, cfg core.IncomeConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	var (
		amount      any
		rate        any
		hours       any
		tax         any
		delay       any
		adjustments any
	)
	switch cfg.Mode {
	case core.IncomeFixed, core.IncomeManual:
		amount = cfg.Fixed.Amount
	case core.IncomeHourly:
		h := cfg.Hourly
		rate, hours, tax, delay = h.HourlyRate, h.HoursPerWeek, h.Tax, h.PaymentDelay
		if len(h.Adjustments) > 0 {
			raw, err := json.Marshal(h.Adjustments)
			if err != nil {
				return fmt.Errorf("encode adjustments: %w", err)
			}
			adjustments = raw
		}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO income_configs (user_id, mode, amount, hourly_rate, hours_per_week, tax, payment_delay, adjustments, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			mode = EXCLUDED.mode,
			amount = EXCLUDED.amount,
			hourly_rate = EXCLUDED.hourly_rate,
			hours_per_week = EXCLUDED.hours_per_week,
			tax = EXCLUDED.tax,
			payment_delay = EXCLUDED.payment_delay,
			adjustments = EXCLUDED.adjustments,
			updated_at = NOW()`,
		userID, string(cfg.Mode), amount, rate, hours, tax, delay, adjustments)
	if err != nil {
		return fmt.Errorf("put income config: %w", err)
	}
	return nil
}

func (r *Repository) CreateGoal(ctx context.Context, userID string, g core.FinancialGoal) (core.FinancialGoal, error) {
	if err := g.Validate(); err != nil {
		return core.FinancialGoal{}, err
	}
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	metadata, err := encodeMetadata(g.Metadata)
	if err != nil {
		return core.FinancialGoal{}, err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO goals (id, user_id, name, target_amount, current_amount, type, target_date, saving_strategy, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		g.ID, userID, g.Name, g.TargetAmount, g.CurrentAmount, string(g.Type),
		nullableDate(g.TargetDate), nullableString(string(g.SavingStrategy)), metadata)
	if err != nil {
		return core.FinancialGoal{}, fmt.Errorf("create goal: %w", err)
	}
	return g, nil
}

func (r *Repository) GetGoal(ctx context.Context, userID, id string) (core.FinancialGoal, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, target_amount, current_amount, type, target_date, saving_strategy, metadata
		FROM goals WHERE user_id = $1 AND id = $2`, userID, id)
	g, err := scanGoal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.FinancialGoal{}, budget.ErrNotFound
	}
	if err != nil {
		return core.FinancialGoal{}, fmt.Errorf("get goal: %w", err)
	}
	return g, nil
}

func (r *Repository) ListGoals(ctx context.Context, userID string) ([]core.FinancialGoal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, target_amount, current_amount, type, target_date, saving_strategy, metadata
		FROM goals WHERE user_id = $1 ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var out []core.FinancialGoal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *Repository) UpdateGoal(ctx context.Context, userID string, g core.FinancialGoal) error {
	if err := g.Validate(); err != nil {
		return err
	}
	metadata, err := encodeMetadata(g.Metadata)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE goals
		SET name = $1, target_amount = $2, current_amount = $3, type = $4, target_date = $5, saving_strategy = $6, metadata = $7
		WHERE user_id = $8 AND id = $9`,
		g.Name, g.TargetAmount, g.CurrentAmount, string(g.Type),
		nullableDate(g.TargetDate), nullableString(string(g.SavingStrategy)), metadata,
		userID, g.ID)
	if err != nil {
		return fmt.Errorf("update goal: %w", err)
	}
	return requireRow(res)
}

func (r *Repository) DeleteGoal(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM goals WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	return requireRow(res)
}

func (r *Repository) ListUsers(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id FROM income_configs
		UNION
		SELECT DISTINCT user_id FROM transactions
		UNION
		SELECT DISTINCT user_id FROM goals
		ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		tx       core.Transaction
		category string
		date     string
		endDate  sql.NullString
		sourceID sql.NullString
		metadata []byte
	)
	if err := row.Scan(&tx.ID, &tx.Amount, &category, &date, &tx.Description, &tx.IsRecurring, &endDate, &sourceID, &metadata); err != nil {
		return core.Transaction{}, err
	}
	tx.Category = core.Category(category)
	parsed, err := core.ParseDate(date)
	if err != nil {
		return core.Transaction{}, err
	}
	tx.Date = parsed
	if endDate.Valid && endDate.String != "" {
		if tx.RecurringEndDate, err = core.ParseDate(endDate.String); err != nil {
			return core.Transaction{}, err
		}
	}
	tx.RecurringSourceID = sourceID.String
	if tx.Metadata, err = decodeMetadata(metadata); err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}

func scanGoal(row rowScanner) (core.FinancialGoal, error) {
	var (
		g          core.FinancialGoal
		goalType   string
		targetDate sql.NullString
		strategy   sql.NullString
		metadata   []byte
	)
	if err := row.Scan(&g.ID, &g.Name, &g.TargetAmount, &g.CurrentAmount, &goalType, &targetDate, &strategy, &metadata); err != nil {
		return core.FinancialGoal{}, err
	}
	g.Type = core.GoalType(goalType)
	if targetDate.Valid && targetDate.String != "" {
		parsed, err := core.ParseDate(targetDate.String)
		if err != nil {
			return core.FinancialGoal{}, err
		}
		g.TargetDate = parsed
	}
	g.SavingStrategy = core.SavingStrategy(strategy.String)
	var err error
	if g.Metadata, err = decodeMetadata(metadata); err != nil {
		return core.FinancialGoal{}, err
	}
	return g, nil
}

func encodeMetadata(m map[string]any) (any, error) {
	if len(m) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}
	return raw, nil
}

func decodeMetadata(raw []byte) (map[string]any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	return m, nil
}

func nullableDate(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return core.FormatDate(t)
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return budget.ErrNotFound
	}
	return nil
}
