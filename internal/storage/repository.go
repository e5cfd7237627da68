package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"bilancio/internal/budget"
	"bilancio/internal/core"
)

// SQLiteRepository implements budget.Store on a local SQLite file. Dates are
// stored as "YYYY-MM-DD" strings and parsed back through core.ParseDate so
// the local-calendar-date semantics survive the round trip.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, userID string, tx core.Transaction) (core.Transaction, error) {
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
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, userID, tx.Amount, string(tx.Category), core.FormatDate(tx.Date), tx.Description,
		tx.IsRecurring, nullableDate(tx.RecurringEndDate), nullableString(tx.RecurringSourceID), metadata)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	return tx, nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, userID, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, amount, category, date, description, is_recurring, recurring_end_date, recurring_source_id, metadata
		FROM transactions WHERE user_id = ? AND id = ?`, userID, id)
	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, budget.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return tx, nil
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, amount, category, date, description, is_recurring, recurring_end_date, recurring_source_id, metadata
		FROM transactions WHERE user_id = ? ORDER BY date, created_at, id`, userID)
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

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, userID string, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	metadata, err := encodeMetadata(tx.Metadata)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions
		SET amount = ?, category = ?, date = ?, description = ?, is_recurring = ?, recurring_end_date = ?, recurring_source_id = ?, metadata = ?
		WHERE user_id = ? AND id = ?`,
		tx.Amount, string(tx.Category), core.FormatDate(tx.Date), tx.Description,
		tx.IsRecurring, nullableDate(tx.RecurringEndDate), nullableString(tx.RecurringSourceID), metadata,
		userID, tx.ID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) GetIncomeConfig(ctx context.Context, userID string) (core.IncomeConfig, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT mode, amount, hourly_rate, hours_per_week, tax, payment_delay, adjustments
		FROM income_configs WHERE user_id = ?`, userID)

	var (
		mode        string
		amount      sql.NullFloat64
		rate        sql.NullFloat64
		hours       sql.NullFloat64
		tax         sql.NullFloat64
		delay       sql.NullBool
		adjustments sql.NullString
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
		if adjustments.Valid && adjustments.String != "" {
			if err := json.Unmarshal([]byte(adjustments.String), &h.Adjustments); err != nil {
				return core.IncomeConfig{}, fmt.Errorf("decode adjustments: %w", err)
			}
		}
		cfg.Hourly = h
	}
	return cfg, nil
}

func (r *SQLiteRepository) PutIncomeConfig(ctx context.Context, userID string, cfg core.IncomeConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	var (
		amount      sql.NullFloat64
		rate        sql.NullFloat64
		hours       sql.NullFloat64
		tax         sql.NullFloat64
		delay       sql.NullBool
		adjustments sql.NullString
	)
	switch cfg.Mode {
	case core.IncomeFixed, core.IncomeManual:
		amount = sql.NullFloat64{Float64: cfg.Fixed.Amount, Valid: true}
	case core.IncomeHourly:
		h := cfg.Hourly
		rate = sql.NullFloat64{Float64: h.HourlyRate, Valid: true}
		hours = sql.NullFloat64{Float64: h.HoursPerWeek, Valid: true}
		tax = sql.NullFloat64{Float64: h.Tax, Valid: true}
		delay = sql.NullBool{Bool: h.PaymentDelay, Valid: true}
		if len(h.Adjustments) > 0 {
			raw, err := json.Marshal(h.Adjustments)
			if err != nil {
				return fmt.Errorf("encode adjustments: %w", err)
			}
			adjustments = sql.NullString{String: string(raw), Valid: true}
		}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO income_configs (user_id, mode, amount, hourly_rate, hours_per_week, tax, payment_delay, adjustments, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (user_id) DO UPDATE SET
			mode = excluded.mode,
			amount = excluded.amount,
			hourly_rate = excluded.hourly_rate,
			hours_per_week = excluded.hours_per_week,
			tax = excluded.tax,
			payment_delay = excluded.payment_delay,
			adjustments = excluded.adjustments,
			updated_at = CURRENT_TIMESTAMP`,
		userID, string(cfg.Mode), amount, rate, hours, tax, delay, adjustments)
	if err != nil {
		return fmt.Errorf("put income config: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) CreateGoal(ctx context.Context, userID string, g core.FinancialGoal) (core.FinancialGoal, error) {
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
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, userID, g.Name, g.TargetAmount, g.CurrentAmount, string(g.Type),
		nullableDate(g.TargetDate), nullableString(string(g.SavingStrategy)), metadata)
	if err != nil {
		return core.FinancialGoal{}, fmt.Errorf("create goal: %w", err)
	}
	return g, nil
}

func (r *SQLiteRepository) GetGoal(ctx context.Context, userID, id string) (core.FinancialGoal, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, target_amount, current_amount, type, target_date, saving_strategy, metadata
		FROM goals WHERE user_id = ? AND id = ?`, userID, id)
	g, err := scanGoal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.FinancialGoal{}, budget.ErrNotFound
	}
	if err != nil {
		return core.FinancialGoal{}, fmt.Errorf("get goal: %w", err)
	}
	return g, nil
}

func (r *SQLiteRepository) ListGoals(ctx context.Context, userID string) ([]core.FinancialGoal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, target_amount, current_amount, type, target_date, saving_strategy, metadata
		FROM goals WHERE user_id = ? ORDER BY created_at, id`, userID)
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

func (r *SQLiteRepository) UpdateGoal(ctx context.Context, userID string, g core.FinancialGoal) error {
	if err := g.Validate(); err != nil {
		return err
	}
	metadata, err := encodeMetadata(g.Metadata)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE goals
		SET name = ?, target_amount = ?, current_amount = ?, type = ?, target_date = ?, saving_strategy = ?, metadata = ?
		WHERE user_id = ? AND id = ?`,
		g.Name, g.TargetAmount, g.CurrentAmount, string(g.Type),
		nullableDate(g.TargetDate), nullableString(string(g.SavingStrategy)), metadata,
		userID, g.ID)
	if err != nil {
		return fmt.Errorf("update goal: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) DeleteGoal(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM goals WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) ListUsers(ctx context.Context) ([]string, error) {
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
		metadata sql.NullString
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
		metadata   sql.NullString
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
	return string(raw), nil
}

func decodeMetadata(s sql.NullString) (map[string]any, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(s.String), &m); err != nil {
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
