// Package sqlite implements port.FinanceStore on a local SQLite file.
// Used for development and for the chatctl CLI when no Supabase project
// is configured.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/saulomartins80/finnextho-bfa-go/internal/domain"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS usuarios (
	id                TEXT PRIMARY KEY,
	name              TEXT NOT NULL,
	subscription_plan TEXT NOT NULL DEFAULT 'free'
);

CREATE TABLE IF NOT EXISTS transacoes (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	valor      TEXT NOT NULL,
	descricao  TEXT NOT NULL,
	tipo       TEXT NOT NULL,
	categoria  TEXT NOT NULL,
	conta      TEXT NOT NULL,
	data       TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_transacoes_user ON transacoes(user_id);

CREATE TABLE IF NOT EXISTS investimentos (
	id          TEXT PRIMARY KEY,
	user_id     TEXT NOT NULL,
	nome        TEXT NOT NULL,
	valor       TEXT NOT NULL,
	tipo        TEXT NOT NULL,
	data        TEXT NOT NULL,
	instituicao TEXT NOT NULL DEFAULT '',
	created_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_investimentos_user ON investimentos(user_id);

CREATE TABLE IF NOT EXISTS metas (
	id             TEXT PRIMARY KEY,
	user_id        TEXT NOT NULL,
	meta           TEXT NOT NULL,
	valor_total    TEXT NOT NULL,
	valor_atual    TEXT NOT NULL,
	data_conclusao TEXT NOT NULL,
	categoria      TEXT NOT NULL,
	prioridade     TEXT NOT NULL,
	created_at     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_metas_user ON metas(user_id);
`

// Store is a FinanceStore backed by SQLite.
type Store struct {
	db    *sql.DB
	newID func() string
}

// Open opens (creating if needed) the database file and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("sqlite: empty database path")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{db: db, newID: uuid.NewString}
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Migrate creates the tables when missing.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the connection, used by the readiness probe.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// --- Users ---

// UpsertUser creates or renames a user.
func (s *Store) UpsertUser(ctx context.Context, u *domain.User) error {
	plan := u.SubscriptionPlan
	if plan == "" {
		plan = "free"
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO usuarios (id, name, subscription_plan) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, subscription_plan = excluded.subscription_plan`,
		u.ID, u.Name, plan)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

// GetUser returns the user or domain.ErrNotFound.
func (s *Store) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	var u domain.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, subscription_plan FROM usuarios WHERE id = ?`, userID).
		Scan(&u.ID, &u.Name, &u.SubscriptionPlan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.ErrNotFound{Resource: "user", ID: userID}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// --- Transactions ---

// CreateTransaction inserts the record, assigning an ID when empty.
func (s *Store) CreateTransaction(ctx context.Context, tx *domain.TransactionRecord) (*domain.TransactionRecord, error) {
	saved := *tx
	s.stamp(&saved.ID, &saved.CreatedAt)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transacoes (id, user_id, valor, descricao, tipo, categoria, conta, data, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		saved.ID, saved.UserID, saved.Amount.String(), saved.Description, saved.Kind,
		saved.Category, saved.Account, saved.Date, formatTime(saved.CreatedAt))
	if err != nil {
		return nil, fmt.Errorf("failed to insert transaction: %w", err)
	}
	return &saved, nil
}

// ListTransactions returns the user's transactions, newest first.
func (s *Store) ListTransactions(ctx context.Context, userID string) ([]domain.TransactionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, valor, descricao, tipo, categoria, conta, data, created_at
		FROM transacoes WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	out := []domain.TransactionRecord{}
	for rows.Next() {
		var (
			r            domain.TransactionRecord
			amount, made string
		)
		if err := rows.Scan(&r.ID, &r.UserID, &amount, &r.Description, &r.Kind,
			&r.Category, &r.Account, &r.Date, &made); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		if r.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("transaction %s: bad amount %q: %w", r.ID, amount, err)
		}
		r.CreatedAt = parseTime(made)
		out = append(out, r)
	}
	return out, rows.Err()
}

// --- Investments ---

// CreateInvestment inserts the record, assigning an ID when empty.
func (s *Store) CreateInvestment(ctx context.Context, inv *domain.InvestmentRecord) (*domain.InvestmentRecord, error) {
	saved := *inv
	s.stamp(&saved.ID, &saved.CreatedAt)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO investimentos (id, user_id, nome, valor, tipo, data, instituicao, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		saved.ID, saved.UserID, saved.Name, saved.Amount.String(), saved.Kind,
		saved.Date, saved.Institution, formatTime(saved.CreatedAt))
	if err != nil {
		return nil, fmt.Errorf("failed to insert investment: %w", err)
	}
	return &saved, nil
}

// ListInvestments returns the user's investments, newest first.
func (s *Store) ListInvestments(ctx context.Context, userID string) ([]domain.InvestmentRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, nome, valor, tipo, data, instituicao, created_at
		FROM investimentos WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query investments: %w", err)
	}
	defer rows.Close()

	out := []domain.InvestmentRecord{}
	for rows.Next() {
		var (
			r            domain.InvestmentRecord
			amount, made string
		)
		if err := rows.Scan(&r.ID, &r.UserID, &r.Name, &amount, &r.Kind,
			&r.Date, &r.Institution, &made); err != nil {
			return nil, fmt.Errorf("failed to scan investment: %w", err)
		}
		if r.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("investment %s: bad amount %q: %w", r.ID, amount, err)
		}
		r.CreatedAt = parseTime(made)
		out = append(out, r)
	}
	return out, rows.Err()
}

// --- Goals ---

// CreateGoal inserts the record, assigning an ID when empty.
func (s *Store) CreateGoal(ctx context.Context, g *domain.GoalRecord) (*domain.GoalRecord, error) {
	saved := *g
	s.stamp(&saved.ID, &saved.CreatedAt)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO metas (id, user_id, meta, valor_total, valor_atual, data_conclusao, categoria, prioridade, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		saved.ID, saved.UserID, saved.Name, saved.TargetAmount.String(), saved.CurrentAmount.String(),
		saved.DueDate, saved.Category, saved.Priority, formatTime(saved.CreatedAt))
	if err != nil {
		return nil, fmt.Errorf("failed to insert goal: %w", err)
	}
	return &saved, nil
}

// ListGoals returns the user's goals, newest first.
func (s *Store) ListGoals(ctx context.Context, userID string) ([]domain.GoalRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, meta, valor_total, valor_atual, data_conclusao, categoria, prioridade, created_at
		FROM metas WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query goals: %w", err)
	}
	defer rows.Close()

	out := []domain.GoalRecord{}
	for rows.Next() {
		var (
			r                     domain.GoalRecord
			target, current, made string
		)
		if err := rows.Scan(&r.ID, &r.UserID, &r.Name, &target, &current,
			&r.DueDate, &r.Category, &r.Priority, &made); err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		if r.TargetAmount, err = decimal.NewFromString(target); err != nil {
			return nil, fmt.Errorf("goal %s: bad target %q: %w", r.ID, target, err)
		}
		if r.CurrentAmount, err = decimal.NewFromString(current); err != nil {
			return nil, fmt.Errorf("goal %s: bad current %q: %w", r.ID, current, err)
		}
		r.CreatedAt = parseTime(made)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) stamp(id *string, created *time.Time) {
	if *id == "" {
		*id = s.newID()
	}
	if created.IsZero() {
		*created = time.Now().UTC()
	}
}

// timeLayout has fixed width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
