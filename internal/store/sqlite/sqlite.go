// Package sqlite implements the ExpenseStore on a local SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"expenseflow/internal/core"
	"expenseflow/internal/store"

	_ "modernc.org/sqlite"
)

const dateLayout = "2006-01-02"

type Store struct {
	db *sql.DB
}

var _ store.ExpenseStore = (*Store)(nil)

func Open(dbPath string) (*Store, error) {
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

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) Create(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO expenses (owner, amount_cents, category, expense_date, description, receipt_ref, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.Owner, e.Amount.Cents, string(e.Category), e.Date.Format(dateLayout),
		e.Description, e.ReceiptRef, string(core.StatusPending))
	if err != nil {
		return core.Expense{}, fmt.Errorf("insert expense: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.Expense{}, fmt.Errorf("read expense id: %w", err)
	}

	e.ID = id
	e.Status = core.StatusPending

	slog.InfoContext(ctx, "Expense saved",
		"id", e.ID,
		"owner", e.Owner,
		"amount_cents", e.Amount.Cents,
		"category", e.Category)

	return e, nil
}

func (s *Store) ListFor(ctx context.Context, p core.Principal, f store.Filter) ([]core.Expense, error) {
	var conds []string
	var args []any

	switch p.Role {
	case core.RoleFinanceManager:
		// all owners visible
	case core.RoleEmployee:
		conds = append(conds, "owner = ?")
		args = append(args, p.Username)
	default:
		return nil, core.ErrNotAuthorized
	}

	if f.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, string(f.Status))
	}
	if !f.From.IsZero() {
		conds = append(conds, "expense_date >= ?")
		args = append(args, f.From.Format(dateLayout))
	}
	if !f.To.IsZero() {
		conds = append(conds, "expense_date <= ?")
		args = append(args, f.To.Format(dateLayout))
	}

	q := `SELECT id, owner, amount_cents, category, expense_date, description, receipt_ref, status FROM expenses`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	if f.Order == store.OrderDateDesc {
		q += " ORDER BY expense_date DESC, id DESC"
	} else {
		q += " ORDER BY expense_date ASC, id ASC"
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return out, nil
}

func (s *Store) Transition(ctx context.Context, p core.Principal, id int64, newStatus core.Status) (core.Expense, error) {
	if p.Role != core.RoleFinanceManager {
		return core.Expense{}, core.ErrNotAuthorized
	}
	if !newStatus.Terminal() {
		return core.Expense{}, core.ErrInvalidTransition
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Expense{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	// The status guard in the WHERE clause makes the read-check-write
	// atomic: a concurrent transition on the same id matches zero rows.
	res, err := tx.ExecContext(ctx,
		`UPDATE expenses SET status = ? WHERE id = ? AND status = ?`,
		string(newStatus), id, string(core.StatusPending))
	if err != nil {
		return core.Expense{}, fmt.Errorf("update status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return core.Expense{}, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		var current string
		err := tx.QueryRowContext(ctx, `SELECT status FROM expenses WHERE id = ?`, id).Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			return core.Expense{}, core.ErrNotFound
		}
		if err != nil {
			return core.Expense{}, fmt.Errorf("read current status: %w", err)
		}
		return core.Expense{}, core.ErrInvalidTransition
	}

	row := tx.QueryRowContext(ctx,
		`SELECT id, owner, amount_cents, category, expense_date, description, receipt_ref, status
		 FROM expenses WHERE id = ?`, id)
	e, err := scanExpense(row)
	if err != nil {
		return core.Expense{}, err
	}

	if err := tx.Commit(); err != nil {
		return core.Expense{}, fmt.Errorf("commit transaction: %w", err)
	}

	slog.InfoContext(ctx, "Expense transitioned",
		"id", e.ID,
		"status", e.Status,
		"decided_by", p.Username)

	return e, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(r rowScanner) (core.Expense, error) {
	var (
		e        core.Expense
		category string
		date     string
		status   string
	)
	if err := r.Scan(&e.ID, &e.Owner, &e.Amount.Cents, &category, &date, &e.Description, &e.ReceiptRef, &status); err != nil {
		return core.Expense{}, fmt.Errorf("scan expense: %w", err)
	}
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return core.Expense{}, fmt.Errorf("parse expense date %q: %w", date, err)
	}
	e.Date = core.Date{Time: t}
	e.Category = core.Category(category)
	e.Status = core.Status(status)
	return e, nil
}
