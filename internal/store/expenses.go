package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const expenseColumns = `id, amount, note, created_at`

func scanExpense(row pgx.Row) (Expense, error) {
	var e Expense
	err := row.Scan(&e.ID, &e.Amount, &e.Note, &e.CreatedAt)
	return e, err
}

// CreateExpenseParams holds a new ledger entry.
type CreateExpenseParams struct {
	Amount pgtype.Numeric
	Note   pgtype.Text
}

func (s *Store) CreateExpense(ctx context.Context, arg CreateExpenseParams) (Expense, error) {
	const q = `
		INSERT INTO expenses (amount, note)
		VALUES ($1, $2)
		RETURNING ` + expenseColumns
	return scanExpense(s.db.QueryRow(ctx, q, arg.Amount, arg.Note))
}

func (s *Store) ListExpenses(ctx context.Context) ([]Expense, error) {
	const q = `SELECT ` + expenseColumns + ` FROM expenses ORDER BY created_at DESC`
	rows, err := s.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	return collectExpenses(rows)
}

func (s *Store) ListExpensesInRange(ctx context.Context, start, end time.Time) ([]Expense, error) {
	const q = `
		SELECT ` + expenseColumns + `
		FROM expenses
		WHERE created_at >= $1 AND created_at <= $2
		ORDER BY created_at DESC`
	rows, err := s.db.Query(ctx, q, start, end)
	if err != nil {
		return nil, err
	}
	return collectExpenses(rows)
}

func collectExpenses(rows pgx.Rows) ([]Expense, error) {
	defer rows.Close()
	var expenses []Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}
