package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// Expense mirrors a row of the expenses table.
type Expense struct {
	ID             string
	AmountCents    int64
	Category       string
	Description    string
	Date           string
	CreatedAt      int64 // unix nanoseconds, UTC
	IdempotencyKey sql.NullString
}

const expenseColumns = `id, amount_cents, category, description, date, created_at, idempotency_key`

const createExpense = `INSERT INTO expenses (` + expenseColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?)`

type CreateExpenseParams struct {
	ID             string
	AmountCents    int64
	Category       string
	Description    string
	Date           string
	CreatedAt      int64
	IdempotencyKey sql.NullString
}

func (q *Queries) CreateExpense(ctx context.Context, arg CreateExpenseParams) error {
	_, err := q.db.ExecContext(ctx, createExpense,
		arg.ID,
		arg.AmountCents,
		arg.Category,
		arg.Description,
		arg.Date,
		arg.CreatedAt,
		arg.IdempotencyKey,
	)
	return err
}

const getExpenseByIdempotencyKey = `SELECT ` + expenseColumns + `
FROM expenses
WHERE idempotency_key = ?`

func (q *Queries) GetExpenseByIdempotencyKey(ctx context.Context, key string) (Expense, error) {
	row := q.db.QueryRowContext(ctx, getExpenseByIdempotencyKey, key)
	var i Expense
	err := row.Scan(
		&i.ID,
		&i.AmountCents,
		&i.Category,
		&i.Description,
		&i.Date,
		&i.CreatedAt,
		&i.IdempotencyKey,
	)
	return i, err
}

const listExpensesByAdded = `SELECT ` + expenseColumns + `
FROM expenses
WHERE (?1 = '' OR category = ?1)
ORDER BY created_at DESC, rowid DESC`

const listExpensesByDate = `SELECT ` + expenseColumns + `
FROM expenses
WHERE (?1 = '' OR category = ?1)
ORDER BY date DESC, created_at DESC, rowid DESC`

func (q *Queries) ListExpensesByAdded(ctx context.Context, category string) ([]Expense, error) {
	return q.listExpenses(ctx, listExpensesByAdded, category)
}

func (q *Queries) ListExpensesByDate(ctx context.Context, category string) ([]Expense, error) {
	return q.listExpenses(ctx, listExpensesByDate, category)
}

func (q *Queries) listExpenses(ctx context.Context, query, category string) ([]Expense, error) {
	rows, err := q.db.QueryContext(ctx, query, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Expense{}
	for rows.Next() {
		var i Expense
		if err := rows.Scan(
			&i.ID,
			&i.AmountCents,
			&i.Category,
			&i.Description,
			&i.Date,
			&i.CreatedAt,
			&i.IdempotencyKey,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteExpense = `DELETE FROM expenses WHERE id = ?`

func (q *Queries) DeleteExpense(ctx context.Context, id string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteExpense, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
