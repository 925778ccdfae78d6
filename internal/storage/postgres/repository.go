package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"expensetracker/internal/core"
	applog "expensetracker/internal/log"
	"expensetracker/internal/storage"
)

const (
	uniqueViolation    = "23505"
	idempotencyKeyIdx  = "ux_expenses_idempotency_key"
	selectExpenseCols  = `id::text, amount_cents, category, description, date, created_at, COALESCE(idempotency_key, '')`
	orderByAdded       = ` ORDER BY created_at DESC, id DESC`
	orderByDate        = ` ORDER BY date DESC, created_at DESC, id DESC`
	listExpensesPrefix = `SELECT ` + selectExpenseCols + ` FROM expenses WHERE ($1 = '' OR category = $1)`
)

type Repository struct {
	Pool *pgxpool.Pool
}

var _ storage.Store = (*Repository)(nil)

// Open connects a pool, runs migrations and returns the repository.
func Open(ctx context.Context, databaseURL string) (*Repository, error) {
	if err := RunMigrations(databaseURL); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return NewRepository(pool), nil
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{Pool: pool}
}

func (r *Repository) Insert(ctx context.Context, e core.Expense) (core.Expense, error) {
	err := r.Pool.QueryRow(ctx, `
		INSERT INTO expenses (amount_cents, category, description, date, idempotency_key)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''))
		RETURNING id::text, created_at`,
		e.Amount.Cents,
		e.Category,
		e.Description,
		e.Date,
		e.IdempotencyKey,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		if isKeyViolation(err) {
			return core.Expense{}, fmt.Errorf("insert expense: %w", core.ErrDuplicateKey)
		}
		return core.Expense{}, core.Unavailable("insert expense", err)
	}
	e.CreatedAt = e.CreatedAt.UTC()

	slog.DebugContext(ctx, "Expense saved to Postgres",
		applog.FieldComponent, applog.ComponentStorage,
		applog.FieldExpenseID, e.ID)
	return e, nil
}

func (r *Repository) FindByIdempotencyKey(ctx context.Context, key string) (core.Expense, error) {
	row := r.Pool.QueryRow(ctx, `SELECT `+selectExpenseCols+` FROM expenses WHERE idempotency_key = $1`, key)
	e, err := scanExpense(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return core.Expense{}, core.ErrNotFound
		}
		return core.Expense{}, core.Unavailable("get expense by idempotency key", err)
	}
	return e, nil
}

func (r *Repository) List(ctx context.Context, q core.ListQuery) ([]core.Expense, error) {
	query := listExpensesPrefix + orderByAdded
	if q.Sort == core.SortDateDesc {
		query = listExpensesPrefix + orderByDate
	}
	rows, err := r.Pool.Query(ctx, query, q.Category)
	if err != nil {
		return nil, core.Unavailable("list expenses", err)
	}
	defer rows.Close()

	out := make([]core.Expense, 0)
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, core.Unavailable("scan expense", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, core.Unavailable("list expenses", err)
	}
	return out, nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	// Non-UUID ids cannot exist in the table.
	if _, err := uuid.Parse(id); err != nil {
		return core.ErrNotFound
	}
	tag, err := r.Pool.Exec(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return core.Unavailable("delete expense", err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *Repository) Ping(ctx context.Context) error {
	if err := r.Pool.Ping(ctx); err != nil {
		return core.Unavailable("ping postgres", err)
	}
	return nil
}

func (r *Repository) Close() error {
	r.Pool.Close()
	return nil
}

func scanExpense(row pgx.Row) (core.Expense, error) {
	var e core.Expense
	err := row.Scan(
		&e.ID,
		&e.Amount.Cents,
		&e.Category,
		&e.Description,
		&e.Date,
		&e.CreatedAt,
		&e.IdempotencyKey,
	)
	e.CreatedAt = e.CreatedAt.UTC()
	return e, err
}

func isKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == uniqueViolation && pgErr.ConstraintName == idempotencyKeyIdx
}
