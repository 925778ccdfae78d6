package storage

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

	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"expensetracker/internal/core"
	applog "expensetracker/internal/log"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	now     func() time.Time
}

var _ Store = (*SQLiteRepository)(nil)

// sqliteDSN appends the pragmas every connection needs: a busy timeout so
// concurrent writers wait instead of failing, and WAL for reader concurrency.
func sqliteDSN(dbPath string) string {
	sep := "?"
	if strings.Contains(dbPath, "?") {
		sep = "&"
	}
	return dbPath + sep + "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := sqliteDSN(dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		now:     time.Now,
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return core.Unavailable("ping sqlite", err)
	}
	return nil
}

// Insert relies on the partial unique index over idempotency_key; a
// constraint violation is reported as core.ErrDuplicateKey.
func (r *SQLiteRepository) Insert(ctx context.Context, e core.Expense) (core.Expense, error) {
	e.ID = uuid.NewString()
	e.CreatedAt = r.now().UTC()

	err := r.queries.CreateExpense(ctx, CreateExpenseParams{
		ID:             e.ID,
		AmountCents:    e.Amount.Cents,
		Category:       e.Category,
		Description:    e.Description,
		Date:           e.Date,
		CreatedAt:      e.CreatedAt.UnixNano(),
		IdempotencyKey: nullString(e.IdempotencyKey),
	})
	if err != nil {
		if isUniqueViolation(err) {
			return core.Expense{}, fmt.Errorf("insert expense: %w", core.ErrDuplicateKey)
		}
		return core.Expense{}, core.Unavailable("insert expense", err)
	}

	slog.DebugContext(ctx, "Expense saved to SQLite",
		applog.FieldComponent, applog.ComponentStorage,
		applog.FieldExpenseID, e.ID,
		applog.FieldAmountCents, e.Amount.Cents,
		applog.FieldCategory, e.Category)

	return e, nil
}

func (r *SQLiteRepository) FindByIdempotencyKey(ctx context.Context, key string) (core.Expense, error) {
	row, err := r.queries.GetExpenseByIdempotencyKey(ctx, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Expense{}, core.ErrNotFound
		}
		return core.Expense{}, core.Unavailable("get expense by idempotency key", err)
	}
	return row.toCore(), nil
}

func (r *SQLiteRepository) List(ctx context.Context, q core.ListQuery) ([]core.Expense, error) {
	var (
		rows []Expense
		err  error
	)
	if q.Sort == core.SortDateDesc {
		rows, err = r.queries.ListExpensesByDate(ctx, q.Category)
	} else {
		rows, err = r.queries.ListExpensesByAdded(ctx, q.Category)
	}
	if err != nil {
		return nil, core.Unavailable("list expenses", err)
	}

	out := make([]core.Expense, len(rows))
	for i, row := range rows {
		out[i] = row.toCore()
	}
	return out, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	n, err := r.queries.DeleteExpense(ctx, id)
	if err != nil {
		return core.Unavailable("delete expense", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	slog.DebugContext(ctx, "Expense deleted from SQLite",
		applog.FieldComponent, applog.ComponentStorage,
		applog.FieldExpenseID, id)
	return nil
}

func (e Expense) toCore() core.Expense {
	return core.Expense{
		ID:             e.ID,
		Amount:         core.Money{Cents: e.AmountCents},
		Category:       e.Category,
		Description:    e.Description,
		Date:           e.Date,
		CreatedAt:      time.Unix(0, e.CreatedAt).UTC(),
		IdempotencyKey: e.IdempotencyKey.String,
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}
