// Package idempotency deduplicates expense creation by client-supplied key.
//
// The guard never coordinates in process. A lookup short-circuits retries of
// requests that already succeeded, and the store's unique index decides
// concurrent first attempts.
package idempotency

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"expensetracker/internal/core"
	applog "expensetracker/internal/log"
	"expensetracker/internal/storage"
)

// Outcome tells the caller whether Create wrote a new record.
type Outcome int

const (
	OutcomeCreated Outcome = iota + 1
	OutcomeReplayed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeReplayed:
		return "replayed"
	default:
		return "unknown"
	}
}

type Guard struct {
	store storage.Store
}

func NewGuard(store storage.Store) *Guard {
	return &Guard{store: store}
}

// Create persists n unless a record with the same idempotency key exists, in
// which case that record is returned with OutcomeReplayed. Losing a
// concurrent insert race yields a *core.ConflictError.
func (g *Guard) Create(ctx context.Context, n core.NewExpense) (core.Expense, Outcome, error) {
	if n.IdempotencyKey != "" {
		existing, err := g.store.FindByIdempotencyKey(ctx, n.IdempotencyKey)
		switch {
		case err == nil:
			slog.InfoContext(ctx, "Idempotent replay",
				applog.FieldComponent, applog.ComponentExpense,
				applog.FieldOperation, applog.OpReplay,
				applog.FieldIdempotencyKey, n.IdempotencyKey,
				applog.FieldExpenseID, existing.ID)
			return existing, OutcomeReplayed, nil
		case !errors.Is(err, core.ErrNotFound):
			return core.Expense{}, 0, fmt.Errorf("lookup idempotency key: %w", err)
		}
	}

	created, err := g.store.Insert(ctx, n.Record())
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) && n.IdempotencyKey != "" {
			slog.WarnContext(ctx, "Lost idempotent insert race",
				applog.FieldComponent, applog.ComponentExpense,
				applog.FieldErrorType, applog.ErrorTypeConflict,
				applog.FieldIdempotencyKey, n.IdempotencyKey)
			return core.Expense{}, 0, &core.ConflictError{Key: n.IdempotencyKey}
		}
		return core.Expense{}, 0, err
	}
	return created, OutcomeCreated, nil
}
