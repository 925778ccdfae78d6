package storage

import (
	"context"

	"expensetracker/internal/core"
)

// Store is the persistence contract every backend satisfies.
//
// Insert must enforce idempotency-key uniqueness atomically: when a record
// with the same non-empty key already exists it returns core.ErrDuplicateKey
// and writes nothing. Records without a key never collide.
type Store interface {
	// Insert assigns ID and CreatedAt and persists e.
	Insert(ctx context.Context, e core.Expense) (core.Expense, error)
	// FindByIdempotencyKey returns core.ErrNotFound when no record has key.
	FindByIdempotencyKey(ctx context.Context, key string) (core.Expense, error)
	List(ctx context.Context, q core.ListQuery) ([]core.Expense, error)
	// Delete returns core.ErrNotFound when id does not exist.
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
	Close() error
}
