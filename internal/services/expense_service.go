package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"expensetracker/internal/core"
	"expensetracker/internal/idempotency"
	applog "expensetracker/internal/log"
	"expensetracker/internal/storage"
)

// EventPublisher announces record changes to downstream consumers.
type EventPublisher interface {
	PublishExpenseCreated(ctx context.Context, e core.Expense) error
	PublishExpenseDeleted(ctx context.Context, id string) error
	Close() error
}

// ExpenseService orchestrates expense operations across the record store
// and the optional event bus.
type ExpenseService struct {
	storage   storage.Store
	guard     *idempotency.Guard
	publisher EventPublisher
}

// NewExpenseService wires a service. publisher may be nil.
func NewExpenseService(store storage.Store, publisher EventPublisher) *ExpenseService {
	return &ExpenseService{
		storage:   store,
		guard:     idempotency.NewGuard(store),
		publisher: publisher,
	}
}

// ListExpenses returns the records matching q. It never writes.
func (s *ExpenseService) ListExpenses(ctx context.Context, q core.ListQuery) ([]core.Expense, error) {
	items, err := s.storage.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return items, nil
}

// CreateExpense validates n and persists it through the idempotency guard.
// Only a fresh insert publishes an event; replays are silent.
func (s *ExpenseService) CreateExpense(ctx context.Context, n core.NewExpense) (core.Expense, idempotency.Outcome, error) {
	if err := n.Validate(); err != nil {
		return core.Expense{}, 0, err
	}

	e, outcome, err := s.guard.Create(ctx, n)
	if err != nil {
		return core.Expense{}, 0, err
	}

	if outcome == idempotency.OutcomeCreated {
		slog.InfoContext(ctx, "Expense created",
			applog.NewFields().
				WithComponent(applog.ComponentExpense).
				WithOperation(applog.OpCreate).
				WithExpense(e.ID, e.Amount.Cents, e.Category, e.IdempotencyKey).
				ToSlice()...)

		if s.publisher != nil {
			if err := s.publisher.PublishExpenseCreated(ctx, e); err != nil {
				slog.ErrorContext(ctx, "Failed to publish expense created event",
					applog.FieldComponent, applog.ComponentExpense,
					applog.FieldExpenseID, e.ID,
					applog.FieldError, err)
			}
		}
	}
	return e, outcome, nil
}

// DeleteExpense removes the record with id, returning core.ErrNotFound when
// there is none.
func (s *ExpenseService) DeleteExpense(ctx context.Context, id string) error {
	if err := s.storage.Delete(ctx, id); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return err
		}
		return fmt.Errorf("delete expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense deleted",
		applog.FieldComponent, applog.ComponentExpense,
		applog.FieldOperation, applog.OpDelete,
		applog.FieldExpenseID, id)

	if s.publisher != nil {
		if err := s.publisher.PublishExpenseDeleted(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Failed to publish expense deleted event",
				applog.FieldComponent, applog.ComponentExpense,
				applog.FieldExpenseID, id,
				applog.FieldError, err)
		}
	}
	return nil
}

// Summary aggregates the records matching q.
func (s *ExpenseService) Summary(ctx context.Context, q core.ListQuery) (core.Summary, error) {
	items, err := s.storage.List(ctx, q)
	if err != nil {
		return core.Summary{}, fmt.Errorf("summarize expenses: %w", err)
	}
	return core.Summarize(items), nil
}

// Categories returns every category in use, sorted.
func (s *ExpenseService) Categories(ctx context.Context) ([]string, error) {
	items, err := s.storage.List(ctx, core.ListQuery{})
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return core.DistinctCategories(items), nil
}

// Ping reports whether the record store is reachable.
func (s *ExpenseService) Ping(ctx context.Context) error {
	return s.storage.Ping(ctx)
}

// Close closes both storage and event connections
func (s *ExpenseService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close expense service: %w", errors.Join(errs...))
	}
	return nil
}
