package worker

import (
	"context"
	"fmt"
	"log/slog"

	"expensetracker/internal/amqp"
	"expensetracker/internal/core"
	applog "expensetracker/internal/log"
	"expensetracker/internal/sheets"
)

// Source lists the records of the system of record. The worker uses it to
// backfill rows whose events were lost.
type Source interface {
	List(ctx context.Context, q core.ListQuery) ([]core.Expense, error)
}

// MirrorWorker replicates expense events into a spreadsheet mirror.
type MirrorWorker struct {
	mirror sheets.Mirror
	source Source
}

// NewMirrorWorker creates a worker. source may be nil, which disables
// the startup backfill.
func NewMirrorWorker(mirror sheets.Mirror, source Source) *MirrorWorker {
	return &MirrorWorker{mirror: mirror, source: source}
}

// HandleEvent applies one event. Errors cause the broker to redeliver, so
// both branches must tolerate replays.
func (w *MirrorWorker) HandleEvent(ctx context.Context, evt *amqp.ExpenseEvent) error {
	switch evt.Type {
	case amqp.EventExpenseCreated:
		if evt.Expense == nil {
			return fmt.Errorf("%s event %s without payload", evt.Type, evt.ID)
		}
		return w.mirrorExpense(ctx, evt.Expense.Record())
	case amqp.EventExpenseDeleted:
		if err := w.mirror.DeleteExpense(ctx, evt.ID); err != nil {
			return fmt.Errorf("delete mirrored expense: %w", err)
		}
		slog.InfoContext(ctx, "Removed mirrored expense",
			applog.FieldComponent, applog.ComponentWorker,
			applog.FieldOperation, applog.OpDelete,
			applog.FieldExpenseID, evt.ID)
		return nil
	default:
		return fmt.Errorf("unsupported event type %q", evt.Type)
	}
}

// StartupSyncCheck mirrors every stored record. Appends are idempotent by
// ID, so records already present are left alone.
func (w *MirrorWorker) StartupSyncCheck(ctx context.Context) error {
	if w.source == nil {
		slog.InfoContext(ctx, "No record source configured, skipping startup sync",
			applog.FieldComponent, applog.ComponentWorker)
		return nil
	}

	items, err := w.source.List(ctx, core.ListQuery{})
	if err != nil {
		return fmt.Errorf("list expenses for startup sync: %w", err)
	}

	synced, failed := 0, 0
	// Oldest first so the sheet reads chronologically.
	for i := len(items) - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.mirrorExpense(ctx, items[i]); err != nil {
			slog.ErrorContext(ctx, "Failed to mirror expense during startup",
				applog.FieldComponent, applog.ComponentWorker,
				applog.FieldExpenseID, items[i].ID,
				applog.FieldError, err)
			failed++
			continue
		}
		synced++
	}

	slog.InfoContext(ctx, "Startup sync completed",
		applog.FieldComponent, applog.ComponentWorker,
		applog.FieldOperation, applog.OpSync,
		"total", len(items),
		"synced", synced,
		"errors", failed)
	return nil
}

func (w *MirrorWorker) mirrorExpense(ctx context.Context, e core.Expense) error {
	ref, err := w.mirror.Append(ctx, e)
	if err != nil {
		return fmt.Errorf("append to mirror: %w", err)
	}
	slog.InfoContext(ctx, "Mirrored expense",
		applog.FieldComponent, applog.ComponentWorker,
		applog.FieldOperation, applog.OpSync,
		applog.FieldExpenseID, e.ID,
		applog.FieldAmountCents, e.Amount.Cents,
		"sheets_ref", ref)
	return nil
}
