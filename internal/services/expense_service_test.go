package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"expensetracker/internal/core"
	"expensetracker/internal/idempotency"
	"expensetracker/internal/storage/memory"
)

type fakePublisher struct {
	mu      sync.Mutex
	created []string
	deleted []string
	err     error
	closed  bool
}

func (p *fakePublisher) PublishExpenseCreated(_ context.Context, e core.Expense) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.created = append(p.created, e.ID)
	return p.err
}

func (p *fakePublisher) PublishExpenseDeleted(_ context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deleted = append(p.deleted, id)
	return p.err
}

func (p *fakePublisher) Close() error {
	p.closed = true
	return nil
}

func newExpense(amount int64, category, desc, date, key string) core.NewExpense {
	return core.NewExpense{
		Amount:         core.Money{Cents: amount},
		Category:       category,
		Description:    desc,
		Date:           date,
		IdempotencyKey: key,
	}
}

func TestNewExpenseService(t *testing.T) {
	service := NewExpenseService(memory.New(), nil)
	if service == nil || service.guard == nil {
		t.Fatal("NewExpenseService should wire the guard")
	}
}

func TestCreateExpense_Validation(t *testing.T) {
	service := NewExpenseService(memory.New(), nil)
	tests := []struct {
		name string
		in   core.NewExpense
	}{
		{"zero amount", newExpense(0, "Food", "Lunch", "2024-01-10", "")},
		{"negative amount", newExpense(-5, "Food", "Lunch", "2024-01-10", "")},
		{"missing category", newExpense(100, "", "Lunch", "2024-01-10", "")},
		{"missing description", newExpense(100, "Food", " ", "2024-01-10", "")},
		{"missing date", newExpense(100, "Food", "Lunch", "", "")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := service.CreateExpense(context.Background(), tt.in)
			if !errors.Is(err, core.ErrValidation) {
				t.Fatalf("err = %v, want validation error", err)
			}
		})
	}

	items, _ := service.ListExpenses(context.Background(), core.ListQuery{})
	if len(items) != 0 {
		t.Fatalf("invalid input persisted %d records", len(items))
	}
}

// A client retries the same submission after a timeout, then adds a second
// expense, filters and deletes.
func TestExpenseService_Scenario(t *testing.T) {
	pub := &fakePublisher{}
	service := NewExpenseService(memory.New(), pub)
	ctx := context.Background()

	first, outcome, err := service.CreateExpense(ctx, newExpense(1250, "Food", "Lunch", "2024-01-10", "abc"))
	if err != nil || outcome != idempotency.OutcomeCreated {
		t.Fatalf("first create: outcome=%v err=%v", outcome, err)
	}

	retry, outcome, err := service.CreateExpense(ctx, newExpense(1250, "Food", "Lunch", "2024-01-10", "abc"))
	if err != nil || outcome != idempotency.OutcomeReplayed {
		t.Fatalf("retry: outcome=%v err=%v", outcome, err)
	}
	if retry.ID != first.ID {
		t.Fatalf("retry id %q, want %q", retry.ID, first.ID)
	}

	second, _, err := service.CreateExpense(ctx, newExpense(4000, "Transport", "Train", "2024-01-11", ""))
	if err != nil {
		t.Fatalf("second create: %v", err)
	}

	all, err := service.ListExpenses(ctx, core.ListQuery{Sort: core.SortDateDesc})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 || all[0].ID != second.ID || all[1].ID != first.ID {
		t.Fatalf("unexpected date-sorted list %+v", all)
	}

	food, _ := service.ListExpenses(ctx, core.ListQuery{Category: "Food"})
	if len(food) != 1 || food[0].ID != first.ID {
		t.Fatalf("unexpected Food list %+v", food)
	}

	if err := service.DeleteExpense(ctx, first.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := service.DeleteExpense(ctx, first.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("second delete err = %v, want ErrNotFound", err)
	}

	remaining, _ := service.ListExpenses(ctx, core.ListQuery{})
	if len(remaining) != 1 || remaining[0].ID != second.ID {
		t.Fatalf("unexpected remaining %+v", remaining)
	}

	if len(pub.created) != 2 {
		t.Fatalf("created events = %v, want 2 (replays are silent)", pub.created)
	}
	if len(pub.deleted) != 1 || pub.deleted[0] != first.ID {
		t.Fatalf("deleted events = %v", pub.deleted)
	}
}

func TestPublishFailureDoesNotFailRequest(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	service := NewExpenseService(memory.New(), pub)
	ctx := context.Background()

	e, _, err := service.CreateExpense(ctx, newExpense(100, "Food", "Snack", "2024-01-10", ""))
	if err != nil {
		t.Fatalf("create should succeed despite publish failure: %v", err)
	}
	if err := service.DeleteExpense(ctx, e.ID); err != nil {
		t.Fatalf("delete should succeed despite publish failure: %v", err)
	}
}

func TestSummaryAndCategories(t *testing.T) {
	service := NewExpenseService(memory.New(), nil)
	ctx := context.Background()
	for _, n := range []core.NewExpense{
		newExpense(1000, "Food", "a", "2024-01-01", ""),
		newExpense(250, "Food", "b", "2024-01-02", ""),
		newExpense(4000, "Rent", "c", "2024-01-03", ""),
	} {
		if _, _, err := service.CreateExpense(ctx, n); err != nil {
			t.Fatal(err)
		}
	}

	sum, err := service.Summary(ctx, core.ListQuery{})
	if err != nil {
		t.Fatal(err)
	}
	if sum.Total.Cents != 5250 || sum.Count != 3 {
		t.Fatalf("unexpected summary %+v", sum)
	}
	if sum.ByCategory[0].Name != "Rent" || sum.ByCategory[1].Amount.Cents != 1250 {
		t.Fatalf("unexpected breakdown %+v", sum.ByCategory)
	}

	food, _ := service.Summary(ctx, core.ListQuery{Category: "Food"})
	if food.Total.Cents != 1250 || food.Count != 2 {
		t.Fatalf("unexpected filtered summary %+v", food)
	}

	cats, err := service.Categories(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(cats) != 2 || cats[0] != "Food" || cats[1] != "Rent" {
		t.Fatalf("categories = %v", cats)
	}
}

func TestExpenseService_Close(t *testing.T) {
	pub := &fakePublisher{}
	service := NewExpenseService(memory.New(), pub)
	if err := service.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !pub.closed {
		t.Fatal("publisher not closed")
	}

	if err := (&ExpenseService{}).Close(); err != nil {
		t.Fatalf("Close with nil components: %v", err)
	}
}
