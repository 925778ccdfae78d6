// Package storagetest holds the behavioural checks shared by every
// storage.Store backend.
package storagetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"expensetracker/internal/core"
	"expensetracker/internal/storage"
)

// Factory returns an empty store. Cleanup is the caller's job (t.Cleanup).
type Factory func(t *testing.T) storage.Store

// Run exercises the storage.Store contract against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("insert assigns id and created_at", func(t *testing.T) {
		s := newStore(t)
		got, err := s.Insert(context.Background(), sample("Food", "2024-01-01", ""))
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
		if got.ID == "" {
			t.Fatal("expected ID to be assigned")
		}
		if got.CreatedAt.IsZero() {
			t.Fatal("expected CreatedAt to be assigned")
		}
		if got.Amount.Cents != 1250 || got.Category != "Food" || got.Date != "2024-01-01" {
			t.Fatalf("fields not preserved: %+v", got)
		}
	})

	t.Run("records without key never collide", func(t *testing.T) {
		s := newStore(t)
		a, err := s.Insert(context.Background(), sample("Food", "2024-01-01", ""))
		if err != nil {
			t.Fatalf("insert a: %v", err)
		}
		b, err := s.Insert(context.Background(), sample("Food", "2024-01-01", ""))
		if err != nil {
			t.Fatalf("insert b: %v", err)
		}
		if a.ID == b.ID {
			t.Fatalf("expected distinct ids, both %q", a.ID)
		}
	})

	t.Run("duplicate key is rejected", func(t *testing.T) {
		s := newStore(t)
		first, err := s.Insert(context.Background(), sample("Food", "2024-01-01", "k1"))
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
		_, err = s.Insert(context.Background(), sample("Other", "2024-01-02", "k1"))
		if !errors.Is(err, core.ErrDuplicateKey) {
			t.Fatalf("expected ErrDuplicateKey, got %v", err)
		}
		found, err := s.FindByIdempotencyKey(context.Background(), "k1")
		if err != nil {
			t.Fatalf("find: %v", err)
		}
		if found.ID != first.ID || found.Category != "Food" {
			t.Fatalf("stored record changed: %+v", found)
		}
		items, err := s.List(context.Background(), core.ListQuery{})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(items) != 1 {
			t.Fatalf("expected 1 record, got %d", len(items))
		}
	})

	t.Run("find by unknown key", func(t *testing.T) {
		s := newStore(t)
		if _, err := s.FindByIdempotencyKey(context.Background(), "missing"); !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("concurrent inserts with same key", func(t *testing.T) {
		s := newStore(t)
		const n = 8
		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			ok, dupes int
		)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := s.Insert(context.Background(), sample("Food", "2024-01-01", "race"))
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					ok++
				case errors.Is(err, core.ErrDuplicateKey):
					dupes++
				default:
					t.Errorf("unexpected error: %v", err)
				}
			}()
		}
		wg.Wait()
		if ok != 1 || dupes != n-1 {
			t.Fatalf("ok=%d dupes=%d, want 1 and %d", ok, dupes, n-1)
		}
	})

	t.Run("list filters by exact category", func(t *testing.T) {
		s := newStore(t)
		for _, c := range []string{"Food", "food", "Foods", "Travel", "Food"} {
			if _, err := s.Insert(context.Background(), sample(c, "2024-01-01", "")); err != nil {
				t.Fatalf("insert: %v", err)
			}
		}
		items, err := s.List(context.Background(), core.ListQuery{Category: "Food"})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(items) != 2 {
			t.Fatalf("expected 2 Food records, got %d", len(items))
		}
		for _, e := range items {
			if e.Category != "Food" {
				t.Fatalf("unexpected category %q", e.Category)
			}
		}
	})

	t.Run("list orders", func(t *testing.T) {
		s := newStore(t)
		dates := []string{"2024-01-02", "2024-03-01", "2024-01-02", "2023-12-31"}
		var inserted []core.Expense
		for _, d := range dates {
			e, err := s.Insert(context.Background(), sample("Food", d, ""))
			if err != nil {
				t.Fatalf("insert: %v", err)
			}
			inserted = append(inserted, e)
			time.Sleep(2 * time.Millisecond)
		}

		added, err := s.List(context.Background(), core.ListQuery{Sort: core.SortAddedDesc})
		if err != nil {
			t.Fatalf("list added: %v", err)
		}
		for i := range added {
			if want := inserted[len(inserted)-1-i].ID; added[i].ID != want {
				t.Fatalf("added_desc position %d = %s, want %s", i, added[i].ID, want)
			}
		}

		byDate, err := s.List(context.Background(), core.ListQuery{Sort: core.SortDateDesc})
		if err != nil {
			t.Fatalf("list date: %v", err)
		}
		want := []string{inserted[1].ID, inserted[2].ID, inserted[0].ID, inserted[3].ID}
		for i := range want {
			if byDate[i].ID != want[i] {
				t.Fatalf("date_desc position %d = %s (%s), want %s", i, byDate[i].ID, byDate[i].Date, want[i])
			}
		}
		if err := CheckDateDesc(byDate); err != nil {
			t.Fatal(err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		s := newStore(t)
		e, err := s.Insert(context.Background(), sample("Food", "2024-01-01", "del"))
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
		if err := s.Delete(context.Background(), e.ID); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if err := s.Delete(context.Background(), e.ID); !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("second delete: expected ErrNotFound, got %v", err)
		}
		items, err := s.List(context.Background(), core.ListQuery{})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(items) != 0 {
			t.Fatalf("expected empty list after delete, got %d", len(items))
		}
		// The key is free again once its record is gone.
		if _, err := s.Insert(context.Background(), sample("Food", "2024-01-01", "del")); err != nil {
			t.Fatalf("reinsert after delete: %v", err)
		}
	})

	t.Run("delete unknown id", func(t *testing.T) {
		s := newStore(t)
		if err := s.Delete(context.Background(), "does-not-exist"); !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("ping", func(t *testing.T) {
		s := newStore(t)
		if err := s.Ping(context.Background()); err != nil {
			t.Fatalf("ping: %v", err)
		}
	})
}

// CheckDateDesc verifies items are non-increasing by date, ties broken
// non-increasing by creation time.
func CheckDateDesc(items []core.Expense) error {
	for i := 1; i < len(items); i++ {
		prev, cur := items[i-1], items[i]
		if prev.Date < cur.Date {
			return fmt.Errorf("date order broken at %d: %s before %s", i, prev.Date, cur.Date)
		}
		if prev.Date == cur.Date && prev.CreatedAt.Before(cur.CreatedAt) {
			return fmt.Errorf("created_at tie-break broken at %d", i)
		}
	}
	return nil
}

func sample(category, date, key string) core.Expense {
	return core.Expense{
		Amount:         core.Money{Cents: 1250},
		Category:       category,
		Description:    "Lunch",
		Date:           date,
		IdempotencyKey: key,
	}
}
