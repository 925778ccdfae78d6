package memory

import (
	"context"
	"fmt"
	"sync"

	"expensetracker/internal/core"
	ports "expensetracker/internal/sheets"
)

// Store is an in-process mirror used when no spreadsheet is configured.
type Store struct {
	mu   sync.Mutex
	rows []core.Expense
}

var _ ports.Mirror = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// Append stores the expense and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, e core.Expense) (string, error) {
	if e.ID == "" {
		return "", fmt.Errorf("expense without id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.rows {
		if r.ID == e.ID {
			return fmt.Sprintf("mem:%d", i+1), nil
		}
	}
	s.rows = append(s.rows, e)
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

func (s *Store) DeleteExpense(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.rows {
		if r.ID == id {
			s.rows = append(s.rows[:i], s.rows[i+1:]...)
			return nil
		}
	}
	return nil
}

// Rows returns a copy of the mirrored records in row order.
func (s *Store) Rows() []core.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Expense(nil), s.rows...)
}
