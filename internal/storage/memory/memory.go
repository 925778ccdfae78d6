package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"expensetracker/internal/core"
	"expensetracker/internal/storage"
)

// Store keeps records in process memory. The key check and the append happen
// under one lock, which gives Insert the same compare-and-insert semantics as
// a unique index.
type Store struct {
	mu    sync.Mutex
	items []core.Expense
	byKey map[string]string // idempotency key -> id
	now   func() time.Time
}

var _ storage.Store = (*Store)(nil)

func New() *Store {
	return &Store{byKey: make(map[string]string), now: time.Now}
}

func (s *Store) Insert(_ context.Context, e core.Expense) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.HasIdempotencyKey() {
		if _, taken := s.byKey[e.IdempotencyKey]; taken {
			return core.Expense{}, core.ErrDuplicateKey
		}
	}
	e.ID = uuid.NewString()
	e.CreatedAt = s.now().UTC()
	s.items = append(s.items, e)
	if e.HasIdempotencyKey() {
		s.byKey[e.IdempotencyKey] = e.ID
	}
	return e, nil
}

func (s *Store) FindByIdempotencyKey(_ context.Context, key string) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byKey[key]
	if !ok {
		return core.Expense{}, core.ErrNotFound
	}
	for _, e := range s.items {
		if e.ID == id {
			return e, nil
		}
	}
	return core.Expense{}, core.ErrNotFound
}

func (s *Store) List(_ context.Context, q core.ListQuery) ([]core.Expense, error) {
	s.mu.Lock()
	out := make([]core.Expense, 0, len(s.items))
	for _, e := range s.items {
		if q.Matches(e) {
			out = append(out, e)
		}
	}
	s.mu.Unlock()

	// Reverse insertion order first so equal timestamps still list newest first.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	sort.SliceStable(out, func(i, j int) bool { return q.Sort.Less(out[i], out[j]) })
	return out, nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.items {
		if e.ID != id {
			continue
		}
		s.items = append(s.items[:i], s.items[i+1:]...)
		if e.HasIdempotencyKey() {
			delete(s.byKey, e.IdempotencyKey)
		}
		return nil
	}
	return core.ErrNotFound
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }
