// Package memory provides an in-memory ledger.Store. It backs the
// non-durable backend option and doubles as the engine test fixture.
package memory

import (
	"context"
	"sort"
	"sync"

	"budgetledger/internal/core"
)

type Store struct {
	mu     sync.Mutex
	nextID int64
	items  []core.Transaction
}

func New() *Store {
	return &Store{nextID: 1}
}

// Add validates t, assigns the next ID and appends it.
func (s *Store) Add(_ context.Context, t core.Transaction) (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.nextID
	s.nextID++
	s.items = append(s.items, t)
	return t.ID, nil
}

// Remove deletes the transaction with the given ID.
func (s *Store) Remove(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.items {
		if t.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return core.ErrNotFound
}

// Query returns matching transactions ordered by (date, id).
func (s *Store) Query(_ context.Context, f core.Filter) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Transaction
	for _, t := range s.items {
		if f.Matches(t) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out, nil
}

// Aggregate returns the bounding values over the matching set.
func (s *Store) Aggregate(_ context.Context, f core.Filter) (core.Bounds, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var (
		bounds core.Bounds
		found  bool
	)
	for _, t := range s.items {
		if !f.Matches(t) {
			continue
		}
		if !found {
			bounds = core.Bounds{MinDate: t.Date, MaxDate: t.Date, MinAmount: t.Amount, MaxAmount: t.Amount}
			found = true
			continue
		}
		if t.Date.Before(bounds.MinDate.Time) {
			bounds.MinDate = t.Date
		}
		if t.Date.After(bounds.MaxDate.Time) {
			bounds.MaxDate = t.Date
		}
		if t.Amount.Cents < bounds.MinAmount.Cents {
			bounds.MinAmount = t.Amount
		}
		if t.Amount.Cents > bounds.MaxAmount.Cents {
			bounds.MaxAmount = t.Amount
		}
	}
	if !found {
		return core.Bounds{}, core.ErrEmptySet
	}
	return bounds, nil
}

// Len reports the number of stored transactions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
