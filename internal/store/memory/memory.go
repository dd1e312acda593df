// Package memory provides an in-memory ExpenseStore used by tests and
// the memory backend. It is safe for concurrent use.
package memory

import (
	"context"
	"sort"
	"sync"

	"expenseflow/internal/core"
	"expenseflow/internal/store"
)

type Store struct {
	mu     sync.Mutex
	nextID int64
	items  map[int64]core.Expense
}

var _ store.ExpenseStore = (*Store)(nil)

func New() *Store {
	return &Store{items: make(map[int64]core.Expense)}
}

func (s *Store) Create(_ context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	e.ID = s.nextID
	e.Status = core.StatusPending
	s.items[e.ID] = e
	return e, nil
}

func (s *Store) ListFor(_ context.Context, p core.Principal, f store.Filter) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []core.Expense
	for _, e := range s.items {
		ok, err := visible(p, e)
		if err != nil {
			return nil, err
		}
		if ok && matches(e, f) {
			out = append(out, e)
		}
	}
	sortByDate(out, f.Order)
	return out, nil
}

func (s *Store) Transition(_ context.Context, p core.Principal, id int64, newStatus core.Status) (core.Expense, error) {
	if p.Role != core.RoleFinanceManager {
		return core.Expense{}, core.ErrNotAuthorized
	}
	if !newStatus.Terminal() {
		return core.Expense{}, core.ErrInvalidTransition
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.items[id]
	if !ok {
		return core.Expense{}, core.ErrNotFound
	}
	if e.Status != core.StatusPending {
		return core.Expense{}, core.ErrInvalidTransition
	}
	e.Status = newStatus
	s.items[id] = e
	return e, nil
}

func (s *Store) Close() error { return nil }

func visible(p core.Principal, e core.Expense) (bool, error) {
	switch p.Role {
	case core.RoleFinanceManager:
		return true, nil
	case core.RoleEmployee:
		return e.Owner == p.Username, nil
	}
	return false, core.ErrNotAuthorized
}

func matches(e core.Expense, f store.Filter) bool {
	if f.Status != "" && e.Status != f.Status {
		return false
	}
	if !f.From.IsZero() && e.Date.Before(f.From.Time) {
		return false
	}
	if !f.To.IsZero() && e.Date.After(f.To.Time) {
		return false
	}
	return true
}

func sortByDate(items []core.Expense, order store.Order) {
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if order == store.OrderDateDesc {
			a, b = b, a
		}
		if !a.Date.Equal(b.Date.Time) {
			return a.Date.Before(b.Date.Time)
		}
		return a.ID < b.ID
	})
}
