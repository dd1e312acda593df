// Package store defines the port for the durable claim collection.
// Implementations live in the sqlite and memory subpackages.
package store

import (
	"context"

	"expenseflow/internal/core"
)

const (
	// OrderDateAsc is the queue-style ordering (oldest claim first).
	OrderDateAsc Order = "date_asc"
	// OrderDateDesc is the personal-history ordering (newest first).
	OrderDateDesc Order = "date_desc"
)

type (
	Order string

	// Filter narrows a ListFor query. Zero values mean "no constraint";
	// the zero Order sorts ascending by date.
	Filter struct {
		Status core.Status
		From   core.Date
		To     core.Date
		Order  Order
	}

	// ExpenseStore owns the claim lifecycle. All reads are scoped by the
	// principal's visibility: employees see their own claims only,
	// finance managers see every owner, any other role is denied.
	ExpenseStore interface {
		// Create validates the claim, assigns a fresh id, forces status
		// to pending and persists it. Owner comes from the caller and is
		// immutable afterwards.
		Create(ctx context.Context, e core.Expense) (core.Expense, error)

		// ListFor returns the claims visible to the principal that match
		// the filter, as a consistent snapshot. Read-only.
		ListFor(ctx context.Context, p core.Principal, f Filter) ([]core.Expense, error)

		// Transition moves a pending claim to approved or rejected.
		// Finance managers only. The read-check-write is atomic: of two
		// concurrent calls on one id, exactly one succeeds and the loser
		// observes ErrInvalidTransition.
		Transition(ctx context.Context, p core.Principal, id int64, newStatus core.Status) (core.Expense, error)

		Close() error
	}
)

func (o Order) Valid() bool {
	switch o {
	case OrderDateAsc, OrderDateDesc, "":
		return true
	}
	return false
}
