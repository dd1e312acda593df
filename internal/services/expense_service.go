// Package services orchestrates claim operations across the store and
// the decision-notification queue.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"expenseflow/internal/amqp"
	"expenseflow/internal/core"
	"expenseflow/internal/store"
)

// DecisionPublisher announces approvals and rejections to external
// consumers. A nil publisher disables notifications.
type DecisionPublisher interface {
	PublishDecision(ctx context.Context, msg *amqp.DecisionMessage) error
}

type ExpenseService struct {
	store     store.ExpenseStore
	publisher DecisionPublisher
}

func NewExpenseService(st store.ExpenseStore, publisher DecisionPublisher) *ExpenseService {
	return &ExpenseService{store: st, publisher: publisher}
}

// Submit creates a claim owned by the acting principal. Only employees
// submit claims; the owner always comes from the principal, never from
// the request payload.
func (s *ExpenseService) Submit(ctx context.Context, p core.Principal, e core.Expense) (core.Expense, error) {
	if p.Role != core.RoleEmployee {
		return core.Expense{}, core.ErrNotAuthorized
	}
	e.Owner = p.Username

	created, err := s.store.Create(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}

	slog.InfoContext(ctx, "Claim submitted",
		"id", created.ID,
		"owner", created.Owner,
		"amount_cents", created.Amount.Cents)

	return created, nil
}

// List returns the claims visible to the principal.
func (s *ExpenseService) List(ctx context.Context, p core.Principal, f store.Filter) ([]core.Expense, error) {
	return s.store.ListFor(ctx, p, f)
}

// Decide approves or rejects a pending claim and publishes the decision
// for the notifier and the finance export. Publish failures are logged,
// not surfaced: the decision is already durable.
func (s *ExpenseService) Decide(ctx context.Context, p core.Principal, id int64, newStatus core.Status) (core.Expense, error) {
	decided, err := s.store.Transition(ctx, p, id, newStatus)
	if err != nil {
		return core.Expense{}, err
	}

	if err := s.publishDecision(ctx, p, decided); err != nil {
		slog.ErrorContext(ctx, "Failed to publish decision message",
			"id", decided.ID, "error", err)
	}

	return decided, nil
}

func (s *ExpenseService) publishDecision(ctx context.Context, p core.Principal, e core.Expense) error {
	if s.publisher == nil {
		slog.DebugContext(ctx, "Decision publisher not configured, skipping notification")
		return nil
	}
	return s.publisher.PublishDecision(ctx, &amqp.DecisionMessage{
		ID:          e.ID,
		Owner:       e.Owner,
		Status:      string(e.Status),
		AmountCents: e.Amount.Cents,
		Category:    string(e.Category),
		Description: e.Description,
		Date:        e.Date.Format("2006-01-02"),
		DecidedBy:   p.Username,
		Timestamp:   time.Now().UTC(),
	})
}

func (s *ExpenseService) Close() error {
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			return fmt.Errorf("close store: %w", err)
		}
	}
	return nil
}
