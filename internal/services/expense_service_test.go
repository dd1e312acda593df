package services

import (
	"context"
	"errors"
	"testing"

	"expenseflow/internal/amqp"
	"expenseflow/internal/core"
	"expenseflow/internal/store"
	"expenseflow/internal/store/memory"
)

var (
	employee1 = core.Principal{Username: "employee1", Role: core.RoleEmployee}
	manager   = core.Principal{Username: "manager", Role: core.RoleFinanceManager}
)

type fakePublisher struct {
	published []*amqp.DecisionMessage
	fail      error
}

func (f *fakePublisher) PublishDecision(_ context.Context, msg *amqp.DecisionMessage) error {
	if f.fail != nil {
		return f.fail
	}
	f.published = append(f.published, msg)
	return nil
}

func claim() core.Expense {
	return core.Expense{
		Amount:      core.Money{Cents: 12050},
		Category:    core.CategoryTravel,
		Date:        core.NewDate(2024, 3, 15),
		Description: "Flight",
	}
}

func TestSubmitSetsOwnerFromPrincipal(t *testing.T) {
	svc := NewExpenseService(memory.New(), nil)
	ctx := context.Background()

	e := claim()
	e.Owner = "someone-else" // payload must not pick the owner
	created, err := svc.Submit(ctx, employee1, e)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if created.Owner != "employee1" {
		t.Fatalf("owner must come from the principal, got %q", created.Owner)
	}
	if created.Status != core.StatusPending {
		t.Fatalf("expected pending, got %q", created.Status)
	}
}

func TestSubmitRequiresEmployeeRole(t *testing.T) {
	svc := NewExpenseService(memory.New(), nil)
	if _, err := svc.Submit(context.Background(), manager, claim()); !errors.Is(err, core.ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
}

func TestDecidePublishesDecision(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewExpenseService(memory.New(), pub)
	ctx := context.Background()

	created, err := svc.Submit(ctx, employee1, claim())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	decided, err := svc.Decide(ctx, manager, created.ID, core.StatusApproved)
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if decided.Status != core.StatusApproved {
		t.Fatalf("expected approved, got %q", decided.Status)
	}

	if len(pub.published) != 1 {
		t.Fatalf("expected 1 decision message, got %d", len(pub.published))
	}
	msg := pub.published[0]
	if msg.ID != created.ID || msg.Owner != "employee1" || msg.Status != "approved" ||
		msg.AmountCents != 12050 || msg.Date != "2024-03-15" || msg.DecidedBy != "manager" {
		t.Fatalf("decision message wrong: %+v", msg)
	}
}

func TestDecideSurvivesPublishFailure(t *testing.T) {
	pub := &fakePublisher{fail: errors.New("broker down")}
	svc := NewExpenseService(memory.New(), pub)
	ctx := context.Background()

	created, err := svc.Submit(ctx, employee1, claim())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	decided, err := svc.Decide(ctx, manager, created.ID, core.StatusRejected)
	if err != nil {
		t.Fatalf("decision must not fail on publish error: %v", err)
	}
	if decided.Status != core.StatusRejected {
		t.Fatalf("expected rejected, got %q", decided.Status)
	}
}

func TestDecideErrorsPassThrough(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewExpenseService(memory.New(), pub)
	ctx := context.Background()

	created, err := svc.Submit(ctx, employee1, claim())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if _, err := svc.Decide(ctx, employee1, created.ID, core.StatusApproved); !errors.Is(err, core.ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
	if _, err := svc.Decide(ctx, manager, 999, core.StatusApproved); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.Decide(ctx, manager, created.ID, core.StatusApproved); err != nil {
		t.Fatalf("first decision: %v", err)
	}
	if _, err := svc.Decide(ctx, manager, created.ID, core.StatusApproved); !errors.Is(err, core.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if len(pub.published) != 1 {
		t.Fatalf("only the winning decision publishes, got %d messages", len(pub.published))
	}
}

func TestSeedDemo(t *testing.T) {
	svc := NewExpenseService(memory.New(), nil)
	ctx := context.Background()

	if err := svc.SeedDemo(ctx); err != nil {
		t.Fatalf("seed: %v", err)
	}
	all, err := svc.List(ctx, manager, store.Filter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 15 {
		t.Fatalf("expected 15 seeded claims, got %d", len(all))
	}

	// Second call is a no-op.
	if err := svc.SeedDemo(ctx); err != nil {
		t.Fatalf("seed again: %v", err)
	}
	all, err = svc.List(ctx, manager, store.Filter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 15 {
		t.Fatalf("seed must be idempotent, got %d claims", len(all))
	}
}
