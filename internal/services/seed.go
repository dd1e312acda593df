package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"expenseflow/internal/core"
	"expenseflow/internal/store"
)

// SeedDemo inserts a deterministic set of sample claims when the store
// is empty, so a fresh install has data on the dashboard. It is a no-op
// on a populated store.
func (s *ExpenseService) SeedDemo(ctx context.Context) error {
	manager := core.Principal{Username: "manager", Role: core.RoleFinanceManager}

	existing, err := s.store.ListFor(ctx, manager, store.Filter{})
	if err != nil {
		return fmt.Errorf("check existing claims: %w", err)
	}
	if len(existing) > 0 {
		slog.InfoContext(ctx, "Store already populated, skipping demo seed", "count", len(existing))
		return nil
	}

	owners := []string{"employee1", "employee2"}
	categories := core.Categories()
	statuses := []core.Status{core.StatusPending, core.StatusApproved, core.StatusRejected}
	today := time.Now().UTC()

	for i := 0; i < 15; i++ {
		day := today.AddDate(0, 0, -(i * 4)) // spread over roughly two months
		e := core.Expense{
			Owner:       owners[i%len(owners)],
			Amount:      core.Money{Cents: int64(1000 + i*735)},
			Category:    categories[i%len(categories)],
			Date:        core.NewDate(day.Year(), int(day.Month()), day.Day()),
			Description: fmt.Sprintf("Sample expense #%d", i+1),
			ReceiptRef:  fmt.Sprintf("RECEIPT-%03d", i+1),
		}
		created, err := s.store.Create(ctx, e)
		if err != nil {
			return fmt.Errorf("seed claim %d: %w", i+1, err)
		}
		if target := statuses[i%len(statuses)]; target != core.StatusPending {
			if _, err := s.store.Transition(ctx, manager, created.ID, target); err != nil {
				return fmt.Errorf("seed transition %d: %w", created.ID, err)
			}
		}
	}

	slog.InfoContext(ctx, "Seeded demo claims", "count", 15)
	return nil
}
