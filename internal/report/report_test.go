package report

import (
	"context"
	"testing"

	"expenseflow/internal/core"
	"expenseflow/internal/store/memory"
)

var (
	employee1 = core.Principal{Username: "employee1", Role: core.RoleEmployee}
	employee2 = core.Principal{Username: "employee2", Role: core.RoleEmployee}
	manager   = core.Principal{Username: "manager", Role: core.RoleFinanceManager}
)

func seed(t *testing.T, s *memory.Store, owner string, cents int64, d core.Date, status core.Status) core.Expense {
	t.Helper()
	ctx := context.Background()
	e, err := s.Create(ctx, core.Expense{
		Owner:       owner,
		Amount:      core.Money{Cents: cents},
		Category:    core.CategoryTravel,
		Date:        d,
		Description: "claim",
	})
	if err != nil {
		t.Fatalf("seed create: %v", err)
	}
	if status != core.StatusPending {
		if e, err = s.Transition(ctx, manager, e.ID, status); err != nil {
			t.Fatalf("seed transition: %v", err)
		}
	}
	return e
}

func TestMonthToDateTotal(t *testing.T) {
	s := memory.New()
	eng := New(s)
	ctx := context.Background()

	seed(t, s, "employee1", 1000, core.NewDate(2024, 3, 1), core.StatusPending)
	seed(t, s, "employee1", 2000, core.NewDate(2024, 3, 10), core.StatusApproved)
	seed(t, s, "employee1", 4000, core.NewDate(2024, 3, 20), core.StatusRejected) // after asOf
	seed(t, s, "employee1", 8000, core.NewDate(2024, 2, 28), core.StatusApproved) // prior month
	seed(t, s, "employee2", 500, core.NewDate(2024, 3, 5), core.StatusPending)    // other owner

	got, err := eng.MonthToDateTotal(ctx, employee1, core.NewDate(2024, 3, 15))
	if err != nil {
		t.Fatalf("month-to-date: %v", err)
	}
	if got.Cents != 3000 {
		t.Fatalf("expected 3000 cents, got %d", got.Cents)
	}

	// Manager sees every owner; all statuses count.
	got, err = eng.MonthToDateTotal(ctx, manager, core.NewDate(2024, 3, 15))
	if err != nil {
		t.Fatalf("month-to-date: %v", err)
	}
	if got.Cents != 3500 {
		t.Fatalf("expected 3500 cents, got %d", got.Cents)
	}
}

func TestTotalsZeroWhenEmpty(t *testing.T) {
	s := memory.New()
	eng := New(s)
	ctx := context.Background()

	mtd, err := eng.MonthToDateTotal(ctx, employee1, core.NewDate(2024, 3, 15))
	if err != nil || mtd.Cents != 0 {
		t.Fatalf("expected 0, got %d (err=%v)", mtd.Cents, err)
	}
	st, err := eng.StatusTotal(ctx, employee1, core.StatusApproved)
	if err != nil || st.Cents != 0 {
		t.Fatalf("expected 0, got %d (err=%v)", st.Cents, err)
	}
	n, err := eng.PendingCount(ctx, employee1)
	if err != nil || n != 0 {
		t.Fatalf("expected 0, got %d (err=%v)", n, err)
	}
}

func TestStatusTotalApprovedScenario(t *testing.T) {
	s := memory.New()
	eng := New(s)
	ctx := context.Background()

	seed(t, s, "employee1", 10000, core.NewDate(2024, 3, 1), core.StatusApproved)
	seed(t, s, "employee2", 5000, core.NewDate(2024, 3, 2), core.StatusApproved)
	seed(t, s, "employee1", 9999, core.NewDate(2024, 3, 3), core.StatusPending)
	seed(t, s, "employee1", 7777, core.NewDate(2024, 3, 4), core.StatusRejected)

	got, err := eng.StatusTotal(ctx, manager, core.StatusApproved)
	if err != nil {
		t.Fatalf("status total: %v", err)
	}
	if got.Decimal() != "150.00" {
		t.Fatalf("expected 150.00, got %s", got.Decimal())
	}
}

func TestPendingCountScoped(t *testing.T) {
	s := memory.New()
	eng := New(s)
	ctx := context.Background()

	seed(t, s, "employee1", 100, core.NewDate(2024, 3, 1), core.StatusPending)
	seed(t, s, "employee1", 100, core.NewDate(2024, 3, 2), core.StatusApproved)
	seed(t, s, "employee2", 100, core.NewDate(2024, 3, 3), core.StatusPending)

	n, err := eng.PendingCount(ctx, employee1)
	if err != nil || n != 1 {
		t.Fatalf("expected 1 own pending, got %d (err=%v)", n, err)
	}
	n, err = eng.PendingCount(ctx, manager)
	if err != nil || n != 2 {
		t.Fatalf("expected 2 pending overall, got %d (err=%v)", n, err)
	}
}

func TestTrendSeries(t *testing.T) {
	s := memory.New()
	eng := New(s)
	ctx := context.Background()

	// Window Oct 2023 .. Mar 2024 (6 months, crossing a year boundary).
	seed(t, s, "employee1", 1000, core.NewDate(2023, 10, 31), core.StatusApproved)
	seed(t, s, "employee1", 2000, core.NewDate(2023, 12, 1), core.StatusApproved)
	seed(t, s, "employee1", 3000, core.NewDate(2024, 2, 29), core.StatusApproved) // leap day
	seed(t, s, "employee1", 4000, core.NewDate(2024, 3, 15), core.StatusApproved)
	seed(t, s, "employee1", 9000, core.NewDate(2024, 3, 16), core.StatusPending)  // not approved
	seed(t, s, "employee1", 9000, core.NewDate(2023, 9, 30), core.StatusApproved) // before window

	trend, err := eng.TrendSeries(ctx, employee1, core.NewDate(2024, 3, 20), 6)
	if err != nil {
		t.Fatalf("trend: %v", err)
	}
	if len(trend.Buckets) != 6 {
		t.Fatalf("expected 6 buckets, got %d", len(trend.Buckets))
	}

	wantLabels := []string{"2023-10", "2023-11", "2023-12", "2024-01", "2024-02", "2024-03"}
	wantTotals := []int64{1000, 0, 2000, 0, 3000, 4000}
	for i, b := range trend.Buckets {
		if b.Label != wantLabels[i] {
			t.Fatalf("bucket %d: expected label %q, got %q", i, wantLabels[i], b.Label)
		}
		if b.Total.Cents != wantTotals[i] {
			t.Fatalf("bucket %q: expected %d, got %d", b.Label, wantTotals[i], b.Total.Cents)
		}
	}
	if trend.Max.Cents != 4000 {
		t.Fatalf("expected max 4000, got %d", trend.Max.Cents)
	}

	// Sum of buckets equals sum of approved claims in the covered range.
	var sum int64
	for _, b := range trend.Buckets {
		sum += b.Total.Cents
	}
	if sum != 1000+2000+3000+4000 {
		t.Fatalf("bucket sum %d does not cover the range", sum)
	}
}

func TestTrendSeriesEmpty(t *testing.T) {
	s := memory.New()
	eng := New(s)
	ctx := context.Background()

	trend, err := eng.TrendSeries(ctx, employee1, core.NewDate(2024, 3, 20), 7)
	if err != nil {
		t.Fatalf("trend: %v", err)
	}
	if len(trend.Buckets) != 7 {
		t.Fatalf("expected 7 buckets, got %d", len(trend.Buckets))
	}
	if trend.Max.Cents != 0 {
		t.Fatalf("expected max 0 on empty series, got %d", trend.Max.Cents)
	}

	trend, err = eng.TrendSeries(ctx, employee1, core.NewDate(2024, 3, 20), 0)
	if err != nil {
		t.Fatalf("trend: %v", err)
	}
	if len(trend.Buckets) != 0 || trend.Max.Cents != 0 {
		t.Fatalf("zero window must yield empty series, got %+v", trend)
	}
}

func TestTrendSeriesUsesCalendarMonths(t *testing.T) {
	s := memory.New()
	eng := New(s)
	ctx := context.Background()

	// The 31st belongs to January's bucket even though a 30-day window
	// arithmetic would push it into February.
	seed(t, s, "employee1", 1500, core.NewDate(2024, 1, 31), core.StatusApproved)

	trend, err := eng.TrendSeries(ctx, employee1, core.NewDate(2024, 2, 10), 2)
	if err != nil {
		t.Fatalf("trend: %v", err)
	}
	if trend.Buckets[0].Label != "2024-01" || trend.Buckets[0].Total.Cents != 1500 {
		t.Fatalf("expected 1500 in 2024-01, got %+v", trend.Buckets)
	}
	if trend.Buckets[1].Total.Cents != 0 {
		t.Fatalf("february must be empty, got %+v", trend.Buckets[1])
	}
}

func TestDashboard(t *testing.T) {
	s := memory.New()
	eng := New(s)
	ctx := context.Background()

	seed(t, s, "employee1", 12050, core.NewDate(2024, 3, 15), core.StatusApproved)
	seed(t, s, "employee1", 3000, core.NewDate(2024, 3, 16), core.StatusPending)
	seed(t, s, "employee2", 2000, core.NewDate(2024, 3, 17), core.StatusRejected)

	sum, err := eng.Dashboard(ctx, manager, core.NewDate(2024, 3, 20), 7)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if sum.MonthToDate.Cents != 17050 {
		t.Fatalf("month-to-date: expected 17050, got %d", sum.MonthToDate.Cents)
	}
	if sum.PendingCount != 1 {
		t.Fatalf("pending: expected 1, got %d", sum.PendingCount)
	}
	if sum.ApprovedTotal.Cents != 12050 || sum.RejectedTotal.Cents != 2000 {
		t.Fatalf("status totals wrong: %+v", sum)
	}
	if len(sum.Trend.Buckets) != 7 {
		t.Fatalf("expected 7 trend buckets, got %d", len(sum.Trend.Buckets))
	}
	if sum.Trend.Max.Cents != 12050 {
		t.Fatalf("trend max: expected 12050, got %d", sum.Trend.Max.Cents)
	}

	// Aggregation is scoped: the employee's dashboard excludes others.
	sum, err = eng.Dashboard(ctx, employee1, core.NewDate(2024, 3, 20), 7)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if sum.MonthToDate.Cents != 15050 || sum.RejectedTotal.Cents != 0 {
		t.Fatalf("employee dashboard leaked data: %+v", sum)
	}
}
