// Package report computes the dashboard figures: month-to-date totals,
// per-status sums and the multi-month approved spending trend.
//
// Aggregates are computed on demand from the live claim set rather than
// maintained incrementally. Claim volume is small and the figures must
// always reflect the latest approvals.
package report

import (
	"context"
	"fmt"
	"time"

	"expenseflow/internal/core"
	"expenseflow/internal/store"
)

type (
	// Lister is the read-only slice of the store the engine needs.
	// Every aggregate goes through ListFor, so the store's visibility
	// rule applies to report output as well.
	Lister interface {
		ListFor(ctx context.Context, p core.Principal, f store.Filter) ([]core.Expense, error)
	}

	Engine struct {
		lister Lister
	}

	// TrendBucket is one calendar-month aggregate of approved spending.
	TrendBucket struct {
		Label string // "YYYY-MM", sortable by construction
		Year  int
		Month time.Month
		Total core.Money
	}

	// Trend is the ordered bucket series, oldest first. Max is the
	// largest bucket total, used by consumers to scale a chart; it is
	// zero for an empty or all-zero series.
	Trend struct {
		Buckets []TrendBucket
		Max     core.Money
	}

	// Summary bundles the dashboard figures for one principal.
	Summary struct {
		MonthToDate   core.Money
		PendingCount  int
		ApprovedTotal core.Money
		RejectedTotal core.Money
		Trend         Trend
	}
)

func New(lister Lister) *Engine {
	return &Engine{lister: lister}
}

// MonthToDateTotal sums all visible claims, regardless of status, dated
// between the first day of asOf's month and asOf inclusive.
func (e *Engine) MonthToDateTotal(ctx context.Context, p core.Principal, asOf core.Date) (core.Money, error) {
	first := core.NewDate(asOf.Year(), int(asOf.Month()), 1)
	items, err := e.lister.ListFor(ctx, p, store.Filter{From: first, To: asOf})
	if err != nil {
		return core.Money{}, fmt.Errorf("list month-to-date claims: %w", err)
	}
	return sumAmounts(items), nil
}

// PendingCount counts the visible claims still awaiting a decision.
func (e *Engine) PendingCount(ctx context.Context, p core.Principal) (int, error) {
	items, err := e.lister.ListFor(ctx, p, store.Filter{Status: core.StatusPending})
	if err != nil {
		return 0, fmt.Errorf("list pending claims: %w", err)
	}
	return len(items), nil
}

// StatusTotal sums the visible claims in the given status.
func (e *Engine) StatusTotal(ctx context.Context, p core.Principal, status core.Status) (core.Money, error) {
	items, err := e.lister.ListFor(ctx, p, store.Filter{Status: status})
	if err != nil {
		return core.Money{}, fmt.Errorf("list %s claims: %w", status, err)
	}
	return sumAmounts(items), nil
}

// TrendSeries returns windowMonths calendar-month buckets ending at
// asOf's month inclusive, oldest first. Each bucket sums approved claims
// dated within that true calendar month, first through actual last day.
func (e *Engine) TrendSeries(ctx context.Context, p core.Principal, asOf core.Date, windowMonths int) (Trend, error) {
	if windowMonths <= 0 {
		return Trend{}, nil
	}

	// Normalize via time.Date so the window start is exact even across
	// year boundaries.
	end := time.Date(asOf.Year(), asOf.Time.Month(), 1, 0, 0, 0, 0, time.UTC)
	start := end.AddDate(0, -(windowMonths - 1), 0)
	// Day 0 of the following month is the actual last day of asOf's month.
	lastDay := time.Date(end.Year(), end.Month()+1, 0, 0, 0, 0, 0, time.UTC)

	items, err := e.lister.ListFor(ctx, p, store.Filter{
		Status: core.StatusApproved,
		From:   core.Date{Time: start},
		To:     core.Date{Time: lastDay},
	})
	if err != nil {
		return Trend{}, fmt.Errorf("list approved claims: %w", err)
	}

	trend := Trend{Buckets: make([]TrendBucket, windowMonths)}
	index := make(map[string]int, windowMonths)
	for i := 0; i < windowMonths; i++ {
		m := start.AddDate(0, i, 0)
		label := monthLabel(m.Year(), m.Month())
		trend.Buckets[i] = TrendBucket{Label: label, Year: m.Year(), Month: m.Month()}
		index[label] = i
	}

	for _, item := range items {
		label := monthLabel(item.Date.Year(), item.Date.Time.Month())
		if i, ok := index[label]; ok {
			trend.Buckets[i].Total = trend.Buckets[i].Total.Add(item.Amount)
		}
	}

	for _, b := range trend.Buckets {
		if b.Total.Cents > trend.Max.Cents {
			trend.Max = b.Total
		}
	}
	return trend, nil
}

// Dashboard composes the full figure set shown to a principal.
func (e *Engine) Dashboard(ctx context.Context, p core.Principal, asOf core.Date, trendMonths int) (Summary, error) {
	mtd, err := e.MonthToDateTotal(ctx, p, asOf)
	if err != nil {
		return Summary{}, err
	}
	pending, err := e.PendingCount(ctx, p)
	if err != nil {
		return Summary{}, err
	}
	approved, err := e.StatusTotal(ctx, p, core.StatusApproved)
	if err != nil {
		return Summary{}, err
	}
	rejected, err := e.StatusTotal(ctx, p, core.StatusRejected)
	if err != nil {
		return Summary{}, err
	}
	trend, err := e.TrendSeries(ctx, p, asOf, trendMonths)
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		MonthToDate:   mtd,
		PendingCount:  pending,
		ApprovedTotal: approved,
		RejectedTotal: rejected,
		Trend:         trend,
	}, nil
}

func monthLabel(year int, month time.Month) string {
	return fmt.Sprintf("%04d-%02d", year, int(month))
}

func sumAmounts(items []core.Expense) core.Money {
	var total core.Money
	for _, e := range items {
		total = total.Add(e.Amount)
	}
	return total
}
