// Package worker runs the background consumer that exports approved
// claims to the finance spreadsheet.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"expenseflow/internal/amqp"
	"expenseflow/internal/core"
)

// ApprovedAppender is the destination for approved claims.
type ApprovedAppender interface {
	AppendApproved(ctx context.Context, e core.Expense, decidedBy string) error
}

// DecisionStream delivers decision messages and can re-establish its
// broker connection after a drop.
type DecisionStream interface {
	ConsumeDecisions(ctx context.Context, handler func(*amqp.DecisionMessage) error) error
	Reconnect(ctx context.Context) error
}

type ExportWorker struct {
	client   DecisionStream
	exporter ApprovedAppender
}

func NewExportWorker(client DecisionStream, exporter ApprovedAppender) *ExportWorker {
	return &ExportWorker{client: client, exporter: exporter}
}

// Run consumes decision messages until the context ends. When the
// broker connection drops mid-consume it re-dials with backoff and
// resumes; only non-connection errors stop the worker.
func (w *ExportWorker) Run(ctx context.Context) error {
	for {
		err := w.client.ConsumeDecisions(ctx, func(msg *amqp.DecisionMessage) error {
			return w.HandleDecision(ctx, msg)
		})
		if ctx.Err() != nil {
			return err
		}
		if !amqp.IsConnectionError(err) {
			return err
		}

		slog.WarnContext(ctx, "Broker connection lost, reconnecting", "error", err)
		if err := w.client.Reconnect(ctx); err != nil {
			return fmt.Errorf("reconnect: %w", err)
		}
	}
}

// HandleDecision exports approved claims; rejections are acknowledged
// and skipped, since the finance sheet only tracks payable claims.
func (w *ExportWorker) HandleDecision(ctx context.Context, msg *amqp.DecisionMessage) error {
	if msg.Status != string(core.StatusApproved) {
		slog.DebugContext(ctx, "Skipping non-approved decision", "id", msg.ID, "status", msg.Status)
		return nil
	}
	if w.exporter == nil {
		slog.WarnContext(ctx, "No exporter configured, dropping decision", "id", msg.ID)
		return nil
	}

	e, err := expenseFromMessage(msg)
	if err != nil {
		// Malformed message; requeueing would loop forever.
		slog.ErrorContext(ctx, "Dropping malformed decision message", "id", msg.ID, "error", err)
		return nil
	}

	if err := w.exporter.AppendApproved(ctx, e, msg.DecidedBy); err != nil {
		return fmt.Errorf("export approved claim %d: %w", msg.ID, err)
	}

	slog.InfoContext(ctx, "Exported approved claim", "id", msg.ID, "owner", msg.Owner)
	return nil
}

func expenseFromMessage(msg *amqp.DecisionMessage) (core.Expense, error) {
	t, err := time.Parse("2006-01-02", msg.Date)
	if err != nil {
		return core.Expense{}, fmt.Errorf("parse date %q: %w", msg.Date, err)
	}
	return core.Expense{
		ID:          msg.ID,
		Owner:       msg.Owner,
		Amount:      core.Money{Cents: msg.AmountCents},
		Category:    core.Category(msg.Category),
		Date:        core.Date{Time: t},
		Description: msg.Description,
		Status:      core.Status(msg.Status),
	}, nil
}
