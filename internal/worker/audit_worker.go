package worker

import (
	"context"
	"fmt"
	"log/slog"

	"fintrack/internal/amqp"
	"fintrack/internal/storage"
)

// AuditStore records processed ledger events.
type AuditStore interface {
	AppendAudit(ctx context.Context, entry storage.AuditEntry) error
}

// AuditWorker consumes ledger events and records them in the audit log.
type AuditWorker struct {
	store AuditStore
}

func NewAuditWorker(store AuditStore) *AuditWorker {
	return &AuditWorker{store: store}
}

var knownOps = map[string]bool{
	"created": true,
	"updated": true,
	"deleted": true,
}

// HandleEvent processes a single ledger event from AMQP.
func (w *AuditWorker) HandleEvent(ctx context.Context, evt *amqp.LedgerEvent) error {
	if !knownOps[evt.Op] {
		// Unknown ops are dropped rather than requeued: requeueing would
		// loop them forever.
		slog.WarnContext(ctx, "Dropping event with unknown op",
			"op", evt.Op,
			"transaction_id", evt.TransactionID)
		return nil
	}
	if evt.TransactionID == "" {
		slog.WarnContext(ctx, "Dropping event with empty transaction id", "op", evt.Op)
		return nil
	}

	entry := storage.AuditEntry{
		Op:            evt.Op,
		TransactionID: evt.TransactionID,
		OccurredAt:    evt.Timestamp,
	}
	if err := w.store.AppendAudit(ctx, entry); err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}

	slog.InfoContext(ctx, "Recorded ledger event",
		"op", evt.Op,
		"transaction_id", evt.TransactionID)
	return nil
}
