package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"expensetracker/internal/amqp"
	"expensetracker/internal/core"
	applog "expensetracker/internal/log"
	"expensetracker/internal/notify"
	"expensetracker/internal/sheets"
)

// LedgerReader is the slice of the repository the worker needs.
// *storage.SQLiteRepository implements it.
type LedgerReader interface {
	GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
	PendingSync(ctx context.Context, afterID int64, limit int) ([]core.Transaction, error)
	MarkSynced(ctx context.Context, id int64) error
}

// SyncWorker mirrors ledger entries into a spreadsheet and delivers budget
// notifications. It is the amqp.Handler of the worker process.
type SyncWorker struct {
	ledger    LedgerReader
	mirror    sheets.TransactionWriter // nil disables mirroring
	sender    notify.Sender
	batchSize int
	logger    *applog.Logger

	// cursor is the last pending id visited; it wraps to 0 at the end of
	// the backlog so failing rows are retried without starving newer ones.
	cursorMu sync.Mutex
	cursor   int64
}

var _ amqp.Handler = (*SyncWorker)(nil)

func NewSyncWorker(ledger LedgerReader, mirror sheets.TransactionWriter, sender notify.Sender, batchSize int, logger *applog.Logger) *SyncWorker {
	if batchSize < 1 {
		batchSize = 10
	}
	return &SyncWorker{
		ledger:    ledger,
		mirror:    mirror,
		sender:    sender,
		batchSize: batchSize,
		logger:    logger.WithComponent(applog.ComponentWorker),
	}
}

// MirrorEnabled reports whether a spreadsheet writer is configured.
func (w *SyncWorker) MirrorEnabled() bool {
	return w.mirror != nil
}

// HandleTransactionSync mirrors one ledger entry. Unknown ids are dropped.
func (w *SyncWorker) HandleTransactionSync(ctx context.Context, msg *amqp.TransactionSyncMessage) error {
	if w.mirror == nil {
		w.logger.DebugContext(ctx, "Ledger mirror disabled, skipping sync message", "id", msg.ID)
		return nil
	}

	t, err := w.ledger.GetTransaction(ctx, msg.ID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return amqp.Permanent(fmt.Errorf("transaction %d: %w", msg.ID, err))
		}
		return fmt.Errorf("get transaction from storage: %w", err)
	}

	return w.syncTransaction(ctx, t)
}

// HandleBudgetAlert delivers a notification produced by the ledger.
func (w *SyncWorker) HandleBudgetAlert(ctx context.Context, msg *amqp.BudgetAlertMessage) error {
	if w.sender == nil {
		w.logger.WarnContext(ctx, "No notification sender configured, dropping budget alert")
		return nil
	}
	if err := w.sender.Send(ctx, msg.To, msg.Body); err != nil {
		if errors.Is(err, notify.ErrEmptyRecipient) {
			return amqp.Permanent(err)
		}
		w.logger.ErrorContext(ctx, "Failed to deliver budget alert",
			applog.FieldOperation, applog.OpNotify,
			applog.FieldError, err)
		return fmt.Errorf("deliver budget alert: %w", err)
	}

	w.logger.InfoContext(ctx, "Budget alert delivered", applog.FieldOperation, applog.OpNotify)
	return nil
}

// ProcessPending mirrors the next batch of entries that were never synced,
// walking the backlog by id. It recovers from lost AMQP messages and worker
// downtime.
func (w *SyncWorker) ProcessPending(ctx context.Context) (int, error) {
	if w.mirror == nil {
		return 0, nil
	}

	w.cursorMu.Lock()
	defer w.cursorMu.Unlock()

	pending, err := w.ledger.PendingSync(ctx, w.cursor, w.batchSize)
	if err != nil {
		return 0, fmt.Errorf("get pending transactions: %w", err)
	}
	if len(pending) < w.batchSize {
		w.cursor = 0
	} else {
		w.cursor = pending[len(pending)-1].ID
	}
	if len(pending) == 0 {
		return 0, nil
	}

	w.logger.InfoContext(ctx, "Processing pending transactions", "count", len(pending))

	synced := 0
	for _, t := range pending {
		if err := ctx.Err(); err != nil {
			return synced, err
		}
		if err := w.syncTransaction(ctx, t); err != nil {
			w.logger.ErrorContext(ctx, "Failed to sync pending transaction",
				applog.FieldTxID, t.ID,
				applog.FieldError, err)
			continue
		}
		synced++
	}

	w.logger.InfoContext(ctx, "Pending sync completed",
		"total", len(pending),
		"synced", synced,
		"errors", len(pending)-synced)
	return synced, nil
}

func (w *SyncWorker) syncTransaction(ctx context.Context, t core.Transaction) error {
	ref, err := w.mirror.AppendTransaction(ctx, t)
	if err != nil {
		if core.IsValidation(err) {
			return amqp.Permanent(fmt.Errorf("append to sheets: %w", err))
		}
		return fmt.Errorf("append to sheets: %w", err)
	}

	// The row exists remotely now; a failed mark only means the sweep may retry it.
	if err := w.ledger.MarkSynced(ctx, t.ID); err != nil {
		w.logger.ErrorContext(ctx, "Failed to mark as synced",
			applog.FieldTxID, t.ID,
			applog.FieldError, err)
	}

	w.logger.InfoContext(ctx, "Transaction mirrored",
		applog.FieldOperation, applog.OpSync,
		applog.FieldTxID, t.ID,
		"sheets_ref", ref,
		applog.FieldAmountCents, t.Amount.Cents,
		applog.FieldCategory, string(t.Category))
	return nil
}
