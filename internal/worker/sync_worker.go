package worker

import (
	"context"
	"fmt"
	"log/slog"

	"monetra/internal/amqp"
	"monetra/internal/export"
	"monetra/internal/storage"
)

// SyncWorker mirrors ledger transactions into a spreadsheet. Live events
// arrive over AMQP; missed ones are recovered on startup by diffing the
// sheet's txId column against the ledger document.
type SyncWorker struct {
	store     storage.StateStore
	appender  export.RowAppender
	lister    export.SyncedLister
	batchSize int
}

func NewSyncWorker(store storage.StateStore, appender export.RowAppender, lister export.SyncedLister, batchSize int) *SyncWorker {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &SyncWorker{
		store:     store,
		appender:  appender,
		lister:    lister,
		batchSize: batchSize,
	}
}

// HandleTransactionEvent appends a single queue-delivered transaction to the
// sheet. The message is self-contained, so no store read is needed.
func (w *SyncWorker) HandleTransactionEvent(ctx context.Context, msg *amqp.TransactionEventMessage) error {
	slog.InfoContext(ctx, "Processing transaction event",
		"tx_id", msg.TxID,
		"type", msg.Type)

	row := export.EventRow(msg.TxID, msg.Type, msg.FromSection, msg.FromSubEntry,
		msg.ToSection, msg.ToSubEntry, msg.AmountCents, msg.Purpose, msg.Date)

	ref, err := w.appender.AppendRow(ctx, row)
	if err != nil {
		return fmt.Errorf("append transaction to sheet: %w", err)
	}

	slog.InfoContext(ctx, "Successfully synced transaction",
		"tx_id", msg.TxID,
		"sheet_ref", ref,
		"amount_cents", msg.AmountCents)

	return nil
}

// ProcessPending appends transactions present in the ledger document but
// missing from the sheet, oldest first, up to the configured batch size.
// This is a backup mechanism in case AMQP messages are lost.
func (w *SyncWorker) ProcessPending(ctx context.Context) error {
	_, err := w.processPending(ctx, w.batchSize)
	return err
}

// StartupSyncCheck recovers transactions missed during worker downtime. It
// uses a larger batch than the periodic pass.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	synced, err := w.processPending(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("startup sync check: %w", err)
	}
	if synced == 0 {
		slog.InfoContext(ctx, "No pending transactions found on startup")
		return nil
	}
	slog.InfoContext(ctx, "Startup sync completed", "synced", synced)
	return nil
}

func (w *SyncWorker) processPending(ctx context.Context, limit int) (int, error) {
	state, ok, err := w.store.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("load ledger document: %w", err)
	}
	if !ok || len(state.Transactions) == 0 {
		return 0, nil
	}

	syncedIDs, err := w.lister.ListSyncedTxIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list synced transaction ids: %w", err)
	}
	synced := make(map[string]bool, len(syncedIDs))
	for _, id := range syncedIDs {
		synced[id] = true
	}

	rows := export.Rows(state, state.Transactions)

	// Transactions are stored newest first; append oldest first so the
	// sheet reads chronologically.
	appended := 0
	errors := 0
	for i := len(rows) - 1; i >= 0; i-- {
		if appended >= limit {
			break
		}
		row := rows[i]
		if synced[row.TxID] {
			continue
		}

		ref, err := w.appender.AppendRow(ctx, row)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to sync pending transaction",
				"tx_id", row.TxID, "error", err)
			errors++
			continue
		}
		appended++

		slog.InfoContext(ctx, "Synced pending transaction",
			"tx_id", row.TxID,
			"sheet_ref", ref)
	}

	if appended > 0 || errors > 0 {
		slog.InfoContext(ctx, "Pending sync pass completed",
			"synced", appended,
			"errors", errors)
	}
	return appended, nil
}
