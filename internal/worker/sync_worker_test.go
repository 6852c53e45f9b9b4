package worker

import (
	"context"
	"errors"
	"testing"

	"monetra/internal/amqp"
	"monetra/internal/core"
	"monetra/internal/export"
	"monetra/internal/storage/memory"
)

type fakeSheet struct {
	appended []export.Row
	syncedID []string
	failOn   string
}

func (f *fakeSheet) AppendRow(_ context.Context, row export.Row) (string, error) {
	if f.failOn != "" && row.TxID == f.failOn {
		return "", errors.New("append failed")
	}
	f.appended = append(f.appended, row)
	return "Transactions!A2:I2", nil
}

func (f *fakeSheet) ListSyncedTxIDs(_ context.Context) ([]string, error) {
	return f.syncedID, nil
}

func newSeededStore(t *testing.T, state core.State) *memory.Store {
	t.Helper()
	store := memory.New()
	if err := store.Save(context.Background(), state); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	return store
}

func addTx(id string, section core.SectionType, entryID string, cents int64) core.Transaction {
	return core.Add{Base: core.Base{
		ID:           id,
		Type:         core.TxAdd,
		FromSection:  section,
		FromSubEntry: entryID,
		Amount:       core.Money{Cents: cents},
		Purpose:      "Salary",
		Date:         "2026-01-02T15:04:05Z",
	}}
}

func TestHandleTransactionEvent(t *testing.T) {
	sheet := &fakeSheet{}
	w := NewSyncWorker(newSeededStore(t, core.NewState()), sheet, sheet, 10)

	msg := &amqp.TransactionEventMessage{
		TxID:         "tx-1",
		Type:         "transfer",
		FromSection:  "cash",
		FromSubEntry: "e1",
		ToSection:    "bank",
		ToSubEntry:   "e2",
		AmountCents:  2500,
		Purpose:      "Transfer",
		Date:         "2026-01-02T15:04:05Z",
	}
	if err := w.HandleTransactionEvent(context.Background(), msg); err != nil {
		t.Fatalf("HandleTransactionEvent() error = %v", err)
	}

	if len(sheet.appended) != 1 {
		t.Fatalf("appended %d rows, want 1", len(sheet.appended))
	}
	row := sheet.appended[0]
	if row.TxID != "tx-1" || row.FromSection != "Cash" || row.ToSection != "Bank" {
		t.Errorf("unexpected row: %+v", row)
	}
	if row.AmountCents != 2500 {
		t.Errorf("AmountCents = %d, want 2500", row.AmountCents)
	}
}

func TestHandleTransactionEventAppendFailure(t *testing.T) {
	sheet := &fakeSheet{failOn: "tx-1"}
	w := NewSyncWorker(newSeededStore(t, core.NewState()), sheet, sheet, 10)

	msg := &amqp.TransactionEventMessage{TxID: "tx-1", Type: "add", FromSection: "cash"}
	if err := w.HandleTransactionEvent(context.Background(), msg); err == nil {
		t.Fatal("HandleTransactionEvent() expected error, got nil")
	}
	if len(sheet.appended) != 0 {
		t.Errorf("appended %d rows, want 0", len(sheet.appended))
	}
}

func TestStartupSyncCheckAppendsMissingOldestFirst(t *testing.T) {
	state := core.NewState()
	state.Sections[core.Cash] = []core.SubEntry{{ID: "e1", Name: "Wallet", Amount: core.Money{Cents: 5000}}}
	// Newest first, as the ledger stores them.
	state.Transactions = core.TransactionList{
		addTx("tx-3", core.Cash, "e1", 300),
		addTx("tx-2", core.Cash, "e1", 200),
		addTx("tx-1", core.Cash, "e1", 100),
	}

	sheet := &fakeSheet{syncedID: []string{"tx-1"}}
	w := NewSyncWorker(newSeededStore(t, state), sheet, sheet, 10)

	if err := w.StartupSyncCheck(context.Background()); err != nil {
		t.Fatalf("StartupSyncCheck() error = %v", err)
	}

	if len(sheet.appended) != 2 {
		t.Fatalf("appended %d rows, want 2", len(sheet.appended))
	}
	if sheet.appended[0].TxID != "tx-2" || sheet.appended[1].TxID != "tx-3" {
		t.Errorf("append order = [%s %s], want [tx-2 tx-3]",
			sheet.appended[0].TxID, sheet.appended[1].TxID)
	}
	if sheet.appended[0].FromEntry != "Wallet" {
		t.Errorf("FromEntry = %q, want resolved entry name", sheet.appended[0].FromEntry)
	}
}

func TestStartupSyncCheckNothingPending(t *testing.T) {
	state := core.NewState()
	state.Transactions = core.TransactionList{addTx("tx-1", core.Bank, "e1", 100)}

	sheet := &fakeSheet{syncedID: []string{"tx-1"}}
	w := NewSyncWorker(newSeededStore(t, state), sheet, sheet, 10)

	if err := w.StartupSyncCheck(context.Background()); err != nil {
		t.Fatalf("StartupSyncCheck() error = %v", err)
	}
	if len(sheet.appended) != 0 {
		t.Errorf("appended %d rows, want 0", len(sheet.appended))
	}
}

func TestProcessPendingRespectsBatchSize(t *testing.T) {
	state := core.NewState()
	state.Transactions = core.TransactionList{
		addTx("tx-3", core.Cash, "e1", 300),
		addTx("tx-2", core.Cash, "e1", 200),
		addTx("tx-1", core.Cash, "e1", 100),
	}

	sheet := &fakeSheet{}
	w := NewSyncWorker(newSeededStore(t, state), sheet, sheet, 2)

	if err := w.ProcessPending(context.Background()); err != nil {
		t.Fatalf("ProcessPending() error = %v", err)
	}
	if len(sheet.appended) != 2 {
		t.Fatalf("appended %d rows, want batch-limited 2", len(sheet.appended))
	}
	if sheet.appended[0].TxID != "tx-1" || sheet.appended[1].TxID != "tx-2" {
		t.Errorf("append order = [%s %s], want [tx-1 tx-2]",
			sheet.appended[0].TxID, sheet.appended[1].TxID)
	}
}

func TestProcessPendingEmptyStore(t *testing.T) {
	sheet := &fakeSheet{}
	w := NewSyncWorker(memory.New(), sheet, sheet, 10)

	if err := w.ProcessPending(context.Background()); err != nil {
		t.Fatalf("ProcessPending() error = %v", err)
	}
	if len(sheet.appended) != 0 {
		t.Errorf("appended %d rows, want 0", len(sheet.appended))
	}
}
