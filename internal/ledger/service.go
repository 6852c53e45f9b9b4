// Package ledger implements the state machine that owns all mutations of the
// ledger State: sub-entry CRUD and the three money movements (add, spend,
// transfer). Every money movement appends an immutable transaction record and
// replaces the State as a single unit, so readers never observe a partially
// applied operation.
package ledger

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"monetra/internal/core"
	"monetra/internal/log"
	"monetra/internal/storage"
)

// defaultTransferPurpose fills in an empty transfer purpose at the boundary.
const defaultTransferPurpose = "Transfer"

// EventPublisher is notified after each recorded transaction. Publishing is
// fire-and-forget: a nil publisher or a publish error never fails a mutation.
type EventPublisher interface {
	PublishTransaction(ctx context.Context, tx core.Transaction) error
}

// Ledger is the explicitly constructed service owning the mutation path to
// State. The persistence store and event publisher are injected; presentation
// layers hold a *Ledger reference and call it directly.
//
// The data model assumes a single writer, but the serving surface is an HTTP
// server, so the engine serializes its own mutations with an RWMutex.
type Ledger struct {
	mu     sync.RWMutex
	state  core.State
	store  storage.StateStore
	events EventPublisher
	logger *log.Logger

	// Injectable for tests.
	now   func() time.Time
	newID func() string
}

// New loads the stored state (or starts from the empty initial state) and
// returns a ready Ledger. events may be nil.
func New(ctx context.Context, store storage.StateStore, events EventPublisher, logger *log.Logger) (*Ledger, error) {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentLedger)

	state, ok, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if ok {
		logger.InfoContext(ctx, "Loaded ledger state",
			log.FieldOperation, log.OpLoad,
			"transactions", len(state.Transactions))
	} else {
		logger.InfoContext(ctx, "No stored ledger state, starting empty",
			log.FieldOperation, log.OpLoad)
	}

	return &Ledger{
		state:  state,
		store:  store,
		events: events,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}, nil
}

// Snapshot returns a deep copy of the current State for readers and
// exporters.
func (l *Ledger) Snapshot() core.State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state.Clone()
}

// CreateSubEntry appends a new sub-entry to the section. A negative or
// otherwise unusable initial amount is treated as zero, matching the
// always-succeeds contract of entry creation. No transaction is recorded:
// entry creation is not a money movement.
func (l *Ledger) CreateSubEntry(ctx context.Context, section core.SectionType, name string, initialAmount core.Money) (core.SubEntry, error) {
	if !section.IsValid() {
		return core.SubEntry{}, core.ErrInvalidSection
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return core.SubEntry{}, core.ErrEmptyName
	}
	if initialAmount.Cents < 0 {
		initialAmount = core.Money{}
	}

	entry := core.SubEntry{
		ID:     l.newID(),
		Name:   name,
		Amount: initialAmount,
	}

	l.mu.Lock()
	l.state.Sections[section] = append(l.state.Sections[section], entry)
	snapshot := l.state.Clone()
	l.mu.Unlock()

	l.persist(ctx, snapshot)

	l.logger.InfoContext(ctx, "Sub-entry created",
		log.FieldOperation, log.OpCreate,
		log.FieldSection, section,
		log.FieldSubEntryID, entry.ID,
		log.FieldEntryName, entry.Name,
		log.FieldAmountCents, entry.Amount.Cents)

	return entry, nil
}

// EditSubEntry overwrites name and amount of an existing sub-entry. The
// amount is a direct overwrite, not a delta, and is not re-validated here:
// callers are expected to prevent negative input. Unknown ids are a silent
// no-op so the operation stays idempotent-safe; callers needing failure
// feedback pre-check with FindSubEntry.
func (l *Ledger) EditSubEntry(ctx context.Context, section core.SectionType, id, name string, amount core.Money) error {
	if !section.IsValid() {
		return core.ErrInvalidSection
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return core.ErrEmptyName
	}

	l.mu.Lock()
	entries := l.state.Sections[section]
	for i := range entries {
		if entries[i].ID == id {
			entries[i].Name = name
			entries[i].Amount = amount
			break
		}
	}
	snapshot := l.state.Clone()
	l.mu.Unlock()

	l.persist(ctx, snapshot)
	return nil
}

// DeleteSubEntry removes the entry unconditionally, nonzero balance
// included; warning the user is a presentation concern. Past transactions
// referencing the id stay in the log as dangling references.
func (l *Ledger) DeleteSubEntry(ctx context.Context, section core.SectionType, id string) error {
	if !section.IsValid() {
		return core.ErrInvalidSection
	}

	l.mu.Lock()
	entries := l.state.Sections[section]
	kept := entries[:0]
	for _, e := range entries {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	l.state.Sections[section] = kept
	snapshot := l.state.Clone()
	l.mu.Unlock()

	l.persist(ctx, snapshot)

	l.logger.InfoContext(ctx, "Sub-entry deleted",
		log.FieldOperation, log.OpDelete,
		log.FieldSection, section,
		log.FieldSubEntryID, id)

	return nil
}

// AddMoney credits amount into the sub-entry and records an add transaction.
// It always succeeds given a valid section and positive amount. An unmatched
// id leaves every balance untouched, yet the transaction is still recorded:
// callers that need the stricter behavior must validate the id first.
func (l *Ledger) AddMoney(ctx context.Context, section core.SectionType, subEntryID string, amount core.Money, purpose string) error {
	if !section.IsValid() {
		return core.ErrInvalidSection
	}
	if err := amount.Validate(); err != nil {
		return err
	}

	tx := core.Add{Base: core.Base{
		ID:           l.newID(),
		Type:         core.TxAdd,
		FromSection:  section,
		FromSubEntry: subEntryID,
		Amount:       amount,
		Purpose:      purpose,
		Date:         l.now().UTC().Format(time.RFC3339),
	}}

	l.mu.Lock()
	entries := l.state.Sections[section]
	for i := range entries {
		if entries[i].ID == subEntryID {
			entries[i].Amount.Cents += amount.Cents
			break
		}
	}
	l.state.Transactions = append(core.TransactionList{tx}, l.state.Transactions...)
	snapshot := l.state.Clone()
	l.mu.Unlock()

	l.persist(ctx, snapshot)
	l.publish(ctx, tx)

	l.logger.InfoContext(ctx, "Money added",
		log.FieldOperation, log.OpAdd,
		log.FieldSection, section,
		log.FieldSubEntryID, subEntryID,
		log.FieldAmountCents, amount.Cents,
		log.FieldTxID, tx.ID)

	return nil
}

// SpendMoney debits amount from the sub-entry and records a spend
// transaction. A missing entry or insufficient balance rejects the operation:
// it returns false, the State is unchanged, nothing is recorded and nothing
// is persisted. Rejection is a boolean, never an error, so callers can show
// an inline message without unwinding.
func (l *Ledger) SpendMoney(ctx context.Context, section core.SectionType, subEntryID string, amount core.Money, purpose string) (bool, error) {
	if !section.IsValid() {
		return false, core.ErrInvalidSection
	}
	if err := amount.Validate(); err != nil {
		return false, err
	}

	tx := core.Spend{Base: core.Base{
		ID:           l.newID(),
		Type:         core.TxSpend,
		FromSection:  section,
		FromSubEntry: subEntryID,
		Amount:       amount,
		Purpose:      purpose,
		Date:         l.now().UTC().Format(time.RFC3339),
	}}

	l.mu.Lock()
	if !l.debitable(section, subEntryID, amount) {
		l.mu.Unlock()
		l.logger.InfoContext(ctx, "Spend rejected",
			log.FieldOperation, log.OpSpend,
			log.FieldSection, section,
			log.FieldSubEntryID, subEntryID,
			log.FieldAmountCents, amount.Cents,
			log.FieldSuccess, false)
		return false, nil
	}

	entries := l.state.Sections[section]
	for i := range entries {
		if entries[i].ID == subEntryID {
			entries[i].Amount.Cents -= amount.Cents
			break
		}
	}
	l.state.Transactions = append(core.TransactionList{tx}, l.state.Transactions...)
	snapshot := l.state.Clone()
	l.mu.Unlock()

	l.persist(ctx, snapshot)
	l.publish(ctx, tx)

	l.logger.InfoContext(ctx, "Money spent",
		log.FieldOperation, log.OpSpend,
		log.FieldSection, section,
		log.FieldSubEntryID, subEntryID,
		log.FieldAmountCents, amount.Cents,
		log.FieldTxID, tx.ID)

	return true, nil
}

// TransferMoney moves amount between two sub-entries and records a single
// transfer transaction. The insufficient-balance check is the same one
// SpendMoney uses, taken on the balance before any mutation. A missing
// destination id silently drops the credit while the debit and the record
// still happen (the record is the authority, not the balances). Same-entry transfers are not
// rejected here; that check belongs to the caller. An empty purpose defaults
// to "Transfer".
func (l *Ledger) TransferMoney(ctx context.Context, fromSection core.SectionType, fromSubEntryID string, toSection core.SectionType, toSubEntryID string, amount core.Money, purpose string) (bool, error) {
	if !fromSection.IsValid() || !toSection.IsValid() {
		return false, core.ErrInvalidSection
	}
	if err := amount.Validate(); err != nil {
		return false, err
	}
	if strings.TrimSpace(purpose) == "" {
		purpose = defaultTransferPurpose
	}

	tx := core.Transfer{
		Base: core.Base{
			ID:           l.newID(),
			Type:         core.TxTransfer,
			FromSection:  fromSection,
			FromSubEntry: fromSubEntryID,
			Amount:       amount,
			Purpose:      purpose,
			Date:         l.now().UTC().Format(time.RFC3339),
		},
		ToSection:  toSection,
		ToSubEntry: toSubEntryID,
	}

	l.mu.Lock()
	if !l.debitable(fromSection, fromSubEntryID, amount) {
		l.mu.Unlock()
		l.logger.InfoContext(ctx, "Transfer rejected",
			log.FieldOperation, log.OpTransfer,
			log.FieldSection, fromSection,
			log.FieldSubEntryID, fromSubEntryID,
			log.FieldAmountCents, amount.Cents,
			log.FieldSuccess, false)
		return false, nil
	}

	from := l.state.Sections[fromSection]
	for i := range from {
		if from[i].ID == fromSubEntryID {
			from[i].Amount.Cents -= amount.Cents
			break
		}
	}
	to := l.state.Sections[toSection]
	for i := range to {
		if to[i].ID == toSubEntryID {
			to[i].Amount.Cents += amount.Cents
			break
		}
	}
	l.state.Transactions = append(core.TransactionList{tx}, l.state.Transactions...)
	snapshot := l.state.Clone()
	l.mu.Unlock()

	l.persist(ctx, snapshot)
	l.publish(ctx, tx)

	l.logger.InfoContext(ctx, "Money transferred",
		log.FieldOperation, log.OpTransfer,
		log.FieldSection, fromSection,
		log.FieldToSection, toSection,
		log.FieldSubEntryID, fromSubEntryID,
		log.FieldAmountCents, amount.Cents,
		log.FieldTxID, tx.ID)

	return true, nil
}

// ResetAllData discards the entire State and persists the empty state
// immediately. Confirmation UX is a presentation concern.
func (l *Ledger) ResetAllData(ctx context.Context) {
	l.mu.Lock()
	l.state = core.NewState()
	snapshot := l.state.Clone()
	l.mu.Unlock()

	l.persist(ctx, snapshot)

	l.logger.WarnContext(ctx, "All ledger data reset",
		log.FieldOperation, log.OpReset)
}

// debitable is the shared precondition for spend and transfer: the entry
// exists and holds at least amount. Callers hold l.mu.
func (l *Ledger) debitable(section core.SectionType, subEntryID string, amount core.Money) bool {
	for _, e := range l.state.Sections[section] {
		if e.ID == subEntryID {
			return e.Amount.Cents >= amount.Cents
		}
	}
	return false
}

// persist writes the snapshot to the store. Persistence is fire-and-forget:
// on failure the in-memory State remains authoritative for the rest of the
// session and the next successful save overwrites the durable copy.
func (l *Ledger) persist(ctx context.Context, snapshot core.State) {
	if err := l.store.Save(ctx, snapshot); err != nil {
		l.logger.ErrorContext(ctx, "Failed to persist ledger state",
			log.FieldOperation, log.OpSave,
			log.FieldError, err)
	}
}

func (l *Ledger) publish(ctx context.Context, tx core.Transaction) {
	if l.events == nil {
		return
	}
	if err := l.events.PublishTransaction(ctx, tx); err != nil {
		l.logger.ErrorContext(ctx, "Failed to publish transaction event",
			log.FieldOperation, log.OpPublish,
			log.FieldTxID, tx.TxID(),
			log.FieldError, err)
	}
}
