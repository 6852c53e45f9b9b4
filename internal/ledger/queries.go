package ledger

import (
	"monetra/internal/core"
)

// Aggregation queries are pure reads over the current State, recomputed on
// every call. State is personal-scale, so O(n) per call is acceptable and
// caching would only invite staleness.

// DefaultRecentLimit mirrors the dashboard's default recent-transactions
// window when no explicit limit is given.
const DefaultRecentLimit = 5

// SectionTotal returns the sum of balances in one section.
func (l *Ledger) SectionTotal(section core.SectionType) core.Money {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return sectionTotal(l.state, section)
}

// TotalMoney returns the sum of balances across all four sections.
func (l *Ledger) TotalMoney() core.Money {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var total int64
	for _, st := range core.SectionTypes() {
		total += sectionTotal(l.state, st).Cents
	}
	return core.Money{Cents: total}
}

// AvailableMoney returns cash+bank+mobile. Money lent out is, by definition,
// not available.
func (l *Ledger) AvailableMoney() core.Money {
	l.mu.RLock()
	defer l.mu.RUnlock()

	total := sectionTotal(l.state, core.Cash).Cents +
		sectionTotal(l.state, core.Bank).Cents +
		sectionTotal(l.state, core.Mobile).Cents
	return core.Money{Cents: total}
}

// TotalEarned sums the amounts of all add transactions in the log.
func (l *Ledger) TotalEarned() core.Money {
	return l.sumByType(core.TxAdd)
}

// TotalSpent sums the amounts of all spend transactions in the log.
func (l *Ledger) TotalSpent() core.Money {
	return l.sumByType(core.TxSpend)
}

func (l *Ledger) sumByType(kind core.TransactionType) core.Money {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var total int64
	for _, tx := range l.state.Transactions {
		if tx.Kind() == kind {
			total += tx.Value().Cents
		}
	}
	return core.Money{Cents: total}
}

// RecentTransactions returns the newest limit transactions. The log is
// maintained newest-first, so this is a prefix slice. A non-positive limit
// falls back to DefaultRecentLimit.
func (l *Ledger) RecentTransactions(limit int) []core.Transaction {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	if limit > len(l.state.Transactions) {
		limit = len(l.state.Transactions)
	}
	out := make([]core.Transaction, limit)
	copy(out, l.state.Transactions[:limit])
	return out
}

// FilteredTransactions returns transactions matching the optional section
// and type filters; the empty string disables a filter and both combine with
// AND. A section filter matches either side of a transfer.
func (l *Ledger) FilteredTransactions(sectionFilter core.SectionType, typeFilter core.TransactionType) []core.Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]core.Transaction, 0, len(l.state.Transactions))
	for _, tx := range l.state.Transactions {
		if sectionFilter != "" && !core.Touches(tx, sectionFilter) {
			continue
		}
		if typeFilter != "" && tx.Kind() != typeFilter {
			continue
		}
		out = append(out, tx)
	}
	return out
}

// FindSubEntry looks up a sub-entry by id within a section. It backs the
// caller-side pre-checks the engine's silent no-op semantics ask for.
func (l *Ledger) FindSubEntry(section core.SectionType, id string) (core.SubEntry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, e := range l.state.Sections[section] {
		if e.ID == id {
			return e, true
		}
	}
	return core.SubEntry{}, false
}

// SectionEntries returns a copy of the section's sub-entries in insertion
// order.
func (l *Ledger) SectionEntries(section core.SectionType) []core.SubEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	entries := l.state.Sections[section]
	out := make([]core.SubEntry, len(entries))
	copy(out, entries)
	return out
}

func sectionTotal(state core.State, section core.SectionType) core.Money {
	var total int64
	for _, e := range state.Sections[section] {
		total += e.Amount.Cents
	}
	return core.Money{Cents: total}
}
