// Package export turns ledger state into plain aggregated records for
// document and spreadsheet collaborators. The core hands over resolved rows;
// formatting of the final document is the collaborator's business.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"monetra/internal/core"
)

// Row is one exported transaction with section labels and entry names
// resolved. Deleted sub-entries leave dangling ids in the log; those render
// as the raw id rather than failing the export.
type Row struct {
	TxID        string
	Date        string
	Type        string
	FromSection string
	FromEntry   string
	ToSection   string
	ToEntry     string
	AmountCents int64
	Purpose     string
}

// Ports for outbound spreadsheet adapters.
type (
	RowAppender interface {
		AppendRow(ctx context.Context, row Row) (rowRef string, err error)
	}

	// SyncedLister reports which transaction ids a sheet already holds,
	// so the sync worker can catch up after downtime without duplicates.
	SyncedLister interface {
		ListSyncedTxIDs(ctx context.Context) ([]string, error)
	}
)

// Rows resolves the given transactions against the state's sections.
func Rows(state core.State, txs []core.Transaction) []Row {
	names := entryNames(state)

	out := make([]Row, 0, len(txs))
	for _, tx := range txs {
		fromSection, fromID := tx.Origin()
		row := Row{
			TxID:        tx.TxID(),
			Date:        tx.When(),
			Type:        string(tx.Kind()),
			FromSection: fromSection.Label(),
			FromEntry:   resolveName(names, fromSection, fromID),
			AmountCents: tx.Value().Cents,
			Purpose:     tx.Rationale(),
		}
		if toSection, toID, ok := tx.Destination(); ok {
			row.ToSection = toSection.Label()
			row.ToEntry = resolveName(names, toSection, toID)
		}
		out = append(out, row)
	}
	return out
}

// EventRow builds a Row from already-flattened transaction fields, as
// delivered by the event queue. Entry names are not resolvable there, so the
// raw ids are used.
func EventRow(txID, txType, fromSection, fromSubEntry, toSection, toSubEntry string, amountCents int64, purpose, date string) Row {
	row := Row{
		TxID:        txID,
		Date:        date,
		Type:        txType,
		FromSection: core.SectionType(fromSection).Label(),
		FromEntry:   fromSubEntry,
		AmountCents: amountCents,
		Purpose:     purpose,
	}
	if toSection != "" {
		row.ToSection = core.SectionType(toSection).Label()
		row.ToEntry = toSubEntry
	}
	return row
}

// WriteCSV streams rows as CSV with a header line.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"date", "type", "from_section", "from_entry", "to_section", "to_entry", "amount", "purpose"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		record := []string{
			row.Date,
			row.Type,
			row.FromSection,
			row.FromEntry,
			row.ToSection,
			row.ToEntry,
			FormatAmount(row.AmountCents),
			row.Purpose,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// FormatAmount renders cents as a plain decimal string ("12.34").
func FormatAmount(cents int64) string {
	neg := cents < 0
	if neg {
		cents = -cents
	}
	s := fmt.Sprintf("%d.%02d", cents/100, cents%100)
	if neg {
		return "-" + s
	}
	return s
}

type entryKey struct {
	section core.SectionType
	id      string
}

func entryNames(state core.State) map[entryKey]string {
	names := make(map[entryKey]string)
	for section, entries := range state.Sections {
		for _, e := range entries {
			names[entryKey{section, e.ID}] = e.Name
		}
	}
	return names
}

func resolveName(names map[entryKey]string, section core.SectionType, id string) string {
	if name, ok := names[entryKey{section, id}]; ok {
		return name
	}
	return id
}
