package core

import (
	"encoding/json"
	"fmt"
)

// TransactionType is a typed string discriminating transaction records.
type TransactionType string

const (
	TxAdd      TransactionType = "add"
	TxSpend    TransactionType = "spend"
	TxTransfer TransactionType = "transfer"
)

// ParseTransactionType validates a transaction type from external input.
func ParseTransactionType(s string) (TransactionType, error) {
	switch TransactionType(s) {
	case TxAdd, TxSpend, TxTransfer:
		return TransactionType(s), nil
	default:
		return "", fmt.Errorf("unknown transaction type: %q", s)
	}
}

// Transaction is an immutable record of a completed ledger mutation.
// Concrete types are Add, Spend, and Transfer; only Transfer carries a
// destination, so an add record can never hold a populated toSection.
type Transaction interface {
	Kind() TransactionType
	TxID() string
	// Origin returns the debited (or, for add, credited) section and
	// sub-entry id. Naming is origin-centric across all three types.
	Origin() (SectionType, string)
	// Destination returns the credited section and sub-entry id; ok is
	// false for everything but transfers.
	Destination() (to SectionType, subEntry string, ok bool)
	Value() Money
	Rationale() string
	When() string
}

// Base contains the fields common to all transaction records.
type Base struct {
	ID           string          `json:"id"`
	Type         TransactionType `json:"type"`
	FromSection  SectionType     `json:"fromSection"`
	FromSubEntry string          `json:"fromSubEntry"`
	Amount       Money           `json:"amount"`
	Purpose      string          `json:"purpose"`
	Date         string          `json:"date"`
}

func (b Base) Kind() TransactionType          { return b.Type }
func (b Base) TxID() string                   { return b.ID }
func (b Base) Origin() (SectionType, string)  { return b.FromSection, b.FromSubEntry }
func (b Base) Value() Money                   { return b.Amount }
func (b Base) Rationale() string              { return b.Purpose }
func (b Base) When() string                   { return b.Date }

// Destination is absent for non-transfer records.
func (b Base) Destination() (SectionType, string, bool) { return "", "", false }

// Add records money credited into a sub-entry from outside the ledger.
type Add struct {
	Base
}

// Spend records money leaving a sub-entry.
type Spend struct {
	Base
}

// Transfer records money moved between two sub-entries.
type Transfer struct {
	Base
	ToSection  SectionType `json:"toSection"`
	ToSubEntry string      `json:"toSubEntry"`
}

func (t Transfer) Destination() (SectionType, string, bool) {
	return t.ToSection, t.ToSubEntry, true
}

// Touches reports whether the transaction involves the given section on
// either side. Used by section-filtered history views.
func Touches(tx Transaction, section SectionType) bool {
	if from, _ := tx.Origin(); from == section {
		return true
	}
	if to, _, ok := tx.Destination(); ok && to == section {
		return true
	}
	return false
}

// TransactionList is the newest-first transaction log. It needs a custom
// decoder because elements are a tagged union over the "type" field.
type TransactionList []Transaction

func (l *TransactionList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := make(TransactionList, 0, len(raw))
	for _, item := range raw {
		var identifier struct {
			Type TransactionType `json:"type"`
		}
		if err := json.Unmarshal(item, &identifier); err != nil {
			return fmt.Errorf("could not identify transaction type: %w", err)
		}

		var decoded Transaction
		var err error
		switch identifier.Type {
		case TxAdd:
			var tx Add
			err = json.Unmarshal(item, &tx)
			decoded = tx
		case TxSpend:
			var tx Spend
			err = json.Unmarshal(item, &tx)
			decoded = tx
		case TxTransfer:
			var tx Transfer
			err = json.Unmarshal(item, &tx)
			decoded = tx
		default:
			err = fmt.Errorf("unknown transaction type: %q", identifier.Type)
		}
		if err != nil {
			return err
		}
		out = append(out, decoded)
	}

	*l = out
	return nil
}
