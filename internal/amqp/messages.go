package amqp

import (
	"encoding/json"
	"time"

	"monetra/internal/core"
)

// TransactionEventMessage carries a completed ledger transaction to
// downstream consumers (the sheet-sync worker). It is self-contained: the
// worker never has to read the ledger store to act on it.
type TransactionEventMessage struct {
	TxID         string `json:"txId"`
	Type         string `json:"type"`
	FromSection  string `json:"fromSection"`
	FromSubEntry string `json:"fromSubEntry"`
	ToSection    string `json:"toSection,omitempty"`
	ToSubEntry   string `json:"toSubEntry,omitempty"`
	AmountCents  int64  `json:"amountCents"`
	Purpose      string `json:"purpose"`
	Date         string `json:"date"`

	Timestamp time.Time `json:"timestamp"`
}

// NewTransactionEvent flattens a transaction record into a message.
func NewTransactionEvent(tx core.Transaction) *TransactionEventMessage {
	fromSection, fromSubEntry := tx.Origin()
	msg := &TransactionEventMessage{
		TxID:         tx.TxID(),
		Type:         string(tx.Kind()),
		FromSection:  string(fromSection),
		FromSubEntry: fromSubEntry,
		AmountCents:  tx.Value().Cents,
		Purpose:      tx.Rationale(),
		Date:         tx.When(),
		Timestamp:    time.Now(),
	}
	if to, toSubEntry, ok := tx.Destination(); ok {
		msg.ToSection = string(to)
		msg.ToSubEntry = toSubEntry
	}
	return msg
}

// ToJSON converts the message to JSON bytes
func (m *TransactionEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionEventFromJSON creates a message from JSON bytes
func TransactionEventFromJSON(data []byte) (*TransactionEventMessage, error) {
	var msg TransactionEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
