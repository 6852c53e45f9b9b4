package core

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestTransactionListRoundTrip(t *testing.T) {
	log := TransactionList{
		Transfer{
			Base: Base{
				ID: "t1", Type: TxTransfer,
				FromSection: Cash, FromSubEntry: "w",
				Amount: Money{Cents: 200}, Purpose: "Deposit",
				Date: "2026-01-02T15:04:05Z",
			},
			ToSection: Bank, ToSubEntry: "b",
		},
		Add{
			Base: Base{
				ID: "a1", Type: TxAdd,
				FromSection: Cash, FromSubEntry: "w",
				Amount: Money{Cents: 500}, Purpose: "Salary",
				Date: "2026-01-01T12:00:00Z",
			},
		},
	}

	encoded, err := json.Marshal(log)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	// Non-transfer records must not carry destination fields.
	first := strings.Index(string(encoded), `"id":"a1"`)
	if first < 0 {
		t.Fatalf("add record missing from %s", encoded)
	}
	if strings.Contains(string(encoded)[first:], "toSection") {
		t.Fatalf("add record carries toSection: %s", encoded)
	}

	var decoded TransactionList
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(decoded))
	}

	tr, ok := decoded[0].(Transfer)
	if !ok {
		t.Fatalf("expected Transfer, got %T", decoded[0])
	}
	to, sub, hasDest := tr.Destination()
	if !hasDest || to != Bank || sub != "b" {
		t.Fatalf("wrong destination: %s/%s ok=%v", to, sub, hasDest)
	}

	add, ok := decoded[1].(Add)
	if !ok {
		t.Fatalf("expected Add, got %T", decoded[1])
	}
	if _, _, hasDest := add.Destination(); hasDest {
		t.Fatalf("add should have no destination")
	}
	if add.Value().Cents != 500 || add.Rationale() != "Salary" {
		t.Fatalf("add fields lost: %+v", add)
	}
}

func TestTransactionListUnknownType(t *testing.T) {
	var l TransactionList
	err := json.Unmarshal([]byte(`[{"id":"x","type":"loan","amount":1}]`), &l)
	if err == nil {
		t.Fatalf("expected error for unknown type")
	}
}

func TestTouches(t *testing.T) {
	tr := Transfer{
		Base:      Base{ID: "t", Type: TxTransfer, FromSection: Cash, FromSubEntry: "w", Amount: Money{Cents: 1}},
		ToSection: Bank, ToSubEntry: "b",
	}
	if !Touches(tr, Cash) || !Touches(tr, Bank) {
		t.Fatalf("transfer should touch both sides")
	}
	if Touches(tr, Mobile) {
		t.Fatalf("transfer should not touch mobile")
	}

	sp := Spend{Base: Base{ID: "s", Type: TxSpend, FromSection: Lend, FromSubEntry: "x", Amount: Money{Cents: 1}}}
	if !Touches(sp, Lend) || Touches(sp, Cash) {
		t.Fatalf("spend touch check failed")
	}
}
