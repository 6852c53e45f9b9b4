package core

import (
	"encoding/json"
	"testing"
)

func TestParseSection(t *testing.T) {
	cases := []struct {
		in  string
		out SectionType
		ok  bool
	}{
		{"cash", Cash, true},
		{"BANK", Bank, true},
		{" mobile ", Mobile, true},
		{"lend", Lend, true},
		{"crypto", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseSection(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestSectionLabels(t *testing.T) {
	if got := Mobile.Label(); got != "Mobile Banking" {
		t.Fatalf("expected Mobile Banking, got %q", got)
	}
	if got := Cash.Label(); got != "Cash" {
		t.Fatalf("expected Cash, got %q", got)
	}
}

func TestSubEntryValidate(t *testing.T) {
	good := SubEntry{ID: "x", Name: "Wallet", Amount: Money{Cents: 0}}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []SubEntry{
		{ID: "x", Name: "  ", Amount: Money{Cents: 100}},
		{ID: "x", Name: "Wallet", Amount: Money{Cents: -1}},
	}
	for i, e := range bads {
		if err := e.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestNewStateShape(t *testing.T) {
	s := NewState()
	if len(s.Sections) != 4 {
		t.Fatalf("expected 4 sections, got %d", len(s.Sections))
	}
	for _, st := range SectionTypes() {
		entries, ok := s.Sections[st]
		if !ok || entries == nil {
			t.Fatalf("section %s missing or nil", st)
		}
		if len(entries) != 0 {
			t.Fatalf("section %s expected empty", st)
		}
	}
	if len(s.Transactions) != 0 {
		t.Fatalf("expected empty transaction log")
	}
}

func TestNormalizeFillsMissingSections(t *testing.T) {
	var s State
	if err := json.Unmarshal([]byte(`{"sections":{"cash":[]},"transactions":[]}`), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	s.Normalize()
	for _, st := range SectionTypes() {
		if s.Sections[st] == nil {
			t.Fatalf("section %s still nil after Normalize", st)
		}
	}
}

func TestCloneIsDeep(t *testing.T) {
	s := NewState()
	s.Sections[Cash] = append(s.Sections[Cash], SubEntry{ID: "a", Name: "Wallet", Amount: Money{Cents: 100}})

	c := s.Clone()
	c.Sections[Cash][0].Amount = Money{Cents: 999}
	c.Sections[Bank] = append(c.Sections[Bank], SubEntry{ID: "b", Name: "X"})

	if s.Sections[Cash][0].Amount.Cents != 100 {
		t.Fatalf("clone mutation leaked into original")
	}
	if len(s.Sections[Bank]) != 0 {
		t.Fatalf("clone append leaked into original")
	}
}
