package core

import (
	"errors"
	"strings"
)

const (
	Cash   SectionType = "cash"
	Bank   SectionType = "bank"
	Mobile SectionType = "mobile"
	Lend   SectionType = "lend"
)

type (
	// SectionType identifies one of the four fixed money categories.
	SectionType string

	// SubEntry is a named balance holder within a section.
	SubEntry struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Amount Money  `json:"amount"`
	}

	// Sections maps each section type to its sub-entries in insertion order.
	Sections map[SectionType][]SubEntry

	// State is the aggregate persistence unit: the four sections plus the
	// transaction log, newest first.
	State struct {
		Sections     Sections        `json:"sections"`
		Transactions TransactionList `json:"transactions"`
	}
)

var (
	ErrInvalidSection = errors.New("invalid section")
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrEmptyName      = errors.New("empty name")
)

var sectionOrder = []SectionType{Cash, Bank, Mobile, Lend}

var sectionLabels = map[SectionType]string{
	Cash:   "Cash",
	Bank:   "Bank",
	Mobile: "Mobile Banking",
	Lend:   "Lend",
}

// SectionTypes returns the four section types in display order.
func SectionTypes() []SectionType {
	out := make([]SectionType, len(sectionOrder))
	copy(out, sectionOrder)
	return out
}

// ParseSection validates a section name from external input.
func ParseSection(s string) (SectionType, error) {
	st := SectionType(strings.ToLower(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", ErrInvalidSection
	}
	return st, nil
}

// IsValid returns true for one of the four fixed section types.
func (st SectionType) IsValid() bool {
	switch st {
	case Cash, Bank, Mobile, Lend:
		return true
	default:
		return false
	}
}

// Label returns the display label for the section.
func (st SectionType) Label() string {
	if l, ok := sectionLabels[st]; ok {
		return l
	}
	return string(st)
}

// String implements fmt.Stringer.
func (st SectionType) String() string {
	return string(st)
}

func (e SubEntry) Validate() error {
	if len(strings.TrimSpace(e.Name)) == 0 {
		return ErrEmptyName
	}
	if e.Amount.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// NewState returns the empty initial state: four empty sections, no
// transactions. Section slices are non-nil so the serialized document always
// carries all four keys.
func NewState() State {
	s := State{Sections: make(Sections, len(sectionOrder))}
	for _, st := range sectionOrder {
		s.Sections[st] = []SubEntry{}
	}
	s.Transactions = TransactionList{}
	return s
}

// Normalize fills in any missing or nil section so older documents load into
// the current shape without a migration step.
func (s *State) Normalize() {
	if s.Sections == nil {
		s.Sections = make(Sections, len(sectionOrder))
	}
	for _, st := range sectionOrder {
		if s.Sections[st] == nil {
			s.Sections[st] = []SubEntry{}
		}
	}
	if s.Transactions == nil {
		s.Transactions = TransactionList{}
	}
}

// Clone returns a deep copy. Readers hold clones so engine-owned slices are
// never aliased outside the mutation path.
func (s State) Clone() State {
	out := State{Sections: make(Sections, len(s.Sections))}
	for st, entries := range s.Sections {
		cp := make([]SubEntry, len(entries))
		copy(cp, entries)
		out.Sections[st] = cp
	}
	out.Transactions = make(TransactionList, len(s.Transactions))
	copy(out.Transactions, s.Transactions)
	return out
}
