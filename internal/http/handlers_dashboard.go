package http

import (
	"net/http"
	"strconv"
	"strings"

	"monetra/internal/core"
)

// handleDashboard returns the aggregate view: grand total, available money
// (lend excluded), lifetime earned and spent, per-section summaries and the
// most recent transactions.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	limit := s.recentLimit
	if v := strings.TrimSpace(r.URL.Query().Get("limit")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	state := s.ledger.Snapshot()
	sections := make([]sectionSummary, 0, len(core.SectionTypes()))
	for _, section := range core.SectionTypes() {
		sections = append(sections, sectionSummary{
			Section:    section,
			Label:      section.Label(),
			TotalCents: s.ledger.SectionTotal(section).Cents,
			Entries:    len(state.Sections[section]),
		})
	}

	recent := core.TransactionList(s.ledger.RecentTransactions(limit))
	if recent == nil {
		recent = core.TransactionList{}
	}

	writeJSON(w, http.StatusOK, dashboardResponse{
		TotalCents:     s.ledger.TotalMoney().Cents,
		AvailableCents: s.ledger.AvailableMoney().Cents,
		EarnedCents:    s.ledger.TotalEarned().Cents,
		SpentCents:     s.ledger.TotalSpent().Cents,
		Sections:       sections,
		Recent:         recent,
	})
}

// handleTransactions returns the history, newest first, optionally filtered
// by section and transaction type and capped by limit.
func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	sectionFilter, typeFilter, err := historyFilters(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	txs := core.TransactionList(s.ledger.FilteredTransactions(sectionFilter, typeFilter))
	if v := strings.TrimSpace(r.URL.Query().Get("limit")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 && n < len(txs) {
			txs = txs[:n]
		}
	}
	if txs == nil {
		txs = core.TransactionList{}
	}

	writeJSON(w, http.StatusOK, transactionsResponse{
		Transactions: txs,
		Count:        len(txs),
	})
}

func historyFilters(r *http.Request) (core.SectionType, core.TransactionType, error) {
	var sectionFilter core.SectionType
	var typeFilter core.TransactionType

	if v := strings.TrimSpace(r.URL.Query().Get("section")); v != "" {
		section, err := core.ParseSection(v)
		if err != nil {
			return "", "", err
		}
		sectionFilter = section
	}
	if v := strings.TrimSpace(r.URL.Query().Get("type")); v != "" {
		kind, err := core.ParseTransactionType(v)
		if err != nil {
			return "", "", err
		}
		typeFilter = kind
	}
	return sectionFilter, typeFilter, nil
}
