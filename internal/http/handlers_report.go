package http

import (
	"log/slog"
	"net/http"

	"monetra/internal/core"
	"monetra/internal/export"
)

type reportTotals struct {
	EarnedCents int64 `json:"earnedCents"`
	SpentCents  int64 `json:"spentCents"`
	Count       int   `json:"count"`
}

type reportResponse struct {
	Rows   []export.Row `json:"rows"`
	Totals reportTotals `json:"totals"`
}

// handleReport renders the filtered history as export rows with resolved
// section labels and entry names. format=csv streams a CSV download instead.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
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

	state := s.ledger.Snapshot()
	txs := s.ledger.FilteredTransactions(sectionFilter, typeFilter)
	rows := export.Rows(state, txs)
	if rows == nil {
		rows = []export.Row{}
	}

	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="report.csv"`)
		if err := export.WriteCSV(w, rows); err != nil {
			slog.ErrorContext(r.Context(), "Failed to stream CSV report", "error", err)
		}
		return
	}

	totals := reportTotals{Count: len(rows)}
	for _, tx := range txs {
		switch tx.Kind() {
		case core.TxAdd:
			totals.EarnedCents += tx.Value().Cents
		case core.TxSpend:
			totals.SpentCents += tx.Value().Cents
		}
	}

	writeJSON(w, http.StatusOK, reportResponse{Rows: rows, Totals: totals})
}
