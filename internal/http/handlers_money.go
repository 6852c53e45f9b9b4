package http

import (
	"net/http"

	"monetra/internal/core"
)

type moveMoneyRequest struct {
	Section    string `json:"section"`
	SubEntryID string `json:"subEntryId"`
	Amount     string `json:"amount"`
	Purpose    string `json:"purpose"`
}

type transferMoneyRequest struct {
	FromSection  string `json:"fromSection"`
	FromSubEntry string `json:"fromSubEntry"`
	ToSection    string `json:"toSection"`
	ToSubEntry   string `json:"toSubEntry"`
	Amount       string `json:"amount"`
	Purpose      string `json:"purpose"`
}

func (s *Server) handleAddMoney(w http.ResponseWriter, r *http.Request) {
	req, section, amount, ok := s.decodeMoveRequest(w, r)
	if !ok {
		return
	}

	if err := s.ledger.AddMoney(r.Context(), section, req.SubEntryID, amount, sanitizeInput(req.Purpose)); err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, movementResponse{OK: true})
}

// handleSpendMoney debits a sub-entry. A rejected spend (missing entry or
// insufficient balance) is 422 with an inline error message, not a failure of
// the request pipeline.
func (s *Server) handleSpendMoney(w http.ResponseWriter, r *http.Request) {
	req, section, amount, ok := s.decodeMoveRequest(w, r)
	if !ok {
		return
	}

	accepted, err := s.ledger.SpendMoney(r.Context(), section, req.SubEntryID, amount, sanitizeInput(req.Purpose))
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	if !accepted {
		writeError(w, http.StatusUnprocessableEntity, "insufficient balance")
		return
	}

	writeJSON(w, http.StatusOK, movementResponse{OK: true})
}

func (s *Server) handleTransferMoney(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req transferMoneyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	fromSection, err := core.ParseSection(req.FromSection)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid source section")
		return
	}
	toSection, err := core.ParseSection(req.ToSection)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid destination section")
		return
	}
	if fromSection == toSection && req.FromSubEntry == req.ToSubEntry {
		writeError(w, http.StatusUnprocessableEntity, "source and destination are the same entry")
		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid amount")
		return
	}

	accepted, err := s.ledger.TransferMoney(r.Context(), fromSection, req.FromSubEntry, toSection, req.ToSubEntry, amount, sanitizeInput(req.Purpose))
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	if !accepted {
		writeError(w, http.StatusUnprocessableEntity, "insufficient balance")
		return
	}

	writeJSON(w, http.StatusOK, movementResponse{OK: true})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	s.ledger.ResetAllData(r.Context())
	writeJSON(w, http.StatusNoContent, nil)
}

// decodeMoveRequest handles the shared shape of add and spend requests.
func (s *Server) decodeMoveRequest(w http.ResponseWriter, r *http.Request) (moveMoneyRequest, core.SectionType, core.Money, bool) {
	var zero moveMoneyRequest
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return zero, "", core.Money{}, false
	}

	var req moveMoneyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return zero, "", core.Money{}, false
	}

	section, err := core.ParseSection(req.Section)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid section")
		return zero, "", core.Money{}, false
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid amount")
		return zero, "", core.Money{}, false
	}

	return req, section, amount, true
}
