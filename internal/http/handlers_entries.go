package http

import (
	"net/http"

	"monetra/internal/core"
)

type createEntryRequest struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
}

type editEntryRequest struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
}

// handleSections routes the /api/sections/ subtree:
//
//	GET    /api/sections/{section}              section view
//	POST   /api/sections/{section}/entries      create sub-entry
//	PUT    /api/sections/{section}/entries/{id} edit sub-entry
//	DELETE /api/sections/{section}/entries/{id} delete sub-entry
func (s *Server) handleSections(w http.ResponseWriter, r *http.Request) {
	section, entryID, hasEntries, err := sectionPath(r.URL.Path)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	switch {
	case !hasEntries:
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", "GET")
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		s.handleSectionView(w, r, section)
	case entryID == "":
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", "POST")
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		s.handleCreateEntry(w, r, section)
	default:
		switch r.Method {
		case http.MethodPut:
			s.handleEditEntry(w, r, section, entryID)
		case http.MethodDelete:
			s.handleDeleteEntry(w, r, section, entryID)
		default:
			w.Header().Set("Allow", "PUT, DELETE")
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	}
}

func (s *Server) handleSectionView(w http.ResponseWriter, _ *http.Request, section core.SectionType) {
	entries := s.ledger.SectionEntries(section)
	if entries == nil {
		entries = []core.SubEntry{}
	}
	writeJSON(w, http.StatusOK, sectionResponse{
		Section:    section,
		Label:      section.Label(),
		TotalCents: s.ledger.SectionTotal(section).Cents,
		Entries:    entries,
	})
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request, section core.SectionType) {
	var req createEntryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	amount, err := parseBalance(req.Amount)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid amount")
		return
	}

	entry, err := s.ledger.CreateSubEntry(r.Context(), section, sanitizeInput(req.Name), amount)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, entry)
}

// handleEditEntry overwrites name and amount. An unknown id is a silent
// no-op in the engine, so the response is success either way.
func (s *Server) handleEditEntry(w http.ResponseWriter, r *http.Request, section core.SectionType, entryID string) {
	var req editEntryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	amount, err := parseBalance(req.Amount)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid amount")
		return
	}

	if err := s.ledger.EditSubEntry(r.Context(), section, entryID, sanitizeInput(req.Name), amount); err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request, section core.SectionType, entryID string) {
	if err := s.ledger.DeleteSubEntry(r.Context(), section, entryID); err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
