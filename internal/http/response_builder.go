package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"monetra/internal/core"
)

// errorResponse is the JSON error body for all non-2xx API responses.
type errorResponse struct {
	Error string `json:"error"`
}

type sectionSummary struct {
	Section    core.SectionType `json:"section"`
	Label      string           `json:"label"`
	TotalCents int64            `json:"totalCents"`
	Entries    int              `json:"entries"`
}

type dashboardResponse struct {
	TotalCents     int64              `json:"totalCents"`
	AvailableCents int64              `json:"availableCents"`
	EarnedCents    int64              `json:"earnedCents"`
	SpentCents     int64              `json:"spentCents"`
	Sections       []sectionSummary     `json:"sections"`
	Recent         core.TransactionList `json:"recent"`
}

type sectionResponse struct {
	Section    core.SectionType `json:"section"`
	Label      string           `json:"label"`
	TotalCents int64            `json:"totalCents"`
	Entries    []core.SubEntry  `json:"entries"`
}

type movementResponse struct {
	OK bool `json:"ok"`
}

type transactionsResponse struct {
	Transactions core.TransactionList `json:"transactions"`
	Count        int                  `json:"count"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode response body", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// statusForError maps engine validation errors to HTTP statuses.
func statusForError(err error) int {
	switch err {
	case core.ErrInvalidSection:
		return http.StatusBadRequest
	case core.ErrEmptyName, core.ErrInvalidAmount:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
