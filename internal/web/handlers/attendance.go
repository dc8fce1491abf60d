package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/face-attendance/internal/ledger"
)

// Reports is the read side of the attendance ledger.
type Reports interface {
	Today() string
	RecordsOn(ctx context.Context, date string) ([]ledger.Record, error)
	Summary(ctx context.Context, date string) (ledger.Summary, error)
}

// AttendanceHandler serves daily attendance reports
type AttendanceHandler struct {
	reports Reports
}

// NewAttendanceHandler creates a new attendance handler
func NewAttendanceHandler(reports Reports) *AttendanceHandler {
	return &AttendanceHandler{reports: reports}
}

// DayResponse is a day's report
type DayResponse struct {
	Date    string          `json:"date"`
	Count   int             `json:"count"`
	Records []ledger.Record `json:"records"`
}

func (h *AttendanceHandler) day(w http.ResponseWriter, r *http.Request, date string) {
	records, err := h.reports.RecordsOn(r.Context(), date)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, DayResponse{Date: date, Count: len(records), Records: records})
}

// Today returns today's records
func (h *AttendanceHandler) Today(w http.ResponseWriter, r *http.Request) {
	h.day(w, r, h.reports.Today())
}

// OnDate returns the records of the {date} URL parameter
func (h *AttendanceHandler) OnDate(w http.ResponseWriter, r *http.Request) {
	h.day(w, r, chi.URLParam(r, "date"))
}

// Summary returns present/absent counts for {date}
func (h *AttendanceHandler) Summary(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	if date == "today" {
		date = h.reports.Today()
	}
	s, err := h.reports.Summary(r.Context(), date)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, s)
}
