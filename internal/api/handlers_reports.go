package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/ptlog/ptlog/internal/api/respond"
	"github.com/ptlog/ptlog/internal/model"
	"github.com/ptlog/ptlog/internal/services"
)

const dateLayout = "2006-01-02"

type ReportHandler struct {
	svc *services.ReportService
}

func NewReportHandler(svc *services.ReportService) *ReportHandler {
	return &ReportHandler{svc: svc}
}

// UpsertEntry handles PUT /api/users/{userId}/entries. Writing the same date
// twice updates the entry in place.
func (h *ReportHandler) UpsertEntry(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	var in struct {
		Date        string          `json:"date"`
		Description string          `json:"description"`
		Hours       decimal.Decimal `json:"hours"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	date, err := time.Parse(dateLayout, in.Date)
	if err != nil {
		respond.WriteBadRequest(w, "date must be YYYY-MM-DD")
		return
	}
	out, err := h.svc.UpsertDailyEntry(r.Context(), &model.DailyEntry{
		UserID:      userID,
		Date:        date,
		Description: in.Description,
		Hours:       in.Hours,
	})
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// ListEntries handles GET /api/users/{userId}/entries with an optional
// ?week=N filter.
func (h *ReportHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	if wk := r.URL.Query().Get("week"); wk != "" {
		n, err := strconv.Atoi(wk)
		if err != nil {
			respond.WriteBadRequest(w, "week must be an integer")
			return
		}
		entries, err := h.svc.ListWeekEntries(r.Context(), userID, n)
		if err != nil {
			respond.WriteDomainError(w, err)
			return
		}
		respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"entries": entries, "count": len(entries)})
		return
	}
	entries, err := h.svc.ListEntries(r.Context(), userID)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"entries": entries, "count": len(entries)})
}

// DeleteEntry handles DELETE /api/users/{userId}/entries/{date}.
func (h *ReportHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	date, err := time.Parse(dateLayout, vars["date"])
	if err != nil {
		respond.WriteBadRequest(w, "date must be YYYY-MM-DD")
		return
	}
	if err := h.svc.DeleteDailyEntry(r.Context(), vars["userId"], date); err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListWeeks handles GET /api/users/{userId}/weeks.
func (h *ReportHandler) ListWeeks(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	weeks, err := h.svc.ListWeeks(r.Context(), userID)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"weeks": weeks, "count": len(weeks)})
}

// GetWeek handles GET /api/users/{userId}/weeks/{weekNumber}.
func (h *ReportHandler) GetWeek(w http.ResponseWriter, r *http.Request) {
	userID, weekNumber, ok := weekVars(w, r)
	if !ok {
		return
	}
	wk, err := h.svc.GetWeek(r.Context(), userID, weekNumber)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, wk)
}

// RecomputeWeek handles PUT /api/users/{userId}/weeks/{weekNumber}. The
// roll-up is rebuilt from the entries; calling it on an unchanged week is a
// no-op.
func (h *ReportHandler) RecomputeWeek(w http.ResponseWriter, r *http.Request) {
	userID, weekNumber, ok := weekVars(w, r)
	if !ok {
		return
	}
	wk, err := h.svc.RecomputeWeek(r.Context(), userID, weekNumber)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, wk)
}

// weekVars extracts and validates {userId} and {weekNumber}; on failure it
// has already written the error response.
func weekVars(w http.ResponseWriter, r *http.Request) (string, int, bool) {
	vars := mux.Vars(r)
	n, err := strconv.Atoi(vars["weekNumber"])
	if err != nil {
		respond.WriteBadRequest(w, "weekNumber must be an integer")
		return "", 0, false
	}
	return vars["userId"], n, true
}
