package api

import (
	"encoding/json"
	"net/http"

	"github.com/ptlog/ptlog/internal/api/respond"
	"github.com/ptlog/ptlog/internal/model"
	"github.com/ptlog/ptlog/internal/services"
)

type ChecklistHandler struct {
	svc *services.ChecklistService
}

func NewChecklistHandler(svc *services.ChecklistService) *ChecklistHandler {
	return &ChecklistHandler{svc: svc}
}

// PutChecklist handles PUT /api/users/{userId}/weeks/{weekNumber}/checklist.
func (h *ChecklistHandler) PutChecklist(w http.ResponseWriter, r *http.Request) {
	userID, weekNumber, ok := weekVars(w, r)
	if !ok {
		return
	}
	var in struct {
		Title       string  `json:"title"`
		Description *string `json:"description,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	out, err := h.svc.SetTitle(r.Context(), &model.JobChecklist{
		UserID:      userID,
		WeekNumber:  weekNumber,
		Title:       in.Title,
		Description: in.Description,
	})
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// PutSteps handles PUT /api/users/{userId}/weeks/{weekNumber}/checklist/steps.
// The body replaces the entire step list.
func (h *ChecklistHandler) PutSteps(w http.ResponseWriter, r *http.Request) {
	userID, weekNumber, ok := weekVars(w, r)
	if !ok {
		return
	}
	var in struct {
		Steps []model.ChecklistStep `json:"steps"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	steps, err := h.svc.ReplaceSteps(r.Context(), userID, weekNumber, in.Steps)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"steps": steps, "count": len(steps)})
}

// GetChecklist handles GET /api/users/{userId}/weeks/{weekNumber}/checklist.
func (h *ChecklistHandler) GetChecklist(w http.ResponseWriter, r *http.Request) {
	userID, weekNumber, ok := weekVars(w, r)
	if !ok {
		return
	}
	cl, err := h.svc.GetChecklist(r.Context(), userID, weekNumber)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, cl)
}
