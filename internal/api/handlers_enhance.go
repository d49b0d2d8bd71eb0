package api

import (
	"encoding/json"
	"net/http"

	"github.com/ptlog/ptlog/internal/api/respond"
	"github.com/ptlog/ptlog/internal/enhance"
	"github.com/ptlog/ptlog/internal/services"
)

type EnhanceHandler struct {
	gateway *enhance.Service
	snaps   *services.SnapshotService
}

func NewEnhanceHandler(gateway *enhance.Service, snaps *services.SnapshotService) *EnhanceHandler {
	return &EnhanceHandler{gateway: gateway, snaps: snaps}
}

// Enhance handles POST /api/users/{userId}/weeks/{weekNumber}/enhance.
func (h *EnhanceHandler) Enhance(w http.ResponseWriter, r *http.Request) {
	userID, weekNumber, ok := weekVars(w, r)
	if !ok {
		return
	}
	var in struct {
		Instructions string `json:"instructions,omitempty"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			respond.WriteBadRequest(w, "invalid json")
			return
		}
	}
	out, err := h.gateway.Enhance(r.Context(), userID, weekNumber, in.Instructions)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// Revert handles POST /api/users/{userId}/weeks/{weekNumber}/revert,
// restoring the pre-enhancement snapshot.
func (h *EnhanceHandler) Revert(w http.ResponseWriter, r *http.Request) {
	userID, weekNumber, ok := weekVars(w, r)
	if !ok {
		return
	}
	if err := h.snaps.Revert(r.Context(), userID, weekNumber); err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]string{"status": "reverted"})
}

// GetSnapshot handles GET /api/users/{userId}/weeks/{weekNumber}/snapshot.
func (h *EnhanceHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	userID, weekNumber, ok := weekVars(w, r)
	if !ok {
		return
	}
	snap, err := h.snaps.GetSnapshot(r.Context(), userID, weekNumber)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, snap)
}
