package api

import (
	"net/http"

	"github.com/ptlog/ptlog/internal/api/respond"
	"github.com/ptlog/ptlog/internal/export"
	"github.com/ptlog/ptlog/internal/model"
	"github.com/ptlog/ptlog/internal/services"
)

type ExportHandler struct {
	reports  *services.ReportService
	lists    *services.ChecklistService
	users    *services.UserService
	renderer export.Renderer
}

func NewExportHandler(reports *services.ReportService, lists *services.ChecklistService, users *services.UserService, renderer export.Renderer) *ExportHandler {
	return &ExportHandler{reports: reports, lists: lists, users: users, renderer: renderer}
}

// ExportWeek handles GET /api/users/{userId}/weeks/{weekNumber}/export. The
// assembled document goes to the renderer; the renderer decides the output
// format.
func (h *ExportHandler) ExportWeek(w http.ResponseWriter, r *http.Request) {
	userID, weekNumber, ok := weekVars(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	wk, err := h.reports.GetWeek(ctx, userID, weekNumber)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	entries, err := h.reports.ListWeekEntries(ctx, userID, weekNumber)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	u, err := h.users.GetUser(ctx, userID)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	doc := &export.WeeklyDocument{User: u, Week: wk, Entries: entries}
	cl, err := h.lists.GetChecklist(ctx, userID, weekNumber)
	switch {
	case err == nil:
		doc.Checklist = cl
	case model.IsNotFoundError(err):
	default:
		respond.WriteDomainError(w, err)
		return
	}

	data, contentType, err := h.renderer.Render(ctx, doc)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
