package api

import (
	"github.com/gorilla/mux"

	"github.com/ptlog/ptlog/internal/api/recovery"
	"github.com/ptlog/ptlog/internal/auth"
	"github.com/ptlog/ptlog/internal/enhance"
	"github.com/ptlog/ptlog/internal/export"
	"github.com/ptlog/ptlog/internal/services"
)

// Deps carries the wired services the router needs.
type Deps struct {
	Users      *services.UserService
	Reports    *services.ReportService
	Checklists *services.ChecklistService
	Snapshots  *services.SnapshotService
	Billing    *services.BillingService
	Gateway    *enhance.Service
	Renderer   export.Renderer
	Authorizer auth.Authorizer
}

// NewRouter registers all API routes.
func NewRouter(d Deps) *mux.Router {
	root := mux.NewRouter()
	root.Use(recovery.Middleware)

	// Users
	userHandler := NewUserHandler(d.Users)
	root.HandleFunc("/api/users", userHandler.CreateUser).Methods("POST")
	root.HandleFunc("/api/users/{userId}", userHandler.GetUser).Methods("GET")
	root.HandleFunc("/api/users/{userId}/profile", userHandler.UpdateProfile).Methods("PUT")

	// Daily entries and weekly reports
	reportHandler := NewReportHandler(d.Reports)
	root.HandleFunc("/api/users/{userId}/entries", reportHandler.UpsertEntry).Methods("PUT")
	root.HandleFunc("/api/users/{userId}/entries", reportHandler.ListEntries).Methods("GET")
	root.HandleFunc("/api/users/{userId}/entries/{date}", reportHandler.DeleteEntry).Methods("DELETE")
	root.HandleFunc("/api/users/{userId}/weeks", reportHandler.ListWeeks).Methods("GET")
	root.HandleFunc("/api/users/{userId}/weeks/{weekNumber:[0-9]+}", reportHandler.GetWeek).Methods("GET")
	root.HandleFunc("/api/users/{userId}/weeks/{weekNumber:[0-9]+}", reportHandler.RecomputeWeek).Methods("PUT")

	// Job checklist
	checklistHandler := NewChecklistHandler(d.Checklists)
	root.HandleFunc("/api/users/{userId}/weeks/{weekNumber:[0-9]+}/checklist", checklistHandler.GetChecklist).Methods("GET")
	root.HandleFunc("/api/users/{userId}/weeks/{weekNumber:[0-9]+}/checklist", checklistHandler.PutChecklist).Methods("PUT")
	root.HandleFunc("/api/users/{userId}/weeks/{weekNumber:[0-9]+}/checklist/steps", checklistHandler.PutSteps).Methods("PUT")

	// Enhancement and revert
	enhanceHandler := NewEnhanceHandler(d.Gateway, d.Snapshots)
	root.HandleFunc("/api/users/{userId}/weeks/{weekNumber:[0-9]+}/enhance", enhanceHandler.Enhance).Methods("POST")
	root.HandleFunc("/api/users/{userId}/weeks/{weekNumber:[0-9]+}/revert", enhanceHandler.Revert).Methods("POST")
	root.HandleFunc("/api/users/{userId}/weeks/{weekNumber:[0-9]+}/snapshot", enhanceHandler.GetSnapshot).Methods("GET")

	// Export
	exportHandler := NewExportHandler(d.Reports, d.Checklists, d.Users, d.Renderer)
	root.HandleFunc("/api/users/{userId}/weeks/{weekNumber:[0-9]+}/export", exportHandler.ExportWeek).Methods("GET")

	// Billing
	billingHandler := NewBillingHandler(d.Billing, d.Authorizer)
	root.HandleFunc("/api/users/{userId}/balance", billingHandler.GetBalance).Methods("GET")
	root.HandleFunc("/api/users/{userId}/transactions", billingHandler.SubmitTransaction).Methods("POST")
	root.HandleFunc("/api/users/{userId}/transactions", billingHandler.ListTransactions).Methods("GET")
	root.HandleFunc("/api/users/{userId}/transactions/summary", billingHandler.Summary).Methods("GET")
	root.HandleFunc("/api/transactions/pending", billingHandler.ListPending).Methods("GET")
	root.HandleFunc("/api/transactions/{txId}/approve", billingHandler.Approve).Methods("POST")
	root.HandleFunc("/api/transactions/{txId}/reject", billingHandler.Reject).Methods("POST")

	// Health
	healthHandler := NewHealthHandler()
	root.HandleFunc("/api/health", healthHandler.CheckHealth).Methods("GET")

	return root
}
