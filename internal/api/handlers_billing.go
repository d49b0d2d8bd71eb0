package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/ptlog/ptlog/internal/api/respond"
	"github.com/ptlog/ptlog/internal/auth"
	"github.com/ptlog/ptlog/internal/model"
	"github.com/ptlog/ptlog/internal/services"
)

type BillingHandler struct {
	svc        *services.BillingService
	authorizer auth.Authorizer
}

func NewBillingHandler(svc *services.BillingService, authorizer auth.Authorizer) *BillingHandler {
	return &BillingHandler{svc: svc, authorizer: authorizer}
}

// GetBalance handles GET /api/users/{userId}/balance. The response carries a
// canEnhance flag so clients need not duplicate the pricing rules.
func (h *BillingHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	bal, err := h.svc.GetBalance(r.Context(), userID)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	ok, err := h.svc.CanEnhance(r.Context(), userID)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"balance":    bal,
		"canEnhance": ok,
	})
}

// SubmitTransaction handles POST /api/users/{userId}/transactions.
func (h *BillingHandler) SubmitTransaction(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	var in struct {
		Amount      decimal.Decimal     `json:"amount"`
		Method      model.PaymentMethod `json:"method"`
		SenderName  *string             `json:"senderName,omitempty"`
		AgentName   *string             `json:"agentName,omitempty"`
		PhoneNumber *string             `json:"phoneNumber,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	out, err := h.svc.SubmitTransaction(r.Context(), &model.PaymentTransaction{
		UserID:      userID,
		Amount:      in.Amount,
		Method:      in.Method,
		SenderName:  in.SenderName,
		AgentName:   in.AgentName,
		PhoneNumber: in.PhoneNumber,
	})
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

// ListTransactions handles GET /api/users/{userId}/transactions.
func (h *BillingHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	txs, err := h.svc.ListTransactions(r.Context(), userID)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"transactions": txs, "count": len(txs)})
}

// Summary handles GET /api/users/{userId}/transactions/summary.
func (h *BillingHandler) Summary(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	sum, err := h.svc.Summary(r.Context(), userID)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, sum)
}

// Approve handles POST /api/transactions/{txId}/approve. Staff only.
func (h *BillingHandler) Approve(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.staffActor(w, r)
	if !ok {
		return
	}
	out, err := h.svc.ApproveTransaction(r.Context(), mux.Vars(r)["txId"], actor.ActorID)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// Reject handles POST /api/transactions/{txId}/reject. Staff only.
func (h *BillingHandler) Reject(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.staffActor(w, r)
	if !ok {
		return
	}
	out, err := h.svc.RejectTransaction(r.Context(), mux.Vars(r)["txId"], actor.ActorID)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// ListPending handles GET /api/transactions/pending. Staff only.
func (h *BillingHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.staffActor(w, r); !ok {
		return
	}
	txs, err := h.svc.ListPending(r.Context())
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"transactions": txs, "count": len(txs)})
}

// staffActor authenticates the request and requires a staff key; on failure
// it has already written the error response.
func (h *BillingHandler) staffActor(w http.ResponseWriter, r *http.Request) (*auth.ActorInfo, bool) {
	apiKey, err := auth.ExtractAPIKey(r)
	if err != nil {
		respond.WriteError(w, http.StatusUnauthorized, err.Error())
		return nil, false
	}
	actor, err := h.authorizer.Authorize(r.Context(), apiKey)
	if err != nil {
		respond.WriteError(w, http.StatusUnauthorized, err.Error())
		return nil, false
	}
	if !actor.IsStaff() {
		respond.WriteError(w, http.StatusForbidden, "staff key required")
		return nil, false
	}
	return actor, true
}
