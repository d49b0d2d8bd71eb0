package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/ptlog/ptlog/internal/api/respond"
	"github.com/ptlog/ptlog/internal/model"
	"github.com/ptlog/ptlog/internal/services"
)

type UserHandler struct {
	svc *services.UserService
}

func NewUserHandler(svc *services.UserService) *UserHandler { return &UserHandler{svc: svc} }

type userProfileBody struct {
	DisplayName     *string `json:"displayName,omitempty"`
	StudentID       *string `json:"studentId,omitempty"`
	Program         *string `json:"program,omitempty"`
	PTPhase         *string `json:"ptPhase,omitempty"`
	CompanyName     *string `json:"companyName,omitempty"`
	SupervisorName  *string `json:"supervisorName,omitempty"`
	SupervisorEmail *string `json:"supervisorEmail,omitempty"`
	PhoneNumber     *string `json:"phoneNumber,omitempty"`
}

func (b *userProfileBody) apply(u *model.User) {
	u.DisplayName = b.DisplayName
	u.StudentID = b.StudentID
	u.Program = b.Program
	u.PTPhase = b.PTPhase
	u.CompanyName = b.CompanyName
	u.SupervisorName = b.SupervisorName
	u.SupervisorEmail = b.SupervisorEmail
	u.PhoneNumber = b.PhoneNumber
}

func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var in struct {
		UserID string `json:"userId"`
		Email  string `json:"email"`
		userProfileBody
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	u := &model.User{UserID: in.UserID, Email: in.Email}
	in.apply(u)
	out, err := h.svc.CreateUser(r.Context(), u)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	u, err := h.svc.GetUser(r.Context(), userID)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, u)
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	var in userProfileBody
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	u := &model.User{UserID: userID}
	in.apply(u)
	out, err := h.svc.UpdateProfile(r.Context(), u)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}
