package handler

import (
	"net/http"

	"github.com/gsm-perf/performance/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

type MyInfoResponse struct {
	*domain.User
	Views    []domain.View `json:"views"`
	HomeView domain.View   `json:"homeView"`
}

func (h *Handler) GetMyInfo(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	h.successResponse(w, r, "Informations personnelles récupérées", MyInfoResponse{
		User:     myInfo,
		Views:    myInfo.Role.Views(),
		HomeView: myInfo.Role.HomeView(),
	})
}

func (h *Handler) UpdateMyPassword(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	var req struct {
		OldPassword string `json:"oldPassword" validate:"required"`
		NewPassword string `json:"newPassword" validate:"required,min=8"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(myInfo.PasswordHash), []byte(req.OldPassword)); err != nil {
		h.errorResponse(w, r, "Ancien mot de passe incorrect")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	myInfo.PasswordHash = string(hashedPassword)

	if err := h.repository.UpdateUser(r.Context(), myInfo); err != nil {
		h.userWriteError(w, r, err)
		return
	}

	h.successResponse(w, r, "Mot de passe mis à jour", nil)
}
