package handler

import (
	"log/slog"
	"net/http"

	"github.com/gsm-perf/performance/backend/internal/domain"
	"github.com/gsm-perf/performance/backend/internal/repository"
	"github.com/gsm-perf/performance/backend/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

func (h *Handler) GetUsers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := repository.UserFilter{
		Status: domain.UserStatus(query.Get("status")),
		Team:   query.Get("team"),
	}
	if filter.Status != "" && filter.Status != domain.UserStatusPending && filter.Status != domain.UserStatusActive {
		h.errorResponse(w, r, "Statut inconnu")
		return
	}

	users, err := h.repository.ListUsers(r.Context(), filter)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Utilisateurs récupérés", users)
}

// UpdateUser permet à un administrateur de valider un compte ou de changer son rôle ou son équipe.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status *string `json:"status" validate:"omitempty,oneof=pending active"`
		Role   *string `json:"role" validate:"omitempty,oneof=agent agentT agentC admin adminP"`
		Team   *string `json:"team"`
		Group  *string `json:"group"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	user := r.Context().Value(UserInfoCtx).(*domain.User)
	wasActive := user.IsActive()

	if user.ID == myInfo.ID && (req.Role != nil || req.Status != nil) {
		h.errorResponse(w, r, "Vous ne pouvez pas modifier votre propre rôle ni votre statut")
		return
	}
	// seul un adminP gère les comptes d'administration
	if myInfo.Role != domain.RolePrincipalAdmin {
		if user.Role.IsAdministrative() || (req.Role != nil && domain.Role(*req.Role).IsAdministrative()) {
			h.forbidden(w, r, myInfo.Role)
			return
		}
	}

	if req.Team != nil {
		team, err := h.lookupTeam(r.Context(), *req.Team)
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}
		if team == nil {
			h.errorResponse(w, r, "Équipe inconnue")
			return
		}
		user.Team = team.Name
		user.Department = team.Department
	}
	if req.Group != nil {
		user.Group = *req.Group
	}
	if user.Team != groupedTeam {
		user.Group = ""
	}
	if req.Role != nil {
		user.Role = domain.Role(*req.Role)
	}
	if req.Status != nil {
		user.Status = domain.UserStatus(*req.Status)
	}

	if err := h.repository.UpdateUser(r.Context(), user); err != nil {
		h.userWriteError(w, r, err)
		return
	}

	if !wasActive && user.IsActive() {
		if err := h.publishMail(r.Context(), domain.MailMessage{
			Type: domain.MailTypeAccountActivated,
			To:   user.Email,
			Data: domain.AccountActivatedMailData{
				FullName: user.Name(),
				Role:     string(user.Role),
				Team:     user.Team,
			},
		}); err != nil {
			// le compte est déjà activé, seul le mail est perdu
			slog.Warn("envoi du mail d'activation impossible", "request_id", r.Context().Value(RequestIDCtxKey), "user_id", user.ID, "error", err)
		}
	}

	h.successResponse(w, r, "Utilisateur mis à jour", user)
}

type CreatedUser struct {
	*domain.User
	TemporaryPassword string `json:"temporaryPassword"`
}

// CreateUser crée un compte avec un mot de passe temporaire, invitation et activation optionnelles.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FirstName           string `json:"firstName" validate:"required"`
		LastName            string `json:"lastName" validate:"required"`
		Email               string `json:"email" validate:"required,email"`
		Role                string `json:"role" validate:"required,oneof=agent agentT agentC admin adminP"`
		Team                string `json:"team" validate:"required"`
		Group               string `json:"group"`
		Contact             string `json:"contact"`
		Neighborhood        string `json:"neighborhood"`
		SendInvitation      bool   `json:"sendInvitation"`
		ActivateImmediately bool   `json:"activateImmediately"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	exists, err := h.repository.CheckEmailIfExists(r.Context(), req.Email)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if exists {
		h.errorResponse(w, r, emailTakenMessage)
		return
	}

	team, err := h.lookupTeam(r.Context(), req.Team)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if team == nil {
		h.errorResponse(w, r, "Équipe inconnue")
		return
	}

	password := utils.GenerateRandomPassword(h.config.NewUser.PasswordLength)

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	user := &domain.User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
		Role:         domain.Role(req.Role),
		Team:         team.Name,
		Department:   team.Department,
		Contact:      req.Contact,
		Neighborhood: req.Neighborhood,
		Status:       domain.UserStatusPending,
	}
	if team.Name == groupedTeam {
		user.Group = req.Group
	}
	if req.ActivateImmediately {
		user.Status = domain.UserStatusActive
	}

	if err := h.repository.CreateUser(r.Context(), user); err != nil {
		h.userWriteError(w, r, err)
		return
	}

	if req.SendInvitation {
		if err := h.publishMail(r.Context(), domain.MailMessage{
			Type: domain.MailTypeCreateUser,
			To:   user.Email,
			Data: domain.CreateUserMailData{
				FullName: user.Name(),
				Email:    user.Email,
				Password: password,
			},
		}); err != nil {
			h.internalServerError(w, r, err)
			return
		}
	}

	h.successResponse(w, r, "Utilisateur créé", CreatedUser{User: user, TemporaryPassword: password})
}
