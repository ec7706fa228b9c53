package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gsm-perf/performance/backend/internal/domain"
	"github.com/gsm-perf/performance/backend/internal/orgconfig"
	"github.com/gsm-perf/performance/backend/internal/repository"
)

// settingsError traduit les refus métier de orgconfig en échec d'écriture.
func (h *Handler) settingsError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, orgconfig.ErrBlankName),
		errors.Is(err, orgconfig.ErrDuplicate),
		errors.Is(err, orgconfig.ErrNotFound),
		errors.Is(err, orgconfig.ErrDefaultDepartment),
		errors.Is(err, orgconfig.ErrUnknownDepartment):
		h.errorResponse(w, r, err.Error())
	case errors.Is(err, repository.ErrEditConflict):
		h.errorResponse(w, r, "La configuration a été modifiée en parallèle, veuillez réessayer")
	default:
		h.internalServerError(w, r, err)
	}
}

// lookupTeam renvoie nil si l'équipe n'est pas déclarée.
func (h *Handler) lookupTeam(ctx context.Context, name string) (*domain.Team, error) {
	teams, err := h.settings.Teams(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range teams.Teams {
		if t.Name == name {
			return &t, nil
		}
	}
	return nil, nil
}

func (h *Handler) GetDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := h.settings.Departments(r.Context())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Départements récupérés", departments)
}

func (h *Handler) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	departments, err := h.settings.AddDepartment(r.Context(), req.Name)
	if err != nil {
		h.settingsError(w, r, err)
		return
	}

	h.successResponse(w, r, "Département ajouté", departments)
}

func (h *Handler) DeleteDepartment(w http.ResponseWriter, r *http.Request) {
	departments, err := h.settings.RemoveDepartment(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		h.settingsError(w, r, err)
		return
	}

	h.successResponse(w, r, "Département supprimé", departments)
}

func (h *Handler) GetTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.settings.TeamsWithMembers(r.Context())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Équipes récupérées", teams)
}

func (h *Handler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name       string `json:"name" validate:"required"`
		Department string `json:"department"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	teams, err := h.settings.AddTeam(r.Context(), domain.Team{Name: req.Name, Department: req.Department})
	if err != nil {
		h.settingsError(w, r, err)
		return
	}

	h.successResponse(w, r, "Équipe ajoutée", teams)
}

func (h *Handler) DeleteTeam(w http.ResponseWriter, r *http.Request) {
	teams, err := h.settings.RemoveTeam(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		h.settingsError(w, r, err)
		return
	}

	h.successResponse(w, r, "Équipe supprimée", teams)
}
