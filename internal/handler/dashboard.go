package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gsm-perf/performance/backend/internal/domain"
)

func (h *Handler) GetAgentDashboard(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	dashboard, err := h.reports.AgentDashboard(r.Context(), myInfo, h.now())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Tableau de bord récupéré", dashboard)
}

func (h *Handler) GetSupervisorTasks(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	excludeWeekends := true
	if raw := r.URL.Query().Get("excludeWeekends"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			h.errorResponse(w, r, "Paramètre excludeWeekends invalide")
			return
		}
		excludeWeekends = v
	}

	tasks, err := h.reports.SupervisorTasks(r.Context(), myInfo, h.now(), excludeWeekends)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Suivi des tâches récupéré", tasks)
}

// GetAdminOverview sert l'instantané du rafraîchisseur, calculé à la demande s'il manque.
func (h *Handler) GetAdminOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.overview.Overview(r.Context())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Vue d'ensemble récupérée", overview)
}

func (h *Handler) GetGlobalEvolution(w http.ResponseWriter, r *http.Request) {
	chart, err := h.reports.GlobalEvolution(r.Context(), h.now())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Évolution récupérée", chart)
}

func (h *Handler) GetTeamsComparison(w http.ResponseWriter, r *http.Request) {
	teams, err := h.settings.Teams(r.Context())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	comparison, err := h.reports.TeamsComparison(r.Context(), teams.Teams, h.now())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Comparaison des équipes récupérée", comparison)
}

func (h *Handler) GetFilterOptions(w http.ResponseWriter, r *http.Request) {
	teams, err := h.settings.Teams(r.Context())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	options, err := h.reports.FilterOptions(r.Context(), teams.Teams)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Filtres récupérés", options)
}

func (h *Handler) GetPerformanceReport(w http.ResponseWriter, r *http.Request) {
	filter, err := parsePerformanceFilter(r.URL.Query(), h.now().Location())
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	report, err := h.reports.FilteredReport(r.Context(), filter)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Rapport généré", report)
}

func (h *Handler) ExportPerformances(w http.ResponseWriter, r *http.Request) {
	filter, err := parsePerformanceFilter(r.URL.Query(), h.now().Location())
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := h.reports.Export(r.Context(), filter, &buf); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	filename := fmt.Sprintf("performances_%s.csv", h.now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if _, err := buf.WriteTo(w); err != nil {
		h.logInternalServerError(r, err)
	}
}
