package handler

import (
	"net/http"

	"github.com/gsm-perf/performance/backend/internal/domain"
	"github.com/gsm-perf/performance/backend/internal/utils"
)

func (h *Handler) GetMyPerformances(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	history, err := h.reports.AgentHistory(r.Context(), myInfo, h.now())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Historique récupéré", history)
}

func (h *Handler) CreatePerformance(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	var req struct {
		Date        string `json:"date" validate:"required"`
		CaseType    string `json:"caseType" validate:"required,oneof=Access Mail Feedback Excel Ipacs Remboursement Urgence"`
		Resolved    *int   `json:"resolved" validate:"required,min=0"`
		Unreachable *int   `json:"unreachable" validate:"required,min=0"`
		Untreated   *int   `json:"untreated" validate:"required,min=0"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	now := h.now()
	date, err := utils.ParseDay(req.Date, now.Location())
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := utils.ValidatePerformanceDate(date, now); err != nil {
		h.badRequest(w, r, err)
		return
	}

	record := &domain.PerformanceRecord{
		Date:        date,
		UserID:      myInfo.ID,
		UserName:    myInfo.Name(),
		Team:        myInfo.Team,
		CaseType:    domain.CaseType(req.CaseType),
		Resolved:    *req.Resolved,
		Unreachable: *req.Unreachable,
		Untreated:   *req.Untreated,
	}

	if err := h.repository.CreatePerformance(r.Context(), record); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Performance enregistrée", record)
}
