package handler

import (
	"errors"
	"net/http"

	"github.com/gsm-perf/performance/backend/internal/domain"
	"github.com/gsm-perf/performance/backend/internal/report"
	"github.com/gsm-perf/performance/backend/internal/repository"
)

func (h *Handler) GetMyFeedbacks(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	feedbacks, err := h.repository.ListFeedbacks(r.Context(), repository.FeedbackFilter{
		UserID: myInfo.ID,
		Limit:  h.config.Dashboard.FeedbackPageSize,
	})
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Feedbacks récupérés", feedbacks)
}

func (h *Handler) CreateFeedback(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	var req struct {
		Nature     string `json:"nature" validate:"required,max=100"`
		Visibility string `json:"visibility" validate:"required,oneof=Public Privé"`
		Message    string `json:"message" validate:"required,max=2000"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	feedback := &domain.Feedback{
		UserID:     myInfo.ID,
		UserName:   myInfo.Name(),
		UserTeam:   myInfo.Team,
		Nature:     req.Nature,
		Visibility: domain.FeedbackVisibility(req.Visibility),
		Message:    req.Message,
		Date:       h.now(),
		Status:     domain.FeedbackStatusSent,
	}

	if err := h.repository.CreateFeedback(r.Context(), feedback); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Feedback envoyé", feedback)
}

type FeedbackList struct {
	Cards  []report.FeedbackCard `json:"cards"`
	Unread int                   `json:"unread"`
}

func (h *Handler) GetFeedbacks(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFeedbackFilter(r.URL.Query(), h.now(), h.config.Dashboard.FeedbackLookbackDays)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	filter.Limit = h.config.Dashboard.FeedbackPageSize

	feedbacks, err := h.repository.ListFeedbacks(r.Context(), filter)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	cards := report.FeedbackCards(feedbacks)
	unread := 0
	for _, c := range cards {
		if c.Unread {
			unread++
		}
	}

	h.successResponse(w, r, "Feedbacks récupérés", FeedbackList{Cards: cards, Unread: unread})
}

// UpdateFeedbackStatus ne fait qu'avancer le statut : Envoyé, En cours puis Traité.
func (h *Handler) UpdateFeedbackStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status" validate:"required,oneof=Envoyé 'En cours' Traité"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	feedback := r.Context().Value(FeedbackCtx).(*domain.Feedback)
	next := domain.FeedbackStatus(req.Status)
	if !feedback.Status.CanTransitionTo(next) {
		h.errorResponse(w, r, "Ce changement de statut n'est pas autorisé")
		return
	}

	feedback.Status = next
	if err := h.repository.UpdateFeedback(r.Context(), feedback); err != nil {
		switch {
		case errors.Is(err, repository.ErrEditConflict):
			h.errorResponse(w, r, "Le feedback a été modifié entre-temps, veuillez réessayer")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "Statut du feedback mis à jour", report.FeedbackCards([]*domain.Feedback{feedback})[0])
}
