package report

import (
	"github.com/gsm-perf/performance/backend/internal/domain"
)

const anonymousTitle = "Feedback Anonyme"

// FeedbackCard est un feedback tel que présenté aux administrateurs. Un feedback privé ne révèle
// ni le nom ni l'équipe de son auteur.
type FeedbackCard struct {
	ID              int64                     `json:"id"`
	Title           string                    `json:"title"`
	Date            string                    `json:"date"`
	Nature          string                    `json:"nature"`
	Message         string                    `json:"message"`
	Status          domain.FeedbackStatus     `json:"status"`
	StatusColor     BadgeColor                `json:"statusColor"`
	Visibility      domain.FeedbackVisibility `json:"visibility"`
	VisibilityColor BadgeColor                `json:"visibilityColor"`
	Unread          bool                      `json:"unread"`
	Anonymous       bool                      `json:"anonymous"`
}

func FeedbackCards(feedbacks []*domain.Feedback) []FeedbackCard {
	cards := make([]FeedbackCard, 0, len(feedbacks))
	for _, f := range feedbacks {
		if f == nil {
			continue
		}

		card := FeedbackCard{
			ID:              f.ID,
			Date:            frenchDate(f.Date),
			Nature:          f.Nature,
			Message:         f.Message,
			Status:          f.Status,
			StatusColor:     FeedbackStatusColor(f.Status),
			Visibility:      f.Visibility,
			VisibilityColor: VisibilityColor(f.Visibility),
			Unread:          f.Status == domain.FeedbackStatusSent,
		}

		if f.Visibility == domain.VisibilityPrivate {
			card.Title = anonymousTitle
			card.Anonymous = true
		} else {
			name := f.UserName
			if name == "" {
				name = "Utilisateur"
			}
			card.Title = name + " - " + f.UserTeam
		}

		cards = append(cards, card)
	}
	return cards
}
