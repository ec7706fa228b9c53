package domain

import "time"

type FeedbackVisibility string

const (
	VisibilityPublic  FeedbackVisibility = "Public"
	VisibilityPrivate FeedbackVisibility = "Privé"
)

type FeedbackStatus string

const (
	FeedbackStatusSent       FeedbackStatus = "Envoyé"
	FeedbackStatusInProgress FeedbackStatus = "En cours"
	FeedbackStatusDone       FeedbackStatus = "Traité"
)

var feedbackStatusRank = map[FeedbackStatus]int{
	FeedbackStatusSent:       0,
	FeedbackStatusInProgress: 1,
	FeedbackStatusDone:       2,
}

func (s FeedbackStatus) Valid() bool {
	_, ok := feedbackStatusRank[s]
	return ok
}

// CanTransitionTo n'autorise que l'avancement : Envoyé → En cours → Traité,
// avec saut direct Envoyé → Traité.
func (s FeedbackStatus) CanTransitionTo(next FeedbackStatus) bool {
	from, ok := feedbackStatusRank[s]
	if !ok {
		return false
	}
	to, ok := feedbackStatusRank[next]
	if !ok {
		return false
	}
	return to > from
}

type Feedback struct {
	ID         int64              `json:"id"`
	UserID     int64              `json:"userID"`
	UserName   string             `json:"userName"`
	UserTeam   string             `json:"userTeam"`
	Nature     string             `json:"nature"`
	Visibility FeedbackVisibility `json:"visibility"`
	Message    string             `json:"message"`
	Date       time.Time          `json:"date"`
	Status     FeedbackStatus     `json:"status"`
	Version    int32              `json:"-"`
}
