package report

import (
	"fmt"

	"github.com/gsm-perf/performance/backend/internal/domain"
	"github.com/gsm-perf/performance/backend/internal/stats"
)

type BadgeColor string

const (
	BadgeSuccess   BadgeColor = "success"
	BadgeWarning   BadgeColor = "warning"
	BadgeDanger    BadgeColor = "danger"
	BadgeInfo      BadgeColor = "info"
	BadgePrimary   BadgeColor = "primary"
	BadgeSecondary BadgeColor = "secondary"
)

type Badge struct {
	Label string     `json:"label"`
	Color BadgeColor `json:"color"`
}

// Thresholds : un taux >= Success est vert, >= Warning orange, rouge sinon.
type Thresholds struct {
	Success int
	Warning int
}

var (
	DetailThresholds     = Thresholds{Success: 70, Warning: 50}
	TeamThresholds       = Thresholds{Success: 70, Warning: 60}
	CompletionThresholds = Thresholds{Success: 80, Warning: 60}
)

func (t Thresholds) color(rate int) BadgeColor {
	switch {
	case rate >= t.Success:
		return BadgeSuccess
	case rate >= t.Warning:
		return BadgeWarning
	default:
		return BadgeDanger
	}
}

func RateBadge(rate int, t Thresholds) Badge {
	return Badge{Label: fmt.Sprintf("%d%%", rate), Color: t.color(rate)}
}

func CompletionBadge(rate int) Badge {
	return Badge{
		Label: fmt.Sprintf("%s (%d%%)", stats.GradeOf(rate), rate),
		Color: CompletionThresholds.color(rate),
	}
}

func FeedbackStatusColor(status domain.FeedbackStatus) BadgeColor {
	switch status {
	case domain.FeedbackStatusSent:
		return BadgeWarning
	case domain.FeedbackStatusInProgress:
		return BadgeInfo
	case domain.FeedbackStatusDone:
		return BadgeSuccess
	default:
		return BadgeSecondary
	}
}

func VisibilityColor(v domain.FeedbackVisibility) BadgeColor {
	if v == domain.VisibilityPublic {
		return BadgePrimary
	}
	return BadgeSecondary
}

var dayStatusBadges = map[stats.DayStatus]Badge{
	stats.DayNotApplicable: {Label: "N/A", Color: BadgeSecondary},
	stats.DayPending:       {Label: "En attente", Color: BadgeWarning},
	stats.DayMissing:       {Label: "Non validé", Color: BadgeDanger},
	stats.DayValidated:     {Label: "Validé", Color: BadgeSuccess},
	stats.DayPartial:       {Label: "Partiel", Color: BadgeWarning},
}

func DayStatusBadge(status stats.DayStatus) Badge {
	if b, ok := dayStatusBadges[status]; ok {
		return b
	}
	return Badge{Label: string(status), Color: BadgeSecondary}
}
