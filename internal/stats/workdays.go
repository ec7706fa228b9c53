package stats

import (
	"time"

	"github.com/gsm-perf/performance/backend/internal/domain"
)

type DayStatus string

const (
	DayNotApplicable DayStatus = "not_applicable"
	DayPending       DayStatus = "pending"
	DayMissing       DayStatus = "missing"
	DayValidated     DayStatus = "validated"
	DayPartial       DayStatus = "partial"
)

type Grade string

const (
	GradeExcellent    Grade = "Excellent"
	GradeAverage      Grade = "Moyen"
	GradeInsufficient Grade = "Insuffisant"
)

func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// LastWorkDays renvoie les n jours précédant now (aujourd'hui exclu), du plus ancien au plus récent.
// Avec excludeWeekends, samedi et dimanche sont sautés.
func LastWorkDays(now time.Time, n int, excludeWeekends bool) []time.Time {
	if n <= 0 {
		return []time.Time{}
	}

	days := make([]time.Time, 0, n)
	current := StartOfDay(now)
	for len(days) < n {
		current = current.AddDate(0, 0, -1)
		if excludeWeekends && IsWeekend(current) {
			continue
		}
		days = append(days, current)
	}

	for i, j := 0, len(days)-1; i < j; i, j = i+1, j-1 {
		days[i], days[j] = days[j], days[i]
	}
	return days
}

// EvaluateDay qualifie la journée d'un agent. day est nil quand aucune saisie n'existe.
func EvaluateDay(day *Summary, date, now time.Time, team string, target int) DayStatus {
	if team == domain.TeamOutbound && IsWeekend(date) {
		return DayNotApplicable
	}

	if day == nil {
		if SameDay(date, now) {
			return DayPending
		}
		return DayMissing
	}

	if day.TotalCases >= target {
		return DayValidated
	}
	return DayPartial
}

// CompletionRate est la part de journées validées parmi les journées applicables.
func CompletionRate(statuses []DayStatus) int {
	applicable, validated := 0, 0
	for _, s := range statuses {
		if s == DayNotApplicable {
			continue
		}
		applicable++
		if s == DayValidated {
			validated++
		}
	}
	return Rate(validated, applicable)
}

func GradeOf(completionRate int) Grade {
	switch {
	case completionRate >= 80:
		return GradeExcellent
	case completionRate >= 60:
		return GradeAverage
	default:
		return GradeInsufficient
	}
}
