package report

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gsm-perf/performance/backend/internal/domain"
	"github.com/gsm-perf/performance/backend/internal/repository"
	"github.com/gsm-perf/performance/backend/internal/stats"
)

type DayCell struct {
	Date   string          `json:"date"`
	Status stats.DayStatus `json:"status"`
	Badge  Badge           `json:"badge"`
}

type TaskAgent struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Team  string `json:"team"`
}

type TaskRow struct {
	Agent      TaskAgent   `json:"agent"`
	Days       []DayCell   `json:"days"`
	Completion int         `json:"completion"`
	Grade      stats.Grade `json:"grade"`
	Badge      Badge       `json:"badge"`
}

type AlertLevel string

const (
	AlertWarning AlertLevel = "warning"
	AlertInfo    AlertLevel = "info"
)

type Alert struct {
	Level   AlertLevel `json:"level"`
	Subject string     `json:"subject"`
	Message string     `json:"message"`
}

type SupervisorTasks struct {
	Headers    []string  `json:"headers"`
	Rows       []TaskRow `json:"rows"`
	Completion int       `json:"completion"`
	Badge      Badge     `json:"badge"`
	Chart      Chart     `json:"chart"`
	Alerts     []Alert   `json:"alerts"`
	DailyGoal  int       `json:"dailyGoal"`
}

// missingAlertDays est le nombre de journées non saisies à partir duquel un agent est signalé.
const missingAlertDays = 2

// SupervisorTasks construit la grille des dernières journées ouvrées pour les agents actifs
// de l'équipe du superviseur, lui-même exclu.
func (s *Service) SupervisorTasks(ctx context.Context, supervisor *domain.User, now time.Time, excludeWeekends bool) (*SupervisorTasks, error) {
	days := stats.LastWorkDays(now, s.cfg.Dashboard.SupervisorDays, excludeWeekends)

	users, err := s.store.ListUsers(ctx, repository.UserFilter{
		Status: domain.UserStatusActive,
		Team:   supervisor.Team,
	})
	if err != nil {
		return nil, err
	}

	agents := make([]*domain.User, 0, len(users))
	ids := make([]string, 0, len(users))
	for _, u := range users {
		if u.ID == supervisor.ID {
			continue
		}
		agents = append(agents, u)
		ids = append(ids, strconv.FormatInt(u.ID, 10))
	}

	buckets := stats.Buckets{}
	if len(agents) > 0 && len(days) > 0 {
		records, _, err := s.store.ListPerformance(ctx, repository.PerformanceFilter{
			From:    &days[0],
			To:      &days[len(days)-1],
			UserIDs: ids,
		})
		if err != nil {
			return nil, err
		}
		buckets = stats.Bucketize(records, stats.ByAgentDay)
	}

	target := s.cfg.Dashboard.DailyTarget
	columns := make([][]stats.DayStatus, len(days))
	all := []stats.DayStatus{}
	rows := make([]TaskRow, 0, len(agents))
	alerts := []Alert{}
	outbound := false

	for _, agent := range agents {
		if agent.Team == domain.TeamOutbound {
			outbound = true
		}

		cells := make([]DayCell, len(days))
		statuses := make([]stats.DayStatus, len(days))
		missing := 0
		for i, day := range days {
			var daySummary *stats.Summary
			if sum, ok := buckets[stats.AgentDayKey(agent.ID, day)]; ok {
				daySummary = &sum
			}
			status := stats.EvaluateDay(daySummary, day, now, agent.Team, target)
			if status == stats.DayMissing {
				missing++
			}
			statuses[i] = status
			columns[i] = append(columns[i], status)
			cells[i] = DayCell{Date: stats.DayKey(day), Status: status, Badge: DayStatusBadge(status)}
		}
		all = append(all, statuses...)

		completion := stats.CompletionRate(statuses)
		rows = append(rows, TaskRow{
			Agent: TaskAgent{
				ID:    agent.ID,
				Name:  agent.Name(),
				Email: agent.Email,
				Team:  agent.Team,
			},
			Days:       cells,
			Completion: completion,
			Grade:      stats.GradeOf(completion),
			Badge:      CompletionBadge(completion),
		})

		if missing >= missingAlertDays {
			alerts = append(alerts, Alert{
				Level:   AlertWarning,
				Subject: agent.Name(),
				Message: fmt.Sprintf("%d jours non validés", missing),
			})
		}
	}

	if outbound {
		alerts = append(alerts, Alert{
			Level:   AlertInfo,
			Subject: "Équipe " + domain.TeamOutbound,
			Message: "Weekend exclu du calcul",
		})
	}

	headers := make([]string, len(days))
	chart := Chart{
		Type:   ChartBar,
		Labels: make([]string, len(days)),
		Series: []Series{{
			Label: "Taux de Complétion (%)",
			Data:  make([]int, len(days)),
			Color: ColorResolved,
		}},
		Options: map[string]any{
			"yMax":   100,
			"yTitle": "Pourcentage (%)",
		},
	}
	for i, day := range days {
		headers[i] = frenchDate(day)
		chart.Labels[i] = longWeekdays[day.Weekday()]
		chart.Series[0].Data[i] = stats.CompletionRate(columns[i])
	}

	completion := stats.CompletionRate(all)
	return &SupervisorTasks{
		Headers:    headers,
		Rows:       rows,
		Completion: completion,
		Badge:      CompletionBadge(completion),
		Chart:      chart,
		Alerts:     alerts,
		DailyGoal:  target,
	}, nil
}
