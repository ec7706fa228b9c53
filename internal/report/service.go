package report

import (
	"context"
	"strconv"
	"time"

	"github.com/gsm-perf/performance/backend/internal/config"
	"github.com/gsm-perf/performance/backend/internal/domain"
	"github.com/gsm-perf/performance/backend/internal/repository"
	"github.com/gsm-perf/performance/backend/internal/stats"
)

// Store est le sous-ensemble du dépôt dont les vues ont besoin.
type Store interface {
	ListPerformance(ctx context.Context, filter repository.PerformanceFilter) ([]*domain.PerformanceRecord, int, error)
	ListUserPerformance(ctx context.Context, userID int64, from, to time.Time) ([]*domain.PerformanceRecord, error)
	ListUsers(ctx context.Context, filter repository.UserFilter) ([]*domain.User, error)
	CountUsers(ctx context.Context, filter repository.UserFilter) (int, error)
	CountFeedbacksByStatus(ctx context.Context, status domain.FeedbackStatus) (int, error)
}

type Service struct {
	cfg   *config.Config
	store Store
}

func NewService(cfg *config.Config, store Store) *Service {
	return &Service{cfg: cfg, store: store}
}

type AgentRow struct {
	UserID      int64  `json:"userID"`
	Name        string `json:"name"`
	Resolved    int    `json:"resolved"`
	Unreachable int    `json:"unreachable"`
	Untreated   int    `json:"untreated"`
	Rate        Badge  `json:"rate"`
}

type AgentDashboard struct {
	Month      string        `json:"month"`
	Summary    stats.Summary `json:"summary"`
	Weekly     Chart         `json:"weekly"`
	Cases      Chart         `json:"cases"`
	TeamName   string        `json:"teamName"`
	TeamStats  []AgentRow    `json:"teamStats"`
	DailyGoal  int           `json:"dailyGoal"`
	TodayCases int           `json:"todayCases"`
}

func (s *Service) AgentDashboard(ctx context.Context, user *domain.User, now time.Time) (*AgentDashboard, error) {
	monthStart, monthEnd := monthBounds(now)
	week := lastDays(now, s.cfg.Dashboard.WeeklyDays)

	from := monthStart
	if len(week) > 0 && week[0].Before(from) {
		from = week[0]
	}

	records, err := s.store.ListUserPerformance(ctx, user.ID, from, monthEnd)
	if err != nil {
		return nil, err
	}

	monthRecords := make([]*domain.PerformanceRecord, 0, len(records))
	for _, r := range records {
		if stats.DayKey(r.Date) >= stats.DayKey(monthStart) {
			monthRecords = append(monthRecords, r)
		}
	}
	summary := stats.Summarize(monthRecords)

	byDay := stats.Bucketize(records, stats.ByDay)
	weekly := Chart{
		Type:   ChartLine,
		Labels: make([]string, len(week)),
		Series: []Series{{
			Label: "Cas Résolus",
			Data:  make([]int, len(week)),
			Color: ColorResolved,
		}},
		Options: map[string]any{"tension": 0.4},
	}
	for i, sum := range byDay.Fill(dayKeys(week)) {
		weekly.Labels[i] = shortWeekday(week[i])
		weekly.Series[0].Data[i] = sum.TotalResolved
	}

	cases := Chart{
		Type:   ChartDoughnut,
		Labels: []string{"Résolus", "Injoignables", "Non Traités"},
		Series: []Series{{
			Label:  "Répartition",
			Data:   []int{summary.TotalResolved, summary.TotalUnreachable, summary.TotalUntreated},
			Colors: []string{ColorResolved, ColorUnreachable, ColorUntreated},
		}},
	}

	teamStats := []AgentRow{}
	if user.Team != "" {
		teamRecords, _, err := s.store.ListPerformance(ctx, repository.PerformanceFilter{
			From:  &monthStart,
			To:    &monthEnd,
			Teams: []string{user.Team},
		})
		if err != nil {
			return nil, err
		}
		teamStats = agentRows(teamRecords, TeamThresholds)
	}

	return &AgentDashboard{
		Month:      monthLabel(now),
		Summary:    summary,
		Weekly:     weekly,
		Cases:      cases,
		TeamName:   user.Team,
		TeamStats:  teamStats,
		DailyGoal:  s.cfg.Dashboard.DailyTarget,
		TodayCases: byDay[stats.DayKey(now)].TotalCases,
	}, nil
}

// agentRows regroupe les saisies par agent, dans l'ordre de première apparition.
func agentRows(records []*domain.PerformanceRecord, t Thresholds) []AgentRow {
	buckets := stats.Bucketize(records, stats.ByAgent)
	rows := make([]AgentRow, 0, len(buckets))
	seen := make(map[int64]bool, len(buckets))
	for _, r := range records {
		if r == nil || seen[r.UserID] {
			continue
		}
		seen[r.UserID] = true
		sum := buckets[strconv.FormatInt(r.UserID, 10)]
		rows = append(rows, AgentRow{
			UserID:      r.UserID,
			Name:        r.UserName,
			Resolved:    sum.TotalResolved,
			Unreachable: sum.TotalUnreachable,
			Untreated:   sum.TotalUntreated,
			Rate:        RateBadge(sum.ResolutionRate, t),
		})
	}
	return rows
}

type HistoryRow struct {
	ID          int64           `json:"id"`
	Date        string          `json:"date"`
	CaseType    domain.CaseType `json:"caseType"`
	Resolved    int             `json:"resolved"`
	Unreachable int             `json:"unreachable"`
	Untreated   int             `json:"untreated"`
	Rate        Badge           `json:"rate"`
}

func historyRow(r *domain.PerformanceRecord) HistoryRow {
	return HistoryRow{
		ID:          r.ID,
		Date:        frenchDate(r.Date),
		CaseType:    r.CaseType,
		Resolved:    r.ResolvedCount(),
		Unreachable: r.UnreachableCount(),
		Untreated:   r.UntreatedCount(),
		Rate:        RateBadge(stats.Rate(r.ResolvedCount(), r.TotalCases()), DetailThresholds),
	}
}

// AgentHistory renvoie les saisies des derniers jours de l'agent, la plus récente en premier.
func (s *Service) AgentHistory(ctx context.Context, user *domain.User, now time.Time) ([]HistoryRow, error) {
	days := lastDays(now, s.cfg.Dashboard.HistoryDays)
	if len(days) == 0 {
		return []HistoryRow{}, nil
	}

	records, err := s.store.ListUserPerformance(ctx, user.ID, days[0], days[len(days)-1])
	if err != nil {
		return nil, err
	}

	rows := make([]HistoryRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, historyRow(r))
	}
	return rows, nil
}

type DetailRow struct {
	ID       int64           `json:"id"`
	Date     string          `json:"date"`
	UserName string          `json:"userName"`
	Team     string          `json:"team"`
	CaseType domain.CaseType `json:"caseType"`
	Resolved int             `json:"resolved"`
	Rate     Badge           `json:"rate"`
}

// FilteredReport : Total compte toutes les saisies du filtre, Rows n'en affiche qu'une partie.
type FilteredReport struct {
	Summary stats.Summary `json:"summary"`
	Total   int           `json:"total"`
	Rows    []DetailRow   `json:"rows"`
	Chart   Chart         `json:"chart"`
}

// maxChartDays borne l'axe dense d'un graphique quotidien.
const maxChartDays = 366

func (s *Service) FilteredReport(ctx context.Context, filter repository.PerformanceFilter) (*FilteredReport, error) {
	filter.Limit = 0
	filter.Offset = 0
	records, total, err := s.store.ListPerformance(ctx, filter)
	if err != nil {
		return nil, err
	}

	limit := min(len(records), s.cfg.Dashboard.DetailRowCap)
	rows := make([]DetailRow, 0, limit)
	for _, r := range records[:limit] {
		userName := r.UserName
		if userName == "" {
			userName = "N/A"
		}
		rows = append(rows, DetailRow{
			ID:       r.ID,
			Date:     frenchDate(r.Date),
			UserName: userName,
			Team:     r.Team,
			CaseType: r.CaseType,
			Resolved: r.ResolvedCount(),
			Rate:     RateBadge(stats.Rate(r.ResolvedCount(), r.TotalCases()), DetailThresholds),
		})
	}

	byDay := stats.Bucketize(records, stats.ByDay)
	keys := byDay.Keys()
	if filter.From != nil && filter.To != nil {
		if dense := stats.DayRange(*filter.From, *filter.To); len(dense) <= maxChartDays {
			keys = dense
		}
	}

	labels := make([]string, len(keys))
	for i, k := range keys {
		labels[i] = dayKeyLabel(k)
	}

	series := caseSeries(byDay, keys, false)
	series[0].Label, series[1].Label, series[2].Label = "Résolus", "Injoignables", "Non Traités"

	return &FilteredReport{
		Summary: byDay.Total(),
		Total:   total,
		Rows:    rows,
		Chart: Chart{
			Type:   ChartBar,
			Labels: labels,
			Series: series,
			Options: map[string]any{
				"stacked": true,
			},
		},
	}, nil
}

type Overview struct {
	ActiveAgents    int       `json:"activeAgents"`
	TotalCases      int       `json:"totalCases"`
	ResolutionRate  int       `json:"resolutionRate"`
	UnreadFeedbacks int       `json:"unreadFeedbacks"`
	ComputedAt      time.Time `json:"computedAt"`
}

func (s *Service) AdminOverview(ctx context.Context, now time.Time) (*Overview, error) {
	activeAgents, err := s.store.CountUsers(ctx, repository.UserFilter{Status: domain.UserStatusActive})
	if err != nil {
		return nil, err
	}

	monthStart, _ := monthBounds(now)
	records, _, err := s.store.ListPerformance(ctx, repository.PerformanceFilter{From: &monthStart})
	if err != nil {
		return nil, err
	}
	summary := stats.Summarize(records)

	unread, err := s.store.CountFeedbacksByStatus(ctx, domain.FeedbackStatusSent)
	if err != nil {
		return nil, err
	}

	return &Overview{
		ActiveAgents:    activeAgents,
		TotalCases:      summary.TotalCases,
		ResolutionRate:  summary.ResolutionRate,
		UnreadFeedbacks: unread,
		ComputedAt:      now,
	}, nil
}

func (s *Service) GlobalEvolution(ctx context.Context, now time.Time) (*Chart, error) {
	days := lastDays(now, s.cfg.Dashboard.WeeklyDays)
	if len(days) == 0 {
		return &Chart{Type: ChartLine, Labels: []string{}, Series: []Series{}}, nil
	}

	records, _, err := s.store.ListPerformance(ctx, repository.PerformanceFilter{
		From: &days[0],
		To:   &days[len(days)-1],
	})
	if err != nil {
		return nil, err
	}

	labels := make([]string, len(days))
	for i, d := range days {
		labels[i] = shortWeekday(d)
	}

	return &Chart{
		Type:   ChartLine,
		Labels: labels,
		Series: caseSeries(stats.Bucketize(records, stats.ByDay), dayKeys(days), true),
		Options: map[string]any{
			"tension": 0.4,
			"yTitle":  "Nombre de Cas",
		},
	}, nil
}

type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// trendTolerance : un écart de taux d'au plus un point est considéré stable.
const trendTolerance = 1

func trendOf(current, previous stats.Summary) Trend {
	if previous.TotalCases == 0 {
		return TrendStable
	}
	switch diff := current.ResolutionRate - previous.ResolutionRate; {
	case diff > trendTolerance:
		return TrendUp
	case diff < -trendTolerance:
		return TrendDown
	default:
		return TrendStable
	}
}

type TeamRow struct {
	Name        string `json:"name"`
	Department  string `json:"department"`
	Agents      int    `json:"agents"`
	Resolved    int    `json:"resolved"`
	Unreachable int    `json:"unreachable"`
	Untreated   int    `json:"untreated"`
	Rate        Badge  `json:"rate"`
	Trend       Trend  `json:"trend"`
}

type TeamsComparison struct {
	Rows  []TeamRow `json:"rows"`
	Share Chart     `json:"share"`
}

// TeamsComparison compare le mois en cours au mois précédent pour chaque équipe configurée.
func (s *Service) TeamsComparison(ctx context.Context, teams []domain.Team, now time.Time) (*TeamsComparison, error) {
	monthStart, monthEnd := monthBounds(now)
	prevStart, prevEnd := monthBounds(monthStart.AddDate(0, 0, -1))

	current, _, err := s.store.ListPerformance(ctx, repository.PerformanceFilter{From: &monthStart, To: &monthEnd})
	if err != nil {
		return nil, err
	}
	previous, _, err := s.store.ListPerformance(ctx, repository.PerformanceFilter{From: &prevStart, To: &prevEnd})
	if err != nil {
		return nil, err
	}
	users, err := s.store.ListUsers(ctx, repository.UserFilter{Status: domain.UserStatusActive})
	if err != nil {
		return nil, err
	}

	agents := make(map[string]int)
	for _, u := range users {
		agents[u.Team]++
	}

	currentByTeam := stats.Bucketize(current, stats.ByTeam)
	previousByTeam := stats.Bucketize(previous, stats.ByTeam)

	rows := make([]TeamRow, 0, len(teams))
	share := Chart{
		Type:    ChartDoughnut,
		Labels:  make([]string, 0, len(teams)),
		Series:  []Series{{Label: "Part des cas", Data: make([]int, 0, len(teams)), Colors: paletteFor(len(teams))}},
		Options: map[string]any{"legend": "bottom"},
	}
	for _, team := range teams {
		sum := currentByTeam[team.Name]
		rows = append(rows, TeamRow{
			Name:        team.Name,
			Department:  team.Department,
			Agents:      agents[team.Name],
			Resolved:    sum.TotalResolved,
			Unreachable: sum.TotalUnreachable,
			Untreated:   sum.TotalUntreated,
			Rate:        RateBadge(sum.ResolutionRate, TeamThresholds),
			Trend:       trendOf(sum, previousByTeam[team.Name]),
		})
		share.Labels = append(share.Labels, team.Name)
		share.Series[0].Data = append(share.Series[0].Data, sum.TotalCases)
	}

	return &TeamsComparison{Rows: rows, Share: share}, nil
}

type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type FilterOptions struct {
	Teams     []Option `json:"teams"`
	Agents    []Option `json:"agents"`
	CaseTypes []Option `json:"caseTypes"`
}

func (s *Service) FilterOptions(ctx context.Context, teams []domain.Team) (*FilterOptions, error) {
	users, err := s.store.ListUsers(ctx, repository.UserFilter{Status: domain.UserStatusActive})
	if err != nil {
		return nil, err
	}

	opts := &FilterOptions{
		Teams:     []Option{{Value: repository.AllSentinel, Label: "Toutes les équipes"}},
		Agents:    []Option{{Value: repository.AllSentinel, Label: "Tous les agents"}},
		CaseTypes: []Option{{Value: repository.AllSentinel, Label: "Tous les types"}},
	}
	for _, t := range teams {
		opts.Teams = append(opts.Teams, Option{Value: t.Name, Label: t.Name})
	}
	for _, u := range users {
		opts.Agents = append(opts.Agents, Option{Value: strconv.FormatInt(u.ID, 10), Label: u.Name()})
	}
	for _, c := range domain.CaseTypes {
		opts.CaseTypes = append(opts.CaseTypes, Option{Value: string(c), Label: string(c)})
	}
	return opts, nil
}
