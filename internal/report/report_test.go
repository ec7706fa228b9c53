package report

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gsm-perf/performance/backend/internal/config"
	"github.com/gsm-perf/performance/backend/internal/domain"
	"github.com/gsm-perf/performance/backend/internal/repository"
	"github.com/gsm-perf/performance/backend/internal/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	records   []*domain.PerformanceRecord
	users     []*domain.User
	feedbacks map[domain.FeedbackStatus]int
	err       error
	calls     int
}

func matches(values []string, v string) bool {
	if len(values) == 0 || slices.Contains(values, repository.AllSentinel) {
		return true
	}
	return slices.Contains(values, v)
}

func (f *fakeStore) ListPerformance(_ context.Context, filter repository.PerformanceFilter) ([]*domain.PerformanceRecord, int, error) {
	f.calls++
	if f.err != nil {
		return nil, 0, f.err
	}
	out := []*domain.PerformanceRecord{}
	for _, r := range f.records {
		key := stats.DayKey(r.Date)
		if filter.From != nil && key < stats.DayKey(*filter.From) {
			continue
		}
		if filter.To != nil && key > stats.DayKey(*filter.To) {
			continue
		}
		if !matches(filter.Teams, r.Team) || !matches(filter.UserIDs, strconv.FormatInt(r.UserID, 10)) || !matches(filter.CaseTypes, string(r.CaseType)) {
			continue
		}
		out = append(out, r)
	}
	return out, len(out), nil
}

func (f *fakeStore) ListUserPerformance(ctx context.Context, userID int64, from, to time.Time) ([]*domain.PerformanceRecord, error) {
	records, _, err := f.ListPerformance(ctx, repository.PerformanceFilter{
		From:    &from,
		To:      &to,
		UserIDs: []string{strconv.FormatInt(userID, 10)},
	})
	slices.Reverse(records)
	return records, err
}

func (f *fakeStore) ListUsers(_ context.Context, filter repository.UserFilter) ([]*domain.User, error) {
	f.calls++
	out := []*domain.User{}
	for _, u := range f.users {
		if filter.Status != "" && u.Status != filter.Status {
			continue
		}
		if filter.Team != "" && filter.Team != repository.AllSentinel && u.Team != filter.Team {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeStore) CountUsers(ctx context.Context, filter repository.UserFilter) (int, error) {
	users, err := f.ListUsers(ctx, filter)
	return len(users), err
}

func (f *fakeStore) CountFeedbacksByStatus(_ context.Context, status domain.FeedbackStatus) (int, error) {
	f.calls++
	return f.feedbacks[status], nil
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Dashboard.DetailRowCap = 50
	cfg.Dashboard.DailyTarget = 10
	cfg.Dashboard.HistoryDays = 8
	cfg.Dashboard.WeeklyDays = 7
	cfg.Dashboard.SupervisorDays = 3
	return cfg
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func record(userID int64, name, team string, date time.Time, resolved, unreachable, untreated int) *domain.PerformanceRecord {
	return &domain.PerformanceRecord{
		UserID:      userID,
		UserName:    name,
		Team:        team,
		Date:        date,
		CaseType:    domain.CaseTypeMail,
		Resolved:    resolved,
		Unreachable: unreachable,
		Untreated:   untreated,
	}
}

func TestRateBadgeThresholds(t *testing.T) {
	assert.Equal(t, Badge{Label: "70%", Color: BadgeSuccess}, RateBadge(70, DetailThresholds))
	assert.Equal(t, BadgeWarning, RateBadge(50, DetailThresholds).Color)
	assert.Equal(t, BadgeDanger, RateBadge(49, DetailThresholds).Color)
	assert.Equal(t, BadgeDanger, RateBadge(59, TeamThresholds).Color)
	assert.Equal(t, Badge{Label: "Moyen (67%)", Color: BadgeWarning}, CompletionBadge(67))
	assert.Equal(t, Badge{Label: "Excellent (100%)", Color: BadgeSuccess}, CompletionBadge(100))
}

func TestFeedbackStatusColor(t *testing.T) {
	assert.Equal(t, BadgeWarning, FeedbackStatusColor(domain.FeedbackStatusSent))
	assert.Equal(t, BadgeInfo, FeedbackStatusColor(domain.FeedbackStatusInProgress))
	assert.Equal(t, BadgeSuccess, FeedbackStatusColor(domain.FeedbackStatusDone))
	assert.Equal(t, BadgeSecondary, FeedbackStatusColor("Archivé"))
}

func TestFilteredReportCapsRowsButKeepsTotals(t *testing.T) {
	store := &fakeStore{}
	for i := 0; i < 60; i++ {
		store.records = append(store.records, record(1, "Awa Diallo", "Outbound", day(2024, 10, 1+i%10), 2, 1, 0))
	}
	svc := NewService(testConfig(), store)

	from, to := day(2024, 10, 1), day(2024, 10, 31)
	rep, err := svc.FilteredReport(context.Background(), repository.PerformanceFilter{From: &from, To: &to, Limit: 5})
	require.NoError(t, err)

	assert.Len(t, rep.Rows, 50)
	assert.Equal(t, 60, rep.Total)
	assert.Equal(t, 120, rep.Summary.TotalResolved)
	assert.Equal(t, 180, rep.Summary.TotalCases)
	assert.Equal(t, 67, rep.Summary.ResolutionRate)

	require.Len(t, rep.Chart.Labels, 31)
	assert.Equal(t, "01/10/2024", rep.Chart.Labels[0])
	for _, s := range rep.Chart.Series {
		assert.Len(t, s.Data, 31)
	}
	assert.Equal(t, 12, rep.Chart.Series[0].Data[0])
	assert.Equal(t, 0, rep.Chart.Series[0].Data[20])
}

func TestFilteredReportWithoutBoundsUsesSparseDays(t *testing.T) {
	store := &fakeStore{records: []*domain.PerformanceRecord{
		record(1, "", "Outbound", day(2024, 10, 3), 1, 0, 0),
		record(1, "", "Outbound", day(2024, 10, 1), 1, 0, 0),
	}}
	svc := NewService(testConfig(), store)

	rep, err := svc.FilteredReport(context.Background(), repository.PerformanceFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"01/10/2024", "03/10/2024"}, rep.Chart.Labels)
	assert.Equal(t, "N/A", rep.Rows[0].UserName)
}

func TestFilteredReportPropagatesStoreError(t *testing.T) {
	svc := NewService(testConfig(), &fakeStore{err: errors.New("connexion perdue")})
	_, err := svc.FilteredReport(context.Background(), repository.PerformanceFilter{})
	assert.Error(t, err)
}

func TestAgentDashboard(t *testing.T) {
	now := time.Date(2024, 10, 3, 15, 0, 0, 0, time.UTC)
	user := &domain.User{ID: 1, FirstName: "Awa", LastName: "Diallo", Team: "Conservation"}
	store := &fakeStore{records: []*domain.PerformanceRecord{
		record(1, "Awa Diallo", "Conservation", day(2024, 9, 30), 5, 0, 0),
		record(1, "Awa Diallo", "Conservation", day(2024, 10, 1), 6, 2, 2),
		record(1, "Awa Diallo", "Conservation", day(2024, 10, 3), 4, 0, 0),
		record(2, "Jean Martin", "Conservation", day(2024, 10, 2), 3, 3, 0),
		record(3, "Paul Ndiaye", "Outbound", day(2024, 10, 2), 9, 0, 0),
	}}
	svc := NewService(testConfig(), store)

	dash, err := svc.AgentDashboard(context.Background(), user, now)
	require.NoError(t, err)

	assert.Equal(t, "octobre 2024", dash.Month)
	assert.Equal(t, 10, dash.Summary.TotalResolved)
	assert.Equal(t, 14, dash.Summary.TotalCases)
	assert.Equal(t, 4, dash.TodayCases)

	require.Len(t, dash.Weekly.Labels, 7)
	assert.Equal(t, "Ven", dash.Weekly.Labels[0])
	assert.Equal(t, "Jeu", dash.Weekly.Labels[6])
	assert.Equal(t, []int{0, 0, 0, 5, 6, 0, 4}, dash.Weekly.Series[0].Data)

	assert.Equal(t, []int{10, 2, 2}, dash.Cases.Series[0].Data)

	require.Len(t, dash.TeamStats, 2)
	names := []string{dash.TeamStats[0].Name, dash.TeamStats[1].Name}
	assert.ElementsMatch(t, []string{"Awa Diallo", "Jean Martin"}, names)
}

func TestAgentHistory(t *testing.T) {
	now := time.Date(2024, 10, 10, 9, 0, 0, 0, time.UTC)
	store := &fakeStore{records: []*domain.PerformanceRecord{
		record(1, "Awa", "", day(2024, 10, 2), 3, 1, 0),
		record(1, "Awa", "", day(2024, 10, 3), 3, 1, 0),
		record(1, "Awa", "", day(2024, 10, 10), 1, 1, 0),
	}}
	svc := NewService(testConfig(), store)

	rows, err := svc.AgentHistory(context.Background(), &domain.User{ID: 1}, now)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "10/10/2024", rows[0].Date)
	assert.Equal(t, Badge{Label: "75%", Color: BadgeSuccess}, rows[1].Rate)
}

func TestAdminOverview(t *testing.T) {
	now := time.Date(2024, 10, 15, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{
		users: []*domain.User{
			{ID: 1, Status: domain.UserStatusActive},
			{ID: 2, Status: domain.UserStatusActive},
			{ID: 3, Status: domain.UserStatusPending},
		},
		records: []*domain.PerformanceRecord{
			record(1, "", "", day(2024, 9, 30), 100, 0, 0),
			record(1, "", "", day(2024, 10, 1), 18, 30, 19),
		},
		feedbacks: map[domain.FeedbackStatus]int{domain.FeedbackStatusSent: 4},
	}
	svc := NewService(testConfig(), store)

	o, err := svc.AdminOverview(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 2, o.ActiveAgents)
	assert.Equal(t, 67, o.TotalCases)
	assert.Equal(t, 27, o.ResolutionRate)
	assert.Equal(t, 4, o.UnreadFeedbacks)
	assert.Equal(t, now, o.ComputedAt)
}

func TestGlobalEvolutionSeriesAreAligned(t *testing.T) {
	now := time.Date(2024, 10, 8, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{records: []*domain.PerformanceRecord{
		record(1, "", "", day(2024, 10, 2), 1, 2, 3),
		record(2, "", "", day(2024, 10, 8), 4, 0, 0),
	}}
	svc := NewService(testConfig(), store)

	chart, err := svc.GlobalEvolution(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, ChartLine, chart.Type)
	assert.Equal(t, []string{"Mer", "Jeu", "Ven", "Sam", "Dim", "Lun", "Mar"}, chart.Labels)
	require.Len(t, chart.Series, 3)
	assert.Equal(t, []int{1, 0, 0, 0, 0, 0, 4}, chart.Series[0].Data)
	assert.Equal(t, []int{2, 0, 0, 0, 0, 0, 0}, chart.Series[1].Data)
	assert.Equal(t, []int{3, 0, 0, 0, 0, 0, 0}, chart.Series[2].Data)
}

func TestTeamsComparisonTrends(t *testing.T) {
	now := time.Date(2024, 10, 20, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{
		users: []*domain.User{
			{ID: 1, Team: "Outbound", Status: domain.UserStatusActive},
			{ID: 2, Team: "Outbound", Status: domain.UserStatusActive},
			{ID: 3, Team: "Conservation", Status: domain.UserStatusActive},
		},
		records: []*domain.PerformanceRecord{
			record(1, "", "Outbound", day(2024, 9, 10), 5, 5, 0),
			record(1, "", "Outbound", day(2024, 10, 10), 8, 2, 0),
			record(3, "", "Conservation", day(2024, 9, 10), 8, 2, 0),
			record(3, "", "Conservation", day(2024, 10, 10), 5, 5, 0),
			record(4, "", "Supervision", day(2024, 9, 10), 70, 30, 0),
			record(4, "", "Supervision", day(2024, 10, 10), 71, 29, 0),
		},
	}
	svc := NewService(testConfig(), store)

	teams := []domain.Team{
		{Name: "Outbound", Department: "GSM"},
		{Name: "Conservation", Department: "GSM"},
		{Name: "Supervision", Department: "GSM"},
		{Name: "Plaintes Diverses", Department: "GSM"},
	}
	cmp, err := svc.TeamsComparison(context.Background(), teams, now)
	require.NoError(t, err)
	require.Len(t, cmp.Rows, 4)

	assert.Equal(t, TrendUp, cmp.Rows[0].Trend)
	assert.Equal(t, 2, cmp.Rows[0].Agents)
	assert.Equal(t, Badge{Label: "80%", Color: BadgeSuccess}, cmp.Rows[0].Rate)
	assert.Equal(t, TrendDown, cmp.Rows[1].Trend)
	assert.Equal(t, TrendStable, cmp.Rows[2].Trend)
	assert.Equal(t, TrendStable, cmp.Rows[3].Trend)

	assert.Equal(t, []string{"Outbound", "Conservation", "Supervision", "Plaintes Diverses"}, cmp.Share.Labels)
	assert.Equal(t, []int{10, 10, 100, 0}, cmp.Share.Series[0].Data)
	assert.Len(t, cmp.Share.Series[0].Colors, 4)
}

func TestSupervisorTasks(t *testing.T) {
	// lundi
	now := time.Date(2024, 10, 7, 10, 0, 0, 0, time.UTC)
	supervisor := &domain.User{ID: 9, FirstName: "Chef", Team: "Outbound", Status: domain.UserStatusActive}
	store := &fakeStore{
		users: []*domain.User{
			supervisor,
			{ID: 1, FirstName: "Awa", LastName: "Diallo", Team: "Outbound", Status: domain.UserStatusActive},
			{ID: 2, FirstName: "Jean", LastName: "Martin", Team: "Outbound", Status: domain.UserStatusActive},
			{ID: 3, FirstName: "Paul", LastName: "Sow", Team: "Outbound", Status: domain.UserStatusPending},
		},
		records: []*domain.PerformanceRecord{
			record(1, "Awa Diallo", "Outbound", day(2024, 10, 4), 8, 2, 0),
			record(2, "Jean Martin", "Outbound", day(2024, 10, 4), 3, 0, 0),
		},
	}
	svc := NewService(testConfig(), store)

	tasks, err := svc.SupervisorTasks(context.Background(), supervisor, now, false)
	require.NoError(t, err)

	assert.Equal(t, []string{"04/10/2024", "05/10/2024", "06/10/2024"}, tasks.Headers)
	require.Len(t, tasks.Rows, 2)

	awa := tasks.Rows[0]
	assert.Equal(t, "Awa Diallo", awa.Agent.Name)
	assert.Equal(t, []stats.DayStatus{stats.DayValidated, stats.DayNotApplicable, stats.DayNotApplicable},
		[]stats.DayStatus{awa.Days[0].Status, awa.Days[1].Status, awa.Days[2].Status})
	assert.Equal(t, 100, awa.Completion)
	assert.Equal(t, stats.GradeExcellent, awa.Grade)

	jean := tasks.Rows[1]
	assert.Equal(t, stats.DayPartial, jean.Days[0].Status)
	assert.Equal(t, 0, jean.Completion)

	assert.Equal(t, 50, tasks.Completion)
	assert.Equal(t, []string{"Vendredi", "Samedi", "Dimanche"}, tasks.Chart.Labels)
	assert.Equal(t, []int{50, 0, 0}, tasks.Chart.Series[0].Data)

	require.Len(t, tasks.Alerts, 1)
	assert.Equal(t, AlertInfo, tasks.Alerts[0].Level)
}

func TestSupervisorTasksMissingDaysRaiseAlert(t *testing.T) {
	now := time.Date(2024, 10, 7, 10, 0, 0, 0, time.UTC)
	supervisor := &domain.User{ID: 9, Team: "Conservation"}
	store := &fakeStore{
		users: []*domain.User{
			{ID: 1, FirstName: "Awa", LastName: "Diallo", Team: "Conservation", Status: domain.UserStatusActive},
		},
		records: []*domain.PerformanceRecord{
			record(1, "Awa Diallo", "Conservation", day(2024, 10, 3), 10, 0, 0),
		},
	}
	svc := NewService(testConfig(), store)

	tasks, err := svc.SupervisorTasks(context.Background(), supervisor, now, true)
	require.NoError(t, err)

	assert.Equal(t, []string{"02/10/2024", "03/10/2024", "04/10/2024"}, tasks.Headers)
	assert.Equal(t, 33, tasks.Rows[0].Completion)
	require.Len(t, tasks.Alerts, 1)
	assert.Equal(t, Alert{Level: AlertWarning, Subject: "Awa Diallo", Message: "2 jours non validés"}, tasks.Alerts[0])
}

func TestSupervisorTasksWithoutAgentsSkipsRecordQuery(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(testConfig(), store)

	tasks, err := svc.SupervisorTasks(context.Background(), &domain.User{ID: 9, Team: "Vide"}, time.Now(), true)
	require.NoError(t, err)
	assert.Empty(t, tasks.Rows)
	assert.Equal(t, 1, store.calls)
}

func TestFeedbackCardsAnonymisePrivate(t *testing.T) {
	date := time.Date(2024, 10, 2, 8, 0, 0, 0, time.UTC)
	cards := FeedbackCards([]*domain.Feedback{
		{ID: 1, UserName: "Awa Diallo", UserTeam: "Outbound", Visibility: domain.VisibilityPrivate, Status: domain.FeedbackStatusSent, Date: date},
		{ID: 2, UserName: "Jean Martin", UserTeam: "Conservation", Visibility: domain.VisibilityPublic, Status: domain.FeedbackStatusDone, Date: date},
		{ID: 3, Visibility: domain.VisibilityPublic, Status: domain.FeedbackStatusInProgress, Date: date},
		nil,
	})
	require.Len(t, cards, 3)

	assert.Equal(t, "Feedback Anonyme", cards[0].Title)
	assert.True(t, cards[0].Anonymous)
	assert.True(t, cards[0].Unread)
	assert.Equal(t, BadgeSecondary, cards[0].VisibilityColor)

	assert.Equal(t, "Jean Martin - Conservation", cards[1].Title)
	assert.Equal(t, BadgeSuccess, cards[1].StatusColor)
	assert.Equal(t, BadgePrimary, cards[1].VisibilityColor)

	assert.Equal(t, "Utilisateur - ", cards[2].Title)
	assert.Equal(t, "02/10/2024", cards[2].Date)
}

func TestExportCSV(t *testing.T) {
	var buf bytes.Buffer
	err := ExportCSV(&buf, []*domain.PerformanceRecord{
		record(1, "Awa; Diallo", "Outbound", day(2024, 10, 1), 18, 30, 19),
		nil,
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Date;Agent;Équipe;Type de cas;Résolus;Injoignables;Non traités;Taux (%)", lines[0])
	assert.Equal(t, `2024-10-01;"Awa; Diallo";Outbound;Mail;18;30;19;27`, lines[1])
}
