package seed

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gsm-perf/performance/backend/internal/domain"
	"github.com/gsm-perf/performance/backend/internal/stats"
	"github.com/gsm-perf/performance/backend/internal/utils"
)

type Store interface {
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	CreateUser(ctx context.Context, user *domain.User) error
	CreatePerformance(ctx context.Context, record *domain.PerformanceRecord) error
}

// historyHeader est l'en-tête attendu d'un fichier d'historique.
var historyHeader = []string{"date", "email", "caseType", "resolved", "unreachable", "untreated"}

type ImportResult struct {
	Imported int
	Skipped  int
}

// ImportHistory insère chaque ligne valide du CSV ; les lignes invalides sont journalisées et ignorées.
func ImportHistory(ctx context.Context, store Store, r io.Reader, loc *time.Location) (ImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(historyHeader)
	reader.TrimLeadingSpace = true

	result := ImportResult{}
	users := map[string]*domain.User{}

	for line := 1; ; line++ {
		row, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			if errors.Is(err, csv.ErrFieldCount) {
				slog.Warn("nombre de colonnes invalide, ligne ignorée", "line", line)
				result.Skipped++
				continue
			}
			return result, err
		}
		if line == 1 && strings.EqualFold(row[0], historyHeader[0]) {
			continue
		}

		email := strings.ToLower(strings.TrimSpace(row[1]))
		user, ok := users[email]
		if !ok {
			user, err = store.GetUserByEmail(ctx, email)
			switch {
			case errors.Is(err, sql.ErrNoRows):
				user = nil
			case err != nil:
				return result, err
			}
			users[email] = user
		}
		if user == nil {
			slog.Warn("utilisateur inconnu, ligne ignorée", "line", line, "email", email)
			result.Skipped++
			continue
		}

		record, err := parseHistoryRow(row, user, loc)
		if err != nil {
			slog.Warn("ligne ignorée", "line", line, "error", err)
			result.Skipped++
			continue
		}

		if err := store.CreatePerformance(ctx, record); err != nil {
			return result, err
		}
		result.Imported++
	}

	return result, nil
}

func parseHistoryRow(row []string, user *domain.User, loc *time.Location) (*domain.PerformanceRecord, error) {
	date, err := utils.ParseDay(strings.TrimSpace(row[0]), loc)
	if err != nil {
		return nil, err
	}

	caseType := domain.CaseType(strings.TrimSpace(row[2]))
	if !slices.Contains(domain.CaseTypes, caseType) {
		return nil, fmt.Errorf("type de cas inconnu: %q", row[2])
	}

	counts := make([]int, 3)
	for i := range counts {
		v, err := strconv.Atoi(strings.TrimSpace(row[3+i]))
		if err != nil {
			return nil, fmt.Errorf("compteur %s invalide: %q", historyHeader[3+i], row[3+i])
		}
		counts[i] = v
	}

	return &domain.PerformanceRecord{
		Date:        date,
		UserID:      user.ID,
		UserName:    user.Name(),
		Team:        user.Team,
		CaseType:    caseType,
		Resolved:    counts[0],
		Unreachable: counts[1],
		Untreated:   counts[2],
	}, nil
}

// RandomHistory génère une saisie par agent et par jour sur les days derniers jours, aujourd'hui
// exclu. L'équipe Outbound ne reçoit rien le week-end.
func RandomHistory(ctx context.Context, store Store, users []*domain.User, days int, now time.Time) (int, error) {
	today := stats.StartOfDay(now)
	inserted := 0
	for _, user := range users {
		for i := days; i >= 1; i-- {
			day := today.AddDate(0, 0, -i)
			if user.Team == domain.TeamOutbound && stats.IsWeekend(day) {
				continue
			}
			if err := store.CreatePerformance(ctx, utils.GenerateRandomPerformance(user, day)); err != nil {
				return inserted, err
			}
			inserted++
		}
	}
	return inserted, nil
}

// RandomUsers crée n agents actifs. Les échecs isolés (e-mail déjà pris) sont journalisés.
func RandomUsers(ctx context.Context, store Store, n int, password, emailDomain string, teams []domain.Team) int {
	created := 0
	for range n {
		user, err := utils.GenerateRandomUser(password, emailDomain, teams)
		if err != nil {
			slog.Error("impossible de générer un utilisateur", slog.String("error", err.Error()))
			continue
		}
		if err := store.CreateUser(ctx, user); err != nil {
			slog.Error("impossible d'insérer l'utilisateur", slog.String("email", user.Email), slog.String("error", err.Error()))
			continue
		}
		created++
	}
	return created
}
