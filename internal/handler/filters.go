package handler

import (
	"errors"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gsm-perf/performance/backend/internal/domain"
	"github.com/gsm-perf/performance/backend/internal/repository"
	"github.com/gsm-perf/performance/backend/internal/utils"
)

var (
	errInvalidAgent    = errors.New("identifiant d'agent invalide")
	errInvalidCaseType = errors.New("type de cas inconnu")
)

// multiValues accepte aussi bien ?team=a&team=b que ?team=a,b.
func multiValues(query url.Values, key string) []string {
	var values []string
	for _, raw := range query[key] {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				values = append(values, v)
			}
		}
	}
	return values
}

// parsePerformanceFilter lit les filtres du rapport ; les erreurs sont des erreurs de saisie.
func parsePerformanceFilter(query url.Values, loc *time.Location) (repository.PerformanceFilter, error) {
	from, err := utils.ParseOptionalDay(query.Get("from"), loc)
	if err != nil {
		return repository.PerformanceFilter{}, err
	}
	to, err := utils.ParseOptionalDay(query.Get("to"), loc)
	if err != nil {
		return repository.PerformanceFilter{}, err
	}
	if err := utils.ValidateDateRange(from, to); err != nil {
		return repository.PerformanceFilter{}, err
	}

	filter := repository.PerformanceFilter{
		From:       from,
		To:         to,
		Teams:      multiValues(query, "team"),
		UserIDs:    multiValues(query, "agent"),
		CaseTypes:  multiValues(query, "caseType"),
		OrderBy:    query.Get("orderBy"),
		Descending: query.Get("order") != "asc",
	}

	for _, id := range filter.UserIDs {
		if id == repository.AllSentinel {
			continue
		}
		if _, err := strconv.ParseInt(id, 10, 64); err != nil {
			return repository.PerformanceFilter{}, errInvalidAgent
		}
	}
	for _, c := range filter.CaseTypes {
		if c != repository.AllSentinel && !slices.Contains(domain.CaseTypes, domain.CaseType(c)) {
			return repository.PerformanceFilter{}, errInvalidCaseType
		}
	}

	return filter, nil
}

func parseFeedbackFilter(query url.Values, now time.Time, lookbackDays int) (repository.FeedbackFilter, error) {
	loc := now.Location()
	from, err := utils.ParseOptionalDay(query.Get("from"), loc)
	if err != nil {
		return repository.FeedbackFilter{}, err
	}
	to, err := utils.ParseOptionalDay(query.Get("to"), loc)
	if err != nil {
		return repository.FeedbackFilter{}, err
	}
	if err := utils.ValidateDateRange(from, to); err != nil {
		return repository.FeedbackFilter{}, err
	}

	if from == nil && to == nil {
		start := time.Date(now.Year(), now.Month(), now.Day()-lookbackDays, 0, 0, 0, 0, loc)
		from = &start
	}
	if to != nil {
		// borne incluse : jusqu'à la fin du jour
		end := to.AddDate(0, 0, 1).Add(-time.Nanosecond)
		to = &end
	}

	filter := repository.FeedbackFilter{From: from, To: to}
	if status := query.Get("status"); status != "" && status != repository.AllSentinel {
		filter.Status = domain.FeedbackStatus(status)
		if !filter.Status.Valid() {
			return repository.FeedbackFilter{}, errors.New("statut de feedback inconnu")
		}
	}
	return filter, nil
}
