package repository

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// AllSentinel désactive un filtre catégoriel au lieu d'être comparé littéralement.
const AllSentinel = "all"

// PerformanceFilter décrit une requête sur les saisies. Les bornes de date sont des jours
// calendaires inclus. Une liste vide ou contenant AllSentinel n'ajoute aucun prédicat.
type PerformanceFilter struct {
	From       *time.Time
	To         *time.Time
	Teams      []string
	UserIDs    []string
	CaseTypes  []string
	Limit      int
	Offset     int
	OrderBy    string
	Descending bool
}

var performanceOrderColumns = map[string]string{
	"date":      "date",
	"resolved":  "resolved",
	"userName":  "user_name",
	"team":      "team",
	"caseType":  "case_type",
	"createdAt": "created_at",
}

func activeValues(values []string) []string {
	if len(values) == 0 || slices.Contains(values, AllSentinel) {
		return nil
	}
	return values
}

// buildPerformanceWhere traduit le filtre en clause WHERE paramétrée.
func buildPerformanceWhere(f PerformanceFilter) (string, []any, error) {
	conds := []string{}
	args := []any{}

	if f.From != nil {
		args = append(args, dateOnly(*f.From))
		conds = append(conds, fmt.Sprintf("date >= $%d", len(args)))
	}
	if f.To != nil {
		args = append(args, dateOnly(*f.To))
		conds = append(conds, fmt.Sprintf("date <= $%d", len(args)))
	}
	if teams := activeValues(f.Teams); teams != nil {
		args = append(args, teams)
		conds = append(conds, fmt.Sprintf("team = ANY($%d)", len(args)))
	}
	if userIDs := activeValues(f.UserIDs); userIDs != nil {
		ids := make([]int64, 0, len(userIDs))
		for _, raw := range userIDs {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return "", nil, fmt.Errorf("identifiant d'agent invalide: %q", raw)
			}
			ids = append(ids, id)
		}
		args = append(args, ids)
		conds = append(conds, fmt.Sprintf("user_id = ANY($%d)", len(args)))
	}
	if caseTypes := activeValues(f.CaseTypes); caseTypes != nil {
		args = append(args, caseTypes)
		conds = append(conds, fmt.Sprintf("case_type = ANY($%d)", len(args)))
	}

	if len(conds) == 0 {
		return "", args, nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

func buildPerformanceOrder(f PerformanceFilter) string {
	column, ok := performanceOrderColumns[f.OrderBy]
	if !ok {
		column = "date"
	}
	direction := "ASC"
	if f.Descending {
		direction = "DESC"
	}
	return fmt.Sprintf(" ORDER BY %s %s, id %s", column, direction, direction)
}

// dateOnly ramène l'instant au jour calendaire dans son propre fuseau.
func dateOnly(t time.Time) string {
	return t.Format("2006-01-02")
}
