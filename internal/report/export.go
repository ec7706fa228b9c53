package report

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"

	"github.com/gsm-perf/performance/backend/internal/domain"
	"github.com/gsm-perf/performance/backend/internal/repository"
	"github.com/gsm-perf/performance/backend/internal/stats"
)

var exportHeader = []string{"Date", "Agent", "Équipe", "Type de cas", "Résolus", "Injoignables", "Non traités", "Taux (%)"}

// ExportCSV écrit une ligne par saisie, séparateur point-virgule pour les tableurs français.
func ExportCSV(w io.Writer, records []*domain.PerformanceRecord) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'

	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, r := range records {
		if r == nil {
			continue
		}
		line := []string{
			stats.DayKey(r.Date),
			r.UserName,
			r.Team,
			string(r.CaseType),
			strconv.Itoa(r.ResolvedCount()),
			strconv.Itoa(r.UnreachableCount()),
			strconv.Itoa(r.UntreatedCount()),
			strconv.Itoa(stats.Rate(r.ResolvedCount(), r.TotalCases())),
		}
		if err := cw.Write(line); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// Export écrit toutes les saisies du filtre, sans plafond d'affichage.
func (s *Service) Export(ctx context.Context, filter repository.PerformanceFilter, w io.Writer) error {
	filter.Limit = 0
	filter.Offset = 0
	records, _, err := s.store.ListPerformance(ctx, filter)
	if err != nil {
		return err
	}
	return ExportCSV(w, records)
}
