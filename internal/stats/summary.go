// Package stats réduit les saisies de performance en compteurs et les regroupe
// par jour, par agent ou par équipe. Toutes les fonctions sont pures.
package stats

import "github.com/gsm-perf/performance/backend/internal/domain"

type Summary struct {
	TotalResolved    int `json:"totalResolved"`
	TotalUnreachable int `json:"totalUnreachable"`
	TotalUntreated   int `json:"totalUntreated"`
	TotalCases       int `json:"totalCases"`
	ResolutionRate   int `json:"resolutionRate"`
}

func Summarize(records []*domain.PerformanceRecord) Summary {
	s := Summary{}
	for _, record := range records {
		s.addRecord(record)
	}
	return s
}

func (s *Summary) addRecord(record *domain.PerformanceRecord) {
	if record == nil {
		return
	}
	s.TotalResolved += record.ResolvedCount()
	s.TotalUnreachable += record.UnreachableCount()
	s.TotalUntreated += record.UntreatedCount()
	s.refresh()
}

// Add fusionne deux résumés ; le taux est recalculé sur les totaux, pas moyenné.
func (s Summary) Add(other Summary) Summary {
	s.TotalResolved += other.TotalResolved
	s.TotalUnreachable += other.TotalUnreachable
	s.TotalUntreated += other.TotalUntreated
	s.refresh()
	return s
}

func (s *Summary) refresh() {
	s.TotalCases = s.TotalResolved + s.TotalUnreachable + s.TotalUntreated
	s.ResolutionRate = Rate(s.TotalResolved, s.TotalCases)
}

// Rate renvoie round(100 × part / whole), arrondi au demi supérieur, 0 si whole vaut 0.
// Le résultat est toujours compris entre 0 et 100.
func Rate(part, whole int) int {
	if whole <= 0 || part <= 0 {
		return 0
	}
	if part > whole {
		part = whole
	}
	return (200*part + whole) / (2 * whole)
}
