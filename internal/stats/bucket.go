package stats

import (
	"fmt"
	"slices"
	"time"

	"github.com/gsm-perf/performance/backend/internal/domain"
)

// DayLayout rend l'ordre lexical des clés identique à l'ordre chronologique.
const DayLayout = "2006-01-02"

type KeyFunc func(record *domain.PerformanceRecord) string

// Buckets associe une clé de groupe à ses sous-totaux. Un groupe sans saisie n'a pas d'entrée.
type Buckets map[string]Summary

func Bucketize(records []*domain.PerformanceRecord, key KeyFunc) Buckets {
	buckets := make(Buckets)
	for _, record := range records {
		if record == nil {
			continue
		}
		k := key(record)
		s := buckets[k]
		s.addRecord(record)
		buckets[k] = s
	}
	return buckets
}

func DayKey(t time.Time) string {
	return t.Format(DayLayout)
}

func AgentDayKey(userID int64, day time.Time) string {
	return fmt.Sprintf("%d|%s", userID, DayKey(day))
}

func ByDay(record *domain.PerformanceRecord) string {
	return DayKey(record.Date)
}

func ByAgentDay(record *domain.PerformanceRecord) string {
	return AgentDayKey(record.UserID, record.Date)
}

func ByAgent(record *domain.PerformanceRecord) string {
	return fmt.Sprintf("%d", record.UserID)
}

func ByTeam(record *domain.PerformanceRecord) string {
	return record.Team
}

func ByCaseType(record *domain.PerformanceRecord) string {
	return string(record.CaseType)
}

// Keys renvoie les clés triées par ordre croissant.
func (b Buckets) Keys() []string {
	keys := make([]string, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func (b Buckets) Total() Summary {
	total := Summary{}
	for _, s := range b {
		total = total.Add(s)
	}
	return total
}

// Fill aligne les groupes sur keys : une clé absente donne un résumé à zéro.
// Les séries multiples d'un graphique empilé restent ainsi de même longueur.
func (b Buckets) Fill(keys []string) []Summary {
	out := make([]Summary, len(keys))
	for i, k := range keys {
		out[i] = b[k]
	}
	return out
}

// DayRange renvoie les clés de jour de from à to inclus.
func DayRange(from, to time.Time) []string {
	from = StartOfDay(from)
	to = StartOfDay(to)

	keys := []string{}
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		keys = append(keys, DayKey(d))
	}
	return keys
}
