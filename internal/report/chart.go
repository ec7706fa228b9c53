// Package report transforme les saisies agrégées en modèles de vue : graphiques
// déclaratifs, badges et lignes de tableau, sans aucune dépendance à l'affichage.
package report

import (
	"time"

	"github.com/gsm-perf/performance/backend/internal/stats"
)

type ChartType string

const (
	ChartLine     ChartType = "line"
	ChartBar      ChartType = "bar"
	ChartDoughnut ChartType = "doughnut"
)

const (
	ColorResolved    = "#28a745"
	ColorUnreachable = "#ffc107"
	ColorUntreated   = "#dc3545"
	ColorPrimary     = "#007bff"
)

var palette = []string{"#007bff", "#28a745", "#ffc107", "#dc3545", "#17a2b8", "#6f42c1", "#fd7e14", "#20c997"}

// Series est une série de données. Colors n'est renseigné que pour les graphiques en anneau,
// une couleur par part.
type Series struct {
	Label  string   `json:"label"`
	Data   []int    `json:"data"`
	Color  string   `json:"color,omitempty"`
	Colors []string `json:"colors,omitempty"`
	Fill   bool     `json:"fill"`
}

type Chart struct {
	Type    ChartType      `json:"type"`
	Labels  []string       `json:"labels"`
	Series  []Series       `json:"series"`
	Options map[string]any `json:"options,omitempty"`
}

var shortWeekdays = [...]string{"Dim", "Lun", "Mar", "Mer", "Jeu", "Ven", "Sam"}

var longWeekdays = [...]string{"Dimanche", "Lundi", "Mardi", "Mercredi", "Jeudi", "Vendredi", "Samedi"}

var months = [...]string{
	"janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre",
}

func shortWeekday(t time.Time) string {
	return shortWeekdays[t.Weekday()]
}

func frenchDate(t time.Time) string {
	return t.Format("02/01/2006")
}

func monthLabel(t time.Time) string {
	return months[t.Month()-1] + " " + t.Format("2006")
}

// dayKeyLabel convertit une clé YYYY-MM-DD en date française ; une clé illisible est renvoyée telle quelle.
func dayKeyLabel(key string) string {
	t, err := time.Parse(stats.DayLayout, key)
	if err != nil {
		return key
	}
	return frenchDate(t)
}

// caseSeries produit les trois séries résolus / injoignables / non traités alignées sur keys.
func caseSeries(buckets stats.Buckets, keys []string, fill bool) []Series {
	aligned := buckets.Fill(keys)
	resolved := make([]int, len(aligned))
	unreachable := make([]int, len(aligned))
	untreated := make([]int, len(aligned))
	for i, s := range aligned {
		resolved[i] = s.TotalResolved
		unreachable[i] = s.TotalUnreachable
		untreated[i] = s.TotalUntreated
	}

	return []Series{
		{Label: "Cas Résolus", Data: resolved, Color: ColorResolved, Fill: fill},
		{Label: "Cas Injoignables", Data: unreachable, Color: ColorUnreachable, Fill: fill},
		{Label: "Cas Non Traités", Data: untreated, Color: ColorUntreated, Fill: fill},
	}
}

func paletteFor(n int) []string {
	colors := make([]string, n)
	for i := range colors {
		colors[i] = palette[i%len(palette)]
	}
	return colors
}

// lastDays renvoie les n jours se terminant aujourd'hui inclus, du plus ancien au plus récent.
func lastDays(now time.Time, n int) []time.Time {
	if n <= 0 {
		return []time.Time{}
	}
	today := stats.StartOfDay(now)
	days := make([]time.Time, n)
	for i := range days {
		days[i] = today.AddDate(0, 0, i-n+1)
	}
	return days
}

func dayKeys(days []time.Time) []string {
	keys := make([]string, len(days))
	for i, d := range days {
		keys[i] = stats.DayKey(d)
	}
	return keys
}

func monthBounds(now time.Time) (time.Time, time.Time) {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return first, first.AddDate(0, 1, -1)
}
