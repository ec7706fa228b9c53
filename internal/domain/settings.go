package domain

import "time"

const (
	SettingKeyDepartments = "departments"
	SettingKeyTeams       = "teams"
)

// Setting est l'enregistrement brut clé/valeur ; Value contient du JSON.
type Setting struct {
	ID        int64     `json:"id"`
	Key       string    `json:"key"`
	Value     []byte    `json:"-"`
	UpdatedAt time.Time `json:"updatedAt"`
	Version   int32     `json:"-"`
}

type Team struct {
	Name       string `json:"name"`
	Department string `json:"department"`
}

type DepartmentList struct {
	Departments []string `json:"departments"`
	Version     int32    `json:"-"`
}

type TeamList struct {
	Teams   []Team `json:"teams"`
	Version int32  `json:"-"`
}

// TeamWithMembers est une équipe accompagnée du nombre d'agents actifs qui y sont rattachés.
type TeamWithMembers struct {
	Team
	Members int `json:"members"`
}

var DefaultTeams = []Team{
	{Name: "Plaintes Diverses", Department: DefaultDepartment},
	{Name: "Conservation", Department: DefaultDepartment},
	{Name: "Outbound", Department: DefaultDepartment},
	{Name: "Supervision", Department: DefaultDepartment},
}

// L'équipe Outbound ne travaille pas le week-end.
const TeamOutbound = "Outbound"
