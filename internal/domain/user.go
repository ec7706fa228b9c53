package domain

import (
	"strings"
	"time"
)

type Role string

const (
	RoleAgent          Role = "agent"
	RoleSupervisor     Role = "agentT"
	RoleAgentC         Role = "agentC"
	RoleAdmin          Role = "admin"
	RolePrincipalAdmin Role = "adminP"
)

// IsAdministrative indique un rôle d'administration, attribuable par un adminP seulement.
func (r Role) IsAdministrative() bool {
	return r == RoleAdmin || r == RolePrincipalAdmin
}

func (r Role) Valid() bool {
	_, ok := capabilities[r]
	return ok
}

type UserStatus string

const (
	UserStatusPending UserStatus = "pending"
	UserStatusActive  UserStatus = "active"
)

const DefaultDepartment = "GSM"

type User struct {
	ID           int64      `json:"id"`
	FirstName    string     `json:"firstName"`
	LastName     string     `json:"lastName"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	Team         string     `json:"team"`
	Group        string     `json:"group"`
	Department   string     `json:"department"`
	Contact      string     `json:"contact"`
	Neighborhood string     `json:"neighborhood"`
	Status       UserStatus `json:"status"`
	CreatedAt    time.Time  `json:"createdAt"`
	Version      int32      `json:"-"`
}

func (u *User) Name() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}
