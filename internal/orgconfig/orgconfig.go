// Package orgconfig gère les listes de départements et d'équipes enregistrées dans la table
// settings. Chaque modification relit la liste, l'applique en mémoire puis l'écrit sous
// condition de version ; une écriture concurrente provoque une relecture.
package orgconfig

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"slices"
	"strings"

	"github.com/gsm-perf/performance/backend/internal/domain"
	"github.com/gsm-perf/performance/backend/internal/repository"
)

var (
	ErrBlankName         = errors.New("le nom ne peut pas être vide")
	ErrDuplicate         = errors.New("ce nom existe déjà")
	ErrNotFound          = errors.New("nom introuvable")
	ErrDefaultDepartment = errors.New("le département par défaut ne peut pas être supprimé")
	ErrUnknownDepartment = errors.New("département inconnu")
)

const maxAttempts = 3

type Store interface {
	GetSetting(ctx context.Context, key string) (*domain.Setting, error)
	CreateSetting(ctx context.Context, setting *domain.Setting) error
	UpdateSetting(ctx context.Context, setting *domain.Setting) error
	ListUsers(ctx context.Context, filter repository.UserFilter) ([]*domain.User, error)
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func defaultDepartments() []string {
	return []string{domain.DefaultDepartment}
}

func defaultTeams() []domain.Team {
	return slices.Clone(domain.DefaultTeams)
}

// load lit la valeur d'une clé. setting vaut nil quand la clé n'a jamais été écrite,
// la valeur renvoyée est alors celle par défaut.
func load[T any](ctx context.Context, store Store, key string, defaults func() T) (T, *domain.Setting, error) {
	setting, err := store.GetSetting(ctx, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return defaults(), nil, nil
		}
		var zero T
		return zero, nil, err
	}

	var value T
	if err := json.Unmarshal(setting.Value, &value); err != nil {
		var zero T
		return zero, nil, err
	}
	return value, setting, nil
}

func mutate[T any](ctx context.Context, store Store, key string, defaults func() T, apply func(T) (T, error)) (T, int32, error) {
	var zero T
	for attempt := 0; attempt < maxAttempts; attempt++ {
		current, setting, err := load(ctx, store, key, defaults)
		if err != nil {
			return zero, 0, err
		}

		next, err := apply(current)
		if err != nil {
			return zero, 0, err
		}

		raw, err := json.Marshal(next)
		if err != nil {
			return zero, 0, err
		}

		if setting == nil {
			setting = &domain.Setting{Key: key, Value: raw}
			err = store.CreateSetting(ctx, setting)
		} else {
			setting.Value = raw
			err = store.UpdateSetting(ctx, setting)
		}

		switch {
		case err == nil:
			return next, setting.Version, nil
		case errors.Is(err, repository.ErrEditConflict):
			continue
		default:
			return zero, 0, err
		}
	}
	return zero, 0, repository.ErrEditConflict
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrBlankName
	}
	return name, nil
}

func (s *Service) Departments(ctx context.Context) (*domain.DepartmentList, error) {
	departments, setting, err := load(ctx, s.store, domain.SettingKeyDepartments, defaultDepartments)
	if err != nil {
		return nil, err
	}
	list := &domain.DepartmentList{Departments: departments}
	if setting != nil {
		list.Version = setting.Version
	}
	return list, nil
}

func (s *Service) Teams(ctx context.Context) (*domain.TeamList, error) {
	teams, setting, err := load(ctx, s.store, domain.SettingKeyTeams, defaultTeams)
	if err != nil {
		return nil, err
	}
	list := &domain.TeamList{Teams: teams}
	if setting != nil {
		list.Version = setting.Version
	}
	return list, nil
}

func (s *Service) AddDepartment(ctx context.Context, name string) (*domain.DepartmentList, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}

	departments, version, err := mutate(ctx, s.store, domain.SettingKeyDepartments, defaultDepartments, func(current []string) ([]string, error) {
		if slices.Contains(current, name) {
			return nil, ErrDuplicate
		}
		return append(current, name), nil
	})
	if err != nil {
		return nil, err
	}
	return &domain.DepartmentList{Departments: departments, Version: version}, nil
}

func (s *Service) RemoveDepartment(ctx context.Context, name string) (*domain.DepartmentList, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}
	if name == domain.DefaultDepartment {
		return nil, ErrDefaultDepartment
	}

	departments, version, err := mutate(ctx, s.store, domain.SettingKeyDepartments, defaultDepartments, func(current []string) ([]string, error) {
		i := slices.Index(current, name)
		if i < 0 {
			return nil, ErrNotFound
		}
		return slices.Delete(current, i, i+1), nil
	})
	if err != nil {
		return nil, err
	}
	return &domain.DepartmentList{Departments: departments, Version: version}, nil
}

// AddTeam rattache l'équipe au département par défaut si aucun n'est précisé.
func (s *Service) AddTeam(ctx context.Context, team domain.Team) (*domain.TeamList, error) {
	name, err := normalizeName(team.Name)
	if err != nil {
		return nil, err
	}
	team.Name = name
	team.Department = strings.TrimSpace(team.Department)
	if team.Department == "" {
		team.Department = domain.DefaultDepartment
	}

	departments, err := s.Departments(ctx)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(departments.Departments, team.Department) {
		return nil, ErrUnknownDepartment
	}

	teams, version, err := mutate(ctx, s.store, domain.SettingKeyTeams, defaultTeams, func(current []domain.Team) ([]domain.Team, error) {
		if indexOfTeam(current, team.Name) >= 0 {
			return nil, ErrDuplicate
		}
		return append(current, team), nil
	})
	if err != nil {
		return nil, err
	}
	return &domain.TeamList{Teams: teams, Version: version}, nil
}

func (s *Service) RemoveTeam(ctx context.Context, name string) (*domain.TeamList, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}

	teams, version, err := mutate(ctx, s.store, domain.SettingKeyTeams, defaultTeams, func(current []domain.Team) ([]domain.Team, error) {
		i := indexOfTeam(current, name)
		if i < 0 {
			return nil, ErrNotFound
		}
		return slices.Delete(current, i, i+1), nil
	})
	if err != nil {
		return nil, err
	}
	return &domain.TeamList{Teams: teams, Version: version}, nil
}

// TeamsWithMembers compte les utilisateurs actifs de chaque équipe.
func (s *Service) TeamsWithMembers(ctx context.Context) ([]domain.TeamWithMembers, error) {
	teams, err := s.Teams(ctx)
	if err != nil {
		return nil, err
	}

	users, err := s.store.ListUsers(ctx, repository.UserFilter{Status: domain.UserStatusActive})
	if err != nil {
		return nil, err
	}

	members := make(map[string]int, len(teams.Teams))
	for _, u := range users {
		members[u.Team]++
	}

	result := make([]domain.TeamWithMembers, 0, len(teams.Teams))
	for _, t := range teams.Teams {
		result = append(result, domain.TeamWithMembers{Team: t, Members: members[t.Name]})
	}
	return result, nil
}

func indexOfTeam(teams []domain.Team, name string) int {
	return slices.IndexFunc(teams, func(t domain.Team) bool {
		return t.Name == name
	})
}
