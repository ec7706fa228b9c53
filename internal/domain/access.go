package domain

import "slices"

// View est un tableau de bord. L'accès est décidé par la table capabilities,
// jamais par comparaison de chaînes dispersée dans les handlers.
type View string

const (
	ViewAgent      View = "agent"
	ViewSupervisor View = "supervisor"
	ViewAdmin      View = "admin"
	ViewPrincipal  View = "principal"
)

var capabilities = map[Role][]View{
	RoleAgent:          {ViewAgent},
	RoleAgentC:         {ViewAgent},
	RoleSupervisor:     {ViewAgent, ViewSupervisor},
	RoleAdmin:          {ViewAdmin},
	RolePrincipalAdmin: {ViewAdmin, ViewPrincipal},
}

var homeViews = map[Role]View{
	RoleAgent:          ViewAgent,
	RoleAgentC:         ViewAgent,
	RoleSupervisor:     ViewSupervisor,
	RoleAdmin:          ViewAdmin,
	RolePrincipalAdmin: ViewPrincipal,
}

func (r Role) CanAccess(v View) bool {
	return slices.Contains(capabilities[r], v)
}

// Views renvoie une copie des vues autorisées pour le rôle.
func (r Role) Views() []View {
	return slices.Clone(capabilities[r])
}

// HomeView est la vue de redirection après connexion. Un rôle inconnu retombe sur la vue agent.
func (r Role) HomeView() View {
	if v, ok := homeViews[r]; ok {
		return v
	}
	return ViewAgent
}
