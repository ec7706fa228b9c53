package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gsm-perf/performance/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func agentUser(id int64) *domain.User {
	return &domain.User{
		ID:         id,
		FirstName:  "Awa",
		LastName:   "Diop",
		Email:      "awa.diop@gsm.local",
		Role:       domain.RoleAgent,
		Team:       "Plaintes Diverses",
		Group:      "G1",
		Department: domain.DefaultDepartment,
		Status:     domain.UserStatusActive,
	}
}

func TestUpdateUserAdministrativeRoles(t *testing.T) {
	adminTarget := agentUser(7)
	adminTarget.Role = domain.RoleAdmin
	principalTarget := agentUser(8)
	principalTarget.Role = domain.RolePrincipalAdmin

	tests := []struct {
		name       string
		callerRole domain.Role
		target     *domain.User
		body       string
		wantStatus int
		wantRole   domain.Role
	}{
		{"admin promeut en adminP", domain.RoleAdmin, agentUser(7), `{"role":"adminP"}`, http.StatusForbidden, ""},
		{"admin promeut en admin", domain.RoleAdmin, agentUser(7), `{"role":"admin"}`, http.StatusForbidden, ""},
		{"admin rétrograde un admin", domain.RoleAdmin, adminTarget, `{"role":"agent"}`, http.StatusForbidden, ""},
		{"admin désactive un adminP", domain.RoleAdmin, principalTarget, `{"status":"pending"}`, http.StatusForbidden, ""},
		{"admin change l'équipe d'un admin", domain.RoleAdmin, adminTarget, `{"team":"Outbound"}`, http.StatusForbidden, ""},
		{"admin promeut en agentT", domain.RoleAdmin, agentUser(7), `{"role":"agentT"}`, http.StatusOK, domain.RoleSupervisor},
		{"adminP promeut en admin", domain.RolePrincipalAdmin, agentUser(7), `{"role":"admin"}`, http.StatusOK, domain.RoleAdmin},
		{"adminP rétrograde un admin", domain.RolePrincipalAdmin, adminTarget, `{"role":"agentC"}`, http.StatusOK, domain.RoleAgentC},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := *tt.target
			store := newMemoryStore(caller(tt.callerRole), &target)
			h := newStoreHandler(t, store, &memoryPublisher{})

			path := fmt.Sprintf("/admin/users/%d", target.ID)
			rec, body := serve(t, h, jsonRequest(t, h, http.MethodPatch, path, tt.body, tt.callerRole))

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusForbidden {
				assert.Equal(t, "/admin", body.Data["redirect"])
				assert.Empty(t, store.updated)
				return
			}
			require.True(t, body.Success, body.Message)
			require.Len(t, store.updated, 1)
			assert.Equal(t, tt.wantRole, store.updated[0].Role)
		})
	}
}

func TestUpdateUserRefusesOwnRoleAndStatus(t *testing.T) {
	for _, body := range []string{`{"role":"agent"}`, `{"status":"pending"}`} {
		t.Run(body, func(t *testing.T) {
			store := newMemoryStore(caller(domain.RolePrincipalAdmin))
			h := newStoreHandler(t, store, &memoryPublisher{})

			_, resp := serve(t, h, jsonRequest(t, h, http.MethodPatch, "/admin/users/42", body, domain.RolePrincipalAdmin))

			assert.False(t, resp.Success)
			assert.Equal(t, "Vous ne pouvez pas modifier votre propre rôle ni votre statut", resp.Message)
			assert.Empty(t, store.updated)
		})
	}
}

func TestUpdateUserInitialAdminIsProtected(t *testing.T) {
	initial := agentUser(1)
	initial.Email = "Admin@GSM.local"
	initial.Role = domain.RolePrincipalAdmin
	store := newMemoryStore(caller(domain.RolePrincipalAdmin), initial)
	h := newStoreHandler(t, store, &memoryPublisher{})

	_, body := serve(t, h, jsonRequest(t, h, http.MethodPatch, "/admin/users/1", `{"role":"agent"}`, domain.RolePrincipalAdmin))

	assert.False(t, body.Success)
	assert.Equal(t, "Le compte administrateur initial ne peut pas être modifié", body.Message)
	assert.Empty(t, store.updated)
}

func TestUpdateUserActivationPublishesMail(t *testing.T) {
	pending := agentUser(7)
	pending.Status = domain.UserStatusPending
	store := newMemoryStore(caller(domain.RoleAdmin), pending)
	publisher := &memoryPublisher{}
	h := newStoreHandler(t, store, publisher)

	_, body := serve(t, h, jsonRequest(t, h, http.MethodPatch, "/admin/users/7", `{"status":"active"}`, domain.RoleAdmin))

	require.True(t, body.Success, body.Message)
	require.Len(t, publisher.mails, 1)
	assert.Equal(t, mailQueue, publisher.mails[0].key)
	assert.Equal(t, domain.MailTypeAccountActivated, publisher.mails[0].msg.Type)
	assert.Equal(t, "awa.diop@gsm.local", publisher.mails[0].msg.To)

	// déjà actif : pas de second mail
	_, body = serve(t, h, jsonRequest(t, h, http.MethodPatch, "/admin/users/7", `{"status":"active"}`, domain.RoleAdmin))
	require.True(t, body.Success, body.Message)
	assert.Len(t, publisher.mails, 1)
}

func TestUpdateUserActivationSurvivesMailFailure(t *testing.T) {
	pending := agentUser(7)
	pending.Status = domain.UserStatusPending
	store := newMemoryStore(caller(domain.RoleAdmin), pending)
	h := newStoreHandler(t, store, &memoryPublisher{err: errors.New("file indisponible")})

	_, body := serve(t, h, jsonRequest(t, h, http.MethodPatch, "/admin/users/7", `{"status":"active"}`, domain.RoleAdmin))

	assert.True(t, body.Success)
	require.Len(t, store.updated, 1)
	assert.Equal(t, domain.UserStatusActive, store.updated[0].Status)
}

func TestUpdateUserTeamAndGroup(t *testing.T) {
	t.Run("quitter Plaintes Diverses efface le groupe", func(t *testing.T) {
		store := newMemoryStore(caller(domain.RoleAdmin), agentUser(7))
		h := newStoreHandler(t, store, &memoryPublisher{})

		_, body := serve(t, h, jsonRequest(t, h, http.MethodPatch, "/admin/users/7", `{"team":"Conservation","group":"G2"}`, domain.RoleAdmin))

		require.True(t, body.Success, body.Message)
		require.Len(t, store.updated, 1)
		assert.Equal(t, "Conservation", store.updated[0].Team)
		assert.Equal(t, domain.DefaultDepartment, store.updated[0].Department)
		assert.Empty(t, store.updated[0].Group)
	})

	t.Run("changement de groupe", func(t *testing.T) {
		store := newMemoryStore(caller(domain.RoleAdmin), agentUser(7))
		h := newStoreHandler(t, store, &memoryPublisher{})

		_, body := serve(t, h, jsonRequest(t, h, http.MethodPatch, "/admin/users/7", `{"group":"G3"}`, domain.RoleAdmin))

		require.True(t, body.Success, body.Message)
		assert.Equal(t, "G3", store.updated[0].Group)
	})

	t.Run("équipe inconnue", func(t *testing.T) {
		store := newMemoryStore(caller(domain.RoleAdmin), agentUser(7))
		h := newStoreHandler(t, store, &memoryPublisher{})

		_, body := serve(t, h, jsonRequest(t, h, http.MethodPatch, "/admin/users/7", `{"team":"Inconnue"}`, domain.RoleAdmin))

		assert.False(t, body.Success)
		assert.Equal(t, "Équipe inconnue", body.Message)
		assert.Empty(t, store.updated)
	})
}

func TestCreateUser(t *testing.T) {
	const payload = `{
		"firstName": "Fatou",
		"lastName": "Ndiaye",
		"email": "fatou.ndiaye@gsm.local",
		"role": "agentC",
		"team": "Plaintes Diverses",
		"group": "G2",
		"contact": "771234567",
		"neighborhood": "Médina",
		"sendInvitation": true,
		"activateImmediately": true
	}`

	t.Run("création complète", func(t *testing.T) {
		store := newMemoryStore(caller(domain.RolePrincipalAdmin))
		publisher := &memoryPublisher{}
		h := newStoreHandler(t, store, publisher)

		_, body := serve(t, h, jsonRequest(t, h, http.MethodPost, "/principal/users", payload, domain.RolePrincipalAdmin))

		require.True(t, body.Success, body.Message)
		require.Len(t, store.created, 1)
		created := store.created[0]
		assert.Equal(t, "Médina", created.Neighborhood)
		assert.Equal(t, "G2", created.Group)
		assert.Equal(t, domain.RoleAgentC, created.Role)
		assert.Equal(t, domain.UserStatusActive, created.Status)

		password, _ := body.Data["temporaryPassword"].(string)
		assert.Len(t, password, 12)
		require.Len(t, publisher.mails, 1)
		assert.Equal(t, domain.MailTypeCreateUser, publisher.mails[0].msg.Type)
		data, _ := publisher.mails[0].msg.Data.(map[string]any)
		assert.Equal(t, password, data["password"])
	})

	t.Run("sans invitation ni activation", func(t *testing.T) {
		store := newMemoryStore(caller(domain.RolePrincipalAdmin))
		publisher := &memoryPublisher{}
		h := newStoreHandler(t, store, publisher)

		_, body := serve(t, h, jsonRequest(t, h, http.MethodPost, "/principal/users",
			`{"firstName":"Fatou","lastName":"Ndiaye","email":"fatou.ndiaye@gsm.local","role":"agent","team":"Outbound","group":"G2"}`,
			domain.RolePrincipalAdmin))

		require.True(t, body.Success, body.Message)
		assert.Equal(t, domain.UserStatusPending, store.created[0].Status)
		assert.Empty(t, store.created[0].Group)
		assert.Empty(t, publisher.mails)
	})

	t.Run("e-mail déjà utilisé", func(t *testing.T) {
		existing := agentUser(7)
		existing.Email = "fatou.ndiaye@gsm.local"
		store := newMemoryStore(caller(domain.RolePrincipalAdmin), existing)
		h := newStoreHandler(t, store, &memoryPublisher{})

		_, body := serve(t, h, jsonRequest(t, h, http.MethodPost, "/principal/users", payload, domain.RolePrincipalAdmin))

		assert.False(t, body.Success)
		assert.Equal(t, emailTakenMessage, body.Message)
		assert.Empty(t, store.created)
	})
}

func TestRegisterRejectsTakenEmail(t *testing.T) {
	store := newMemoryStore(agentUser(7))
	h := newStoreHandler(t, store, &memoryPublisher{})

	_, body := serve(t, h, jsonRequest(t, h, http.MethodPost, "/auth/register",
		`{"firstName":"Awa","lastName":"Diop","email":"AWA.DIOP@gsm.local","password":"motdepasse","team":"Outbound"}`, ""))

	assert.False(t, body.Success)
	assert.Equal(t, emailTakenMessage, body.Message)
	assert.Empty(t, store.created)
}

func TestRegisterStoresPendingAgent(t *testing.T) {
	store := newMemoryStore()
	h := newStoreHandler(t, store, &memoryPublisher{})

	_, body := serve(t, h, jsonRequest(t, h, http.MethodPost, "/auth/register",
		`{"firstName":"Awa","lastName":"Diop","email":"awa.diop@gsm.local","password":"motdepasse","team":"Plaintes Diverses","group":"G1","neighborhood":"Médina"}`, ""))

	require.True(t, body.Success, body.Message)
	require.Len(t, store.created, 1)
	assert.Equal(t, domain.RoleAgent, store.created[0].Role)
	assert.Equal(t, domain.UserStatusPending, store.created[0].Status)
	assert.Equal(t, "G1", store.created[0].Group)
	assert.Equal(t, "Médina", store.created[0].Neighborhood)
}
