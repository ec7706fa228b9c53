package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/gsm-perf/performance/backend/internal/domain"
	"github.com/gsm-perf/performance/backend/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePerformance(t *testing.T) {
	store := newMemoryStore(caller(domain.RoleSupervisor))
	h := newStoreHandler(t, store, &memoryPublisher{})

	_, body := serve(t, h, jsonRequest(t, h, http.MethodPost, "/agent/performances",
		`{"date":"2024-10-16","caseType":"Mail","resolved":12,"unreachable":0,"untreated":3}`, domain.RoleSupervisor))

	require.True(t, body.Success, body.Message)
	require.Len(t, store.records, 1)
	record := store.records[0]
	assert.Equal(t, time.Date(2024, time.October, 16, 0, 0, 0, 0, time.UTC), record.Date)
	assert.Equal(t, int64(42), record.UserID)
	assert.Equal(t, "Mariama Sow", record.UserName)
	assert.Equal(t, "Supervision", record.Team)
	assert.Equal(t, domain.CaseType("Mail"), record.CaseType)
	assert.Equal(t, 12, record.Resolved)
	assert.Equal(t, 0, record.Unreachable)
	assert.Equal(t, 3, record.Untreated)
}

func TestCreatePerformanceRejections(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{
			name:    "date future",
			body:    `{"date":"2024-10-17","caseType":"Mail","resolved":1,"unreachable":0,"untreated":0}`,
			message: utils.ErrFutureDate.Error(),
		},
		{
			name:    "date illisible",
			body:    `{"date":"16/10/2024","caseType":"Mail","resolved":1,"unreachable":0,"untreated":0}`,
			message: utils.ErrInvalidDate.Error(),
		},
		{name: "compteur absent", body: `{"date":"2024-10-16","caseType":"Mail","resolved":1,"unreachable":0}`},
		{name: "compteur négatif", body: `{"date":"2024-10-16","caseType":"Mail","resolved":-1,"unreachable":0,"untreated":0}`},
		{name: "type de cas inconnu", body: `{"date":"2024-10-16","caseType":"Fax","resolved":1,"unreachable":0,"untreated":0}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemoryStore(caller(domain.RoleAgent))
			h := newStoreHandler(t, store, &memoryPublisher{})

			_, body := serve(t, h, jsonRequest(t, h, http.MethodPost, "/agent/performances", tt.body, domain.RoleAgent))

			assert.False(t, body.Success)
			if tt.message != "" {
				assert.Equal(t, tt.message, body.Message)
			}
			assert.Empty(t, store.records)
		})
	}
}
