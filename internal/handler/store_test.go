package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gsm-perf/performance/backend/internal/config"
	"github.com/gsm-perf/performance/backend/internal/domain"
	"github.com/gsm-perf/performance/backend/internal/orgconfig"
	"github.com/gsm-perf/performance/backend/internal/repository"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"
)

const initialAdminEmail = "admin@gsm.local"

// memoryStore garde les écritures en mémoire. calls compte les accès hors settings,
// ce qui permet de vérifier qu'un refus intervient avant toute requête.
type memoryStore struct {
	users       map[int64]*domain.User
	feedbacks   map[int64]*domain.Feedback
	records     []*domain.PerformanceRecord
	created     []*domain.User
	updated     []*domain.User
	updatedFb   []*domain.Feedback
	updateErr   error
	feedbackErr error
	calls       int
}

func newMemoryStore(users ...*domain.User) *memoryStore {
	s := &memoryStore{users: map[int64]*domain.User{}, feedbacks: map[int64]*domain.Feedback{}}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *memoryStore) GetUserByID(_ context.Context, id int64) (*domain.User, error) {
	s.calls++
	u, ok := s.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *u
	return &clone, nil
}

func (s *memoryStore) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	s.calls++
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *memoryStore) CheckEmailIfExists(ctx context.Context, email string) (bool, error) {
	_, err := s.GetUserByEmail(ctx, email)
	return err == nil, nil
}

func (s *memoryStore) CreateUser(_ context.Context, user *domain.User) error {
	s.calls++
	user.ID = int64(100 + len(s.created))
	s.created = append(s.created, user)
	s.users[user.ID] = user
	return nil
}

func (s *memoryStore) UpdateUser(_ context.Context, user *domain.User) error {
	s.calls++
	if s.updateErr != nil {
		return s.updateErr
	}
	s.updated = append(s.updated, user)
	s.users[user.ID] = user
	return nil
}

func (s *memoryStore) ListUsers(context.Context, repository.UserFilter) ([]*domain.User, error) {
	s.calls++
	return nil, nil
}

func (s *memoryStore) CreatePerformance(_ context.Context, record *domain.PerformanceRecord) error {
	s.calls++
	s.records = append(s.records, record)
	return nil
}

func (s *memoryStore) CreateFeedback(_ context.Context, feedback *domain.Feedback) error {
	s.calls++
	feedback.ID = int64(len(s.feedbacks) + 1)
	s.feedbacks[feedback.ID] = feedback
	return nil
}

func (s *memoryStore) GetFeedbackByID(_ context.Context, id int64) (*domain.Feedback, error) {
	s.calls++
	f, ok := s.feedbacks[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *f
	return &clone, nil
}

func (s *memoryStore) UpdateFeedback(_ context.Context, feedback *domain.Feedback) error {
	s.calls++
	if s.feedbackErr != nil {
		return s.feedbackErr
	}
	s.updatedFb = append(s.updatedFb, feedback)
	return nil
}

func (s *memoryStore) ListFeedbacks(context.Context, repository.FeedbackFilter) ([]*domain.Feedback, error) {
	s.calls++
	return nil, nil
}

// Aucune liste enregistrée : orgconfig applique les équipes par défaut.
func (s *memoryStore) GetSetting(context.Context, string) (*domain.Setting, error) {
	return nil, sql.ErrNoRows
}

func (s *memoryStore) CreateSetting(context.Context, *domain.Setting) error { return nil }

func (s *memoryStore) UpdateSetting(context.Context, *domain.Setting) error { return nil }

type recordedMail struct {
	key string
	msg domain.MailMessage
}

type memoryPublisher struct {
	mails []recordedMail
	err   error
}

func (p *memoryPublisher) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp.Publishing) error {
	if p.err != nil {
		return p.err
	}
	var m domain.MailMessage
	if err := json.Unmarshal(msg.Body, &m); err != nil {
		return err
	}
	p.mails = append(p.mails, recordedMail{key: key, msg: m})
	return nil
}

func newStoreHandler(t *testing.T, store *memoryStore, publisher *memoryPublisher) *Handler {
	t.Helper()

	cfg := &config.Config{}
	cfg.JWT.Secret = "secret-de-test"
	cfg.JWT.Expiration = 1
	cfg.NewUser.PasswordLength = 12
	cfg.RabbitMQ.PublishTimeout = 5
	cfg.InitialAdmin.Email = initialAdminEmail
	cfg.Dashboard.FeedbackPageSize = 20

	h, err := NewHandler(cfg, store, publisher, nil, nil, orgconfig.NewService(store), nil)
	require.NoError(t, err)
	h.now = func() time.Time { return fixedNow }
	h.RegisterRoutes()
	return h
}

func jsonRequest(t *testing.T, h *Handler, method, path, body string, role domain.Role) *http.Request {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.AddCookie(authCookie(t, h, role, time.Hour))
	}
	return req
}

// caller est l'utilisateur 42, celui des jetons de authCookie.
func caller(role domain.Role) *domain.User {
	return &domain.User{
		ID:        42,
		FirstName: "Mariama",
		LastName:  "Sow",
		Email:     "mariama.sow@gsm.local",
		Role:      role,
		Team:      "Supervision",
		Status:    domain.UserStatusActive,
	}
}
