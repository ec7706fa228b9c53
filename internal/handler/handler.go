package handler

import (
	"context"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/fr"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	fr_translations "github.com/go-playground/validator/v10/translations/fr"
	"github.com/gsm-perf/performance/backend/internal/config"
	"github.com/gsm-perf/performance/backend/internal/domain"
	"github.com/gsm-perf/performance/backend/internal/orgconfig"
	"github.com/gsm-perf/performance/backend/internal/refresher"
	"github.com/gsm-perf/performance/backend/internal/report"
	"github.com/gsm-perf/performance/backend/internal/repository"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
)

// Store regroupe les accès base de données utilisés directement par les handlers.
type Store interface {
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	CheckEmailIfExists(ctx context.Context, email string) (bool, error)
	CreateUser(ctx context.Context, user *domain.User) error
	UpdateUser(ctx context.Context, user *domain.User) error
	ListUsers(ctx context.Context, filter repository.UserFilter) ([]*domain.User, error)
	CreatePerformance(ctx context.Context, record *domain.PerformanceRecord) error
	CreateFeedback(ctx context.Context, feedback *domain.Feedback) error
	GetFeedbackByID(ctx context.Context, id int64) (*domain.Feedback, error)
	UpdateFeedback(ctx context.Context, feedback *domain.Feedback) error
	ListFeedbacks(ctx context.Context, filter repository.FeedbackFilter) ([]*domain.Feedback, error)
}

// MailPublisher est satisfait par *amqp.Channel.
type MailPublisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  Store
	translator  ut.Translator
	mailChannel MailPublisher
	redisClient *redis.Client
	reports     *report.Service
	settings    *orgconfig.Service
	overview    *refresher.Refresher
	now         func() time.Time

	Mux *chi.Mux
}

func NewHandler(
	cfg *config.Config,
	repo Store,
	mailCh MailPublisher,
	rdb *redis.Client,
	reports *report.Service,
	settings *orgconfig.Service,
	overview *refresher.Refresher,
) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	fr := fr.New()
	uni := ut.New(fr, fr)
	trans, _ := uni.GetTranslator("fr")
	if err := fr_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:    validate,
		config:      cfg,
		repository:  repo,
		translator:  trans,
		mailChannel: mailCh,
		redisClient: rdb,
		reports:     reports,
		settings:    settings,
		overview:    overview,
		now:         time.Now,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.requestID)
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Post("/register", h.Register)
		r.Route("/reset-password", func(r chi.Router) {
			r.Post("/require", h.RequireResetPassword)
			r.Post("/confirm", h.ConfirmResetPassword)
		})
	})

	// routes réservées aux utilisateurs connectés
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Route("/my-info", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Get("/", h.GetMyInfo)
			r.Patch("/password", h.UpdateMyPassword)
		})

		r.Route("/agent", func(r chi.Router) {
			r.Use(h.RequiredView(domain.ViewAgent))
			r.Use(h.myInfo)
			r.Get("/dashboard", h.GetAgentDashboard)
			r.Get("/performances", h.GetMyPerformances)
			r.Post("/performances", h.CreatePerformance)
			r.Get("/feedbacks", h.GetMyFeedbacks)
			r.Post("/feedbacks", h.CreateFeedback)
		})

		r.Route("/supervisor", func(r chi.Router) {
			r.Use(h.RequiredView(domain.ViewSupervisor))
			r.Use(h.myInfo)
			r.Get("/tasks", h.GetSupervisorTasks)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(h.RequiredView(domain.ViewAdmin))
			r.Use(h.myInfo)
			r.Get("/overview", h.GetAdminOverview)
			r.Get("/evolution", h.GetGlobalEvolution)
			r.Get("/teams", h.GetTeamsComparison)
			r.Get("/filters", h.GetFilterOptions)
			r.Get("/performances", h.GetPerformanceReport)
			r.Get("/performances/export", h.ExportPerformances)
			r.Get("/feedbacks", h.GetFeedbacks)
			r.With(h.feedbackInfo).Patch("/feedbacks/{id}", h.UpdateFeedbackStatus)
			r.Get("/users", h.GetUsers)
			r.With(h.userInfo, h.preventOperateInitialAdmin).Patch("/users/{id}", h.UpdateUser)
		})

		r.Route("/principal", func(r chi.Router) {
			r.Use(h.RequiredView(domain.ViewPrincipal))
			r.Use(h.myInfo)
			r.Get("/departments", h.GetDepartments)
			r.Post("/departments", h.CreateDepartment)
			r.Delete("/departments/{name}", h.DeleteDepartment)
			r.Get("/teams", h.GetTeams)
			r.Post("/teams", h.CreateTeam)
			r.Delete("/teams/{name}", h.DeleteTeam)
			r.Post("/users", h.CreateUser)
		})
	})
}
