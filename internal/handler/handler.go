package handler

import (
	"context"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	"github.com/redis/go-redis/v9"
	"github.com/taskee-dev/taskee/backend/internal/approval"
	"github.com/taskee-dev/taskee/backend/internal/config"
	"github.com/taskee-dev/taskee/backend/internal/domain"
	"github.com/taskee-dev/taskee/backend/internal/ratelimit"
	"github.com/taskee-dev/taskee/backend/internal/repository"
)

// MailPublisher 把邮件投递到邮件队列
type MailPublisher interface {
	Publish(ctx context.Context, msg domain.MailMessage) error
}

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  *repository.Repository
	translator  ut.Translator
	mail        MailPublisher
	redisClient *redis.Client
	approval    *approval.Service
	planning    PlanningStore
	limiter     ratelimit.Limiter

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, mail MailPublisher, rdb *redis.Client, limiter ratelimit.Limiter) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:    validate,
		config:      cfg,
		repository:  repo,
		translator:  trans,
		mail:        mail,
		redisClient: rdb,
		approval:    approval.New(repo),
		planning:    repo,
		limiter:     limiter,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.requestID)
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	managerOnly := h.RequiredRole([]domain.Role{domain.RoleManager})

	// 认证相关
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Route("/reset-password", func(r chi.Router) {
			r.With(h.rateLimit).Post("/require", h.RequireResetPassword)
			r.Post("/confirm", h.ConfirmResetPassword)
		})
	})

	// 以下 API 必须要在登录后才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Route("/my-info", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Get("/", h.GetMyInfo)
			r.Patch("/password", h.UpdateMyPassword)
		})

		r.Route("/users", func(r chi.Router) {
			r.With(managerOnly).Post("/", h.CreateUser)
			r.Get("/", h.GetAllUserInfo)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.userInfo)
				r.Get("/", h.GetUserInfo)
				r.With(h.preventOperateInitialAdmin).With(managerOnly).Patch("/", h.UpdateUser)
				r.With(h.preventOperateInitialAdmin).With(managerOnly).Delete("/", h.DeleteUser)
				r.With(managerOnly).Patch("/password", h.UpdateUserPassword)
				r.Route("/availability", func(r chi.Router) {
					r.Get("/", h.GetUserAvailability)
					r.With(h.ownerOrManager).Post("/", h.CreateAvailabilityWindow)
					r.With(h.ownerOrManager).Delete("/{windowID}", h.DeleteAvailabilityWindow)
				})
			})
		})

		r.Route("/availability", func(r chi.Router) {
			r.Get("/me", h.GetMyAvailability)
			r.With(managerOnly).With(h.rateLimit).Post("/import", h.ImportAvailability)
		})

		r.With(managerOnly).Post("/planning/suggestions", h.SuggestEmployees)

		r.Route("/entries/{kind}", func(r chi.Router) {
			r.Use(h.entryKind)
			r.Post("/", h.SubmitEntry)
			r.Get("/", h.GetEntries)
			r.Get("/totals", h.GetEntryTotals)
			r.Patch("/{id}", h.SetEntryApproval)
			r.Delete("/{id}", h.DeleteEntry)
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Post("/", h.CreateTask)
			r.Get("/", h.GetTasks)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.task)
				r.Get("/", h.GetTask)
				r.Patch("/", h.UpdateTask)
				r.With(managerOnly).Delete("/", h.DeleteTask)
			})
		})

		r.Route("/reminders", func(r chi.Router) {
			r.Post("/", h.CreateReminder)
			r.Get("/", h.GetMyReminders)
			r.Delete("/{id}", h.DeleteReminder)
		})
	})
}
