package router

import (
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-todo-session/config"
	"github.com/oksasatya/go-todo-session/internal/application"
	"github.com/oksasatya/go-todo-session/internal/container"
	repo "github.com/oksasatya/go-todo-session/internal/domain/repository"
	"github.com/oksasatya/go-todo-session/internal/infrastructure/postgres"
	"github.com/oksasatya/go-todo-session/internal/infrastructure/search"
	"github.com/oksasatya/go-todo-session/internal/infrastructure/storage"
	handlers "github.com/oksasatya/go-todo-session/internal/interface/http"
	"github.com/oksasatya/go-todo-session/internal/router/modules"
	"github.com/oksasatya/go-todo-session/pkg/views"
)

// Deps is everything the modules need. Optional collaborators (Index,
// Exports, Mail) may be nil.
type Deps struct {
	Config   *config.Config
	Logger   *logrus.Logger
	Redis    *redis.Client
	Sessions handlers.SessionSweeper
	Users    repo.UserRepository
	Todos    repo.TodoRepository
	Index    application.TodoIndexer
	Exports  application.ObjectUploader
	Mail     application.MailPublisher
}

// BuildModules constructs services, handlers and modules from d.
func BuildModules(d Deps) []Module {
	cfg := d.Config
	limits := modules.Limits{
		Redis:  d.Redis,
		Max:    cfg.RateLimitMax,
		Window: cfg.RateLimitWindow,
		Logger: d.Logger,
	}

	authSvc := application.NewAuthService(d.Users, d.Mail, d.Logger, cfg.BcryptCost, cfg.AppName, cfg.AppURL)
	todoSvc := application.NewTodoService(d.Todos, d.Index, d.Exports, d.Logger)

	authHandler := handlers.NewAuthHandler(authSvc, d.Sessions, d.Logger, cfg.CookieDomain, cfg.CookieSecure, cfg.SessionMaxAge)
	todoHandler := handlers.NewTodoHandler(todoSvc, d.Logger)
	pageHandler := handlers.NewPageHandler(views.Templates(), cfg.AppName)

	mods := []Module{
		modules.NewPageModule(pageHandler),
		modules.NewAuthModule(authHandler, limits),
		modules.NewTodoModule(todoHandler, limits),
	}
	if cfg.DebugMetricsEnabled {
		mods = append(mods, modules.NewDebugModule(limits))
	}
	return mods
}

func depsFromContainer() Deps {
	cfg := container.GetConfig()
	d := Deps{
		Config:   cfg,
		Logger:   container.GetLogger(),
		Redis:    container.GetRedis(),
		Sessions: container.GetSessionStore(),
		Users:    postgres.NewUserRepository(container.GetDB()),
		Todos:    postgres.NewTodoRepository(container.GetDB()),
	}
	// typed nils must stay out of the interfaces
	if es := container.GetES(); es != nil {
		d.Index = search.NewTodoIndex(es, cfg.ESTodosIndex)
	}
	if gcs := container.GetGCS(); gcs != nil {
		d.Exports = storage.NewGCSExporter(gcs, cfg.GCSBucket)
	}
	if pub := container.GetRabbitPub(); pub != nil {
		d.Mail = pub
	}
	return d
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	r.Add(BuildModules(depsFromContainer())...)
}
