package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-todo-session/config"
	"github.com/oksasatya/go-todo-session/internal/container"
	pginfra "github.com/oksasatya/go-todo-session/internal/infrastructure/postgres"
	"github.com/oksasatya/go-todo-session/internal/infrastructure/search"
	"github.com/oksasatya/go-todo-session/internal/infrastructure/session"
	"github.com/oksasatya/go-todo-session/internal/router"
	"github.com/oksasatya/go-todo-session/pkg/helpers"
	"github.com/oksasatya/go-todo-session/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx := context.Background()

	// Postgres via database/sql with pgx stdlib
	db, err := pginfra.Open(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		logger.Fatalf("failed to connect to postgres: %v", err)
	}
	defer func() { _ = db.Close() }()

	if err := runMigrations(db, cfg.MigrationsDir, logger); err != nil {
		logger.Fatalf("migration failed: %v", err)
	}

	// Redis (sessions and rate limiting)
	rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer func() { _ = rdb.Close() }()
	if err := helpers.PingRedis(ctx, rdb); err != nil {
		logger.Fatalf("failed to connect to redis: %v", err)
	}

	store := session.NewRedisStore(rdb, []byte(cfg.SessionSecret))
	store.Options(helpers.SessionCookieOptions(cfg.CookieDomain, cfg.CookieSecure, cfg.SessionMaxAge))

	// Optional collaborators: search, exports, mail
	esClient, err := helpers.NewESClient(cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass)
	if err != nil {
		logger.WithError(err).Warn("elasticsearch disabled")
		esClient = nil
	}
	if esClient != nil {
		if err := prepareSearch(ctx, esClient, cfg.ESTodosIndex); err != nil {
			logger.WithError(err).Warn("elasticsearch unreachable, search disabled")
			esClient = nil
		}
	}

	gcsClient, err := helpers.NewGCSClient(ctx, cfg.GCSBucket, cfg.GCSCredentialsJSONPath)
	if err != nil {
		logger.WithError(err).Warn("gcs exports disabled")
		gcsClient = nil
	}
	if gcsClient != nil {
		defer func() { _ = gcsClient.Close() }()
	}

	var pub *helpers.RabbitPublisher
	if cfg.MailSendEnabled {
		pub, err = helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue, cfg.AppName)
		if err != nil {
			logger.WithError(err).Warn("rabbitmq unavailable, emails disabled")
			pub = nil
		}
		defer pub.Close()
	}

	// Provide infra singletons to container for registry auto-wiring
	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetDB(db)
	container.SetRedis(rdb)
	container.SetSessionStore(store)
	container.SetES(esClient)
	container.SetGCS(gcsClient)
	container.SetRabbitPub(pub)

	r := router.NewEngine(cfg, store)

	// Registry: auto-register modules using container
	reg := router.NewRegistry(r)
	router.InitModules(reg)
	reg.RegisterAll()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Errorf("server forced to shutdown: %v", err)
		return
	}
	logger.Info("server exited properly")
}

func prepareSearch(ctx context.Context, es *elasticsearch.Client, index string) error {
	if err := helpers.PingES(ctx, es); err != nil {
		return err
	}
	return search.NewTodoIndex(es, index).EnsureIndex(ctx)
}

func runMigrations(db *sql.DB, migrationsDir string, logger *logrus.Logger) error {
	driver, err := pgmigrate.WithInstance(db, &pgmigrate.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", migrationsDir), "postgres", driver)
	if err != nil {
		return err
	}
	logger.Info("running migrations...")
	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migrations to run")
		return nil
	}
	return err
}
