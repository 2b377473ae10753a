package container

import (
	"database/sql"

	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-todo-session/config"
	"github.com/oksasatya/go-todo-session/internal/infrastructure/session"
	"github.com/oksasatya/go-todo-session/pkg/helpers"
)

// app-level container to share constructed components across packages
// Router auto-wires modules from these singletons.

var (
	cfg          *config.Config
	logger       *logrus.Logger
	db           *sql.DB
	redisClient  *redis.Client
	sessionStore *session.RedisStore
	gcsClient    *storage.Client
	rabbitPub    *helpers.RabbitPublisher
	esClient     *elasticsearch.Client
)

func SetConfig(c *config.Config)              { cfg = c }
func GetConfig() *config.Config               { return cfg }
func SetLogger(l *logrus.Logger)              { logger = l }
func GetLogger() *logrus.Logger               { return logger }
func SetDB(d *sql.DB)                         { db = d }
func GetDB() *sql.DB                          { return db }
func SetRedis(r *redis.Client)                { redisClient = r }
func GetRedis() *redis.Client                 { return redisClient }
func SetSessionStore(s *session.RedisStore)   { sessionStore = s }
func GetSessionStore() *session.RedisStore    { return sessionStore }
func SetGCS(s *storage.Client)                { gcsClient = s }
func GetGCS() *storage.Client                 { return gcsClient }
func SetRabbitPub(p *helpers.RabbitPublisher) { rabbitPub = p }
func GetRabbitPub() *helpers.RabbitPublisher  { return rabbitPub }
func SetES(c *elasticsearch.Client)           { esClient = c }
func GetES() *elasticsearch.Client            { return esClient }
