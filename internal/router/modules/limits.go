package modules

import (
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Limits configures the Redis rate gate shared by modules.
type Limits struct {
	Redis  *redis.Client
	Max    int
	Window time.Duration
	Logger *logrus.Logger
}
