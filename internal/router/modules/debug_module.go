package modules

import (
	"expvar"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-todo-session/internal/interface/middleware"
)

type DebugModule struct {
	Limits Limits
}

func NewDebugModule(limits Limits) *DebugModule { return &DebugModule{Limits: limits} }

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	// expvar, rate-limited per IP
	rl := middleware.RateLimit(m.Limits.Redis, 120, time.Minute, middleware.KeyByIP(), nil, m.Limits.Logger)
	rg.GET("/debug/vars", rl, gin.WrapH(expvar.Handler()))
}
