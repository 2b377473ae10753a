package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-todo-session/internal/interface/http"
	"github.com/oksasatya/go-todo-session/internal/interface/middleware"
)

// AuthModule wires registration and the session lifecycle.
// Public: POST /register, POST /login
// Protected: POST /logout, POST /logout_from_all_devices
type AuthModule struct {
	Handler *handlers.AuthHandler
	Limits  Limits
}

func NewAuthModule(h *handlers.AuthHandler, limits Limits) *AuthModule {
	return &AuthModule{Handler: h, Limits: limits}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	// brute-force guard, independent of the per-user mutation gate
	loginLimiter := middleware.RateLimit(m.Limits.Redis, 10, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP(), m.Limits.Logger)

	rg.POST("/register", loginLimiter, m.Handler.Register)
	rg.POST("/login", loginLimiter, m.Handler.Login)

	auth := rg.Group("/")
	auth.Use(middleware.Auth())
	{
		auth.POST("/logout", m.Handler.Logout)
		auth.POST("/logout_from_all_devices", m.Handler.LogoutAll)
	}
}
