package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-todo-session/internal/interface/http"
	"github.com/oksasatya/go-todo-session/internal/interface/middleware"
)

type PageModule struct {
	Handler *handlers.PageHandler
}

func NewPageModule(h *handlers.PageHandler) *PageModule {
	return &PageModule{Handler: h}
}

func (m *PageModule) Register(rg *gin.RouterGroup) {
	rg.GET("/", m.Handler.Home)
	rg.GET("/register", m.Handler.RegisterPage)
	rg.GET("/login", m.Handler.LoginPage)
	rg.GET("/dashboard", middleware.Auth(), m.Handler.Dashboard)
}
