package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-todo-session/internal/interface/http"
	"github.com/oksasatya/go-todo-session/internal/interface/middleware"
)

// TodoModule wires the item routes. All are protected; mutations also pass
// the per-user rate gate.
type TodoModule struct {
	Handler *handlers.TodoHandler
	Limits  Limits
}

func NewTodoModule(h *handlers.TodoHandler, limits Limits) *TodoModule {
	return &TodoModule{Handler: h, Limits: limits}
}

func (m *TodoModule) Register(rg *gin.RouterGroup) {
	gate := middleware.RateLimit(m.Limits.Redis, m.Limits.Max, m.Limits.Window, middleware.KeyByUsername(), nil, m.Limits.Logger)

	auth := rg.Group("/")
	auth.Use(middleware.Auth())
	{
		auth.GET("/read-item", m.Handler.Read)
		auth.GET("/search-item", m.Handler.Search)

		auth.POST("/create-item", gate, m.Handler.Create)
		auth.POST("/edit-item", gate, m.Handler.Edit)
		auth.POST("/delete-item", gate, m.Handler.Delete)
		auth.POST("/export-items", gate, m.Handler.Export)
	}
}
