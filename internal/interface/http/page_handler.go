package handlers

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"

	"github.com/oksasatya/go-todo-session/internal/interface/middleware"
	"github.com/oksasatya/go-todo-session/pkg/views"
)

type PageHandler struct {
	Views   *template.Template
	AppName string
}

func NewPageHandler(tpl *template.Template, appName string) *PageHandler {
	return &PageHandler{Views: tpl, AppName: appName}
}

// Home GET / is the liveness probe.
func (h *PageHandler) Home(c *gin.Context) {
	c.String(http.StatusOK, "Todo App server is running")
}

func (h *PageHandler) RegisterPage(c *gin.Context) { h.page(c, views.Register) }

func (h *PageHandler) LoginPage(c *gin.Context) { h.page(c, views.Login) }

// Dashboard requires Auth to have run.
func (h *PageHandler) Dashboard(c *gin.Context) { h.page(c, views.Dashboard) }

func (h *PageHandler) page(c *gin.Context, name string) {
	c.Render(http.StatusOK, render.HTML{
		Template: h.Views,
		Name:     name,
		Data: views.PageData{
			AppName:  h.AppName,
			Username: c.GetString(middleware.CtxUsername),
			Email:    c.GetString(middleware.CtxUserEmail),
		},
	})
}
