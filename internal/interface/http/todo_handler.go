package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-todo-session/internal/application"
	"github.com/oksasatya/go-todo-session/internal/interface/middleware"
	"github.com/oksasatya/go-todo-session/pkg/response"
	"github.com/oksasatya/go-todo-session/pkg/validation"
)

type TodoHandler struct {
	Svc    *application.TodoService
	Logger *logrus.Logger
}

func NewTodoHandler(svc *application.TodoService, logger *logrus.Logger) *TodoHandler {
	return &TodoHandler{Svc: svc, Logger: logger}
}

func (h *TodoHandler) payload(c *gin.Context) (map[string]any, bool) {
	p, err := readPayload(c)
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return nil, false
	}
	return p, true
}

// Create POST /create-item
func (h *TodoHandler) Create(c *gin.Context) {
	p, ok := h.payload(c)
	if !ok {
		return
	}
	todo, err := h.Svc.Create(c.Request.Context(), c.GetString(middleware.CtxUsername), p["todo"])
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, todo, "todo created successfully")
}

// Read GET /read-item?skip=N
func (h *TodoHandler) Read(c *gin.Context) {
	skip, err := application.ParseSkip(c.Query("skip"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	page, err := h.Svc.ReadPage(c.Request.Context(), c.GetString(middleware.CtxUsername), skip)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, page.Todos, page.Message)
}

// Edit POST /edit-item {id, newData}
func (h *TodoHandler) Edit(c *gin.Context) {
	p, ok := h.payload(c)
	if !ok {
		return
	}
	prev, err := h.Svc.Edit(c.Request.Context(), c.GetString(middleware.CtxUsername), stringField(p, "id"), p["newData"])
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, prev, "todo edited successfully")
}

// Delete POST /delete-item {id}
func (h *TodoHandler) Delete(c *gin.Context) {
	p, ok := h.payload(c)
	if !ok {
		return
	}
	deleted, err := h.Svc.Delete(c.Request.Context(), c.GetString(middleware.CtxUsername), stringField(p, "id"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, deleted, "todo deleted successfully")
}

// Search GET /search-item?q=&size=
func (h *TodoHandler) Search(c *gin.Context) {
	size, _ := strconv.Atoi(c.Query("size"))
	todos, err := h.Svc.Search(c.Request.Context(), c.GetString(middleware.CtxUsername), c.Query("q"), size)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, todos, "search success")
}

// Export POST /export-items
func (h *TodoHandler) Export(c *gin.Context) {
	url, err := h.Svc.Export(c.Request.Context(), c.GetString(middleware.CtxUsername))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"url": url}, "export success")
}
