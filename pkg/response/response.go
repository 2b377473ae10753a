package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIResponse is the JSON envelope for every non-redirect response.
// Status mirrors the HTTP status code.
type APIResponse[T any] struct {
	Status    int    `json:"status"`
	Message   string `json:"message"`
	Data      T      `json:"data,omitempty"`
	Error     any    `json:"error,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// Success writes a success envelope and returns it.
func Success[T any](ctx *gin.Context, status int, data T, message string) APIResponse[T] {
	if status == 0 {
		status = http.StatusOK
	}
	resp := APIResponse[T]{
		Status:    status,
		Message:   message,
		Data:      data,
		RequestID: ctx.GetString("request_id"),
	}
	ctx.JSON(status, resp)
	return resp
}

// Error writes an error envelope and returns it. Middleware callers still
// need to Abort the chain.
func Error[T any](ctx *gin.Context, status int, message string, err any) APIResponse[T] {
	if status == 0 {
		status = http.StatusBadRequest
	}
	resp := APIResponse[T]{
		Status:    status,
		Message:   message,
		Error:     err,
		RequestID: ctx.GetString("request_id"),
	}
	ctx.JSON(status, resp)
	return resp
}
