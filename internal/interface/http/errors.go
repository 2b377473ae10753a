package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-todo-session/internal/application"
	"github.com/oksasatya/go-todo-session/pkg/helpers"
	"github.com/oksasatya/go-todo-session/pkg/response"
	"github.com/oksasatya/go-todo-session/pkg/validation"
)

// respondError writes the envelope for a service error. Store failures are
// logged with their cause; clients only see the message.
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	kind := application.KindOf(err)
	status := application.HTTPStatus(kind)

	var ae *application.AppError
	if !errors.As(err, &ae) {
		ae = application.StoreError("database error", err)
	}

	var detail any
	switch kind {
	case application.KindStore:
		helpers.RequestLogger(logger, c).WithError(err).Error(ae.Message)
	case application.KindValidation:
		if ae.Field != "" {
			detail = validation.FieldError{Field: ae.Field, Message: ae.Message}
		}
	}
	response.Error[any](c, status, ae.Message, detail)
}
