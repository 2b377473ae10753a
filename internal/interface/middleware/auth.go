package middleware

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-todo-session/internal/infrastructure/session"
	"github.com/oksasatya/go-todo-session/pkg/response"
)

// Gin context keys set by Auth.
const (
	CtxUsername  = "username"
	CtxUserID    = "userID"
	CtxUserEmail = "userEmail"
)

// Auth lets the request through only when the session carries an
// authenticated identity. It copies that identity into the Gin context.
func Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)
		isAuth, _ := sess.Get(session.KeyIsAuth).(bool)
		username, _ := sess.Get(session.KeyUsername).(string)
		if !isAuth || username == "" {
			response.Error[any](c, http.StatusUnauthorized, "session expired, please login again", nil)
			c.Abort()
			return
		}

		userID, _ := sess.Get(session.KeyUserID).(string)
		email, _ := sess.Get(session.KeyEmail).(string)
		c.Set(CtxUsername, username)
		c.Set(CtxUserID, userID)
		c.Set(CtxUserEmail, email)
		c.Next()
	}
}
