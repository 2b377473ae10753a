package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-todo-session/internal/application"
	"github.com/oksasatya/go-todo-session/internal/infrastructure/session"
	"github.com/oksasatya/go-todo-session/internal/interface/middleware"
	"github.com/oksasatya/go-todo-session/pkg/helpers"
	"github.com/oksasatya/go-todo-session/pkg/response"
	"github.com/oksasatya/go-todo-session/pkg/validation"
)

// SessionSweeper destroys all sessions of a user.
type SessionSweeper interface {
	DeleteByUsername(ctx context.Context, username string) (int, error)
}

type AuthHandler struct {
	Svc          *application.AuthService
	Sessions     SessionSweeper
	Logger       *logrus.Logger
	CookieDomain string
	CookieSecure bool
	SessionTTL   time.Duration
}

func NewAuthHandler(svc *application.AuthService, sweeper SessionSweeper, logger *logrus.Logger, cookieDomain string, cookieSecure bool, sessionTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		Svc:          svc,
		Sessions:     sweeper,
		Logger:       logger,
		CookieDomain: cookieDomain,
		CookieSecure: cookieSecure,
		SessionTTL:   sessionTTL,
	}
}

// registerRequest fields are validated in declaration order; the first
// failure is the one reported.
type registerRequest struct {
	Name     string `json:"name" form:"name" binding:"required,max=100"`
	Email    string `json:"email" form:"email" binding:"required,email,max=254"`
	Username string `json:"username" form:"username" binding:"required,username"`
	Password string `json:"password" form:"password" binding:"required,pwd,maxbytes=72"`
}

func clientMeta(c *gin.Context) application.ClientMeta {
	ip := c.GetString(middleware.CtxRealIP)
	if ip == "" {
		ip = c.ClientIP()
	}
	return application.ClientMeta{IP: ip, UserAgent: c.GetHeader("User-Agent")}
}

// Register POST /register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "user data error", validation.First(err))
		return
	}

	_, err := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	}, clientMeta(c))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.Redirect(http.StatusFound, "/login")
}

// Login POST /login
func (h *AuthHandler) Login(c *gin.Context) {
	p, err := readPayload(c)
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	u, err := h.Svc.Login(c.Request.Context(), stringField(p, "loginId"), stringField(p, "password"), clientMeta(c))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}

	snap := u.Snapshot()
	sess := sessions.Default(c)
	sess.Clear()
	sess.Set(session.KeyIsAuth, true)
	sess.Set(session.KeyUserID, snap.UserID)
	sess.Set(session.KeyEmail, snap.Email)
	sess.Set(session.KeyUsername, snap.Username)
	sess.Options(helpers.SessionCookieOptions(h.CookieDomain, h.CookieSecure, h.SessionTTL))
	if err := sess.Save(); err != nil {
		respondError(c, h.Logger, application.StoreError("session save failed", err))
		return
	}
	c.Redirect(http.StatusFound, "/dashboard")
}

// Logout POST /logout destroys the caller's session.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.expireSession(c); err != nil {
		helpers.RequestLogger(h.Logger, c).WithError(err).Error("logout failed")
		response.Error[any](c, http.StatusInternalServerError, "logout unsuccessful", nil)
		return
	}
	c.Redirect(http.StatusFound, "/login")
}

// LogoutAll POST /logout_from_all_devices destroys every session of the caller.
func (h *AuthHandler) LogoutAll(c *gin.Context) {
	username := c.GetString(middleware.CtxUsername)
	n, err := h.Sessions.DeleteByUsername(c.Request.Context(), username)
	if err != nil {
		helpers.RequestLogger(h.Logger, c).WithError(err).Error("logout from all devices failed")
		response.Error[any](c, http.StatusInternalServerError, "logout unsuccessful", nil)
		return
	}
	helpers.RequestLogger(h.Logger, c).WithField("sessions", n).Info("logged out from all devices")

	// the record is gone already, this only drops the cookie
	if err := h.expireSession(c); err != nil {
		helpers.RequestLogger(h.Logger, c).WithError(err).Warn("expire caller cookie failed")
	}
	c.Redirect(http.StatusFound, "/login")
}

func (h *AuthHandler) expireSession(c *gin.Context) error {
	sess := sessions.Default(c)
	sess.Clear()
	sess.Options(helpers.ExpiredSessionOptions(h.CookieDomain, h.CookieSecure))
	return sess.Save()
}
