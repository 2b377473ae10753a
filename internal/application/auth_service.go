package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/go-todo-session/internal/domain/entity"
	repo "github.com/oksasatya/go-todo-session/internal/domain/repository"
	"github.com/oksasatya/go-todo-session/pkg/helpers"
	"github.com/oksasatya/go-todo-session/pkg/mailer"
	tpl "github.com/oksasatya/go-todo-session/pkg/mailer/templates"
	"github.com/oksasatya/go-todo-session/pkg/validation"
)

// MailPublisher enqueues email jobs. *helpers.RabbitPublisher satisfies it.
type MailPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

type AuthService struct {
	Users      repo.UserRepository
	Mail       MailPublisher
	Logger     *logrus.Logger
	BcryptCost int
	AppName    string
	AppURL     string
}

func NewAuthService(users repo.UserRepository, mail MailPublisher, logger *logrus.Logger, bcryptCost int, appName, appURL string) *AuthService {
	return &AuthService{
		Users:      users,
		Mail:       mail,
		Logger:     logger,
		BcryptCost: bcryptCost,
		AppName:    appName,
		AppURL:     appURL,
	}
}

// RegisterInput is already validated by the transport layer.
type RegisterInput struct {
	Name     string
	Email    string
	Username string
	Password string
}

// ClientMeta describes the caller for notification emails.
type ClientMeta struct {
	IP        string
	UserAgent string
}

// Register creates a user after checking email, then username, are free.
func (s *AuthService) Register(ctx context.Context, in RegisterInput, meta ClientMeta) (*entity.User, error) {
	if err := s.ensureFree(ctx, s.Users.GetByEmail, in.Email, "email exists"); err != nil {
		return nil, err
	}
	if err := s.ensureFree(ctx, s.Users.GetByUsername, in.Username, "username exists"); err != nil {
		return nil, err
	}

	hash, err := helpers.HashPassword(in.Password, s.BcryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, ValidationError("password", "must be at most 72 bytes long")
	}
	if err != nil {
		return nil, StoreError("hash failed", err)
	}
	u := &entity.User{
		Name:     in.Name,
		Email:    in.Email,
		Username: in.Username,
		Password: hash,
	}
	if err := s.Users.Create(ctx, u); err != nil {
		// a concurrent registration won the race between the checks and the insert
		if errors.Is(err, repo.ErrDuplicate) {
			if strings.Contains(err.Error(), "username") {
				return nil, ConflictError("username exists")
			}
			return nil, ConflictError("email exists")
		}
		return nil, StoreError("database error", err)
	}

	s.notify(ctx, u, tpl.NewWelcomeData(s.AppName, s.AppURL, u.Name, u.Email, u.Username,
		tpl.WithTime(time.Now()), tpl.WithIP(meta.IP), tpl.WithUserAgent(meta.UserAgent)), tpl.Welcome)
	return u, nil
}

func (s *AuthService) ensureFree(ctx context.Context, lookup func(context.Context, string) (*entity.User, error), key, msg string) error {
	_, err := lookup(ctx, key)
	switch {
	case err == nil:
		return ConflictError(msg)
	case errors.Is(err, repo.ErrNotFound):
		return nil
	default:
		return StoreError("database error", err)
	}
}

// Login resolves loginID as an email when it looks like one, otherwise as a
// username, and checks the password against the stored hash.
func (s *AuthService) Login(ctx context.Context, loginID, password string, meta ClientMeta) (*entity.User, error) {
	if loginID == "" || password == "" {
		return nil, BadRequestError("missing credentials")
	}

	var (
		u   *entity.User
		err error
	)
	if validation.IsEmail(loginID) {
		u, err = s.Users.GetByEmail(ctx, loginID)
	} else {
		u, err = s.Users.GetByUsername(ctx, loginID)
	}
	if errors.Is(err, repo.ErrNotFound) {
		return nil, NotFoundError("user not found, please register")
	}
	if err != nil {
		return nil, StoreError("database error", err)
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, AuthError("mismatch")
	}

	s.notify(ctx, u, tpl.NewLoginNotificationData(s.AppName, s.AppURL, u.Name, u.Email, u.Username,
		tpl.WithTime(time.Now()), tpl.WithIP(meta.IP), tpl.WithUserAgent(meta.UserAgent)), tpl.LoginNotification)
	return u, nil
}

// notify publishes an email job. Failures are logged and never surface.
func (s *AuthService) notify(ctx context.Context, u *entity.User, data map[string]any, template string) {
	if s.Mail == nil {
		return
	}
	job := mailer.EmailJob{To: u.Email, Template: template, Data: data}
	if err := s.Mail.PublishJSON(ctx, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithFields(logrus.Fields{
			"username": u.Username,
			"template": template,
		}).Warn("publish email job failed")
	}
}
