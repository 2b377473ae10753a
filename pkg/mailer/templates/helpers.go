package templates

import (
	"strings"
	"time"
)

// Option pattern
type Option func(*EmailData)

func WithIP(ip string) Option        { return func(d *EmailData) { d.IP = ip } }
func WithUserAgent(ua string) Option { return func(d *EmailData) { d.UserAgent = ua } }
func WithTime(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.TimeAt = utc
		d.Time = utc.Format("02 January 2006, 15:04 MST")
	}
}

// NewBaseEmailData fills the common fields, then applies opts.
func NewBaseEmailData(appName, appURL, typ, name, email, username string, opts ...Option) EmailData {
	d := EmailData{
		Name:     name,
		Email:    email,
		Username: username,
		Type:     typ,
		AppName:  appName,
		LoginURL: strings.TrimRight(appURL, "/") + "/login",
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

func NewWelcomeData(appName, appURL, name, email, username string, opts ...Option) map[string]any {
	return ToMap(NewBaseEmailData(appName, appURL, Welcome, name, email, username, opts...))
}

func NewLoginNotificationData(appName, appURL, name, email, username string, opts ...Option) map[string]any {
	return ToMap(NewBaseEmailData(appName, appURL, LoginNotification, name, email, username, opts...))
}
