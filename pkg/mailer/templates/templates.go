package templates

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	htmpl "html/template"
	"io"
	"reflect"
	"strings"
	"sync"
	texttpl "text/template"
	"time"
)

//go:embed *.tmpl
var FS embed.FS

// EmailData defines standard fields for email templates.
type EmailData struct {
	Name     string `json:"Name"`
	Email    string `json:"Email"`
	Username string `json:"Username"`
	Type     string `json:"Type"`

	AppName  string `json:"AppName"`
	LoginURL string `json:"LoginURL"`

	IP        string    `json:"IP"`
	UserAgent string    `json:"UserAgent"`
	Time      string    `json:"Time"`
	TimeAt    time.Time `json:"TimeAt"`
}

// ToMap converts EmailData to a map[string]any for EmailJob.Data
func ToMap(d EmailData) map[string]any {
	b, _ := json.Marshal(d)
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	return m
}

// defaultFn supports pipe usage: {{ .Value | default "Fallback" }}
func defaultFn(fallback any, value any) any {
	switch x := value.(type) {
	case string:
		if strings.TrimSpace(x) == "" {
			return fallback
		}
		return x
	case nil:
		return fallback
	default:
		rv := reflect.ValueOf(value)
		if rv.IsZero() {
			return fallback
		}
		return value
	}
}

func baseFuncs() map[string]any {
	return map[string]any{
		"upper":   strings.ToUpper,
		"default": defaultFn,
	}
}

var (
	htmlFuncMap = htmpl.FuncMap(baseFuncs())
	textFuncMap = texttpl.FuncMap(baseFuncs())
)

// Template names
const (
	Welcome           = "welcome"
	LoginNotification = "login_notification"
)

// Known reports whether name has a subject, text and html template.
func Known(name string) bool {
	switch name {
	case Welcome, LoginNotification:
		return true
	}
	return false
}

type parsed struct {
	text *texttpl.Template // subject and text bodies
	html *htmpl.Template
}

var (
	loadOnce sync.Once
	loaded   parsed
	loadErr  error
)

// load parses every embedded template once; names are the file names.
func load() (parsed, error) {
	loadOnce.Do(func() {
		t, err := texttpl.New("email").Funcs(textFuncMap).ParseFS(FS, "*.subject.tmpl", "*.text.tmpl")
		if err != nil {
			loadErr = fmt.Errorf("parse text templates: %w", err)
			return
		}
		h, err := htmpl.New("email").Funcs(htmlFuncMap).ParseFS(FS, "*.html.tmpl")
		if err != nil {
			loadErr = fmt.Errorf("parse html templates: %w", err)
			return
		}
		loaded = parsed{text: t, html: h}
	})
	return loaded, loadErr
}

type executor interface {
	ExecuteTemplate(w io.Writer, name string, data any) error
}

func execute(t executor, name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("exec %q: %w", name, err)
	}
	return buf.String(), nil
}

// Render returns subject, text and html for the named email, built from
// <name>.subject.tmpl, <name>.text.tmpl and <name>.html.tmpl.
func Render(name string, data any) (subject, text, html string, err error) {
	if !Known(name) {
		return "", "", "", fmt.Errorf("unknown template %q", name)
	}
	p, err := load()
	if err != nil {
		return "", "", "", err
	}
	if subject, err = execute(p.text, name+".subject.tmpl", data); err != nil {
		return "", "", "", err
	}
	if text, err = execute(p.text, name+".text.tmpl", data); err != nil {
		return "", "", "", err
	}
	if html, err = execute(p.html, name+".html.tmpl", data); err != nil {
		return "", "", "", err
	}
	return strings.TrimSpace(subject), text, html, nil
}
