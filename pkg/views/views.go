// Package views holds the server-rendered pages.
package views

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var files embed.FS

// Page names.
const (
	Register  = "register.html"
	Login     = "login.html"
	Dashboard = "dashboard.html"
)

// PageData is shared by every page.
type PageData struct {
	AppName  string
	Username string
	Email    string
}

// Templates parses all pages. It panics on a malformed template since they
// are compiled into the binary.
func Templates() *template.Template {
	return template.Must(template.ParseFS(files, "templates/*.html"))
}
