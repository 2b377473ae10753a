package helpers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/oksasatya/go-todo-session/pkg/mailer"
	mailtpl "github.com/oksasatya/go-todo-session/pkg/mailer/templates"
)

// PrepareEmailJob normalizes a queued job before rendering: template names are
// lower-cased, Email defaults to the recipient, and jobs that can render
// neither a template nor a raw body are rejected.
func PrepareEmailJob(job *mailer.EmailJob) error {
	if strings.TrimSpace(job.To) == "" {
		return errors.New("email job has no recipient")
	}
	job.Template = strings.ToLower(strings.TrimSpace(job.Template))
	if job.Template == "" {
		if job.Subject == "" || (job.Text == "" && job.HTML == "") {
			return errors.New("email job needs a template or a subject with text/html")
		}
		return nil
	}
	if !mailtpl.Known(job.Template) {
		return fmt.Errorf("unknown email template %q", job.Template)
	}
	if job.Data == nil {
		job.Data = map[string]any{}
	}
	if v, ok := job.Data["Email"]; !ok || fmt.Sprintf("%v", v) == "" {
		job.Data["Email"] = job.To
	}
	return nil
}

// RenderEmailJob returns subject, text and html for a prepared job.
func RenderEmailJob(job *mailer.EmailJob) (string, string, string, error) {
	if job.Template == "" {
		return job.Subject, job.Text, job.HTML, nil
	}
	return mailtpl.Render(job.Template, job.Data)
}
