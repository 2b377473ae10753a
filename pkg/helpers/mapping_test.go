package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-todo-session/pkg/mailer"
	mailtpl "github.com/oksasatya/go-todo-session/pkg/mailer/templates"
)

func TestPrepareEmailJobTemplate(t *testing.T) {
	job := mailer.EmailJob{To: "a@x.com", Template: " Welcome "}
	require.NoError(t, PrepareEmailJob(&job))
	assert.Equal(t, mailtpl.Welcome, job.Template)
	assert.Equal(t, "a@x.com", job.Data["Email"])

	subject, text, html, err := RenderEmailJob(&job)
	require.NoError(t, err)
	assert.NotEmpty(t, subject)
	assert.NotEmpty(t, text)
	assert.NotEmpty(t, html)
}

func TestPrepareEmailJobRaw(t *testing.T) {
	job := mailer.EmailJob{To: "a@x.com", Subject: "hi", Text: "body"}
	require.NoError(t, PrepareEmailJob(&job))
	subject, text, html, err := RenderEmailJob(&job)
	require.NoError(t, err)
	assert.Equal(t, "hi", subject)
	assert.Equal(t, "body", text)
	assert.Empty(t, html)
}

func TestPrepareEmailJobRejects(t *testing.T) {
	assert.Error(t, PrepareEmailJob(&mailer.EmailJob{Template: "welcome"}))
	assert.Error(t, PrepareEmailJob(&mailer.EmailJob{To: "a@x.com"}))
	assert.Error(t, PrepareEmailJob(&mailer.EmailJob{To: "a@x.com", Subject: "s"}))
	assert.Error(t, PrepareEmailJob(&mailer.EmailJob{To: "a@x.com", Template: "forgot_password"}))
}
