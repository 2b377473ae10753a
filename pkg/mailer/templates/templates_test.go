package templates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderWelcome(t *testing.T) {
	data := NewWelcomeData("Todo App", "http://localhost:8080/", "A", "a@x.com", "a1")
	subject, text, html, err := Render(Welcome, data)
	require.NoError(t, err)
	assert.Equal(t, "Welcome to Todo App, A", subject)
	assert.Contains(t, text, "http://localhost:8080/login")
	assert.Contains(t, html, "<strong>a1</strong>")
}

func TestRenderLoginNotificationDefaults(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC)
	data := NewLoginNotificationData("", "http://app.test", "A", "a@x.com", "a1", WithTime(at), WithIP("10.0.0.1"))
	subject, text, _, err := Render(LoginNotification, data)
	require.NoError(t, err)
	assert.Equal(t, "New login to your Todo App account", subject)
	assert.Contains(t, text, "02 January 2026, 03:04 UTC")
	assert.Contains(t, text, "IP: 10.0.0.1")
	assert.Contains(t, text, "Device: unknown")
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, _, _, err := Render("verify_email", map[string]any{})
	assert.Error(t, err)
}
