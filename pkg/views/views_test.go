package views

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplatesRender(t *testing.T) {
	tpl := Templates()
	for _, name := range []string{Register, Login, Dashboard} {
		var buf bytes.Buffer
		require.NoError(t, tpl.ExecuteTemplate(&buf, name, PageData{AppName: "todo", Username: "<a1>"}), name)
		assert.Contains(t, buf.String(), "<title>todo</title>", name)
	}
}

func TestDashboardEscapesUsername(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Templates().ExecuteTemplate(&buf, Dashboard, PageData{Username: "<script>"}))
	assert.Contains(t, buf.String(), "Hi &lt;script&gt;")
}
