package view

import (
	"testing"

	"queridoc-web/internal/entity"
	"queridoc-web/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer()
	require.NoError(t, err)
	return r
}

func TestMarkdownIsSanitized(t *testing.T) {
	r := newTestRenderer(t)

	out := string(r.Markdown("**bold** <script>alert(1)</script>"))
	assert.Contains(t, out, "<strong>bold</strong>")
	assert.NotContains(t, out, "<script>")
}

func TestRenderLandingGreetsUser(t *testing.T) {
	r := newTestRenderer(t)

	out, err := r.Render("landing.html", PageData{
		CurrentPath: "/",
		User:        &User{Name: "Ada Lovelace", FirstName: "Ada"},
	})
	require.NoError(t, err)
	assert.Contains(t, string(out), "Welcome, Ada!")
	assert.Contains(t, string(out), `action="/logout"`)
}

func TestRenderLandingAnonymous(t *testing.T) {
	r := newTestRenderer(t)

	out, err := r.Render("landing.html", PageData{CurrentPath: "/"})
	require.NoError(t, err)
	assert.Contains(t, string(out), "Login with Google")
	assert.NotContains(t, string(out), "/ws/auth")
}

func TestRenderAskTranscript(t *testing.T) {
	r := newTestRenderer(t)

	out, err := r.Render("ask.html", PageData{
		User: &User{Name: "Ada"},
		Data: store.ChatSnapshot{
			Files:    []string{"a.pdf", "b.pdf"},
			Selected: "b.pdf",
			Messages: []entity.Message{
				{Role: entity.MessageRoleUser, Text: "first?"},
				{Role: entity.MessageRoleAI, Text: "*yes*"},
				{Role: entity.MessageRoleUser, Text: "second?", Unanswered: true},
			},
		},
	})
	require.NoError(t, err)

	html := string(out)
	assert.Contains(t, html, `<option value="b.pdf" selected>`)
	assert.Contains(t, html, "<em>yes</em>")
	assert.Contains(t, html, `action="/ask/retry"`)
	assert.Contains(t, html, `id="latest"`)
}

func TestRenderAskEmpty(t *testing.T) {
	r := newTestRenderer(t)

	out, err := r.Render("ask.html", PageData{User: &User{Name: "Ada"}, Data: store.ChatSnapshot{Loading: true}})
	require.NoError(t, err)
	assert.Contains(t, string(out), "No conversation yet.")
	assert.Contains(t, string(out), "Asking...")
}
