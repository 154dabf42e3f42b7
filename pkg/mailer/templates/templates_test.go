package templates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_Welcome(t *testing.T) {
	data := ToMap(NewWelcomeData("alice01", "alice@example.com",
		WithAppName("Registry"),
		WithSupportURL("https://example.com/help"),
	))

	subject, text, html, err := Render(Welcome, data)
	require.NoError(t, err)

	assert.Equal(t, "Welcome to Registry", subject)
	assert.Contains(t, text, "Hi alice01")
	assert.Contains(t, text, "alice@example.com")
	assert.Contains(t, text, "https://example.com/help")
	assert.NotContains(t, text, "password has been generated")
	assert.Contains(t, html, "<strong>alice@example.com</strong>")
}

func TestRender_PasswordPending(t *testing.T) {
	data := ToMap(NewWelcomeData("bob_02", "bob@example.com", WithAppName("Registry"), WithPasswordPending(true)))

	_, text, html, err := Render(Welcome, data)
	require.NoError(t, err)
	assert.Contains(t, text, "password has been generated")
	assert.Contains(t, html, "password has been generated")
	// company falls back to app name
	assert.Contains(t, text, "Registry\n")
}

func TestRender_EscapesHTML(t *testing.T) {
	data := ToMap(NewWelcomeData("<script>", "x@example.com"))

	_, _, html, err := Render(Welcome, data)
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
}

func TestRender_Unknown(t *testing.T) {
	_, _, _, err := Render("nope", nil)
	assert.Error(t, err)
}
