package email

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendNotificationEmail_NotConfiguredLogsOnly(t *testing.T) {
	var buf bytes.Buffer
	svc := NewEmailService(SMTPConfig{BaseURL: "https://school.example"}, zerolog.New(&buf))

	err := svc.SendNotificationEmail("parent@example.com", "Jane", "Vaccination", "Dose 1", "/notifications/5")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "https://school.example/notifications/5")
	assert.Contains(t, buf.String(), "parent@example.com")
}

func TestRenderNotification_EscapesContent(t *testing.T) {
	body := renderNotification("<Jane>", "Check", "line one\nline <two>", "https://x/y?a=1&b=2")
	assert.Contains(t, body, "Hello &lt;Jane&gt;")
	assert.Contains(t, body, "<p>line one</p><p>line &lt;two&gt;</p>")
	assert.Contains(t, body, `href="https://x/y?a=1&amp;b=2"`)
}

func TestBuildMessage_Headers(t *testing.T) {
	svc := &EmailServiceImpl{config: SMTPConfig{FromName: "School Health", FromEmail: "noreply@school.example"}}
	msg := svc.buildMessage("parent@example.com", "Subject", "<p>body</p>")

	head, body, found := strings.Cut(msg, "\r\n\r\n")
	require.True(t, found)
	assert.Equal(t, "<p>body</p>", body)
	assert.Contains(t, head, "From: School Health <noreply@school.example>")
	assert.Contains(t, head, "To: parent@example.com")
	assert.Contains(t, head, "Content-Type: text/html; charset=UTF-8")
}
