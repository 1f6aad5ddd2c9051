package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emailscheduler/internal/config"
)

func TestWebhookSenderPostsMessage(t *testing.T) {
	var got webhookPayload
	var headers http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers = r.Header.Clone()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	sender, err := NewWebhookSender(WebhookOptions{URL: srv.URL, AuthKey: "secret"})
	require.NoError(t, err)

	err = sender.Send(context.Background(), Message{
		From:    "noreply@x.com",
		To:      []string{"a@x.com", "b@x.com"},
		Subject: "Hello",
		Body:    "World",
		Key:     "event-1",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"a@x.com", "b@x.com"}, got.To)
	assert.Equal(t, "Hello", got.Subject)
	assert.Equal(t, "World", got.Text)
	assert.Equal(t, "Bearer secret", headers.Get("Authorization"))
	assert.Equal(t, "event-1", headers.Get("Idempotency-Key"))
}

func TestWebhookSenderRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	sender, err := NewWebhookSender(WebhookOptions{URL: srv.URL})
	require.NoError(t, err)

	err = sender.Send(context.Background(), Message{To: []string{"a@x.com"}})
	assert.EqualError(t, err, "mail webhook returned status 502")
}

func TestWebhookSenderHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	sender, err := NewWebhookSender(WebhookOptions{URL: srv.URL})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.Error(t, sender.Send(ctx, Message{To: []string{"a@x.com"}}))
}

func TestWebhookSenderRequiresURL(t *testing.T) {
	_, err := NewWebhookSender(WebhookOptions{})
	assert.Error(t, err)
}

func TestSendersRejectEmptyRecipients(t *testing.T) {
	webhook, err := NewWebhookSender(WebhookOptions{URL: "http://127.0.0.1:1"})
	require.NoError(t, err)

	assert.ErrorIs(t, webhook.Send(context.Background(), Message{}), ErrNoRecipients)
	assert.ErrorIs(t, NewLogSender(zerolog.Nop()).Send(context.Background(), Message{}), ErrNoRecipients)
}

func TestBuildMessage(t *testing.T) {
	m, err := buildMessage(Message{
		From:    "noreply@x.com",
		To:      []string{"a@x.com", "b@x.com"},
		Subject: "Hello",
		Body:    "World",
		Key:     "event-1",
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = m.WriteTo(&buf)
	require.NoError(t, err)
	raw := buf.String()
	assert.Contains(t, raw, "Subject: Hello")
	assert.Contains(t, raw, "<a@x.com>")
	assert.Contains(t, raw, "<b@x.com>")
	assert.Contains(t, raw, "X-Delivery-Key: event-1")
	assert.Contains(t, raw, "World")
}

func TestBuildMessageRejectsBadSender(t *testing.T) {
	_, err := buildMessage(Message{From: "not an address", To: []string{"a@x.com"}})
	assert.Error(t, err)
}

func TestNewSMTPSenderRequiresHost(t *testing.T) {
	_, err := NewSMTPSender(SMTPOptions{})
	assert.Error(t, err)

	s, err := NewSMTPSender(SMTPOptions{Host: "localhost", Username: "u", Password: "p"})
	require.NoError(t, err)
	assert.NotNil(t, s)
}

func TestLogSender(t *testing.T) {
	var buf bytes.Buffer
	sender := NewLogSender(zerolog.New(&buf))

	require.NoError(t, sender.Send(context.Background(), Message{To: []string{"a@x.com"}, Subject: "Hi"}))
	assert.Contains(t, buf.String(), `"subject":"Hi"`)
}

func TestNewSelectsTransport(t *testing.T) {
	s, err := New(config.MailConfig{Transport: config.MailLog}, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &LogSender{}, s)

	s, err = New(config.MailConfig{Transport: config.MailWebhook, WebhookURL: "http://mail.local/send"}, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &WebhookSender{}, s)

	s, err = New(config.MailConfig{Transport: config.MailSMTP, SMTPHost: "localhost", SMTPPort: 2525}, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &SMTPSender{}, s)

	_, err = New(config.MailConfig{Transport: "pigeon"}, zerolog.Nop())
	assert.Error(t, err)
}
