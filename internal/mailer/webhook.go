package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// WebhookOptions configures WebhookSender.
type WebhookOptions struct {
	URL     string
	AuthKey string
	Timeout time.Duration
	Client  *http.Client
}

// WebhookSender posts messages as JSON to an HTTP mail API.
type WebhookSender struct {
	client  *http.Client
	url     string
	authKey string
}

// NewWebhookSender builds a WebhookSender.
func NewWebhookSender(opts WebhookOptions) (*WebhookSender, error) {
	if opts.URL == "" {
		return nil, errors.New("mail webhook URL is not configured")
	}
	client := opts.Client
	if client == nil {
		timeout := opts.Timeout
		if timeout == 0 {
			timeout = 15 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &WebhookSender{client: client, url: opts.URL, authKey: opts.AuthKey}, nil
}

type webhookPayload struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
}

// Send posts msg. Any non-2xx status is a delivery failure.
func (s *WebhookSender) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return ErrNoRecipients
	}

	body, err := json.Marshal(webhookPayload{
		From:    msg.From,
		To:      msg.To,
		Subject: msg.Subject,
		Text:    msg.Body,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.authKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.authKey)
	}
	if msg.Key != "" {
		req.Header.Set("Idempotency-Key", msg.Key)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("mail webhook returned status %d", resp.StatusCode)
	}
	return nil
}
