package submissions

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/sjson"
)

// WebhookSink posts each submission as JSON to a URL.
type WebhookSink struct {
	url    string
	client *http.Client
}

// NewWebhookSink validates rawURL. A nil client gets a 30s timeout.
func NewWebhookSink(rawURL string, client *http.Client) (*WebhookSink, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("webhook sink needs an http(s) URL, got %q", rawURL)
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &WebhookSink{url: rawURL, client: client}, nil
}

func (s *WebhookSink) Name() string { return KindWebhook }

func (s *WebhookSink) Write(ctx context.Context, sub Submission) error {
	body, err := webhookBody(sub)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

func (s *WebhookSink) Close() error { return nil }

func webhookBody(sub Submission) ([]byte, error) {
	body := []byte(`{}`)
	sets := []struct {
		path  string
		value any
	}{
		{"timestamp", sub.Timestamp.UTC().Format(time.RFC3339)},
		{"request_id", sub.RequestID},
		{"mode", sub.Mode},
		{"selection.domain", sub.Domain},
		{"selection.process", sub.Process},
		{"selection.focus", sub.Focus},
		{"selection.industry", sub.Industry},
		{"selection.maturity", sub.Maturity},
		{"selection.constraints", nonNil(sub.Constraints)},
		{"custom_steps", nonNil(sub.CustomSteps)},
	}
	var err error
	for _, s := range sets {
		body, err = sjson.SetBytes(body, s.path, s.value)
		if err != nil {
			return nil, fmt.Errorf("failed to build webhook body: %w", err)
		}
	}
	return body, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
