package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ShortageWatcher/internal/config"
	"ShortageWatcher/internal/domain"
	"ShortageWatcher/internal/ports"
)

// Notifier posts messages to a Slack-compatible incoming webhook.
type Notifier struct {
	url    string
	client *http.Client
}

var _ ports.Notifier = (*Notifier)(nil)

type payload struct {
	Text string `json:"text"`
}

// NewNotifier builds a notifier for the configured webhook URL.
func NewNotifier(cfg config.WebhookConfig) *Notifier {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Notifier{
		url:    cfg.URL,
		client: &http.Client{Timeout: timeout},
	}
}

// Publish sends {"text": text}; any non-2xx status is a failure.
func (n *Notifier) Publish(ctx context.Context, text string) error {
	if n.url == "" || n.client == nil {
		return &domain.NotifyError{Err: fmt.Errorf("webhook notifier misconfigured")}
	}

	body, err := json.Marshal(payload{Text: text})
	if err != nil {
		return &domain.NotifyError{Err: fmt.Errorf("marshal payload: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return &domain.NotifyError{Err: fmt.Errorf("new request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return &domain.NotifyError{Err: fmt.Errorf("do request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &domain.NotifyError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%s: %s", resp.Status, strings.TrimSpace(string(snippet))),
		}
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
