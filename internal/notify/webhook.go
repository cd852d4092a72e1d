package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hamed0406/sitemapchecker/internal/domain"
)

// StatusError is returned when the endpoint answers with anything but 200.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected HTTP status %d for %s", e.StatusCode, e.URL)
}

// Webhook POSTs the result as JSON to a fixed URL.
type Webhook struct {
	URL    string
	Token  string // optional bearer token
	Client *http.Client
}

func NewWebhook(url, token string, timeout time.Duration) *Webhook {
	if url == "" {
		return nil
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Webhook{
		URL:    url,
		Token:  token,
		Client: &http.Client{Timeout: timeout},
	}
}

func (w *Webhook) Send(ctx context.Context, r domain.SiteCheckResult) error {
	if w == nil || w.URL == "" {
		return fmt.Errorf("webhook disabled")
	}
	body, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if w.Token != "" {
		req.Header.Set("Authorization", "Bearer "+w.Token)
	}

	resp, err := w.Client.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", w.URL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &StatusError{URL: w.URL, StatusCode: resp.StatusCode, Status: resp.Status}
	}
	return nil
}
