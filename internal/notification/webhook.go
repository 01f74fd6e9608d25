package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// WebhookChannel posts lifecycle events to a configured HTTP endpoint
type WebhookChannel struct {
	url        string
	httpClient *http.Client
}

// WebhookPayload defines the webhook payload structure
type WebhookPayload struct {
	Source    string          `json:"source"`
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Event     *LifecycleEvent `json:"event"`
}

// NewWebhookChannel creates a new webhook channel
func NewWebhookChannel(config *ManagerConfig) *WebhookChannel {
	return &WebhookChannel{
		url: config.WebhookURL,
		httpClient: &http.Client{
			Timeout: config.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 5,
				IdleConnTimeout:     30 * time.Second,
			},
		},
	}
}

// Name returns the channel name
func (c *WebhookChannel) Name() string {
	return "webhook"
}

// Send posts the event to the webhook endpoint
func (c *WebhookChannel) Send(ctx context.Context, event *LifecycleEvent) error {
	payload := &WebhookPayload{
		Source:    "event-ticketing",
		Type:      event.Type,
		Timestamp: time.Now(),
		Event:     event,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}
