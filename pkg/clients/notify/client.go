package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/bahsow/fleetdesk/internal/config"
)

// Notification is the payload pushed to the configured webhook when a report
// is exported or an anomaly scan finds something.
type Notification struct {
	Kind    string `json:"kind"`
	OwnerID string `json:"owner_id,omitempty"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Client exposes the outbound notification operation used by the application.
type Client interface {
	Send(ctx context.Context, n Notification) error
}

// WebhookClient is a resty-backed implementation of Client.
type WebhookClient struct {
	httpClient *resty.Client
	url        string
}

// NewClient builds a webhook client using the provided configuration values.
func NewClient(cfg config.NotifyConfig) *WebhookClient {
	restyClient := resty.New()
	restyClient.
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)
	if cfg.Token != "" {
		restyClient.SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.Token))
	}

	return &WebhookClient{
		httpClient: restyClient,
		url:        cfg.WebhookURL,
	}
}

// apiError represents a webhook error payload.
type apiError struct {
	Error string `json:"error"`
}

// Send posts the notification and fails on any non-2xx response.
func (c *WebhookClient) Send(ctx context.Context, n Notification) error {
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(n).
		SetError(apiErr).
		Post(c.url)
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return fmt.Errorf("notification webhook error: code=%d, message=%s", resp.StatusCode(), apiErr.Error)
	}

	return nil
}

var _ Client = (*WebhookClient)(nil)
