package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/syncbridge/backend/internal/domain/channel"
)

// WebhookNotifier delivers mismatch events to an operations webhook
// (chat hook, ticket system). Delivery failures are logged and swallowed
// so they never fail the operation that raised the event.
type WebhookNotifier struct {
	url        string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewWebhookNotifier creates a notifier posting to the given URL. An
// empty URL yields a notifier that drops events.
func NewWebhookNotifier(url string, logger *zap.Logger) *WebhookNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookNotifier{
		url:        url,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

var _ channel.Notifier = (*WebhookNotifier)(nil)

// Notify posts a mismatch event
func (n *WebhookNotifier) Notify(ctx context.Context, event channel.MismatchEvent) error {
	if n.url == "" {
		return nil
	}

	payload, err := json.Marshal(webhookPayload{
		ChannelID:   event.ChannelID.String(),
		Kind:        event.Kind,
		Value:       event.Value,
		OrderNumber: event.OrderNumber,
		OccurredAt:  event.OccurredAt,
	})
	if err != nil {
		return fmt.Errorf("notify: failed to encode event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("notify: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		n.logger.Warn("mismatch notification delivery failed",
			zap.String("kind", event.Kind),
			zap.String("value", event.Value),
			zap.Error(err))
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		n.logger.Warn("mismatch notification rejected",
			zap.String("kind", event.Kind),
			zap.String("value", event.Value),
			zap.Int("status", resp.StatusCode))
	}
	return nil
}

type webhookPayload struct {
	ChannelID   string    `json:"channelId"`
	Kind        string    `json:"kind"`
	Value       string    `json:"value"`
	OrderNumber string    `json:"orderNumber,omitempty"`
	OccurredAt  time.Time `json:"occurredAt"`
}
