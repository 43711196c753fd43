package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
)

// Notifier delivers a rendered message to an owner. Implementations are
// the outer edge of the system; the core only hands them text.
type Notifier interface {
	Deliver(ctx context.Context, ownerID, message string) error
}

// LogNotifier writes deliveries to the process log. Default when no
// webhook is configured; useful in development and tests.
type LogNotifier struct{}

func (LogNotifier) Deliver(_ context.Context, ownerID, message string) error {
	log.Printf("notify %s: %s", ownerID, message)
	return nil
}

// WebhookNotifier POSTs deliveries as JSON to a configured endpoint.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

func NewWebhookNotifier(url string, client *http.Client) *WebhookNotifier {
	return &WebhookNotifier{url: url, client: client}
}

func (n *WebhookNotifier) Deliver(ctx context.Context, ownerID, message string) error {
	body, err := json.Marshal(map[string]string{
		"owner_id": ownerID,
		"message":  message,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook delivery: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook delivery: unexpected status %d", resp.StatusCode)
	}
	return nil
}
