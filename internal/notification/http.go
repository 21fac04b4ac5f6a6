package notification

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/behancebrothers-ops/jjfg-sub000/pkg/httpclient"
)

// Doer executes HTTP requests; *httpclient.CircuitBreakerClient satisfies it.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

type sendRequest struct {
	UserID   string         `json:"user_id"`
	Type     string         `json:"type"`
	Channel  string         `json:"channel"`
	Subject  string         `json:"subject"`
	Body     string         `json:"body"`
	Priority string         `json:"priority"`
	Metadata map[string]any `json:"metadata"`
}

// HTTPNotifier posts notifications to the notification service API.
type HTTPNotifier struct {
	client  Doer
	baseURL string
}

// NewHTTPNotifier creates a notifier calling baseURL.
func NewHTTPNotifier(client Doer, baseURL string) *HTTPNotifier {
	return &HTTPNotifier{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

// Name returns the channel name.
func (h *HTTPNotifier) Name() string {
	return "http"
}

// Send posts an email notification for n.
func (h *HTTPNotifier) Send(ctx context.Context, n Notification) error {
	body := sendRequest{
		UserID:   n.Identity,
		Type:     "email",
		Channel:  n.Kind,
		Subject:  fmt.Sprintf("Order %s confirmed", n.OrderNumber),
		Body:     fmt.Sprintf("Your order %s has been placed. Total: %s.", n.OrderNumber, formatAmount(n.TotalAmount, n.Currency)),
		Priority: "normal",
		Metadata: map[string]any{
			"order_id":     n.OrderID,
			"order_number": n.OrderNumber,
			"recipient":    n.Recipient,
		},
	}

	req, err := httpclient.NewJSONRequest(ctx, http.MethodPost, h.baseURL+"/api/v1/notifications", body)
	if err != nil {
		return err
	}
	if n.CorrelationID != "" {
		req.Header.Set("X-Correlation-ID", n.CorrelationID)
	}

	resp, err := h.client.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("post notification: %w", err)
	}
	if resp.StatusCode >= 300 {
		return httpclient.ParseResponseError(resp, "notification-service")
	}
	_ = resp.Body.Close()
	return nil
}

func formatAmount(cents int64, currency string) string {
	return fmt.Sprintf("%d.%02d %s", cents/100, cents%100, currency)
}
