// Package notification dispatches order notifications. Delivery is
// fire-and-forget from the settlement's point of view: a failed send is
// logged, never surfaced to the shopper.
package notification

import (
	"context"
	"errors"
	"fmt"
)

// Kinds of notification.
const (
	KindOrderSettled = "order_settled"
)

// Notification is one message about an order.
type Notification struct {
	Kind          string `json:"kind"`
	OrderID       string `json:"order_id"`
	OrderNumber   string `json:"order_number"`
	Recipient     string `json:"recipient"`
	Identity      string `json:"identity"`
	TotalAmount   int64  `json:"total_amount"`
	Currency      string `json:"currency"`
	PaymentMethod string `json:"payment_method"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

// Notifier delivers a notification through one channel.
type Notifier interface {
	Name() string
	Send(ctx context.Context, n Notification) error
}

// Fanout sends every notification through all of its notifiers.
type Fanout struct {
	notifiers []Notifier
}

// NewFanout combines notifiers.
func NewFanout(notifiers ...Notifier) *Fanout {
	return &Fanout{notifiers: notifiers}
}

// Name returns the channel name.
func (f *Fanout) Name() string {
	return "fanout"
}

// Send delivers through every notifier, even after one fails, and joins the
// errors.
func (f *Fanout) Send(ctx context.Context, n Notification) error {
	var errs []error
	for _, notifier := range f.notifiers {
		if err := notifier.Send(ctx, n); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", notifier.Name(), err))
		}
	}
	return errors.Join(errs...)
}
