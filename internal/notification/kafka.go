package notification

import (
	"context"
	"fmt"

	pkgkafka "github.com/behancebrothers-ops/jjfg-sub000/pkg/kafka"
)

// Kafka event constants for settled orders.
const (
	TopicOrderCreated  = "ecommerce.order.created"
	EventOrderSettled  = "order.settled"
	AggregateTypeOrder = "order"
)

// Publisher is the subset of *pkgkafka.Producer the notifier uses.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// KafkaNotifier publishes notifications as order events for the
// notification service to consume.
type KafkaNotifier struct {
	publisher Publisher
	topic     string
	source    string
}

// NewKafkaNotifier creates a notifier publishing to topic.
func NewKafkaNotifier(publisher Publisher, topic, source string) *KafkaNotifier {
	if topic == "" {
		topic = TopicOrderCreated
	}
	return &KafkaNotifier{publisher: publisher, topic: topic, source: source}
}

// Name returns the channel name.
func (k *KafkaNotifier) Name() string {
	return "kafka"
}

// Send publishes n keyed by order id.
func (k *KafkaNotifier) Send(ctx context.Context, n Notification) error {
	event, err := pkgkafka.NewEvent(EventOrderSettled, n.OrderID, AggregateTypeOrder, k.source, n)
	if err != nil {
		return fmt.Errorf("build order event: %w", err)
	}
	event.WithCorrelationID(n.CorrelationID).WithMetadata("kind", n.Kind)

	if err := k.publisher.Publish(ctx, k.topic, event); err != nil {
		return fmt.Errorf("publish order event: %w", err)
	}
	return nil
}
