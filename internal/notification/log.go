package notification

import (
	"context"
	"log/slog"
)

// LogNotifier writes notifications to the log. It is the NOTIFIER=log
// channel used in local runs.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a log notifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Name returns the channel name.
func (l *LogNotifier) Name() string {
	return "log"
}

// Send logs n.
func (l *LogNotifier) Send(ctx context.Context, n Notification) error {
	l.logger.InfoContext(ctx, "order notification",
		slog.String("kind", n.Kind),
		slog.String("order_id", n.OrderID),
		slog.String("order_number", n.OrderNumber),
		slog.String("recipient", n.Recipient),
		slog.Int64("total_amount", n.TotalAmount),
	)
	return nil
}
