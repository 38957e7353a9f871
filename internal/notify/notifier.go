package notify

import (
	"context"

	"github.com/sirupsen/logrus"
)

//go:generate mockgen -source=notifier.go -destination=mocks/mocks.go -package=mocks

const (
	EventOrderConfirmed      = "order.confirmed"
	EventSaleRecorded        = "sale.recorded"
	EventWithdrawalRequested = "withdrawal.requested"
	EventWithdrawalCompleted = "withdrawal.completed"
)

// Event is an outbound notification. Delivery (email rendering etc.) is
// owned by a downstream consumer; this service only publishes.
type Event struct {
	Type      string         `json:"type"`
	Recipient string         `json:"recipient"`
	Data      map[string]any `json:"data,omitempty"`
}

// Notifier is a fire-and-forget port: implementations log failures and never
// return them, so a notification problem cannot fail or roll back the
// financial operation that triggered it.
type Notifier interface {
	Notify(ctx context.Context, event Event)
}

// LogNotifier writes events to the log only. Used when no broker is
// configured and as the default in tests.
type LogNotifier struct {
	log *logrus.Logger
}

func NewLogNotifier(log *logrus.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(_ context.Context, event Event) {
	n.log.WithFields(logrus.Fields{
		"type":      event.Type,
		"recipient": event.Recipient,
	}).Info("notification event")
}
