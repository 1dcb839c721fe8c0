// Package notify publishes order state transitions to RabbitMQ so
// downstream consumers (email, analytics) can react without querying the
// primary database. Publishing is fire-and-forget: failures are logged and
// never surface to settlement.
package notify

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/nazyhomayoun/learning-software-testing/internal/domain"
)

const queueName = "order.transitions"

// OrderTransitionMessage is the payload published on every order state
// change. It carries enough for consumers to notify a buyer without a
// database round trip.
type OrderTransitionMessage struct {
	OrderID      string `json:"order_id"`
	TicketTypeID string `json:"ticket_type_id"`
	Quantity     int    `json:"quantity"`
	Total        string `json:"total"`
	Status       string `json:"status"`
	PaymentRef   string `json:"payment_ref,omitempty"`
	OccurredAt   string `json:"occurred_at"`
}

// AMQPNotifier publishes to a durable queue with persistent messages. A
// fresh connection per publish keeps the implementation robust against
// broker restarts at the cost of throughput, which is acceptable for this
// traffic volume.
type AMQPNotifier struct {
	url string
	log *logrus.Logger
}

func NewAMQPNotifier(url string, log *logrus.Logger) *AMQPNotifier {
	return &AMQPNotifier{url: url, log: log}
}

func (n *AMQPNotifier) OrderTransition(ctx context.Context, order domain.Order) {
	if err := n.publish(ctx, order); err != nil {
		n.log.WithError(err).WithField("order_id", order.ID).Warn("order transition publish failed")
	}
}

func (n *AMQPNotifier) publish(ctx context.Context, order domain.Order) error {
	conn, err := amqp.Dial(n.url)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		return err
	}

	body, err := json.Marshal(OrderTransitionMessage{
		OrderID:      order.ID,
		TicketTypeID: order.TicketTypeID,
		Quantity:     order.Quantity,
		Total:        order.Total.StringFixed(2),
		Status:       string(order.Status),
		PaymentRef:   order.PaymentRef,
		OccurredAt:   order.UpdatedAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}

	return ch.PublishWithContext(ctx,
		"",        // default exchange
		queueName, // routing key = queue name
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
}

// NopNotifier drops all transitions. Used in tests and when no broker is
// configured.
type NopNotifier struct{}

func (NopNotifier) OrderTransition(context.Context, domain.Order) {}
