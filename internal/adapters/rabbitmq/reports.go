// Package rabbitmq backs the needs-report wake channel: Wake publishes
// a needs-report message, and Consume hands deliveries to the report
// worker (C9), which drains on each one in addition to its 10-minute
// timer. Nothing in the server calls Wake: the C3 transition to
// needs-report publishes no message, so the worker picks such
// experiments up on its timer.
package rabbitmq

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/ecoci/ecoci/pkg/mrabbitmq"
)

const (
	exchangeName = "crater.reports"
	routingKey   = "needs-report"
	queueName    = "crater.reports.needs-report"
)

// ReportWaker publishes and consumes needs-report wake events.
type ReportWaker struct {
	conn *mrabbitmq.Connection
}

func NewReportWaker(conn *mrabbitmq.Connection) *ReportWaker {
	return &ReportWaker{conn: conn}
}

func (w *ReportWaker) declare(ctx context.Context) (*amqp.Channel, error) {
	ch, err := w.conn.GetChannel(ctx)
	if err != nil {
		return nil, err
	}

	if err := ch.ExchangeDeclare(exchangeName, amqp.ExchangeFanout, true, false, false, false, nil); err != nil {
		return nil, err
	}

	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		return nil, err
	}

	if err := ch.QueueBind(queueName, routingKey, exchangeName, false, nil); err != nil {
		return nil, err
	}

	return ch, nil
}

// Wake publishes a needs-report event for experiment name. The body is
// informational only — consumers re-query the store for the actual
// queue of needs-report experiments rather than trusting message
// ordering.
func (w *ReportWaker) Wake(ctx context.Context, experiment string) error {
	ch, err := w.declare(ctx)
	if err != nil {
		return err
	}

	return ch.PublishWithContext(ctx, exchangeName, routingKey, false, false, amqp.Publishing{
		ContentType: "text/plain",
		Body:        []byte(experiment),
	})
}

// Consume returns a delivery channel the report worker selects on
// alongside its own timer. Every delivery is auto-acked: losing a wake
// message only costs the 10-minute timer fallback, never correctness.
func (w *ReportWaker) Consume(ctx context.Context) (<-chan amqp.Delivery, error) {
	ch, err := w.declare(ctx)
	if err != nil {
		return nil, err
	}

	return ch.Consume(queueName, "", true, false, false, false, nil)
}
