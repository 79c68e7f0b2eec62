package usage

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AMQPRecorder publishes usage events to a durable queue for the billing
// and stats consumers downstream.
type AMQPRecorder struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
}

// ------------------------------------------------------------------------------------------------------
// NewAMQPRecorder connects to the broker and declares the usage queue
func NewAMQPRecorder(url, queue string) (*AMQPRecorder, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	if _, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false,
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}

	return &AMQPRecorder{conn: conn, ch: ch, queue: queue}, nil
}

// ------------------------------------------------------------------------------------------------------
func (r *AMQPRecorder) Record(ctx context.Context, ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return r.ch.PublishWithContext(cctx,
		"",      // default exchange
		r.queue, // routing key = queue
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
}

// ------------------------------------------------------------------------------------------------------
func (r *AMQPRecorder) Close() error {
	if r.ch != nil {
		_ = r.ch.Close()
	}
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}
