package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/gitcustomcode/nexevent-api-mvp-sub000/internal/service"
)

// Publisher delivers domain events to RabbitMQ.  It dials per publish
// and never panics; errors are logged and returned so callers can
// choose to ignore them without interrupting the main request flow.
type Publisher struct {
	url string
	log *zerolog.Logger
}

// NewPublisher constructs a Publisher for the given broker URL.
func NewPublisher(url string, log *zerolog.Logger) *Publisher {
	return &Publisher{url: url, log: log}
}

// ParticipantRegistered publishes a registration event to the
// participant.registered queue.  Messages are marked persistent.
func (p *Publisher) ParticipantRegistered(ctx context.Context, ev service.ParticipantRegisteredEvent) error {
	return p.publish(ctx, ParticipantRegisteredQueue, ev)
}

func (p *Publisher) publish(ctx context.Context, queueName string, payload interface{}) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.log.Warn().Err(err).Msg("rabbitmq: dial failed")
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.Warn().Err(err).Msg("rabbitmq: channel open failed")
		return err
	}
	defer func() { _ = ch.Close() }()

	// Idempotent declare; durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		p.log.Warn().Err(err).Str("queue", queueName).Msg("rabbitmq: queue declare failed")
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queueName, false, false, pub); err != nil {
		p.log.Warn().Err(err).Str("queue", queueName).Msg("rabbitmq: publish failed")
		return err
	}
	return nil
}
