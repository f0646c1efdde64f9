package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// Settler applies one payment-settled notification.
type Settler interface {
	Settle(ctx context.Context, sessionID string, succeeded bool) error
}

// StartSettlementConsumer connects to RabbitMQ, declares the
// payment.settled queue (durable), and consumes settlement messages,
// handing each to the Settler.  The function runs a reconnect loop with
// exponential backoff and only returns when the context is cancelled;
// malformed or failing messages are rejected without requeue so a bad
// payload cannot wedge the queue.
func StartSettlementConsumer(ctx context.Context, url string, settler Settler, log *zerolog.Logger) error {
	backoff := time.Second
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		conn, err := amqp.Dial(url)
		if err != nil {
			log.Warn().Err(err).Dur("retry_in", backoff).Msg("settlement-consumer: dial failed")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := settlementLoop(ctx, conn, settler, log); err != nil {
			_ = conn.Close()
			if errors.Is(err, context.Canceled) {
				return err
			}
			log.Warn().Err(err).Msg("settlement-consumer: consume loop ended, reconnecting")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(2 * time.Second):
			}
			continue
		}
	}
}

func settlementLoop(ctx context.Context, conn *amqp.Connection, settler Settler, log *zerolog.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Warn().Err(err).Msg("settlement-consumer: set QoS failed")
	}

	if _, err := ch.QueueDeclare(PaymentSettledQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(PaymentSettledQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return context.Canceled
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := handleSettlement(ctx, d.Body, settler); err != nil {
				log.Error().Err(err).Msg("settlement-consumer: handle message failed")
				_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func handleSettlement(ctx context.Context, body []byte, settler Settler) error {
	var ev PaymentSettledEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.SessionID == "" {
		return errors.New("missing session_id")
	}
	return settler.Settle(ctx, ev.SessionID, ev.Succeeded)
}
