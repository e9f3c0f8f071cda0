package rabbitmq

import (
	"context"
	"errors"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const confirmTimeout = 5 * time.Second

// MQPublisher is the event mirror's broker-side half: persistent JSON
// publishes with per-message confirmation.
type MQPublisher struct {
	Client *Client
}

// NewMQPublisher wraps the client for publishing.
func NewMQPublisher(client *Client) *MQPublisher {
	return &MQPublisher{Client: client}
}

// Publish sends body to the exchange under routingKey and waits for the
// broker's confirm.
func (publisher *MQPublisher) Publish(exchange, routingKey string, body []byte) error {
	client := publisher.Client

	client.mu.RLock()
	conn, ch := client.conn, client.sendCh
	client.mu.RUnlock()

	if conn == nil || conn.IsClosed() {
		return errors.New("rabbitmq: connection is not open")
	}
	if ch == nil || ch.IsClosed() {
		return errors.New("rabbitmq: publish channel is not open")
	}

	// one publish in flight at a time keeps the confirm stream aligned with
	// the publish it answers
	client.sendMu.Lock()
	defer client.sendMu.Unlock()
	confirms := client.confirms

	ctx, cancel := context.WithTimeout(context.Background(), confirmTimeout)
	defer cancel()

	err := ch.PublishWithContext(ctx, exchange, routingKey,
		true,  // mandatory: unroutable messages come back on NotifyReturn
		false, // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
		})
	if err != nil {
		return err
	}

	select {
	case c := <-confirms:
		if !c.Ack {
			return errors.New("rabbitmq: publish nacked by broker")
		}
		return nil
	case <-ctx.Done():
		// drain the late confirm so the next publish reads its own
		select {
		case c := <-confirms:
			if !c.Ack {
				return errors.New("rabbitmq: publish nacked after timeout")
			}
		case <-time.After(2 * time.Second):
		}
		return ctx.Err()
	}
}
