package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"ride-share/internal/general/contracts"
	"ride-share/internal/general/logger"
	"ride-share/internal/general/rabbitmq"
	"ride-share/internal/ports"
)

// Relay implements ports.Relay: events go to local WebSocket subscribers and,
// when a publisher is wired, to RabbitMQ for the other services. The broker
// mirror is best effort; local delivery never waits on it.
type Relay struct {
	hub    *Hub
	pub    *rabbitmq.MQPublisher
	logger *logger.Logger
}

// New builds a Relay. pub may be nil (tests, single-process runs).
func New(hub *Hub, pub *rabbitmq.MQPublisher, log *logger.Logger) *Relay {
	return &Relay{hub: hub, pub: pub, logger: log}
}

var _ ports.Relay = (*Relay)(nil)

// Publish fans payload out to the topic's subscribers and mirrors it to the
// broker.
func (r *Relay) Publish(ctx context.Context, topic string, payload any) error {
	r.hub.Broadcast(topic, payload)

	if r.pub == nil {
		return nil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("relay: marshal payload for %s: %w", topic, err)
	}

	exchange := contracts.ExchangeRideTopic
	if isLocationTopic(topic) {
		exchange = contracts.ExchangeLocationFanout
	}

	if err := r.pub.Publish(exchange, contracts.RoutingKey(topic), body); err != nil {
		// subscribers already got the event; log the mirror failure and move on
		r.logger.Error(ctx, "relay_mirror_failed", "Failed to mirror event to broker", err, map[string]any{
			"topic":    topic,
			"exchange": exchange,
		})
	}

	return nil
}

// Hub exposes the underlying hub for subscription handlers.
func (r *Relay) Hub() *Hub {
	return r.hub
}

func isLocationTopic(topic string) bool {
	return topic == contracts.TopicAvailableDrivers || strings.HasSuffix(topic, ":driver:location")
}
