package rabbitmq

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"ride-share/internal/general/contracts"
)

// declareTopology declares every exchange, queue, and binding the services
// use. It runs on every (re)connect; declarations are idempotent, so the
// first process up creates the topology and the rest just assert it.
func declareTopology(ch *amqp.Channel) error {
	exchanges := map[string]string{
		contracts.ExchangeRideTopic:      "topic",
		contracts.ExchangeLocationFanout: "fanout",
	}
	for name, kind := range exchanges {
		if err := ch.ExchangeDeclare(name, kind, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare exchange %s: %w", name, err)
		}
	}

	for _, q := range []string{
		contracts.QueueRideStatus,
		contracts.QueueLocationUpdatesRide,
	} {
		if _, err := ch.QueueDeclare(q, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare queue %s: %w", q, err)
		}
	}

	// ride_status collects every party-addressed event off the topic
	// exchange so the relay can rebroadcast without knowing the topics.
	bindings := []struct {
		queue, exchange, key string
	}{
		{contracts.QueueRideStatus, contracts.ExchangeRideTopic, contracts.RouteRideStatusPrefix + "*"},
		{contracts.QueueRideStatus, contracts.ExchangeRideTopic, contracts.RouteRiderPrefix + "*"},
		{contracts.QueueRideStatus, contracts.ExchangeRideTopic, contracts.RouteDriverPrefix + "*"},
		{contracts.QueueLocationUpdatesRide, contracts.ExchangeLocationFanout, ""},
	}
	for _, b := range bindings {
		if err := ch.QueueBind(b.queue, b.key, b.exchange, false, nil); err != nil {
			return fmt.Errorf("bind queue %s to %s: %w", b.queue, b.exchange, err)
		}
	}

	return nil
}
