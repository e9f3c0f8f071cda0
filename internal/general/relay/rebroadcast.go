package relay

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"ride-share/internal/general/logger"
	"ride-share/internal/general/rabbitmq"
)

// RunRebroadcast consumes a queue and re-broadcasts every delivery into the
// local hub, so subscribers connected to this process receive events
// published by the other services. The topic is recovered from the routing
// key ('.' back to ':'). Events produced by this process are skipped; its
// subscribers already got them on the local path.
func RunRebroadcast(
	ctx context.Context,
	client *rabbitmq.Client,
	hub *Hub,
	queue string,
	selfProducer string,
	prefetch int,
	log *logger.Logger,
) {
	go func() {
		for {
			err := client.Consume(ctx, queue, selfProducer+"-rebroadcast", prefetch,
				func(ctx context.Context, d amqp.Delivery) error {
					var origin struct {
						Producer string `json:"producer"`
					}
					if err := json.Unmarshal(d.Body, &origin); err != nil {
						// not one of ours; drop without requeue
						return nil
					}
					if origin.Producer == selfProducer {
						return nil
					}

					topic := strings.ReplaceAll(d.RoutingKey, ".", ":")
					hub.Broadcast(topic, json.RawMessage(d.Body))
					return nil
				})

			if ctx.Err() != nil {
				return
			}
			if err != nil {
				log.Error(ctx, "rebroadcast_consumer_stopped", "Queue consumer stopped, retrying", err,
					map[string]any{"queue": queue})
			}

			select {
			case <-ctx.Done():
				return
			case <-time.After(5 * time.Second):
			}
		}
	}()
}
