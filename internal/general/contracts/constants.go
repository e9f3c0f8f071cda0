package contracts

import (
	"fmt"
	"strings"
)

// Exchanges
const (
	ExchangeRideTopic      = "ride_topic"
	ExchangeLocationFanout = "location_fanout"
)

// Queues
const (
	QueueRideStatus          = "ride_status"
	QueueLocationUpdatesRide = "location_updates_ride"
)

// Routing patterns
const (
	RouteRideStatusPrefix = "ride.status."   // {status}
	RouteRiderPrefix      = "rider."         // {rider_id}
	RouteDriverPrefix     = "driver."        // {driver_id}
)

// Relay topic builders. Topics use ':' separators; the RabbitMQ mirror
// rewrites them to '.' for routing keys.
func TopicRider(riderID int64) string {
	return fmt.Sprintf("rider:%d", riderID)
}

func TopicDriver(driverID int64) string {
	return fmt.Sprintf("driver:%d", driverID)
}

func TopicRideDriverLocation(rideID int64) string {
	return fmt.Sprintf("ride:%d:driver:location", rideID)
}

const TopicAvailableDrivers = "drivers:available"

// RoutingKey converts a relay topic to an AMQP routing key.
func RoutingKey(topic string) string {
	return strings.ReplaceAll(topic, ":", ".")
}
