package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ride-share/internal/domain/ride"
	"ride-share/internal/domain/user"
	"ride-share/internal/general/contracts"
)

// generateRideNumber returns an ID like RIDE_20260830_1a2b3c4d: the UTC date
// plus a short uuid fragment to avoid collisions under concurrent requests.
func generateRideNumber(now time.Time) string {
	short := uuid.NewString()[:8]
	return fmt.Sprintf("RIDE_%s_%s", now.UTC().Format("20060102"), short)
}

// generateCorrelationID creates a correlation ID for tracing requests.
func generateCorrelationID() string {
	return "req_" + uuid.NewString()
}

// envelope stamps the shared event headers.
func (service *rideService) envelope(corrID string) contracts.Envelope {
	return contracts.Envelope{
		CorrelationID: corrID,
		Producer:      "ride-service",
		SentAt:        service.clock.Now(),
	}
}

// publishStatusEvent pushes a lifecycle change to the rider's topic and, when
// a driver is assigned, the driver's topic. Relay failures are logged by the
// relay itself; the state change has already committed.
func (service *rideService) publishStatusEvent(ctx context.Context, rd *ride.Ride, driver *user.User, corrID string) {
	ev := contracts.RideStatusEvent{
		Type:       "ride_status_update",
		RideID:     rd.ID,
		RideNumber: rd.RideNumber,
		Status:     rd.Status.String(),
		Timestamp:  service.clock.Now(),
		Envelope:   service.envelope(corrID),
	}
	if rd.Status == ride.StatusCompleted && rd.ActualFare != nil {
		ev.FinalFare = rd.ActualFare
	}
	if driver != nil {
		ev.DriverInfo = &contracts.DriverBrief{
			DriverID: driver.ID,
			Name:     driver.Name,
			Rating:   driver.Stars(),
		}
	}

	_ = service.relay.Publish(ctx, contracts.TopicRider(rd.RiderID), ev)
	if rd.DriverID != nil {
		_ = service.relay.Publish(ctx, contracts.TopicDriver(*rd.DriverID), ev)
	}
}

// loadRide fetches a ride or returns a NOT_FOUND rejection.
func (service *rideService) loadRide(ctx context.Context, rideID int64) (*ride.Ride, error) {
	rd, err := service.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if rd == nil {
		return nil, errRideNotFound(rideID)
	}
	return rd, nil
}
