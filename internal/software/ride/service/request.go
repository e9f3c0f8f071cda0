package service

import (
	"context"
	"errors"

	"ride-share/internal/domain/ride"
	"ride-share/internal/general/contracts"
	"ride-share/internal/general/fault"
	"ride-share/internal/ports"
)

// RequestRide creates a ride in `searching` state for the rider. The
// one-active-ride rule is enforced inside the transaction: the active lookup
// and the insert commit together or not at all.
func (service *rideService) RequestRide(ctx context.Context, in ports.RequestRideInput) (ports.RequestRideResult, error) {
	corrID := generateCorrelationID()
	ctx = service.logger.WithRequestID(ctx, corrID)

	if in.RiderID <= 0 {
		return ports.RequestRideResult{}, fault.Invalid("rider id is required")
	}
	if err := in.Pickup.Validate(); err != nil {
		return ports.RequestRideResult{}, fault.Invalid("invalid pickup location: %v", err)
	}
	if err := in.Dropoff.Validate(); err != nil {
		return ports.RequestRideResult{}, fault.Invalid("invalid dropoff location: %v", err)
	}
	if !in.VehicleClass.Valid() {
		return ports.RequestRideResult{}, fault.Invalid("invalid vehicle class %q", string(in.VehicleClass))
	}
	if in.DistanceMeters < 0 {
		return ports.RequestRideResult{}, fault.Invalid("distance must not be negative")
	}

	now := service.clock.Now()
	estimate := ride.CalculateFare(in.DistanceMeters, in.VehicleClass, in.IsShared)

	newRide, err := ride.New(ride.NewRequest{
		RideNumber:      generateRideNumber(now),
		RiderID:         in.RiderID,
		Pickup:          in.Pickup,
		PickupAddress:   in.PickupAddress,
		Dropoff:         in.Dropoff,
		DropoffAddress:  in.DropoffAddress,
		VehicleClass:    in.VehicleClass,
		EstimatedFare:   estimate,
		DistanceMeters:  in.DistanceMeters,
		DurationSeconds: in.DurationSeconds,
		IsShared:        in.IsShared,
		MaxPassengers:   in.MaxPassengers,
	})
	if err != nil {
		if errors.Is(err, ride.ErrCapacityOutOfRange) {
			return ports.RequestRideResult{}, fault.Invalid("%v", err)
		}
		return ports.RequestRideResult{}, fault.Invalid("invalid ride request: %v", err)
	}

	err = service.uow.WithinTx(ctx, func(ctx context.Context) error {
		// holding the rider's row lock serializes concurrent requests by
		// the same rider, so the active-ride check below cannot race
		rider, err := service.userRepo.LockByID(ctx, in.RiderID)
		if err != nil {
			return err
		}
		if rider == nil {
			return errUserNotFound(in.RiderID)
		}

		active, err := service.rideRepo.ActiveByRider(ctx, in.RiderID)
		if err != nil {
			return err
		}
		if active != nil {
			return fault.Conflict(msgRiderActiveRide)
		}

		if err := service.rideRepo.Create(ctx, newRide); err != nil {
			return err
		}

		// shared rides carry the creator as the first passenger row
		if newRide.IsShared {
			creator, err := ride.NewPassenger(
				newRide.ID, in.RiderID,
				in.Pickup, in.PickupAddress,
				in.Dropoff, in.DropoffAddress,
				estimate,
			)
			if err != nil {
				return err
			}
			return service.passengerRepo.Add(ctx, creator)
		}
		return nil
	})
	if err != nil {
		return ports.RequestRideResult{}, err
	}

	ctx = service.logger.WithRideID(ctx, newRide.ID)
	service.logger.Info(ctx, "ride_requested", "Ride created in searching state", map[string]any{
		"ride_number":    newRide.RideNumber,
		"vehicle_class":  newRide.VehicleClass.String(),
		"estimated_fare": estimate,
		"is_shared":      newRide.IsShared,
	})

	// let idle drivers see the request immediately
	_ = service.relay.Publish(ctx, contracts.TopicAvailableDrivers, contracts.RideRequestEvent{
		Type:       "new_ride_request",
		RideID:     newRide.ID,
		RideNumber: newRide.RideNumber,
		Pickup: contracts.GeoPoint{
			Lat: newRide.Pickup.Latitude, Lng: newRide.Pickup.Longitude, Address: newRide.PickupAddress,
		},
		Dropoff: contracts.GeoPoint{
			Lat: newRide.Dropoff.Latitude, Lng: newRide.Dropoff.Longitude, Address: newRide.DropoffAddress,
		},
		VehicleClass:  newRide.VehicleClass.String(),
		EstimatedFare: estimate,
		IsShared:      newRide.IsShared,
		Envelope:      service.envelope(corrID),
	})
	service.publishStatusEvent(ctx, newRide, nil, corrID)

	return ports.RequestRideResult{
		RideID:        newRide.ID,
		RideNumber:    newRide.RideNumber,
		Status:        newRide.Status,
		EstimatedFare: estimate,
	}, nil
}
