package service

import (
	"context"
	"strings"

	"ride-share/internal/domain/geo"
	"ride-share/internal/domain/ride"
	"ride-share/internal/general/contracts"
	"ride-share/internal/general/fault"
	"ride-share/internal/ports"
)

// FindCompatibleSharedRides returns open shared rides whose pickup AND
// dropoff both fall within the detour tolerance of the candidate trip, as a
// per-axis bounding box of maxDetourKM/111 degrees. Compatibility is
// symmetric: if trip A matches open ride B, trip B would match open ride A.
func (service *rideService) FindCompatibleSharedRides(ctx context.Context, in ports.FindSharedInput) ([]*ride.Ride, error) {
	if err := in.Pickup.Validate(); err != nil {
		return nil, fault.Invalid("invalid pickup location: %v", err)
	}
	if err := in.Dropoff.Validate(); err != nil {
		return nil, fault.Invalid("invalid dropoff location: %v", err)
	}
	if !in.VehicleClass.Valid() {
		return nil, fault.Invalid("invalid vehicle class %q", string(in.VehicleClass))
	}
	maxDetour := in.MaxDetourKM
	if maxDetour == 0 {
		maxDetour = ports.DefaultMaxDetourKM
	}
	if maxDetour < 0 {
		return nil, fault.Invalid("max detour must not be negative")
	}

	var candidates []*ride.Ride
	err := service.uow.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		candidates, err = service.rideRepo.ListOpenShared(ctx, in.VehicleClass)
		return err
	})
	if err != nil {
		return nil, err
	}

	tol := geo.DegreeTolerance(maxDetour)
	matches := make([]*ride.Ride, 0, len(candidates))
	for _, cand := range candidates {
		if geo.WithinBox(in.Pickup, cand.Pickup, tol) && geo.WithinBox(in.Dropoff, cand.Dropoff, tol) {
			matches = append(matches, cand)
		}
	}

	return matches, nil
}

// JoinSharedRide adds a rider to an open shared ride. The seat increment is a
// guarded write on the ride row, so of N riders racing for the last seat
// exactly one passenger row is created.
func (service *rideService) JoinSharedRide(ctx context.Context, in ports.JoinSharedInput) error {
	corrID := generateCorrelationID()
	ctx = service.logger.WithRequestID(ctx, corrID)
	ctx = service.logger.WithRideID(ctx, in.RideID)

	if in.RiderID <= 0 {
		return fault.Invalid("rider id is required")
	}
	if err := in.Pickup.Validate(); err != nil {
		return fault.Invalid("invalid pickup location: %v", err)
	}
	if err := in.Dropoff.Validate(); err != nil {
		return fault.Invalid("invalid dropoff location: %v", err)
	}
	if strings.TrimSpace(in.PickupAddress) == "" || strings.TrimSpace(in.DropoffAddress) == "" {
		return fault.Invalid("pickup and dropoff addresses are required")
	}
	if in.Fare < 0 {
		return fault.Invalid("fare must not be negative")
	}

	var joined *ride.Passenger

	err := service.uow.WithinTx(ctx, func(ctx context.Context) error {
		// same serialization as RequestRide: the rider's row lock keeps
		// the active-ride check honest under concurrency
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

		rd, err := service.loadRide(ctx, in.RideID)
		if err != nil {
			return err
		}
		if !rd.IsShared {
			return fault.Conflict("ride %d is not a shared ride", in.RideID)
		}
		if rd.RiderID == in.RiderID {
			return fault.Conflict("you are already on this ride")
		}

		// the guard: seat increment only succeeds while joinable with space
		ok, err := service.rideRepo.AddPassengerSeat(ctx, in.RideID)
		if err != nil {
			return err
		}
		if !ok {
			return fault.Conflict("ride %d is full or no longer accepting passengers", in.RideID)
		}

		fare := in.Fare
		if fare == 0 {
			fare = ride.CalculateFare(rd.DistanceMeters, rd.VehicleClass, true)
		}

		joined, err = ride.NewPassenger(
			in.RideID, in.RiderID,
			in.Pickup, in.PickupAddress,
			in.Dropoff, in.DropoffAddress,
			fare,
		)
		if err != nil {
			return err
		}
		return service.passengerRepo.Add(ctx, joined)
	})
	if err != nil {
		return err
	}

	service.logger.Info(ctx, "shared_ride_joined", "Passenger joined shared ride", map[string]any{
		"passenger_id": in.RiderID,
	})
	_ = service.relay.Publish(ctx, contracts.TopicRider(in.RiderID), contracts.PassengerStatusEvent{
		Type:        "passenger_status_update",
		RideID:      in.RideID,
		PassengerID: in.RiderID,
		Status:      ride.PassengerWaiting.String(),
		Timestamp:   service.clock.Now(),
		Envelope:    service.envelope(corrID),
	})

	return nil
}

// RidePassengers lists the participants of a shared ride.
func (service *rideService) RidePassengers(ctx context.Context, rideID int64) ([]*ride.Passenger, error) {
	var out []*ride.Passenger
	err := service.uow.WithinTx(ctx, func(ctx context.Context) error {
		rd, err := service.loadRide(ctx, rideID)
		if err != nil {
			return err
		}
		if !rd.IsShared {
			return fault.Conflict("ride %d is not a shared ride", rideID)
		}
		out, err = service.passengerRepo.ListByRide(ctx, rideID)
		return err
	})
	return out, err
}

// UpdatePassengerStatus moves one participant forward
// (waiting -> picked_up -> dropped_off). Only the assigned driver may do it.
func (service *rideService) UpdatePassengerStatus(ctx context.Context, driverID, passengerID int64, next ride.PassengerStatus) error {
	corrID := generateCorrelationID()
	ctx = service.logger.WithRequestID(ctx, corrID)

	if !next.Valid() {
		return fault.Invalid("invalid passenger status %q", string(next))
	}

	var updated *ride.Passenger

	err := service.uow.WithinTx(ctx, func(ctx context.Context) error {
		p, err := service.passengerRepo.GetByID(ctx, passengerID)
		if err != nil {
			return err
		}
		if p == nil {
			return fault.NotFound("passenger %d not found", passengerID)
		}

		rd, err := service.loadRide(ctx, p.RideID)
		if err != nil {
			return err
		}
		if rd.DriverID == nil || *rd.DriverID != driverID {
			return fault.Forbidden("ride %d is not assigned to you", p.RideID)
		}
		if !p.Status.CanTransitionTo(next) {
			return fault.Conflict("cannot move passenger from %s to %s", p.Status, next)
		}

		ok, err := service.passengerRepo.AdvanceStatus(ctx, passengerID, p.Status, next, service.clock.Now())
		if err != nil {
			return err
		}
		if !ok {
			return fault.Conflict("passenger %d changed concurrently", passengerID)
		}

		updated = p
		return nil
	})
	if err != nil {
		return err
	}

	_ = service.relay.Publish(ctx, contracts.TopicRider(updated.PassengerID), contracts.PassengerStatusEvent{
		Type:        "passenger_status_update",
		RideID:      updated.RideID,
		PassengerID: updated.PassengerID,
		Status:      next.String(),
		Timestamp:   service.clock.Now(),
		Envelope:    service.envelope(corrID),
	})

	return nil
}
