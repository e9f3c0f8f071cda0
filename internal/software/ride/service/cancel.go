package service

import (
	"context"

	"ride-share/internal/domain/ride"
	"ride-share/internal/domain/user"
	"ride-share/internal/general/fault"
	"ride-share/internal/ports"
)

// CancelRide moves a non-terminal ride to cancelled on behalf of a rider,
// driver, admin, or the system. The write is guarded on the ride not being
// terminal, so a cancel racing a completion loses cleanly.
func (service *rideService) CancelRide(ctx context.Context, in ports.CancelRideInput) error {
	corrID := generateCorrelationID()
	ctx = service.logger.WithRequestID(ctx, corrID)
	ctx = service.logger.WithRideID(ctx, in.RideID)

	if !in.Actor.Valid() {
		return fault.Invalid("invalid cancel actor %q", string(in.Actor))
	}

	var cancelled *ride.Ride
	var driver *user.User

	err := service.uow.WithinTx(ctx, func(ctx context.Context) error {
		rd, err := service.loadRide(ctx, in.RideID)
		if err != nil {
			return err
		}

		// riders and drivers may only cancel their own ride
		switch in.Actor {
		case ride.CancelledByRider:
			if rd.RiderID != in.ActorUserID {
				return errRideNotFound(in.RideID)
			}
		case ride.CancelledByDriver:
			if rd.DriverID == nil || *rd.DriverID != in.ActorUserID {
				return fault.Forbidden("ride %d is not assigned to you", in.RideID)
			}
		}

		if rd.Status.Terminal() {
			return fault.Conflict("ride %d is already %s", in.RideID, rd.Status)
		}

		ok, err := service.rideRepo.Cancel(ctx, in.RideID, in.Actor, in.Reason, service.clock.Now())
		if err != nil {
			return err
		}
		if !ok {
			return fault.Conflict("ride %d changed concurrently", in.RideID)
		}

		// release the driver back into the available pool
		if rd.DriverID != nil {
			if err := service.userRepo.UpdateDriverStatus(ctx, *rd.DriverID, user.DriverAvailable); err != nil {
				return err
			}
			driver, err = service.userRepo.GetByID(ctx, *rd.DriverID)
			if err != nil {
				return err
			}
		}

		cancelled, err = service.rideRepo.GetByID(ctx, in.RideID)
		return err
	})
	if err != nil {
		return err
	}

	service.logger.Info(ctx, "ride_cancelled", "Ride cancelled", map[string]any{
		"cancelled_by": in.Actor.String(),
		"reason":       in.Reason,
	})
	service.publishStatusEvent(ctx, cancelled, driver, corrID)

	return nil
}
