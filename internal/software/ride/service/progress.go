package service

import (
	"context"

	"ride-share/internal/domain/payment"
	"ride-share/internal/domain/ride"
	"ride-share/internal/domain/user"
	"ride-share/internal/general/fault"
)

// AdvanceStatus moves the driver's ride one step forward along
// accepted -> driver_arriving -> in_progress -> completed. The transition is
// a compare-and-swap from the status the driver observed, so two replays of
// the same command produce one state change and one CONFLICT.
func (service *rideService) AdvanceStatus(ctx context.Context, driverID, rideID int64, next ride.Status) error {
	corrID := generateCorrelationID()
	ctx = service.logger.WithRequestID(ctx, corrID)
	ctx = service.logger.WithRideID(ctx, rideID)

	if !next.Valid() {
		return fault.Invalid("invalid ride status %q", string(next))
	}
	switch next {
	case ride.StatusDriverArriving, ride.StatusInProgress, ride.StatusCompleted:
	default:
		return fault.Invalid("status %s cannot be set by a driver", next)
	}

	var updated *ride.Ride
	var driver *user.User

	err := service.uow.WithinTx(ctx, func(ctx context.Context) error {
		rd, err := service.loadRide(ctx, rideID)
		if err != nil {
			return err
		}
		if rd.DriverID == nil || *rd.DriverID != driverID {
			return fault.Forbidden("ride %d is not assigned to you", rideID)
		}
		if rd.Status.Terminal() {
			return fault.Conflict("ride %d is already %s", rideID, rd.Status)
		}
		if !rd.Status.CanTransitionTo(next) {
			return fault.Conflict("cannot move ride from %s to %s", rd.Status, next)
		}

		now := service.clock.Now()

		if next == ride.StatusCompleted {
			return service.completeRide(ctx, rd, driverID)
		}

		ok, err := service.rideRepo.AdvanceStatus(ctx, rideID, rd.Status, next, now)
		if err != nil {
			return err
		}
		if !ok {
			return fault.Conflict("ride %d changed concurrently", rideID)
		}
		return nil
	})
	if err != nil {
		return err
	}

	// re-read outside the event path is avoided; fetch fresh state for the event
	err = service.uow.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		updated, err = service.loadRide(ctx, rideID)
		if err != nil {
			return err
		}
		driver, err = service.userRepo.GetByID(ctx, driverID)
		return err
	})
	if err != nil {
		return err
	}

	service.logger.Info(ctx, "ride_status_advanced", "Ride moved to "+updated.Status.String(), map[string]any{
		"driver_id": driverID,
		"status":    updated.Status.String(),
	})
	service.publishStatusEvent(ctx, updated, driver, corrID)

	return nil
}

// completeRide finishes the ride and settles the side effects atomically with
// the status change: payment row, driver ride counter, driver back to
// available.
func (service *rideService) completeRide(ctx context.Context, rd *ride.Ride, driverID int64) error {
	now := service.clock.Now()
	finalFare := rd.FinalAmount()

	ok, err := service.rideRepo.Complete(ctx, rd.ID, finalFare, now)
	if err != nil {
		return err
	}
	if !ok {
		return fault.Conflict("ride %d changed concurrently", rd.ID)
	}

	pay, err := payment.NewCompleted(rd.ID, rd.RiderID, driverID, finalFare)
	if err != nil {
		return err
	}
	if err := service.paymentRepo.Create(ctx, pay); err != nil {
		return err
	}

	if err := service.userRepo.IncrementTotalRides(ctx, driverID); err != nil {
		return err
	}
	return service.userRepo.UpdateDriverStatus(ctx, driverID, user.DriverAvailable)
}
