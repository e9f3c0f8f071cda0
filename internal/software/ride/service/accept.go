package service

import (
	"context"

	"ride-share/internal/domain/ride"
	"ride-share/internal/domain/user"
	"ride-share/internal/general/fault"
)

// AcceptRide assigns the ride to the driver with the given vehicle. Two
// drivers racing for the same ride both pass the read checks; the conditional
// UPDATE picks exactly one winner and the loser gets a CONFLICT.
func (service *rideService) AcceptRide(ctx context.Context, driverID, rideID, vehicleID int64) error {
	corrID := generateCorrelationID()
	ctx = service.logger.WithRequestID(ctx, corrID)
	ctx = service.logger.WithRideID(ctx, rideID)

	var accepted *ride.Ride
	var driver *user.User

	err := service.uow.WithinTx(ctx, func(ctx context.Context) error {
		// the driver's row lock serializes concurrent accepts by the same
		// driver; without it two accepts on different rides both pass the
		// active-ride check
		drv, err := service.userRepo.LockByID(ctx, driverID)
		if err != nil {
			return err
		}
		if drv == nil {
			return errUserNotFound(driverID)
		}
		if !drv.Role.CanDrive() {
			return fault.Forbidden("only drivers can accept rides")
		}

		veh, err := service.vehicleRepo.GetByID(ctx, vehicleID)
		if err != nil {
			return err
		}
		if veh == nil {
			return fault.NotFound("vehicle %d not found", vehicleID)
		}
		if !veh.OwnedBy(driverID) {
			return fault.Forbidden("vehicle %d does not belong to you", vehicleID)
		}

		active, err := service.rideRepo.ActiveByDriver(ctx, driverID)
		if err != nil {
			return err
		}
		if active != nil {
			return fault.Conflict(msgDriverActiveRide)
		}

		rd, err := service.loadRide(ctx, rideID)
		if err != nil {
			return err
		}
		if !rd.IsShared && veh.Capacity < rd.CurrentPassengers {
			return fault.Conflict("vehicle capacity is below the passenger count")
		}

		ok, err := service.rideRepo.Accept(ctx, rideID, driverID, vehicleID, service.clock.Now())
		if err != nil {
			return err
		}
		if !ok {
			return fault.Conflict("ride is no longer available")
		}

		if err := service.userRepo.UpdateDriverStatus(ctx, driverID, user.DriverBusy); err != nil {
			return err
		}

		// re-read for the event payload; Accept stamped driver and timestamps
		accepted, err = service.rideRepo.GetByID(ctx, rideID)
		if err != nil {
			return err
		}
		driver = drv
		return nil
	})
	if err != nil {
		return err
	}

	service.logger.Info(ctx, "ride_accepted", "Driver accepted the ride", map[string]any{
		"driver_id":  driverID,
		"vehicle_id": vehicleID,
	})
	service.publishStatusEvent(ctx, accepted, driver, corrID)

	return nil
}
